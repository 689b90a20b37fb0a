package dataset

import "testing"

// twoTetraVTK is a legacy ascii file with two tetrahedra sharing a face,
// a point scalar, and a cell scalar.
const twoTetraVTK = `# vtk DataFile Version 3.0
two tets
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 5 double
0 0 0
1 0 0
0 1 0
0 0 1
1 1 1
CELLS 2 10
4 0 1 2 3
4 1 2 3 4
CELL_TYPES 2
10
10
POINT_DATA 5
SCALARS temperature double
LOOKUP_TABLE default
10 20 30 40 50
CELL_DATA 2
SCALARS region double
LOOKUP_TABLE default
1 2
`

func TestLegacyReaderUnstructuredGrid(t *testing.T) {
	r := NewLegacyReader()
	r.SetFileName(writeTempFile(t, "tets.vtk", twoTetraVTK))
	if err := r.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}

	ds := r.Output()
	if ds.NumPoints() != 5 {
		t.Errorf("NumPoints = %d, want 5", ds.NumPoints())
	}
	if ds.NumCells() != 2 {
		t.Fatalf("NumCells = %d, want 2", ds.NumCells())
	}
	for i, cell := range ds.Cells {
		if cell.Type != CellTetra {
			t.Errorf("cell %d type = %d, want tetra", i, cell.Type)
		}
	}
	if len(ds.PointData) != 1 || ds.PointData[0].Name != "temperature" {
		t.Fatalf("point data = %+v, want temperature", ds.PointData)
	}
	min, max := ds.PointData[0].Range()
	if min != 10 || max != 50 {
		t.Errorf("temperature range = [%g, %g], want [10, 50]", min, max)
	}
	if len(ds.CellData) != 1 || ds.CellData[0].Name != "region" {
		t.Errorf("cell data = %+v, want region", ds.CellData)
	}
}

func TestLegacyReaderPolydata(t *testing.T) {
	const poly = `# vtk DataFile Version 3.0
a quad and a triangle
ASCII
DATASET POLYDATA
POINTS 5 float
0 0 0
1 0 0
1 1 0
0 1 0
2 0 0
POLYGONS 2 9
4 0 1 2 3
3 1 4 2
`
	r := NewLegacyReader()
	r.SetFileName(writeTempFile(t, "poly.vtk", poly))
	if err := r.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	ds := r.Output()
	if ds.NumCells() != 2 {
		t.Fatalf("NumCells = %d, want 2", ds.NumCells())
	}
	if ds.Cells[0].Type != CellQuad {
		t.Errorf("cell 0 type = %d, want quad", ds.Cells[0].Type)
	}
	if ds.Cells[1].Type != CellTriangle {
		t.Errorf("cell 1 type = %d, want triangle", ds.Cells[1].Type)
	}
}

func TestLegacyReaderFieldAttributes(t *testing.T) {
	const field = `# vtk DataFile Version 3.0
field data
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 3 float
0 0 0
1 0 0
0 1 0
CELLS 1 4
3 0 1 2
CELL_TYPES 1
5
POINT_DATA 3
FIELD FieldData 2
velocity 3 3 double
1 0 0  0 1 0  0 0 1
pressure 1 3 double
5 6 7
`
	r := NewLegacyReader()
	r.SetFileName(writeTempFile(t, "field.vtk", field))
	if err := r.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	ds := r.Output()
	if len(ds.PointData) != 2 {
		t.Fatalf("point data arrays = %d, want 2", len(ds.PointData))
	}
	if ds.PointData[0].Name != "velocity" || ds.PointData[0].Components != 3 {
		t.Errorf("array 0 = %s/%d, want velocity/3", ds.PointData[0].Name, ds.PointData[0].Components)
	}
	if ds.PointData[1].Name != "pressure" || ds.PointData[1].Components != 1 {
		t.Errorf("array 1 = %s/%d, want pressure/1", ds.PointData[1].Name, ds.PointData[1].Components)
	}
}

func TestLegacyReaderRejectsBinary(t *testing.T) {
	const binaryHeader = `# vtk DataFile Version 3.0
binary file
BINARY
DATASET UNSTRUCTURED_GRID
`
	r := NewLegacyReader()
	r.SetFileName(writeTempFile(t, "bin.vtk", binaryHeader))
	if err := r.Update(); err == nil {
		t.Fatal("expected error for BINARY encoding")
	}
}

func TestLegacyReaderRejectsNonVTK(t *testing.T) {
	r := NewLegacyReader()
	r.SetFileName(writeTempFile(t, "junk.vtk", "hello\nworld\n"))
	if err := r.Update(); err == nil {
		t.Fatal("expected error for non-VTK content")
	}
}

func TestLegacyReaderRejectsOutOfRangeConnectivity(t *testing.T) {
	const badTet = `# vtk DataFile Version 3.0
bad tet
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 4 double
0 0 0
1 0 0
0 1 0
0 0 1
CELLS 1 5
4 0 1 2 9
CELL_TYPES 1
10
`
	r := NewLegacyReader()
	r.SetFileName(writeTempFile(t, "bad.vtk", badTet))
	if err := r.Update(); err == nil {
		t.Fatal("connectivity referencing a nonexistent point accepted")
	}
	if r.Output() != nil {
		t.Error("failed parse should leave no output")
	}
}

func TestLegacyReaderRejectsShortCell(t *testing.T) {
	// A quad declared over only three connectivity entries.
	const shortQuad = `# vtk DataFile Version 3.0
short quad
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 3 double
0 0 0
1 0 0
0 1 0
CELLS 1 4
3 0 1 2
CELL_TYPES 1
9
`
	r := NewLegacyReader()
	r.SetFileName(writeTempFile(t, "short.vtk", shortQuad))
	if err := r.Update(); err == nil {
		t.Fatal("quad with three points accepted")
	}
}

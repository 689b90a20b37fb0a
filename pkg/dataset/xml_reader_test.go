package dataset

import (
	"encoding/base64"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// singleTetraVTU is a minimal .vtu file: one tetrahedron with a point
// scalar and a cell scalar.
const singleTetraVTU = `<?xml version="1.0"?>
<VTKFile type="UnstructuredGrid" version="0.1" byte_order="LittleEndian">
  <UnstructuredGrid>
    <Piece NumberOfPoints="4" NumberOfCells="1">
      <Points>
        <DataArray type="Float64" NumberOfComponents="3" format="ascii">
          0 0 0  1 0 0  0 1 0  0 0 1
        </DataArray>
      </Points>
      <Cells>
        <DataArray type="Int64" Name="connectivity" format="ascii">0 1 2 3</DataArray>
        <DataArray type="Int64" Name="offsets" format="ascii">4</DataArray>
        <DataArray type="UInt8" Name="types" format="ascii">10</DataArray>
      </Cells>
      <PointData>
        <DataArray type="Float64" Name="pressure" format="ascii">1.0 2.0 3.0 4.0</DataArray>
      </PointData>
      <CellData>
        <DataArray type="Float64" Name="region" format="ascii">7</DataArray>
      </CellData>
    </Piece>
  </UnstructuredGrid>
</VTKFile>
`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestXMLReaderParsesTetra(t *testing.T) {
	r := NewXMLReader()
	r.SetFileName(writeTempFile(t, "tet.vtu", singleTetraVTU))
	if err := r.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}

	ds := r.Output()
	if ds.NumPoints() != 4 {
		t.Errorf("NumPoints = %d, want 4", ds.NumPoints())
	}
	if ds.NumCells() != 1 {
		t.Fatalf("NumCells = %d, want 1", ds.NumCells())
	}
	if ds.Cells[0].Type != CellTetra {
		t.Errorf("cell type = %d, want tetra", ds.Cells[0].Type)
	}
	if len(ds.PointData) != 1 || ds.PointData[0].Name != "pressure" {
		t.Fatalf("point data = %+v, want one array named pressure", ds.PointData)
	}
	min, max := ds.PointData[0].Range()
	if min != 1.0 || max != 4.0 {
		t.Errorf("pressure range = [%g, %g], want [1, 4]", min, max)
	}
	if len(ds.CellData) != 1 || ds.CellData[0].Name != "region" {
		t.Errorf("cell data = %+v, want one array named region", ds.CellData)
	}
}

func TestXMLReaderBase64Array(t *testing.T) {
	values := []float64{1.5, -2.25, 3.0, 0.5}
	payload := make([]byte, 8+8*len(values))
	binary.LittleEndian.PutUint64(payload, uint64(8*len(values)))
	for i, v := range values {
		binary.LittleEndian.PutUint64(payload[8+8*i:], math.Float64bits(v))
	}
	encoded := base64.StdEncoding.EncodeToString(payload)

	arr := &xmlDataArray{Type: "Float64", Format: "binary", Body: encoded}
	got, err := decodeDataArray(arr)
	if err != nil {
		t.Fatalf("decodeDataArray: %v", err)
	}
	if len(got) != len(values) {
		t.Fatalf("decoded %d values, want %d", len(got), len(values))
	}
	for i := range values {
		if got[i] != values[i] {
			t.Errorf("value[%d] = %g, want %g", i, got[i], values[i])
		}
	}
}

func TestXMLReaderKeepsOutputOnFailure(t *testing.T) {
	r := NewXMLReader()
	r.SetFileName(writeTempFile(t, "tet.vtu", singleTetraVTU))
	if err := r.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}
	before := r.Output()

	r.SetFileName(writeTempFile(t, "broken.vtu", "<VTKFile><oops"))
	if err := r.Update(); err == nil {
		t.Fatal("expected error for malformed file")
	}
	if r.Output() != before {
		t.Error("failed Update replaced the previous output")
	}
}

func TestXMLReaderRejectsCountMismatch(t *testing.T) {
	const bad = `<?xml version="1.0"?>
<VTKFile type="UnstructuredGrid">
  <UnstructuredGrid>
    <Piece NumberOfPoints="4" NumberOfCells="0">
      <Points>
        <DataArray type="Float64" NumberOfComponents="3" format="ascii">0 0 0</DataArray>
      </Points>
      <Cells>
        <DataArray Name="connectivity" format="ascii"></DataArray>
        <DataArray Name="offsets" format="ascii"></DataArray>
        <DataArray Name="types" format="ascii"></DataArray>
      </Cells>
    </Piece>
  </UnstructuredGrid>
</VTKFile>
`
	r := NewXMLReader()
	r.SetFileName(writeTempFile(t, "bad.vtu", bad))
	if err := r.Update(); err == nil {
		t.Fatal("expected error for point count mismatch")
	}
}

func TestXMLReaderRejectsOutOfRangeConnectivity(t *testing.T) {
	const badConnectivity = `<?xml version="1.0"?>
<VTKFile type="UnstructuredGrid">
  <UnstructuredGrid>
    <Piece NumberOfPoints="2" NumberOfCells="1">
      <Points>
        <DataArray type="Float64" NumberOfComponents="3" format="ascii">0 0 0  1 0 0</DataArray>
      </Points>
      <Cells>
        <DataArray type="Int64" Name="connectivity" format="ascii">0 1 5</DataArray>
        <DataArray type="Int64" Name="offsets" format="ascii">3</DataArray>
        <DataArray type="UInt8" Name="types" format="ascii">5</DataArray>
      </Cells>
      <PointData>
        <DataArray type="Float64" Name="pressure" format="ascii">1 2</DataArray>
      </PointData>
    </Piece>
  </UnstructuredGrid>
</VTKFile>
`
	r := NewXMLReader()
	r.SetFileName(writeTempFile(t, "bad.vtu", badConnectivity))
	if err := r.Update(); err == nil {
		t.Fatal("connectivity referencing a nonexistent point accepted")
	}
	if r.Output() != nil {
		t.Error("failed parse should leave no output")
	}
}

func TestXMLReaderRejectsNegativeConnectivity(t *testing.T) {
	bad := `<?xml version="1.0"?>
<VTKFile type="UnstructuredGrid">
  <UnstructuredGrid>
    <Piece NumberOfPoints="3" NumberOfCells="1">
      <Points>
        <DataArray type="Float64" NumberOfComponents="3" format="ascii">0 0 0  1 0 0  0 1 0</DataArray>
      </Points>
      <Cells>
        <DataArray type="Int64" Name="connectivity" format="ascii">0 1 -1</DataArray>
        <DataArray type="Int64" Name="offsets" format="ascii">3</DataArray>
        <DataArray type="UInt8" Name="types" format="ascii">5</DataArray>
      </Cells>
    </Piece>
  </UnstructuredGrid>
</VTKFile>
`
	r := NewXMLReader()
	r.SetFileName(writeTempFile(t, "neg.vtu", bad))
	if err := r.Update(); err == nil {
		t.Fatal("negative connectivity accepted")
	}
}

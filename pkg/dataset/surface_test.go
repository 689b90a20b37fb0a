package dataset

import "testing"

func TestExtractSurfaceSingleTetra(t *testing.T) {
	ds := &Dataset{
		Points: []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1},
		Cells:  []Cell{{Type: CellTetra, Points: []int32{0, 1, 2, 3}}},
	}
	surf := ExtractSurface(ds)
	if len(surf.Cells) != 4 {
		t.Fatalf("surface cells = %d, want 4 faces", len(surf.Cells))
	}
	for i, cell := range surf.Cells {
		if cell.Type != CellTriangle {
			t.Errorf("cell %d type = %d, want triangle", i, cell.Type)
		}
	}
}

func TestExtractSurfaceSharedFaceDropped(t *testing.T) {
	// Two tets sharing face (1 2 3): 8 faces total, the shared one is
	// interior and must not appear, leaving 6 boundary triangles.
	ds := &Dataset{
		Points: []float64{
			0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 1, 1, 1,
		},
		Cells: []Cell{
			{Type: CellTetra, Points: []int32{0, 1, 2, 3}},
			{Type: CellTetra, Points: []int32{1, 2, 3, 4}},
		},
	}
	surf := ExtractSurface(ds)
	if len(surf.Cells) != 6 {
		t.Fatalf("surface cells = %d, want 6", len(surf.Cells))
	}
	shared := makeFaceKey([]int32{1, 2, 3})
	for _, cell := range surf.Cells {
		if makeFaceKey(cell.Points) == shared {
			t.Error("interior face leaked into the surface")
		}
	}
}

func TestExtractSurfaceHexahedron(t *testing.T) {
	ds := &Dataset{
		Points: []float64{
			0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0,
			0, 0, 1, 1, 0, 1, 1, 1, 1, 0, 1, 1,
		},
		Cells: []Cell{{Type: CellHexahedron, Points: []int32{0, 1, 2, 3, 4, 5, 6, 7}}},
	}
	surf := ExtractSurface(ds)
	// 6 quad faces, each split into 2 triangles.
	if len(surf.Cells) != 12 {
		t.Fatalf("surface cells = %d, want 12", len(surf.Cells))
	}
}

func TestExtractSurfacePassesThroughTriangles(t *testing.T) {
	ds := &Dataset{
		Points:    []float64{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Cells:     []Cell{{Type: CellTriangle, Points: []int32{0, 1, 2}}},
		PointData: []*DataArray{{Name: "value", Components: 1, Values: []float64{1, 2, 3}}},
	}
	surf := ExtractSurface(ds)
	if len(surf.Cells) != 1 {
		t.Fatalf("surface cells = %d, want 1", len(surf.Cells))
	}
	if len(surf.PointData) != 1 || surf.PointData[0].Name != "value" {
		t.Error("surface should share the input's point data")
	}
}

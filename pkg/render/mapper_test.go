package render

import (
	"testing"

	"github.com/khorium/khorium/pkg/dataset"
)

type fixedPort struct{ ds *dataset.Dataset }

func (p fixedPort) Output() *dataset.Dataset { return p.ds }

func colorDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Points: []float64{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Cells:  []dataset.Cell{{Type: dataset.CellTriangle, Points: []int32{0, 1, 2}}},
		PointData: []*dataset.DataArray{
			{Name: "pressure", Components: 1, Values: []float64{0, 5, 10}},
		},
	}
}

func TestPointColorsThroughLookupTable(t *testing.T) {
	m := NewMapper()
	m.SetInputConnection(fixedPort{colorDataset()})
	m.SelectColorArray("pressure")
	m.ScalarVisibility = true
	m.GetLookupTable().SetRange(0, 10)

	colors := m.PointColors()
	if len(colors) != 9 {
		t.Fatalf("colors length = %d, want 9 (3 points x RGB)", len(colors))
	}
	// Rainbow: min is blue, max is red.
	if !(colors[2] > 0.9 && colors[0] < 0.1) {
		t.Errorf("point 0 color = %v, want blue", colors[0:3])
	}
	if !(colors[6] > 0.9 && colors[8] < 0.1) {
		t.Errorf("point 2 color = %v, want red", colors[6:9])
	}
}

func TestPointColorsNilWhenScalarVisibilityOff(t *testing.T) {
	m := NewMapper()
	m.SetInputConnection(fixedPort{colorDataset()})
	m.SelectColorArray("pressure")
	if m.PointColors() != nil {
		t.Error("expected nil colors with scalar visibility off")
	}
}

func TestPointColorsNilForMissingArray(t *testing.T) {
	m := NewMapper()
	m.SetInputConnection(fixedPort{colorDataset()})
	m.SelectColorArray("does-not-exist")
	m.ScalarVisibility = true
	if m.PointColors() != nil {
		t.Error("expected nil colors for unknown array")
	}
}

func TestMapperBoundsFollowInput(t *testing.T) {
	m := NewMapper()
	if m.Bounds().IsValid() {
		t.Error("disconnected mapper should report invalid bounds")
	}
	m.SetInputConnection(fixedPort{colorDataset()})
	b := m.Bounds()
	want := Bounds{0, 1, 0, 1, 0, 0}
	if b != want {
		t.Errorf("Bounds = %v, want %v", b, want)
	}
}

package primitive

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/khorium/khorium/pkg/dataset"
)

func TestSampleDataset(t *testing.T) {
	ds, err := SampleDataset()
	if err != nil {
		t.Fatalf("SampleDataset: %v", err)
	}
	if ds.NumPoints() == 0 || ds.NumCells() == 0 {
		t.Fatal("sample dataset is empty")
	}
	for i, cell := range ds.Cells {
		if cell.Type != dataset.CellTriangle {
			t.Fatalf("cell %d type = %d, want triangle", i, cell.Type)
		}
	}

	if len(ds.PointData) != 1 || ds.PointData[0].Name != "radius" {
		t.Fatalf("point data = %+v, want one radius array", ds.PointData)
	}
	arr := ds.PointData[0]
	if arr.NumTuples() != ds.NumPoints() {
		t.Fatalf("radius tuples = %d, want %d", arr.NumTuples(), ds.NumPoints())
	}
	// Spot-check the synthetic scalar against its defining formula.
	for _, i := range []int{0, ds.NumPoints() / 2, ds.NumPoints() - 1} {
		x, y, _ := ds.Point(i)
		want := math.Sqrt(x*x + y*y)
		if math.Abs(arr.Value(i)-want) > 1e-12 {
			t.Errorf("radius[%d] = %g, want %g", i, arr.Value(i), want)
		}
	}
}

func TestSampleFlangeBounds(t *testing.T) {
	ds, err := SampleDataset()
	if err != nil {
		t.Fatal(err)
	}
	b := ds.Bounds()
	// The flange plate has radius 40; the tessellated surface must span
	// roughly that in x and y.
	if b[1]-b[0] < 70 || b[3]-b[2] < 70 {
		t.Errorf("bounds %v narrower than the flange plate", b)
	}
}

func TestWriteSampleSTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.stl")
	if err := WriteSampleSTL(path); err != nil {
		t.Fatalf("WriteSampleSTL: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() <= 84 {
		t.Errorf("STL file only %d bytes, want triangle records", info.Size())
	}

	r := dataset.NewSTLReader()
	r.SetFileName(path)
	if err := r.Update(); err != nil {
		t.Fatalf("rereading sample STL: %v", err)
	}
	if r.Output().NumCells() == 0 {
		t.Error("sample STL parsed to zero triangles")
	}
}

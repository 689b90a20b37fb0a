package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

const asciiSTL = `solid cube_corner
  facet normal 0 0 -1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0
    endloop
  endfacet
  facet normal 0 -1 0
    outer loop
      vertex 0 0 0
      vertex 0 0 1
      vertex 1 0 0
    endloop
  endfacet
endsolid cube_corner
`

func TestSTLReaderASCII(t *testing.T) {
	r := NewSTLReader()
	r.SetFileName(writeTempFile(t, "corner.stl", asciiSTL))
	if err := r.Update(); err != nil {
		t.Fatalf("Update: %v", err)
	}

	ds := r.Output()
	if ds.NumCells() != 2 {
		t.Fatalf("NumCells = %d, want 2", ds.NumCells())
	}
	// The two facets share two vertices, so deduplication leaves 4 points
	// rather than 6.
	if ds.NumPoints() != 4 {
		t.Errorf("NumPoints = %d, want 4 after vertex merging", ds.NumPoints())
	}
	if len(ds.PointData) != 0 || len(ds.CellData) != 0 {
		t.Error("STL dataset should carry no data arrays")
	}
}

func TestSTLReaderBinaryRoundTrip(t *testing.T) {
	// Parse the ascii fixture, write it back out as binary, reread.
	r := NewSTLReader()
	r.SetFileName(writeTempFile(t, "corner.stl", asciiSTL))
	if err := r.Update(); err != nil {
		t.Fatalf("Update ascii: %v", err)
	}
	src := r.Output()

	path := filepath.Join(t.TempDir(), "corner_bin.stl")
	if err := WriteBinarySTLFile(path, src); err != nil {
		t.Fatalf("WriteBinarySTLFile: %v", err)
	}

	r2 := NewSTLReader()
	r2.SetFileName(path)
	if err := r2.Update(); err != nil {
		t.Fatalf("Update binary: %v", err)
	}
	got := r2.Output()
	if got.NumCells() != src.NumCells() {
		t.Errorf("binary NumCells = %d, want %d", got.NumCells(), src.NumCells())
	}
	if got.NumPoints() != src.NumPoints() {
		t.Errorf("binary NumPoints = %d, want %d", got.NumPoints(), src.NumPoints())
	}
}

func TestSTLReaderRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.stl")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewSTLReader()
	r.SetFileName(path)
	if err := r.Update(); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestSTLReaderRejectsTruncatedBinary(t *testing.T) {
	r := NewSTLReader()
	r.SetFileName(writeTempFile(t, "trunc.stl", "not really an stl"))
	if err := r.Update(); err == nil {
		t.Fatal("expected error for truncated binary STL")
	}
}

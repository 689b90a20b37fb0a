package meshgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeGeometry(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "part.stl")
	if err := os.WriteFile(path, []byte("solid part\nendsolid part\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClientGenerate(t *testing.T) {
	const meshBody = "# vtk DataFile Version 3.0\ngenerated\nASCII\n"

	var gotFactor string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/generate-mesh" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		gotFactor = r.FormValue("mesh_size_factor")
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		w.Write([]byte(meshBody))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := NewClient(srv.URL, dir)
	out, err := c.Generate(context.Background(), Request{
		GeometryPath:   writeGeometry(t, dir),
		MeshSizeFactor: 0.5,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != filepath.Join(dir, GeneratedMeshFile) {
		t.Errorf("output path = %s, want the canonical generated mesh path", out)
	}
	if gotFactor != "0.5" {
		t.Errorf("mesh_size_factor = %q, want 0.5", gotFactor)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading result: %v", err)
	}
	if string(data) != meshBody {
		t.Errorf("written mesh = %q, want the response body", data)
	}
}

func TestClientGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "meshing failed: self-intersecting surface", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := NewClient(srv.URL, dir)
	_, err := c.Generate(context.Background(), Request{GeometryPath: writeGeometry(t, dir)})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if _, statErr := os.Stat(filepath.Join(dir, GeneratedMeshFile)); !os.IsNotExist(statErr) {
		t.Error("failed generation must not write the mesh file")
	}
}

func TestClientGenerateTransportError(t *testing.T) {
	dir := t.TempDir()
	c := NewClient("http://127.0.0.1:1", dir) // nothing listens here
	_, err := c.Generate(context.Background(), Request{GeometryPath: writeGeometry(t, dir)})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if _, statErr := os.Stat(filepath.Join(dir, GeneratedMeshFile)); !os.IsNotExist(statErr) {
		t.Error("failed generation must not write the mesh file")
	}
}

func TestClientGenerateMissingGeometry(t *testing.T) {
	c := NewClient("http://unused", t.TempDir())
	_, err := c.Generate(context.Background(), Request{GeometryPath: "/does/not/exist.stl"})
	if err == nil {
		t.Fatal("expected error for missing geometry file")
	}
}

func TestClientGenerateDoesNotClobberPreviousMesh(t *testing.T) {
	dir := t.TempDir()
	prev := filepath.Join(dir, GeneratedMeshFile)
	if err := os.WriteFile(prev, []byte("previous mesh"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, dir)
	if _, err := c.Generate(context.Background(), Request{GeometryPath: writeGeometry(t, dir)}); err == nil {
		t.Fatal("expected error")
	}
	data, err := os.ReadFile(prev)
	if err != nil || string(data) != "previous mesh" {
		t.Error("failed generation touched the previously generated mesh")
	}
}

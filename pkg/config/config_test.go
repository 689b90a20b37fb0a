package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MeshAPIURL != "http://localhost:8000" {
		t.Errorf("MeshAPIURL = %q, want the default", cfg.MeshAPIURL)
	}
	if cfg.MeshAPITimeout != 30*time.Second {
		t.Errorf("MeshAPITimeout = %v, want 30s", cfg.MeshAPITimeout)
	}
	if !filepath.IsAbs(cfg.DataDir) {
		t.Errorf("DataDir = %q, want an absolute path", cfg.DataDir)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "khorium.toml")
	content := `
data_dir = "/srv/khorium/data"
mesh_api_url = "http://mesher:9000"
mesh_api_timeout = "45s"
gmsh_path = "/opt/gmsh/bin/gmsh"
hot_reload = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/srv/khorium/data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.MeshAPIURL != "http://mesher:9000" {
		t.Errorf("MeshAPIURL = %q", cfg.MeshAPIURL)
	}
	if cfg.MeshAPITimeout != 45*time.Second {
		t.Errorf("MeshAPITimeout = %v, want 45s", cfg.MeshAPITimeout)
	}
	if cfg.HotReload {
		t.Error("HotReload should be false")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("data_dir = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed TOML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvMeshAPIURL, "http://override:1234")
	t.Setenv(EnvHotReload, "false")
	t.Setenv(EnvAPITimeout, "5s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MeshAPIURL != "http://override:1234" {
		t.Errorf("MeshAPIURL = %q, want the env override", cfg.MeshAPIURL)
	}
	if cfg.HotReload {
		t.Error("HotReload should be overridden to false")
	}
	if cfg.MeshAPITimeout != 5*time.Second {
		t.Errorf("MeshAPITimeout = %v, want 5s", cfg.MeshAPITimeout)
	}
}

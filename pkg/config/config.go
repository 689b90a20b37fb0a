// Package config loads viewer configuration from an optional TOML file
// with environment variable overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the viewer's startup configuration.
type Config struct {
	// DataDir holds uploads, the default mesh sidecar, and generated
	// meshes.
	DataDir string `toml:"data_dir"`
	// MeshAPIURL is the base URL of the remote meshing service. Empty
	// disables the remote generator.
	MeshAPIURL string `toml:"mesh_api_url"`
	// MeshAPITimeout bounds one remote generation request.
	MeshAPITimeout time.Duration `toml:"mesh_api_timeout"`
	// GmshPath locates the local GMSH binary. Empty disables the local
	// generator.
	GmshPath string `toml:"gmsh_path"`
	// GmshTimeout bounds one local GMSH run.
	GmshTimeout time.Duration `toml:"gmsh_timeout"`
	// HotReload watches the data directory and reloads the current file
	// when it changes on disk.
	HotReload bool `toml:"hot_reload"`
}

// Default returns the configuration used when no file or overrides are
// present.
func Default() Config {
	return Config{
		DataDir:        "data",
		MeshAPIURL:     "http://localhost:8000",
		MeshAPITimeout: 30 * time.Second,
		GmshPath:       "gmsh",
		GmshTimeout:    120 * time.Second,
		HotReload:      true,
	}
}

// Load reads the TOML file at path if it exists, then applies
// environment overrides. A missing file is not an error; a malformed
// one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fall through to env overrides.
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.DataDir == "" {
		return cfg, fmt.Errorf("data_dir must not be empty")
	}
	abs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return cfg, fmt.Errorf("resolve data_dir: %w", err)
	}
	cfg.DataDir = abs
	return cfg, nil
}

// Environment variables override file values.
const (
	EnvDataDir     = "KHORIUM_DATA_DIR"
	EnvMeshAPIURL  = "KHORIUM_MESH_API_URL"
	EnvGmshPath    = "KHORIUM_GMSH_PATH"
	EnvHotReload   = "KHORIUM_HOT_RELOAD"
	EnvAPITimeout  = "KHORIUM_MESH_API_TIMEOUT"
	EnvGmshTimeout = "KHORIUM_GMSH_TIMEOUT"
)

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvMeshAPIURL); v != "" {
		cfg.MeshAPIURL = v
	}
	if v := os.Getenv(EnvGmshPath); v != "" {
		cfg.GmshPath = v
	}
	if v := os.Getenv(EnvHotReload); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.HotReload = b
		}
	}
	if v := os.Getenv(EnvAPITimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.MeshAPITimeout = d
		}
	}
	if v := os.Getenv(EnvGmshTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.GmshTimeout = d
		}
	}
}

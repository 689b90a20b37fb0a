package meshgen

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultLocalTimeout bounds one local GMSH run. Volumetric meshing of a
// large surface can take minutes, so this is far looser than the API
// timeout.
const DefaultLocalTimeout = 120 * time.Second

// Local generates meshes by invoking a GMSH binary on this machine.
type Local struct {
	gmshPath string
	dataDir  string
	timeout  time.Duration
}

// NewLocal returns a local generator using the GMSH binary at gmshPath,
// writing into dataDir.
func NewLocal(gmshPath, dataDir string) *Local {
	return &Local{gmshPath: gmshPath, dataDir: dataDir, timeout: DefaultLocalTimeout}
}

// SetTimeout overrides the per-run timeout.
func (l *Local) SetTimeout(d time.Duration) { l.timeout = d }

// Generate runs GMSH in 3D mode over the geometry file. The mesh is
// written to a staging path first and renamed only on a clean exit, so
// a crashed or killed run cannot leave a half-written companion mesh.
func (l *Local) Generate(ctx context.Context, req Request) (string, error) {
	if _, err := os.Stat(req.GeometryPath); err != nil {
		return "", fmt.Errorf("geometry file: %w", err)
	}
	factor := req.MeshSizeFactor
	if factor <= 0 {
		factor = 1.0
	}

	out := filepath.Join(l.dataDir, GeneratedMeshFile)
	staging := out + ".tmp"
	defer os.Remove(staging)

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, l.gmshPath,
		"-3",
		"-format", "vtk",
		"-clscale", strconv.FormatFloat(factor, 'g', -1, 64),
		"-o", staging,
		req.GeometryPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.Printf("meshgen: running %s on %s (size factor %.3g)", l.gmshPath, req.GeometryPath, factor)
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("gmsh timed out after %s", l.timeout)
		}
		return "", fmt.Errorf("gmsh: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	if err := os.Rename(staging, out); err != nil {
		return "", fmt.Errorf("commit generated mesh: %w", err)
	}
	log.Printf("meshgen: gmsh wrote %s", out)
	return out, nil
}

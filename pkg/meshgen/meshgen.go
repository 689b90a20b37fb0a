// Package meshgen produces volumetric companion meshes from uploaded
// surface geometry, either through the remote meshing API or by running
// a local GMSH binary.
package meshgen

import "context"

// GeneratedMeshFile is the canonical filename a successful generation
// writes into the data directory. The viewer loads the companion mesh
// from this path.
const GeneratedMeshFile = "generated_mesh.vtk"

// Request carries the inputs of one generation run.
type Request struct {
	// GeometryPath is the surface geometry file to mesh, usually STL.
	GeometryPath string
	// MeshSizeFactor scales element size; 1.0 is the generator default.
	MeshSizeFactor float64
}

// Generator turns surface geometry into a volumetric mesh file and
// returns the path it was written to. Implementations must not touch
// the destination file on failure so the previously generated mesh
// stays loadable.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

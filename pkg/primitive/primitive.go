// Package primitive builds the viewer's sample geometry from signed
// distance fields, so a fresh install has something to look at before
// the user uploads real data. Solids are tessellated with marching cubes
// and handed to the rest of the pipeline as ordinary datasets.
package primitive

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/khorium/khorium/pkg/dataset"
)

// meshCells controls marching cubes tessellation resolution.
const meshCells = 120

// SampleFlange is the built-in demo solid: a cylindrical flange with a
// bore, the kind of part the meshing workflow is built for.
func SampleFlange() (sdf.SDF3, error) {
	plate, err := sdf.Cylinder3D(8, 40, 2)
	if err != nil {
		return nil, fmt.Errorf("flange plate: %w", err)
	}
	hub, err := sdf.Cylinder3D(30, 16, 1)
	if err != nil {
		return nil, fmt.Errorf("flange hub: %w", err)
	}
	hub = sdf.Transform3D(hub, sdf.Translate3d(v3.Vec{Z: 15}))
	bore, err := sdf.Cylinder3D(46, 8, 0)
	if err != nil {
		return nil, fmt.Errorf("flange bore: %w", err)
	}
	bore = sdf.Transform3D(bore, sdf.Translate3d(v3.Vec{Z: 15}))

	body := sdf.Union3D(plate, hub)
	return sdf.Difference3D(body, bore), nil
}

// Tessellate runs marching cubes over a solid and returns the triangle
// soup as a dataset with deduplicated vertices.
func Tessellate(s sdf.SDF3) *dataset.Dataset {
	renderer := render.NewMarchingCubesUniform(meshCells)
	triangles := render.ToTriangles(s, renderer)

	ds := &dataset.Dataset{}
	index := make(map[[3]float64]int32)
	addPoint := func(v v3.Vec) int32 {
		key := [3]float64{v.X, v.Y, v.Z}
		if id, ok := index[key]; ok {
			return id
		}
		id := int32(len(index))
		index[key] = id
		ds.Points = append(ds.Points, v.X, v.Y, v.Z)
		return id
	}

	for _, tri := range triangles {
		cell := dataset.Cell{Type: dataset.CellTriangle}
		for j := 0; j < 3; j++ {
			cell.Points = append(cell.Points, addPoint(tri[j]))
		}
		ds.Cells = append(ds.Cells, cell)
	}
	return ds
}

// SampleDataset tessellates the demo solid and attaches a synthetic
// radial scalar so scalar coloring and contouring work out of the box.
func SampleDataset() (*dataset.Dataset, error) {
	solid, err := SampleFlange()
	if err != nil {
		return nil, err
	}
	ds := Tessellate(solid)

	radius := &dataset.DataArray{Name: "radius", Components: 1}
	for i := 0; i < ds.NumPoints(); i++ {
		x, y, _ := ds.Point(i)
		radius.Values = append(radius.Values, math.Sqrt(x*x+y*y))
	}
	ds.PointData = append(ds.PointData, radius)
	return ds, nil
}

// WriteSampleSTL tessellates the demo solid and writes it as binary STL,
// ready to feed the upload and generation paths.
func WriteSampleSTL(path string) error {
	solid, err := SampleFlange()
	if err != nil {
		return err
	}
	return dataset.WriteBinarySTLFile(path, Tessellate(solid))
}

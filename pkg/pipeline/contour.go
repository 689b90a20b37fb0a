package pipeline

import (
	"github.com/khorium/khorium/pkg/dataset"
	"github.com/khorium/khorium/pkg/render"
)

// tetDecomposition splits the supported 3D cell types into tetrahedra
// (corner index patterns). Tetrahedra pass through unchanged.
var tetDecomposition = map[dataset.CellType][][4]int{
	dataset.CellTetra: {{0, 1, 2, 3}},
	dataset.CellHexahedron: {
		{0, 1, 3, 4}, {1, 2, 3, 6}, {1, 3, 4, 6}, {1, 4, 5, 6}, {3, 4, 6, 7},
	},
	dataset.CellWedge: {
		{0, 1, 2, 4}, {0, 2, 5, 4}, {0, 5, 3, 4},
	},
	dataset.CellPyramid: {
		{0, 1, 2, 4}, {0, 2, 3, 4},
	},
}

// voxelToHex reorders voxel corners (x-fastest) into hexahedron winding.
var voxelToHex = [8]int{0, 1, 3, 2, 4, 5, 7, 6}

// ContourFilter extracts the iso-surface of a scalar field at a single
// value. It is a dataflow stage: connected to a reader's port once,
// reconnected when the reader instance is replaced, re-run when the input
// data, the field, or the value changes. 3D cells produce triangles via
// tetrahedral decomposition; 2D cells produce iso-line segments.
type ContourFilter struct {
	input  render.Port
	name   string
	assoc  dataset.Association
	value  float64
	output *dataset.Dataset
}

// NewContourFilter returns a disconnected contour filter.
func NewContourFilter() *ContourFilter {
	return &ContourFilter{}
}

// SetInputConnection connects the filter to an upstream port.
func (f *ContourFilter) SetInputConnection(p render.Port) { f.input = p }

// SetInputArray selects the field the filter contours by.
func (f *ContourFilter) SetInputArray(name string, assoc dataset.Association) {
	f.name = name
	f.assoc = assoc
}

// SetValue sets the iso value.
func (f *ContourFilter) SetValue(v float64) { f.value = v }

// Value returns the current iso value.
func (f *ContourFilter) Value() float64 { return f.value }

// Output returns the most recently computed iso-surface, or nil.
func (f *ContourFilter) Output() *dataset.Dataset { return f.output }

// Update recomputes the iso-surface from the current input, field, and
// value. A missing input, field, or dataset yields an empty output
// rather than an error; contouring nothing is a valid state.
func (f *ContourFilter) Update() {
	empty := &dataset.Dataset{}
	if f.input == nil || f.name == "" {
		f.output = empty
		return
	}
	ds := f.input.Output()
	if ds == nil {
		f.output = empty
		return
	}
	scalars := pointScalars(ds, f.name, f.assoc)
	if scalars == nil {
		f.output = empty
		return
	}
	f.output = contour(ds, scalars, f.value, f.name)
}

// pointScalars resolves the contour field as one value per point,
// averaging cell data onto points when needed.
func pointScalars(ds *dataset.Dataset, name string, assoc dataset.Association) []float64 {
	arr := ds.FindArray(name, assoc)
	if arr == nil {
		return nil
	}
	if assoc == dataset.PointAssociation {
		values := make([]float64, ds.NumPoints())
		n := arr.NumTuples()
		for i := range values {
			if i < n {
				values[i] = arr.Value(i)
			}
		}
		return values
	}

	values := make([]float64, ds.NumPoints())
	counts := make([]int, ds.NumPoints())
	for ci, cell := range ds.Cells {
		if ci >= arr.NumTuples() {
			break
		}
		v := arr.Value(ci)
		for _, p := range cell.Points {
			values[p] += v
			counts[p]++
		}
	}
	for i := range values {
		if counts[i] > 0 {
			values[i] /= float64(counts[i])
		}
	}
	return values
}

// edgeKey identifies a mesh edge independent of direction.
type edgeKey struct{ a, b int32 }

func makeEdgeKey(a, b int32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// contourBuilder interpolates crossing points along edges, deduplicating
// per edge so adjacent cells share contour vertices.
type contourBuilder struct {
	ds      *dataset.Dataset
	scalars []float64
	iso     float64
	points  []float64
	edges   map[edgeKey]int32
	cells   []dataset.Cell
}

func (b *contourBuilder) crossing(p0, p1 int32) int32 {
	key := makeEdgeKey(p0, p1)
	if id, ok := b.edges[key]; ok {
		return id
	}
	v0, v1 := b.scalars[p0], b.scalars[p1]
	t := 0.5
	if v1 != v0 {
		t = (b.iso - v0) / (v1 - v0)
	}
	x0, y0, z0 := b.ds.Point(int(p0))
	x1, y1, z1 := b.ds.Point(int(p1))
	id := int32(len(b.points) / 3)
	b.points = append(b.points,
		x0+t*(x1-x0), y0+t*(y1-y0), z0+t*(z1-z0))
	b.edges[key] = id
	return id
}

func (b *contourBuilder) triangle(a, c, d int32) {
	b.cells = append(b.cells, dataset.Cell{
		Type:   dataset.CellTriangle,
		Points: []int32{a, c, d},
	})
}

func (b *contourBuilder) line(a, c int32) {
	b.cells = append(b.cells, dataset.Cell{
		Type:   dataset.CellLine,
		Points: []int32{a, c},
	})
}

// marchTet emits the iso-surface triangles of one tetrahedron.
func (b *contourBuilder) marchTet(p [4]int32) {
	var inside [4]bool
	count := 0
	for i, pt := range p {
		if b.scalars[pt] >= b.iso {
			inside[i] = true
			count++
		}
	}
	switch count {
	case 0, 4:
		return
	case 1, 3:
		// One corner separated from the other three: one triangle.
		lone := -1
		want := count == 1
		for i := range inside {
			if inside[i] == want {
				lone = i
				break
			}
		}
		var others []int32
		for i, pt := range p {
			if i != lone {
				others = append(others, pt)
			}
		}
		a := b.crossing(p[lone], others[0])
		c := b.crossing(p[lone], others[1])
		d := b.crossing(p[lone], others[2])
		b.triangle(a, c, d)
	case 2:
		// Two against two: a quad, split into two triangles.
		var in, out []int32
		for i, pt := range p {
			if inside[i] {
				in = append(in, pt)
			} else {
				out = append(out, pt)
			}
		}
		q0 := b.crossing(in[0], out[0])
		q1 := b.crossing(in[0], out[1])
		q2 := b.crossing(in[1], out[1])
		q3 := b.crossing(in[1], out[0])
		b.triangle(q0, q1, q2)
		b.triangle(q0, q2, q3)
	}
}

// marchTriangle emits the iso-line segment of one 2D triangle, if the
// value crosses it.
func (b *contourBuilder) marchTriangle(p []int32) {
	var crossings []int32
	for i := 0; i < 3; i++ {
		p0, p1 := p[i], p[(i+1)%3]
		in0 := b.scalars[p0] >= b.iso
		in1 := b.scalars[p1] >= b.iso
		if in0 != in1 {
			crossings = append(crossings, b.crossing(p0, p1))
		}
	}
	if len(crossings) == 2 {
		b.line(crossings[0], crossings[1])
	}
}

func contour(ds *dataset.Dataset, scalars []float64, iso float64, arrayName string) *dataset.Dataset {
	b := &contourBuilder{
		ds:      ds,
		scalars: scalars,
		iso:     iso,
		edges:   make(map[edgeKey]int32),
	}

	for _, cell := range ds.Cells {
		switch cell.Type {
		case dataset.CellTriangle:
			if len(cell.Points) == 3 {
				b.marchTriangle(cell.Points)
			}
		case dataset.CellQuad:
			if len(cell.Points) == 4 {
				b.marchTriangle([]int32{cell.Points[0], cell.Points[1], cell.Points[2]})
				b.marchTriangle([]int32{cell.Points[0], cell.Points[2], cell.Points[3]})
			}
		case dataset.CellVoxel:
			if len(cell.Points) == 8 {
				var hex [8]int32
				for i, src := range voxelToHex {
					hex[i] = cell.Points[src]
				}
				for _, tet := range tetDecomposition[dataset.CellHexahedron] {
					b.marchTet([4]int32{hex[tet[0]], hex[tet[1]], hex[tet[2]], hex[tet[3]]})
				}
			}
		default:
			tets, ok := tetDecomposition[cell.Type]
			if !ok || len(cell.Points) < dataset.CellTypePointCount(cell.Type) {
				continue
			}
			for _, tet := range tets {
				b.marchTet([4]int32{
					cell.Points[tet[0]], cell.Points[tet[1]],
					cell.Points[tet[2]], cell.Points[tet[3]],
				})
			}
		}
	}

	out := &dataset.Dataset{Points: b.points, Cells: b.cells}
	if n := len(b.points) / 3; n > 0 {
		// The contour surface carries the iso value as its scalar field so
		// the contour mapper can color it like the primary dataset.
		values := make([]float64, n)
		for i := range values {
			values[i] = iso
		}
		out.PointData = []*dataset.DataArray{{Name: arrayName, Components: 1, Values: values}}
	}
	return out
}

// Package dataset defines the in-memory mesh data model and the readers
// and writers for the supported file formats (XML unstructured grid,
// legacy VTK, STL).
package dataset

import (
	"fmt"
	"math"
)

// Association distinguishes arrays attached to points from arrays
// attached to cells.
type Association int

const (
	PointAssociation Association = iota
	CellAssociation
)

func (a Association) String() string {
	switch a {
	case PointAssociation:
		return "point"
	case CellAssociation:
		return "cell"
	default:
		return "unknown"
	}
}

// CellType is a VTK cell type code. Only the codes the viewer can
// encounter in CFD-style unstructured grids are named.
type CellType uint8

const (
	CellVertex     CellType = 1
	CellLine       CellType = 3
	CellTriangle   CellType = 5
	CellQuad       CellType = 9
	CellTetra      CellType = 10
	CellVoxel      CellType = 11
	CellHexahedron CellType = 12
	CellWedge      CellType = 13
	CellPyramid    CellType = 14
)

// CellTypePointCount maps fixed-size cell types to their point count.
// Zero means variable or unsupported.
func CellTypePointCount(t CellType) int {
	switch t {
	case CellVertex:
		return 1
	case CellLine:
		return 2
	case CellTriangle:
		return 3
	case CellQuad:
		return 4
	case CellTetra:
		return 4
	case CellVoxel, CellHexahedron:
		return 8
	case CellWedge:
		return 6
	case CellPyramid:
		return 5
	default:
		return 0
	}
}

// Cell is one mesh cell: a type code plus point indices.
type Cell struct {
	Type   CellType
	Points []int32
}

// ValidateCells rejects connectivity that references points outside
// [0, numPoints) and fixed-size cell types carrying too few points.
// Readers run it after decoding so a corrupt file fails the parse
// instead of panicking the downstream filters.
func ValidateCells(cells []Cell, numPoints int) error {
	for i, cell := range cells {
		if want := CellTypePointCount(cell.Type); want > 0 && len(cell.Points) < want {
			return fmt.Errorf("cell %d: type %d has %d points, needs %d",
				i, cell.Type, len(cell.Points), want)
		}
		for _, pt := range cell.Points {
			if pt < 0 || int(pt) >= numPoints {
				return fmt.Errorf("cell %d: point index %d out of range [0, %d)",
					i, pt, numPoints)
			}
		}
	}
	return nil
}

// DataArray is a named scalar or vector field. Values are stored flat,
// Components values per tuple.
type DataArray struct {
	Name       string
	Components int
	Values     []float64
}

// NumTuples returns the number of tuples in the array.
func (a *DataArray) NumTuples() int {
	if a.Components <= 0 {
		return 0
	}
	return len(a.Values) / a.Components
}

// Range returns the min and max over the first component, matching the
// default range VTK reports for coloring. An empty array yields (0, 1).
func (a *DataArray) Range() (min, max float64) {
	if a.NumTuples() == 0 {
		return 0, 1
	}
	min = math.Inf(1)
	max = math.Inf(-1)
	for i := 0; i < len(a.Values); i += a.Components {
		v := a.Values[i]
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Tuple returns the i-th tuple's first component.
func (a *DataArray) Value(i int) float64 {
	return a.Values[i*a.Components]
}

// ArrayInfo describes one field discovered on a dataset. It is the unit
// the UI's color-by and contour-by selectors operate on.
type ArrayInfo struct {
	Name        string      `json:"name"`
	Index       int         `json:"index"`
	Range       [2]float64  `json:"range"`
	Association Association `json:"association"`
}

// Dataset is an unstructured mesh: flat xyz point coordinates, typed
// cells, and named point/cell data arrays. Geometry-only formats (STL)
// produce datasets with zero arrays, which is a valid state.
type Dataset struct {
	Points    []float64
	Cells     []Cell
	PointData []*DataArray
	CellData  []*DataArray
}

// NumPoints returns the number of points.
func (d *Dataset) NumPoints() int {
	return len(d.Points) / 3
}

// NumCells returns the number of cells.
func (d *Dataset) NumCells() int {
	return len(d.Cells)
}

// Point returns the coordinates of point i.
func (d *Dataset) Point(i int) (x, y, z float64) {
	return d.Points[3*i], d.Points[3*i+1], d.Points[3*i+2]
}

// Bounds returns the (xmin, xmax, ymin, ymax, zmin, zmax) 6-tuple of the
// point set. An empty dataset yields inverted (invalid) bounds.
func (d *Dataset) Bounds() [6]float64 {
	inf := math.Inf(1)
	b := [6]float64{inf, -inf, inf, -inf, inf, -inf}
	for i := 0; i+2 < len(d.Points); i += 3 {
		for c := 0; c < 3; c++ {
			v := d.Points[i+c]
			if v < b[2*c] {
				b[2*c] = v
			}
			if v > b[2*c+1] {
				b[2*c+1] = v
			}
		}
	}
	return b
}

// ScanArrays collects a fresh descriptor list over the dataset's point
// and cell arrays, point arrays first. Nil arrays are skipped. The first
// entry, if any, is the implicit default coloring/contouring field.
func (d *Dataset) ScanArrays() []ArrayInfo {
	var infos []ArrayInfo
	for i, arr := range d.PointData {
		if arr == nil {
			continue
		}
		lo, hi := arr.Range()
		infos = append(infos, ArrayInfo{
			Name:        arr.Name,
			Index:       i,
			Range:       [2]float64{lo, hi},
			Association: PointAssociation,
		})
	}
	for i, arr := range d.CellData {
		if arr == nil {
			continue
		}
		lo, hi := arr.Range()
		infos = append(infos, ArrayInfo{
			Name:        arr.Name,
			Index:       i,
			Range:       [2]float64{lo, hi},
			Association: CellAssociation,
		})
	}
	return infos
}

// FindArray returns the named array for the given association, or nil.
func (d *Dataset) FindArray(name string, assoc Association) *DataArray {
	arrays := d.PointData
	if assoc == CellAssociation {
		arrays = d.CellData
	}
	for _, arr := range arrays {
		if arr != nil && arr.Name == name {
			return arr
		}
	}
	return nil
}

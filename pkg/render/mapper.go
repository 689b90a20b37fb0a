package render

import "github.com/khorium/khorium/pkg/dataset"

// ScalarMode selects which attribute data a mapper colors by.
type ScalarMode int

const (
	UsePointFieldData ScalarMode = iota
	UseCellFieldData
)

// Mapper turns a port's dataset into colored geometry. It is long-lived:
// a slot constructs its mapper once and reconnects the input when the
// upstream reader changes, so color and range settings survive reloads.
type Mapper struct {
	input Port

	ScalarVisibility         bool
	UseLookupTableScalarRange bool
	colorArray               string
	scalarMode               ScalarMode
	lut                      *LookupTable
}

// NewMapper returns a mapper with a fresh rainbow lookup table and no
// input connection.
func NewMapper() *Mapper {
	return &Mapper{lut: NewLookupTable()}
}

// SetInputConnection connects the mapper to an upstream port. This is the
// explicit graph edit used when a slot's reader instance is replaced.
func (m *Mapper) SetInputConnection(p Port) { m.input = p }

// Input returns the connected upstream port.
func (m *Mapper) Input() Port { return m.input }

// GetLookupTable returns the mapper's lookup table.
func (m *Mapper) GetLookupTable() *LookupTable { return m.lut }

// SelectColorArray chooses the named array as the color source.
func (m *Mapper) SelectColorArray(name string) { m.colorArray = name }

// ColorArray returns the currently selected color array name.
func (m *Mapper) ColorArray() string { return m.colorArray }

// SetScalarMode chooses between point and cell field data for coloring.
func (m *Mapper) SetScalarMode(mode ScalarMode) { m.scalarMode = mode }

// ScalarModeValue returns the current scalar mode.
func (m *Mapper) ScalarModeValue() ScalarMode { return m.scalarMode }

// Dataset returns the upstream output, or nil if disconnected or the
// upstream has not produced data yet.
func (m *Mapper) Dataset() *dataset.Dataset {
	if m.input == nil {
		return nil
	}
	return m.input.Output()
}

// Bounds returns the bounds of the upstream dataset.
func (m *Mapper) Bounds() Bounds {
	ds := m.Dataset()
	if ds == nil {
		return EmptyBounds()
	}
	return Bounds(ds.Bounds())
}

// scalarArray resolves the selected color array on the current dataset.
func (m *Mapper) scalarArray() *dataset.DataArray {
	ds := m.Dataset()
	if ds == nil || m.colorArray == "" {
		return nil
	}
	assoc := dataset.PointAssociation
	if m.scalarMode == UseCellFieldData {
		assoc = dataset.CellAssociation
	}
	return ds.FindArray(m.colorArray, assoc)
}

// PointColors maps the selected point array through the lookup table,
// returning one RGB triple per point as flat float32s. Returns nil when
// scalar coloring is off, the array is missing, or coloring is cell-based.
func (m *Mapper) PointColors() []float32 {
	if !m.ScalarVisibility || m.scalarMode != UsePointFieldData {
		return nil
	}
	arr := m.scalarArray()
	ds := m.Dataset()
	if arr == nil || ds == nil {
		return nil
	}
	colors := make([]float32, 0, 3*ds.NumPoints())
	n := arr.NumTuples()
	for i := 0; i < ds.NumPoints(); i++ {
		v := 0.0
		if i < n {
			v = arr.Value(i)
		}
		rgb := m.lut.MapValue(v)
		colors = append(colors, float32(rgb[0]), float32(rgb[1]), float32(rgb[2]))
	}
	return colors
}

package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// LegacyReader parses legacy ascii VTK (.vtk) files containing an
// UNSTRUCTURED_GRID or POLYDATA dataset. BINARY legacy files are
// rejected with an error rather than misread.
type LegacyReader struct {
	fileReader
}

// NewLegacyReader returns a LegacyReader with no file associated.
func NewLegacyReader() *LegacyReader {
	return &LegacyReader{}
}

func (r *LegacyReader) Format() Format { return FormatVTK }

// Update parses the current file. On failure the previous output is kept.
func (r *LegacyReader) Update() error {
	data, err := r.read()
	if err != nil {
		return err
	}
	ds, err := parseLegacy(data)
	if err != nil {
		return fmt.Errorf("%s: %w", r.path, err)
	}
	r.output = ds
	return nil
}

// legacyScanner walks whitespace-separated tokens of a legacy file.
type legacyScanner struct {
	sc *bufio.Scanner
}

func newLegacyScanner(data []byte) *legacyScanner {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)
	return &legacyScanner{sc: sc}
}

func (s *legacyScanner) next() (string, bool) {
	if s.sc.Scan() {
		return s.sc.Text(), true
	}
	return "", false
}

func (s *legacyScanner) mustInt() (int, error) {
	tok, ok := s.next()
	if !ok {
		return 0, fmt.Errorf("unexpected end of file, wanted integer")
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("bad integer %q", tok)
	}
	return n, nil
}

func (s *legacyScanner) floats(n int) ([]float64, error) {
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		tok, ok := s.next()
		if !ok {
			return nil, fmt.Errorf("unexpected end of file, wanted %d more values", n-i)
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("bad numeric value %q", tok)
		}
		values[i] = v
	}
	return values, nil
}

func parseLegacy(data []byte) (*Dataset, error) {
	// The first two lines are the version comment and the free-form
	// title; skip both before token scanning.
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 || !bytes.HasPrefix(bytes.TrimSpace(data), []byte("# vtk DataFile")) {
		return nil, fmt.Errorf("not a legacy VTK file")
	}
	rest := data[idx+1:]
	if idx = bytes.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[idx+1:]
	}

	s := newLegacyScanner(rest)
	encoding, ok := s.next()
	if !ok {
		return nil, fmt.Errorf("missing encoding line")
	}
	if !strings.EqualFold(encoding, "ASCII") {
		return nil, fmt.Errorf("unsupported legacy encoding %q (only ASCII)", encoding)
	}

	tok, ok := s.next()
	if !ok || !strings.EqualFold(tok, "DATASET") {
		return nil, fmt.Errorf("missing DATASET keyword")
	}
	kind, _ := s.next()

	ds := &Dataset{}
	switch strings.ToUpper(kind) {
	case "UNSTRUCTURED_GRID", "POLYDATA":
	default:
		return nil, fmt.Errorf("unsupported dataset kind %q", kind)
	}

	for {
		section, ok := s.next()
		if !ok {
			break
		}
		switch strings.ToUpper(section) {
		case "POINTS":
			n, err := s.mustInt()
			if err != nil {
				return nil, fmt.Errorf("POINTS: %w", err)
			}
			s.next() // value type, always parsed as float64
			pts, err := s.floats(3 * n)
			if err != nil {
				return nil, fmt.Errorf("POINTS: %w", err)
			}
			ds.Points = pts

		case "CELLS":
			if err := parseLegacyCells(s, ds); err != nil {
				return nil, err
			}

		case "POLYGONS", "LINES", "VERTICES":
			if err := parseLegacyPolys(s, ds, strings.ToUpper(section)); err != nil {
				return nil, err
			}

		case "CELL_TYPES":
			if err := parseLegacyCellTypes(s, ds); err != nil {
				return nil, err
			}

		case "POINT_DATA":
			n, err := s.mustInt()
			if err != nil {
				return nil, fmt.Errorf("POINT_DATA: %w", err)
			}
			if err := parseLegacyAttributes(s, ds, n, PointAssociation); err != nil {
				return nil, err
			}

		case "CELL_DATA":
			n, err := s.mustInt()
			if err != nil {
				return nil, fmt.Errorf("CELL_DATA: %w", err)
			}
			if err := parseLegacyAttributes(s, ds, n, CellAssociation); err != nil {
				return nil, err
			}
		}
	}

	if ds.Points == nil {
		return nil, fmt.Errorf("no POINTS section found")
	}
	// Validated last: CELLS connectivity only gets its types once the
	// CELL_TYPES section has been consumed.
	if err := ValidateCells(ds.Cells, ds.NumPoints()); err != nil {
		return nil, fmt.Errorf("cells: %w", err)
	}
	return ds, nil
}

func parseLegacyCells(s *legacyScanner, ds *Dataset) error {
	n, err := s.mustInt()
	if err != nil {
		return fmt.Errorf("CELLS: %w", err)
	}
	if _, err := s.mustInt(); err != nil { // total size, redundant
		return fmt.Errorf("CELLS: %w", err)
	}
	ds.Cells = make([]Cell, n)
	for i := 0; i < n; i++ {
		count, err := s.mustInt()
		if err != nil {
			return fmt.Errorf("CELLS: %w", err)
		}
		pts := make([]int32, count)
		for j := 0; j < count; j++ {
			p, err := s.mustInt()
			if err != nil {
				return fmt.Errorf("CELLS: %w", err)
			}
			pts[j] = int32(p)
		}
		ds.Cells[i].Points = pts
	}
	return nil
}

// parseLegacyPolys handles POLYDATA connectivity sections, assigning the
// cell type implied by the section keyword and point count.
func parseLegacyPolys(s *legacyScanner, ds *Dataset, section string) error {
	n, err := s.mustInt()
	if err != nil {
		return fmt.Errorf("%s: %w", section, err)
	}
	if _, err := s.mustInt(); err != nil {
		return fmt.Errorf("%s: %w", section, err)
	}
	for i := 0; i < n; i++ {
		count, err := s.mustInt()
		if err != nil {
			return fmt.Errorf("%s: %w", section, err)
		}
		pts := make([]int32, count)
		for j := 0; j < count; j++ {
			p, err := s.mustInt()
			if err != nil {
				return fmt.Errorf("%s: %w", section, err)
			}
			pts[j] = int32(p)
		}
		var t CellType
		switch {
		case section == "VERTICES":
			t = CellVertex
		case section == "LINES":
			t = CellLine
		case count == 3:
			t = CellTriangle
		case count == 4:
			t = CellQuad
		default:
			t = CellTriangle // fan-triangulated later by consumers
		}
		ds.Cells = append(ds.Cells, Cell{Type: t, Points: pts})
	}
	return nil
}

func parseLegacyCellTypes(s *legacyScanner, ds *Dataset) error {
	n, err := s.mustInt()
	if err != nil {
		return fmt.Errorf("CELL_TYPES: %w", err)
	}
	if n != len(ds.Cells) {
		return fmt.Errorf("CELL_TYPES: %d types for %d cells", n, len(ds.Cells))
	}
	for i := 0; i < n; i++ {
		t, err := s.mustInt()
		if err != nil {
			return fmt.Errorf("CELL_TYPES: %w", err)
		}
		ds.Cells[i].Type = CellType(t)
	}
	return nil
}

// parseLegacyAttributes consumes SCALARS, VECTORS, and FIELD blocks for
// one data section. Unknown attribute keywords end the walk for this
// section and are handled by the outer loop.
func parseLegacyAttributes(s *legacyScanner, ds *Dataset, tuples int, assoc Association) error {
	append_ := func(arr *DataArray) {
		if assoc == PointAssociation {
			ds.PointData = append(ds.PointData, arr)
		} else {
			ds.CellData = append(ds.CellData, arr)
		}
	}

	for {
		keyword, ok := s.next()
		if !ok {
			return nil
		}
		switch strings.ToUpper(keyword) {
		case "SCALARS":
			name, _ := s.next()
			s.next() // value type
			// Optional component count: present iff the next token is not
			// LOOKUP_TABLE. The legacy format allows 1..4.
			comps := 1
			tok, ok := s.next()
			if ok && !strings.EqualFold(tok, "LOOKUP_TABLE") {
				c, err := strconv.Atoi(tok)
				if err != nil {
					return fmt.Errorf("SCALARS %s: bad component count %q", name, tok)
				}
				comps = c
				tok, ok = s.next()
			}
			if ok && strings.EqualFold(tok, "LOOKUP_TABLE") {
				s.next() // table name
			}
			values, err := s.floats(tuples * comps)
			if err != nil {
				return fmt.Errorf("SCALARS %s: %w", name, err)
			}
			append_(&DataArray{Name: name, Components: comps, Values: values})

		case "VECTORS", "NORMALS":
			name, _ := s.next()
			s.next() // value type
			values, err := s.floats(tuples * 3)
			if err != nil {
				return fmt.Errorf("%s %s: %w", keyword, name, err)
			}
			append_(&DataArray{Name: name, Components: 3, Values: values})

		case "FIELD":
			s.next() // field data name
			count, err := s.mustInt()
			if err != nil {
				return fmt.Errorf("FIELD: %w", err)
			}
			for i := 0; i < count; i++ {
				name, _ := s.next()
				comps, err := s.mustInt()
				if err != nil {
					return fmt.Errorf("FIELD %s: %w", name, err)
				}
				n, err := s.mustInt()
				if err != nil {
					return fmt.Errorf("FIELD %s: %w", name, err)
				}
				s.next() // value type
				values, err := s.floats(n * comps)
				if err != nil {
					return fmt.Errorf("FIELD %s: %w", name, err)
				}
				append_(&DataArray{Name: name, Components: comps, Values: values})
			}

		case "CELL_DATA", "POINT_DATA":
			// Belongs to the outer section loop; re-handle it there by
			// parsing the count and recursing with the new association.
			n, err := s.mustInt()
			if err != nil {
				return fmt.Errorf("%s: %w", keyword, err)
			}
			next := PointAssociation
			if strings.EqualFold(keyword, "CELL_DATA") {
				next = CellAssociation
			}
			return parseLegacyAttributes(s, ds, n, next)

		default:
			return nil
		}
	}
}

package dataset

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// STLReader parses binary and ascii STL surface files. STL carries pure
// geometry: the resulting dataset has triangle cells and zero data
// arrays, which the pipeline treats as a valid, non-error state.
type STLReader struct {
	fileReader
}

// NewSTLReader returns an STLReader with no file associated.
func NewSTLReader() *STLReader {
	return &STLReader{}
}

func (r *STLReader) Format() Format { return FormatSTL }

// Update parses the current file. On failure the previous output is kept.
func (r *STLReader) Update() error {
	data, err := r.read()
	if err != nil {
		return err
	}
	ds, err := parseSTL(data)
	if err != nil {
		return fmt.Errorf("%s: %w", r.path, err)
	}
	r.output = ds
	return nil
}

func parseSTL(data []byte) (*Dataset, error) {
	if isASCIISTL(data) {
		return parseASCIISTL(data)
	}
	return parseBinarySTL(data)
}

// isASCIISTL detects the ascii variant. A "solid" prefix alone is not
// enough: some binary exporters put "solid" in the 80-byte header.
func isASCIISTL(data []byte) bool {
	head := bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(head, []byte("solid")) {
		return false
	}
	probe := head
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	return bytes.Contains(probe, []byte("facet"))
}

// triangleMerger deduplicates exactly coincident vertices so shared
// triangle corners reference a single point.
type triangleMerger struct {
	index  map[[3]float64]int32
	points []float64
}

func newTriangleMerger() *triangleMerger {
	return &triangleMerger{index: make(map[[3]float64]int32)}
}

func (m *triangleMerger) insert(x, y, z float64) int32 {
	key := [3]float64{x, y, z}
	if id, ok := m.index[key]; ok {
		return id
	}
	id := int32(len(m.points) / 3)
	m.points = append(m.points, x, y, z)
	m.index[key] = id
	return id
}

func parseASCIISTL(data []byte) (*Dataset, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	merger := newTriangleMerger()
	var cells []Cell
	var tri []int32

	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("malformed vertex line %q", sc.Text())
			}
			var coords [3]float64
			for i := 0; i < 3; i++ {
				v, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("bad vertex coordinate %q", fields[i+1])
				}
				coords[i] = v
			}
			tri = append(tri, merger.insert(coords[0], coords[1], coords[2]))
		case "endfacet":
			if len(tri) != 3 {
				return nil, fmt.Errorf("facet with %d vertices", len(tri))
			}
			cells = append(cells, Cell{Type: CellTriangle, Points: tri})
			tri = nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("ascii STL contains no facets")
	}
	return &Dataset{Points: merger.points, Cells: cells}, nil
}

func parseBinarySTL(data []byte) (*Dataset, error) {
	const headerSize = 84
	const recordSize = 50
	if len(data) < headerSize {
		return nil, fmt.Errorf("binary STL truncated: %d bytes", len(data))
	}
	count := binary.LittleEndian.Uint32(data[80:84])
	if int(count) > (len(data)-headerSize)/recordSize {
		return nil, fmt.Errorf("binary STL claims %d triangles, file holds %d",
			count, (len(data)-headerSize)/recordSize)
	}
	if count == 0 {
		return nil, fmt.Errorf("binary STL contains no triangles")
	}

	merger := newTriangleMerger()
	cells := make([]Cell, 0, count)
	for i := 0; i < int(count); i++ {
		rec := data[headerSize+i*recordSize:]
		tri := make([]int32, 3)
		for v := 0; v < 3; v++ {
			base := 12 + v*12 // skip the normal
			x := float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[base:])))
			y := float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[base+4:])))
			z := float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[base+8:])))
			tri[v] = merger.insert(x, y, z)
		}
		cells = append(cells, Cell{Type: CellTriangle, Points: tri})
	}
	return &Dataset{Points: merger.points, Cells: cells}, nil
}

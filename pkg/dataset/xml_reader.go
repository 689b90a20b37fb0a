package dataset

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// XMLReader parses VTK XML unstructured grid (.vtu) files. Inline ascii
// and inline base64 ("binary" format) data arrays are supported; appended
// raw sections are not.
type XMLReader struct {
	fileReader
}

// NewXMLReader returns an XMLReader with no file associated.
func NewXMLReader() *XMLReader {
	return &XMLReader{}
}

func (r *XMLReader) Format() Format { return FormatVTU }

// Update parses the current file. On failure the previous output is kept.
func (r *XMLReader) Update() error {
	data, err := r.read()
	if err != nil {
		return err
	}
	ds, err := parseVTU(data)
	if err != nil {
		return fmt.Errorf("%s: %w", r.path, err)
	}
	r.output = ds
	return nil
}

// xmlDataArray mirrors a <DataArray> element.
type xmlDataArray struct {
	Type       string `xml:"type,attr"`
	Name       string `xml:"Name,attr"`
	Components string `xml:"NumberOfComponents,attr"`
	Format     string `xml:"format,attr"`
	Body       string `xml:",chardata"`
}

type xmlPiece struct {
	NumberOfPoints int `xml:"NumberOfPoints,attr"`
	NumberOfCells  int `xml:"NumberOfCells,attr"`
	PointData      struct {
		Arrays []xmlDataArray `xml:"DataArray"`
	} `xml:"PointData"`
	CellData struct {
		Arrays []xmlDataArray `xml:"DataArray"`
	} `xml:"CellData"`
	Points struct {
		Arrays []xmlDataArray `xml:"DataArray"`
	} `xml:"Points"`
	Cells struct {
		Arrays []xmlDataArray `xml:"DataArray"`
	} `xml:"Cells"`
}

type xmlVTKFile struct {
	XMLName xml.Name `xml:"VTKFile"`
	Type    string   `xml:"type,attr"`
	Grid    struct {
		Pieces []xmlPiece `xml:"Piece"`
	} `xml:"UnstructuredGrid"`
}

func parseVTU(data []byte) (*Dataset, error) {
	var file xmlVTKFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid VTU XML: %w", err)
	}
	if file.Type != "" && file.Type != "UnstructuredGrid" {
		return nil, fmt.Errorf("unexpected VTKFile type %q", file.Type)
	}
	if len(file.Grid.Pieces) == 0 {
		return nil, fmt.Errorf("no UnstructuredGrid piece found")
	}
	piece := file.Grid.Pieces[0]

	if len(piece.Points.Arrays) == 0 {
		return nil, fmt.Errorf("piece has no Points data array")
	}
	points, err := decodeDataArray(&piece.Points.Arrays[0])
	if err != nil {
		return nil, fmt.Errorf("points: %w", err)
	}
	if len(points) != 3*piece.NumberOfPoints {
		return nil, fmt.Errorf("points: expected %d coordinates, got %d",
			3*piece.NumberOfPoints, len(points))
	}

	cells, err := decodeCells(&piece)
	if err != nil {
		return nil, err
	}
	if err := ValidateCells(cells, len(points)/3); err != nil {
		return nil, fmt.Errorf("cells: %w", err)
	}

	ds := &Dataset{Points: points, Cells: cells}

	for i := range piece.PointData.Arrays {
		arr, err := decodeNamedArray(&piece.PointData.Arrays[i], piece.NumberOfPoints)
		if err != nil {
			return nil, fmt.Errorf("point data: %w", err)
		}
		ds.PointData = append(ds.PointData, arr)
	}
	for i := range piece.CellData.Arrays {
		arr, err := decodeNamedArray(&piece.CellData.Arrays[i], piece.NumberOfCells)
		if err != nil {
			return nil, fmt.Errorf("cell data: %w", err)
		}
		ds.CellData = append(ds.CellData, arr)
	}

	return ds, nil
}

func decodeCells(piece *xmlPiece) ([]Cell, error) {
	var connectivity, offsets, types []float64
	for i := range piece.Cells.Arrays {
		arr := &piece.Cells.Arrays[i]
		values, err := decodeDataArray(arr)
		if err != nil {
			return nil, fmt.Errorf("cells %s: %w", arr.Name, err)
		}
		switch arr.Name {
		case "connectivity":
			connectivity = values
		case "offsets":
			offsets = values
		case "types":
			types = values
		}
	}
	if connectivity == nil || offsets == nil || types == nil {
		return nil, fmt.Errorf("cells section missing connectivity, offsets, or types")
	}
	if len(offsets) != len(types) {
		return nil, fmt.Errorf("cells: %d offsets but %d types", len(offsets), len(types))
	}

	cells := make([]Cell, 0, len(types))
	start := 0
	for i := range types {
		end := int(offsets[i])
		if end < start || end > len(connectivity) {
			return nil, fmt.Errorf("cells: offset %d out of range", end)
		}
		pts := make([]int32, end-start)
		for j := start; j < end; j++ {
			pts[j-start] = int32(connectivity[j])
		}
		cells = append(cells, Cell{Type: CellType(types[i]), Points: pts})
		start = end
	}
	return cells, nil
}

func decodeNamedArray(arr *xmlDataArray, tuples int) (*DataArray, error) {
	values, err := decodeDataArray(arr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", arr.Name, err)
	}
	comps := componentCount(arr)
	if tuples > 0 && len(values) != tuples*comps {
		return nil, fmt.Errorf("%s: expected %d values, got %d",
			arr.Name, tuples*comps, len(values))
	}
	return &DataArray{Name: arr.Name, Components: comps, Values: values}, nil
}

func componentCount(arr *xmlDataArray) int {
	if arr.Components == "" {
		return 1
	}
	n, err := strconv.Atoi(arr.Components)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// decodeDataArray converts a DataArray body into float64 values,
// dispatching on the declared format.
func decodeDataArray(arr *xmlDataArray) ([]float64, error) {
	switch strings.ToLower(strings.TrimSpace(arr.Format)) {
	case "", "ascii":
		return decodeASCIIValues(arr.Body)
	case "binary":
		return decodeBase64Values(arr.Type, arr.Body)
	default:
		return nil, fmt.Errorf("unsupported data array format %q", arr.Format)
	}
}

func decodeASCIIValues(body string) ([]float64, error) {
	fields := strings.Fields(body)
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad numeric value %q", f)
		}
		values = append(values, v)
	}
	return values, nil
}

// decodeBase64Values decodes an inline "binary" array: base64 over a byte
// count header followed by little-endian values. Both 32 and 64 bit
// headers appear in the wild, so the header width is inferred from the
// payload length.
func decodeBase64Values(typeName, body string) ([]float64, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(body))
	if err != nil {
		return nil, fmt.Errorf("bad base64 payload: %w", err)
	}
	payload, err := stripBinaryHeader(raw)
	if err != nil {
		return nil, err
	}
	return decodeTypedValues(typeName, payload)
}

func stripBinaryHeader(raw []byte) ([]byte, error) {
	if len(raw) >= 8 {
		if n := binary.LittleEndian.Uint64(raw); n == uint64(len(raw)-8) {
			return raw[8:], nil
		}
	}
	if len(raw) >= 4 {
		if n := binary.LittleEndian.Uint32(raw); n == uint32(len(raw)-4) {
			return raw[4:], nil
		}
	}
	return nil, fmt.Errorf("binary array header does not match payload size")
}

func decodeTypedValues(typeName string, payload []byte) ([]float64, error) {
	width, ok := typeWidths[typeName]
	if !ok {
		return nil, fmt.Errorf("unsupported data array type %q", typeName)
	}
	if len(payload)%width != 0 {
		return nil, fmt.Errorf("payload size %d not a multiple of %s width", len(payload), typeName)
	}
	n := len(payload) / width
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		chunk := payload[i*width:]
		switch typeName {
		case "Float32":
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(chunk)))
		case "Float64":
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk))
		case "Int8":
			values[i] = float64(int8(chunk[0]))
		case "UInt8":
			values[i] = float64(chunk[0])
		case "Int16":
			values[i] = float64(int16(binary.LittleEndian.Uint16(chunk)))
		case "UInt16":
			values[i] = float64(binary.LittleEndian.Uint16(chunk))
		case "Int32":
			values[i] = float64(int32(binary.LittleEndian.Uint32(chunk)))
		case "UInt32":
			values[i] = float64(binary.LittleEndian.Uint32(chunk))
		case "Int64":
			values[i] = float64(int64(binary.LittleEndian.Uint64(chunk)))
		case "UInt64":
			values[i] = float64(binary.LittleEndian.Uint64(chunk))
		}
	}
	return values, nil
}

var typeWidths = map[string]int{
	"Float32": 4, "Float64": 8,
	"Int8": 1, "UInt8": 1,
	"Int16": 2, "UInt16": 2,
	"Int32": 4, "UInt32": 4,
	"Int64": 8, "UInt64": 8,
}

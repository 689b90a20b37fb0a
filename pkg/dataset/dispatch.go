package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat reports a file extension the viewer does not
// accept at a strict boundary such as uploads. Loads never return it;
// FormatForPath is deliberately permissive.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format identifies a supported mesh file format.
type Format int

const (
	FormatVTU Format = iota // XML unstructured grid (.vtu)
	FormatVTK               // legacy VTK (.vtk)
	FormatSTL               // STL surface (.stl)
)

func (f Format) String() string {
	switch f {
	case FormatVTU:
		return "vtu"
	case FormatVTK:
		return "vtk"
	case FormatSTL:
		return "stl"
	default:
		return "unknown"
	}
}

// FormatForPath selects a format purely by file extension. Unrecognized
// extensions fall back to the XML reader; a permissive default, not an
// error. No I/O happens here.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vtu":
		return FormatVTU
	case ".vtk":
		return FormatVTK
	case ".stl":
		return FormatSTL
	default:
		return FormatVTU
	}
}

// SupportedUpload reports whether the claimed filename has an extension
// the viewer accepts from an upload.
func SupportedUpload(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".vtu", ".vtk", ".stl":
		return true
	default:
		return false
	}
}

// Reader parses a mesh file into a Dataset. Mirroring the dataflow-source
// contract the pipeline expects, a reader is long-lived: the slot keeps it
// across reloads, points it at a new file with SetFileName, and re-triggers
// the parse with Update. A failed Update leaves the previous Output intact.
type Reader interface {
	// Format identifies the reader kind so the pipeline can detect when a
	// new file demands a different reader and reconnect.
	Format() Format

	// SetFileName records the file to parse. No I/O occurs until Update.
	SetFileName(path string)

	// Update parses the current file. On failure the previously parsed
	// output is preserved unchanged.
	Update() error

	// Output returns the most recently parsed dataset, or nil if no parse
	// has succeeded yet.
	Output() *Dataset
}

// NewReader returns a reader for the format implied by the path's
// extension.
func NewReader(path string) Reader {
	switch FormatForPath(path) {
	case FormatVTK:
		return NewLegacyReader()
	case FormatSTL:
		return NewSTLReader()
	default:
		return NewXMLReader()
	}
}

// fileReader carries the shared filename/output bookkeeping for the
// concrete readers.
type fileReader struct {
	path   string
	output *Dataset
}

func (r *fileReader) SetFileName(path string) { r.path = path }

func (r *fileReader) Output() *Dataset { return r.output }

func (r *fileReader) read() ([]byte, error) {
	if r.path == "" {
		return nil, fmt.Errorf("no file name set")
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: empty file", r.path)
	}
	return data, nil
}

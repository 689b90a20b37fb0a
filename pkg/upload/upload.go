// Package upload validates user-supplied dataset files and stages them
// into the viewer's data directory.
package upload

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/khorium/khorium/pkg/dataset"
)

// MaxSize caps one upload at 512 MiB; beyond that the in-memory readers
// would hurt more than help.
const MaxSize = 512 << 20

// Validate checks an upload's name and content before it touches the
// data directory.
func Validate(filename string, content []byte) error {
	if !dataset.SupportedUpload(filename) {
		return fmt.Errorf("%w: %q (want .vtu, .vtk, or .stl)", dataset.ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if len(content) == 0 {
		return fmt.Errorf("uploaded file %s is empty", filename)
	}
	if len(content) > MaxSize {
		return fmt.Errorf("uploaded file %s exceeds %d bytes", filename, MaxSize)
	}
	return nil
}

// Save validates the upload and writes it into dataDir under its base
// name, going through a temp file so a failed write never leaves a
// truncated dataset at the canonical path. Returns the final path.
func Save(dataDir, filename string, content []byte) (string, error) {
	if err := Validate(filename, content); err != nil {
		return "", err
	}

	dest := filepath.Join(dataDir, filepath.Base(filename))
	tmp, err := os.CreateTemp(dataDir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("commit upload: %w", err)
	}
	return dest, nil
}

package pipeline

import (
	"github.com/khorium/khorium/pkg/dataset"
	"github.com/khorium/khorium/pkg/render"
)

// SlotKind identifies one of the pipeline's fixed dataset slots. The
// registry is a small fixed-size table so visibility policy can be a
// total function over it rather than a chain of named-field checks.
type SlotKind int

const (
	// SlotPrimary is the original volumetric dataset, color-mapped.
	SlotPrimary SlotKind = iota
	// SlotContour is the iso-surface derived from the primary dataset.
	SlotContour
	// SlotGenerated is the companion mesh produced by a generator run.
	SlotGenerated
	// SlotDefault is the fallback companion mesh loaded from the sidecar
	// file at startup, shown only while no generated mesh exists.
	SlotDefault
	// SlotSTL is the surface-only upload slot.
	SlotSTL

	numSlots
)

func (k SlotKind) String() string {
	switch k {
	case SlotPrimary:
		return "primary"
	case SlotContour:
		return "contour"
	case SlotGenerated:
		return "generated"
	case SlotDefault:
		return "default"
	case SlotSTL:
		return "stl"
	default:
		return "unknown"
	}
}

// Slot is one reader→mapper→actor chain. A slot is constructed lazily on
// first use and persists for the scene's lifetime: loading a new file
// reconnects the reader rather than recreating the mapper or actor, so
// actor identity, visibility, and style settings survive reloads.
type Slot struct {
	Kind   SlotKind
	Reader dataset.Reader
	Filter *ContourFilter // contour slot only
	Mapper *render.Mapper
	Actor  *render.Actor
	Exists bool
}

// ensureReader returns the slot's reader, replacing it when the new
// path's extension demands a different reader kind. The returned flag
// reports whether the instance changed and downstream stages need
// reconnecting.
func (s *Slot) ensureReader(path string) (r dataset.Reader, replaced bool) {
	want := dataset.FormatForPath(path)
	if s.Reader != nil && s.Reader.Format() == want {
		return s.Reader, false
	}
	return dataset.NewReader(path), true
}

// Package render provides the scene-graph primitives the pipeline wires
// together: dataflow ports, mappers with lookup-table coloring, actors
// with style properties, a renderer, and a camera. The dataflow graph is
// explicit; reconnecting a stage is an edge edit, not an object rebuild.
package render

import "github.com/khorium/khorium/pkg/dataset"

// Port is a dataflow stage output. Readers and filters are ports; a
// mapper consumes exactly one port. Output may return nil before the
// upstream stage has produced anything.
type Port interface {
	Output() *dataset.Dataset
}

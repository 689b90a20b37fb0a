package pipeline

import (
	"fmt"
	"log"

	"github.com/khorium/khorium/pkg/dataset"
	"github.com/khorium/khorium/pkg/render"
)

// SolidColors is the palette the solid-coloring operation accepts.
var SolidColors = map[string][3]float64{
	"blue":  {0.0, 0.0, 1.0},
	"red":   {1.0, 0.0, 0.0},
	"green": {0.0, 1.0, 0.0},
	"white": {1.0, 1.0, 1.0},
}

// ParseRepresentation maps the wire-level representation names.
func ParseRepresentation(s string) (render.Representation, error) {
	switch s {
	case "points":
		return render.RepresentationPoints, nil
	case "wireframe":
		return render.RepresentationWireframe, nil
	case "surface":
		return render.RepresentationSurface, nil
	case "surface_with_edges":
		return render.RepresentationSurfaceWithEdges, nil
	default:
		return render.RepresentationSurface, fmt.Errorf("unknown representation %q", s)
	}
}

// ParsePreset maps the wire-level lookup table preset names.
func ParsePreset(s string) (render.Preset, error) {
	switch s {
	case "rainbow":
		return render.PresetRainbow, nil
	case "inverted_rainbow":
		return render.PresetInvertedRainbow, nil
	case "grayscale":
		return render.PresetGrayscale, nil
	case "inverted_grayscale":
		return render.PresetInvertedGrayscale, nil
	default:
		return render.PresetRainbow, fmt.Errorf("unknown color preset %q", s)
	}
}

// SetMeshRepresentation changes the primary actor's drawing mode.
func (p *Pipeline) SetMeshRepresentation(r render.Representation) {
	p.slots[SlotPrimary].Actor.Property.SetRepresentation(r)
	p.signalRender()
}

// SetContourRepresentation changes the contour actor's drawing mode.
func (p *Pipeline) SetContourRepresentation(r render.Representation) {
	p.slots[SlotContour].Actor.Property.SetRepresentation(r)
	p.signalRender()
}

// SetAllRepresentation applies a drawing mode to every companion mesh
// actor that exists, leaving primary and contour styling alone.
func (p *Pipeline) SetAllRepresentation(r render.Representation) {
	for _, kind := range []SlotKind{SlotGenerated, SlotDefault, SlotSTL} {
		if slot := p.slots[kind]; slot != nil {
			slot.Actor.Property.SetRepresentation(r)
		}
	}
	p.signalRender()
}

// ColorMeshByArray colors the primary dataset by the field descriptor at
// the given index. Out-of-range indexes are logged no-ops so a stale UI
// selection cannot corrupt the mapper.
func (p *Pipeline) ColorMeshByArray(index int) {
	info, ok := p.arrayAt(index)
	if !ok {
		return
	}
	p.colorBy(p.slots[SlotPrimary].Mapper, info)
	p.signalRender()
}

// ColorContourByArray colors the contour surface by the field descriptor
// at the given index. The iso field itself stays unchanged; only the
// coloring retargets.
func (p *Pipeline) ColorContourByArray(index int) {
	info, ok := p.arrayAt(index)
	if !ok {
		return
	}
	p.colorBy(p.slots[SlotContour].Mapper, info)
	p.signalRender()
}

func (p *Pipeline) arrayAt(index int) (dataset.ArrayInfo, bool) {
	if index < 0 || index >= len(p.arrays) {
		log.Printf("pipeline: array index %d out of range (%d arrays)", index, len(p.arrays))
		return dataset.ArrayInfo{}, false
	}
	return p.arrays[index], true
}

// ApplyMeshPreset switches the primary lookup table's color ramp.
func (p *Pipeline) ApplyMeshPreset(preset render.Preset) {
	p.slots[SlotPrimary].Mapper.GetLookupTable().ApplyPreset(preset)
	p.signalRender()
}

// ApplyContourPreset switches the contour lookup table's color ramp.
func (p *Pipeline) ApplyContourPreset(preset render.Preset) {
	p.slots[SlotContour].Mapper.GetLookupTable().ApplyPreset(preset)
	p.signalRender()
}

// SetMeshOpacity sets the primary actor opacity, clamped to [0, 1].
func (p *Pipeline) SetMeshOpacity(opacity float64) {
	p.slots[SlotPrimary].Actor.Property.Opacity = clamp(opacity, 0, 1)
	p.signalRender()
}

// SetContourOpacity sets the contour actor opacity, clamped to [0, 1].
func (p *Pipeline) SetContourOpacity(opacity float64) {
	p.slots[SlotContour].Actor.Property.Opacity = clamp(opacity, 0, 1)
	p.signalRender()
}

// SetSolidColor turns scalar coloring off on the primary actor and on
// any existing companion mesh actors, painting them all with a named
// palette color.
func (p *Pipeline) SetSolidColor(name string) error {
	color, ok := SolidColors[name]
	if !ok {
		return fmt.Errorf("unknown solid color %q", name)
	}
	primary := p.slots[SlotPrimary]
	primary.Mapper.ScalarVisibility = false
	primary.Actor.Property.Color = color
	for _, kind := range []SlotKind{SlotGenerated, SlotDefault} {
		if slot := p.slots[kind]; slot != nil {
			slot.Actor.Property.Color = color
		}
	}
	p.signalRender()
	return nil
}

// SetContourValue moves the iso value, clamped to the default field's
// range, and recomputes the contour surface.
func (p *Pipeline) SetContourValue(v float64) {
	p.contourValue = clamp(v, p.defaultMin, p.defaultMax)
	filter := p.slots[SlotContour].Filter
	filter.SetValue(p.contourValue)
	filter.Update()
	p.signalRender()
}

// SetCubeAxesVisibility toggles the axis overlay.
func (p *Pipeline) SetCubeAxesVisibility(visible bool) {
	p.cubeAxes.SetVisibility(visible)
	p.signalRender()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

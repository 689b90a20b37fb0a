// Package pipeline implements the viewer's rendering pipeline: the slot
// registry over the competing dataset representations (primary volume,
// derived contour, generated companion mesh, default fallback, STL
// surface), the rules for loading files into slots, the visibility
// precedence between them, and camera refitting.
package pipeline

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/khorium/khorium/pkg/dataset"
	"github.com/khorium/khorium/pkg/render"
)

// DefaultMeshFile is the well-known sidecar filename for the fallback
// companion mesh, loaded once at startup if present.
const DefaultMeshFile = "cad_000_mesh.vtk"

// ErrNoArrays reports that an original-dataset load parsed fine but
// yielded no usable scalar or vector arrays. The geometry is still
// displayed without coloring; callers treat the load as failed for UI
// reporting.
var ErrNoArrays = errors.New("dataset has no data arrays")

// Hint tells Load which loading procedure the caller intends.
type Hint int

const (
	// HintOriginal loads the primary volumetric dataset.
	HintOriginal Hint = iota
	// HintGenerated loads a generated companion mesh.
	HintGenerated
	// HintSurface loads a surface-only (STL) upload.
	HintSurface
)

// ParseHint maps the wire-level hint strings of the load boundary.
func ParseHint(s string) (Hint, error) {
	switch s {
	case "original", "":
		return HintOriginal, nil
	case "generated", "generated_companion":
		return HintGenerated, nil
	case "surface", "surface_only":
		return HintSurface, nil
	default:
		return HintOriginal, fmt.Errorf("unknown load hint %q", s)
	}
}

// Pipeline owns the renderer, the slot registry, and the dataset array
// state. All methods must be called from a single goroutine; callers
// that handle concurrent interactions serialize access themselves.
type Pipeline struct {
	renderer *render.Renderer
	cubeAxes *render.CubeAxes
	slots    [numSlots]*Slot

	arrays       []dataset.ArrayInfo
	defaultMin   float64
	defaultMax   float64
	contourValue float64

	stlActive bool
	dataDir   string

	// Fire-and-forget view refresh signals, provided by the UI layer.
	onRender      func()
	onCameraReset func()
}

// New constructs the pipeline: renderer, camera, cube axes, and the
// primary and contour slots (empty until the first load). The default
// fallback mesh is loaded from the data directory if the sidecar file
// exists; its absence only disables the fallback feature.
func New(dataDir string) *Pipeline {
	p := &Pipeline{
		renderer:   render.NewRenderer(),
		cubeAxes:   render.NewCubeAxes(),
		dataDir:    dataDir,
		defaultMin: 0,
		defaultMax: 1,
	}
	p.contourValue = 0.5 * (p.defaultMin + p.defaultMax)

	// Primary slot: reader is replaced per-extension on load, but the
	// mapper and actor are built once and live for the scene's lifetime.
	primaryMapper := render.NewMapper()
	primaryActor := render.NewActor("mesh", primaryMapper)
	primaryActor.Property.Color = [3]float64{0.7, 0.8, 1.0}
	p.renderer.AddActor(primaryActor)
	p.slots[SlotPrimary] = &Slot{
		Kind:   SlotPrimary,
		Reader: dataset.NewXMLReader(),
		Mapper: primaryMapper,
		Actor:  primaryActor,
	}
	primaryMapper.SetInputConnection(p.slots[SlotPrimary].Reader)

	// Contour slot: derived from the primary reader's output.
	filter := NewContourFilter()
	filter.SetInputConnection(p.slots[SlotPrimary].Reader)
	contourMapper := render.NewMapper()
	contourMapper.SetInputConnection(filter)
	contourActor := render.NewActor("contour", contourMapper)
	contourActor.Property.Color = [3]float64{0.7, 0.8, 1.0}
	p.renderer.AddActor(contourActor)
	p.slots[SlotContour] = &Slot{
		Kind:   SlotContour,
		Filter: filter,
		Mapper: contourMapper,
		Actor:  contourActor,
	}

	p.loadDefaultMesh()
	return p
}

// SetViewCallbacks installs the redraw / reset-camera signal pair the UI
// layer provides. Both are fire-and-forget and may be nil.
func (p *Pipeline) SetViewCallbacks(redraw, resetCamera func()) {
	p.onRender = redraw
	p.onCameraReset = resetCamera
}

func (p *Pipeline) signalRender() {
	if p.onRender != nil {
		p.onRender()
	}
}

func (p *Pipeline) signalCameraReset() {
	if p.onCameraReset != nil {
		p.onCameraReset()
	}
}

// Load routes a file to one of the three mutually exclusive loading
// procedures by extension and caller intent. STL files always take the
// surface path regardless of hint.
func (p *Pipeline) Load(path string, hint Hint) error {
	if dataset.FormatForPath(path) == dataset.FormatSTL {
		return p.loadSTL(path)
	}
	if hint == HintGenerated {
		return p.loadGenerated(path)
	}
	return p.loadOriginal(path)
}

// loadOriginal loads a new primary dataset. On parse failure every piece
// of pipeline state — descriptors, ranges, contour value, connections —
// is left exactly as before the call.
func (p *Pipeline) loadOriginal(path string) error {
	slot := p.slots[SlotPrimary]
	contourSlot := p.slots[SlotContour]

	reader, replaced := slot.ensureReader(path)
	reader.SetFileName(path)
	if err := reader.Update(); err != nil {
		log.Printf("pipeline: reading %s: %v", path, err)
		return fmt.Errorf("load original %s: %w", path, err)
	}

	// Parse succeeded; commit the reader swap if the extension demanded
	// a different kind, reconnecting both downstream stages.
	if replaced {
		slot.Reader = reader
		slot.Mapper.SetInputConnection(reader)
		contourSlot.Filter.SetInputConnection(reader)
	}
	slot.Exists = true

	// Loading an original dataset always surfaces the primary pipeline
	// and pushes the STL slot aside. The slot also stops counting as
	// loaded mesh content, so HasMesh and the visibility toggle agree
	// that there is nothing to show until the next STL load.
	slot.Actor.SetVisibility(true)
	contourSlot.Actor.SetVisibility(true)
	if stl := p.slots[SlotSTL]; stl != nil {
		stl.Actor.SetVisibility(false)
		stl.Exists = false
	}
	p.stlActive = false

	ds := reader.Output()
	p.arrays = ds.ScanArrays()
	if len(p.arrays) == 0 {
		// Geometry without a colorable field: keep it on screen but
		// degrade like an STL surface and report the load as failed.
		log.Printf("pipeline: no readable arrays in %s", path)
		p.defaultMin, p.defaultMax = 0.0, 1.0
		p.contourValue = 0.5
		slot.Mapper.ScalarVisibility = false
		contourSlot.Actor.SetVisibility(false)
		// Drop the previous dataset's field selection so a later
		// SetContourValue cannot contour the new geometry by it.
		contourSlot.Filter.SetInputArray("", dataset.PointAssociation)
		contourSlot.Filter.Update()
		p.refitTo(slot.Actor)
		return fmt.Errorf("load original %s: %w", path, ErrNoArrays)
	}

	def := p.arrays[0]
	p.defaultMin, p.defaultMax = def.Range[0], def.Range[1]
	p.colorBy(slot.Mapper, def)

	// Derived contour: retarget the filter at the default field with the
	// midpoint of its range as the iso value.
	p.contourValue = 0.5 * (p.defaultMin + p.defaultMax)
	contourSlot.Filter.SetInputArray(def.Name, def.Association)
	contourSlot.Filter.SetValue(p.contourValue)
	contourSlot.Filter.Update()
	p.colorBy(contourSlot.Mapper, def)

	p.refitTo(slot.Actor)
	log.Printf("pipeline: loaded %s with %d arrays", path, len(p.arrays))
	return nil
}

// colorBy wires a mapper to color by the given field descriptor.
func (p *Pipeline) colorBy(m *render.Mapper, info dataset.ArrayInfo) {
	m.SelectColorArray(info.Name)
	m.GetLookupTable().SetRange(info.Range[0], info.Range[1])
	if info.Association == dataset.PointAssociation {
		m.SetScalarMode(render.UsePointFieldData)
	} else {
		m.SetScalarMode(render.UseCellFieldData)
	}
	m.ScalarVisibility = true
	m.UseLookupTableScalarRange = true
}

// loadGenerated loads a generator-produced companion mesh into its slot,
// building the slot on first use. A parse failure leaves the existence
// flag and any previously loaded companion mesh untouched.
func (p *Pipeline) loadGenerated(path string) error {
	slot := p.slots[SlotGenerated]
	if slot == nil {
		mapper := render.NewMapper()
		actor := render.NewActor("generated-mesh", mapper)
		actor.Property.SetRepresentation(render.RepresentationWireframe)
		actor.Property.Color = [3]float64{1.0, 0.0, 0.0}
		actor.Property.LineWidth = 3
		actor.Property.EdgeVisibility = true
		actor.SetVisibility(false)
		p.renderer.AddActor(actor)
		slot = &Slot{Kind: SlotGenerated, Mapper: mapper, Actor: actor}
		p.slots[SlotGenerated] = slot
	}

	reader, replaced := slot.ensureReader(path)
	reader.SetFileName(path)
	if err := reader.Update(); err != nil {
		log.Printf("pipeline: loading generated mesh %s: %v", path, err)
		return fmt.Errorf("load generated %s: %w", path, err)
	}
	if replaced || slot.Reader == nil {
		slot.Reader = reader
		slot.Mapper.SetInputConnection(reader)
	}
	slot.Exists = true

	// A generated mesh supersedes the default fallback.
	if def := p.slots[SlotDefault]; def != nil && def.Exists {
		def.Actor.SetVisibility(false)
	}
	log.Printf("pipeline: generated mesh loaded from %s", path)
	p.signalRender()
	return nil
}

// loadDefaultMesh populates the fallback slot from the sidecar file at
// startup. A missing file is not an error, just a disabled feature.
func (p *Pipeline) loadDefaultMesh() {
	path := filepath.Join(p.dataDir, DefaultMeshFile)
	if _, err := os.Stat(path); err != nil {
		log.Printf("pipeline: no default mesh at %s", path)
		return
	}

	reader := dataset.NewReader(path)
	reader.SetFileName(path)
	if err := reader.Update(); err != nil {
		log.Printf("pipeline: loading default mesh: %v", err)
		return
	}

	mapper := render.NewMapper()
	mapper.SetInputConnection(reader)
	actor := render.NewActor("default-mesh", mapper)
	actor.Property.SetRepresentation(render.RepresentationWireframe)
	actor.Property.Color = [3]float64{0.0, 1.0, 0.0}
	actor.Property.LineWidth = 2
	actor.SetVisibility(false)
	p.renderer.AddActor(actor)

	p.slots[SlotDefault] = &Slot{
		Kind:   SlotDefault,
		Reader: reader,
		Mapper: mapper,
		Actor:  actor,
		Exists: true,
	}
	log.Printf("pipeline: default mesh loaded from %s", path)
}

// loadSTL loads a surface-only upload. STL carries no scalar fields, so
// on success the primary mesh and contour actors are suppressed along
// with both companion mesh slots; the STL surface becomes the active
// primary content.
func (p *Pipeline) loadSTL(path string) error {
	slot := p.slots[SlotSTL]
	if slot == nil {
		mapper := render.NewMapper()
		mapper.ScalarVisibility = false
		actor := render.NewActor("stl-mesh", mapper)
		actor.Property.Color = [3]float64{0.8, 0.8, 0.9}
		p.renderer.AddActor(actor)
		slot = &Slot{Kind: SlotSTL, Mapper: mapper, Actor: actor}
		p.slots[SlotSTL] = slot
	}

	if slot.Reader == nil {
		slot.Reader = dataset.NewSTLReader()
		slot.Mapper.SetInputConnection(slot.Reader)
	}
	slot.Reader.SetFileName(path)
	if err := slot.Reader.Update(); err != nil {
		log.Printf("pipeline: loading STL %s: %v", path, err)
		return fmt.Errorf("load stl %s: %w", path, err)
	}

	slot.Exists = true
	p.stlActive = true
	slot.Actor.SetVisibility(true)

	if gen := p.slots[SlotGenerated]; gen != nil && gen.Exists {
		gen.Actor.SetVisibility(false)
	}
	if def := p.slots[SlotDefault]; def != nil && def.Exists {
		def.Actor.SetVisibility(false)
	}
	p.slots[SlotPrimary].Actor.SetVisibility(false)
	p.slots[SlotContour].Actor.SetVisibility(false)

	p.refitTo(slot.Actor)
	log.Printf("pipeline: STL loaded from %s", path)
	return nil
}

// refitTo recomputes the axis overlay and camera from one actor's
// bounds, then emits the view refresh signals.
func (p *Pipeline) refitTo(a *render.Actor) {
	bounds := a.Bounds()
	if bounds.IsValid() {
		p.cubeAxes.SetBounds(bounds)
		p.renderer.ResetCameraClippingRange()
		p.renderer.ResetCamera(bounds)
	}
	p.signalRender()
	p.signalCameraReset()
}

// SetMeshVisibility applies the companion-mesh visibility arbiter for a
// "show mesh" request. With nothing to toggle it is a logged no-op.
func (p *Pipeline) SetMeshVisibility(show bool) {
	changes := DecideMeshVisibility(p.VisibilityState(), show)
	if len(changes) == 0 {
		log.Printf("pipeline: no companion mesh to toggle (show=%v)", show)
		return
	}
	for _, ch := range changes {
		if slot := p.slots[ch.Slot]; slot != nil {
			slot.Actor.SetVisibility(ch.Visible)
		}
	}
	p.signalRender()
}

// VisibilityState snapshots the arbiter's input from the registry.
func (p *Pipeline) VisibilityState() VisibilityState {
	s := VisibilityState{STLActive: p.stlActive}
	if slot := p.slots[SlotGenerated]; slot != nil {
		s.HasGenerated = slot.Exists
	}
	if slot := p.slots[SlotDefault]; slot != nil {
		s.HasDefault = slot.Exists
	}
	return s
}

// HasMesh reports whether any companion or surface mesh has ever been
// loaded.
func (p *Pipeline) HasMesh() bool {
	for _, kind := range []SlotKind{SlotGenerated, SlotDefault, SlotSTL} {
		if slot := p.slots[kind]; slot != nil && slot.Exists {
			return true
		}
	}
	return false
}

// CenterOnVisible reframes the camera and axis overlay on the union of
// the currently visible dataset actors. Hidden actors are excluded so
// they cannot distort framing. The contour actor is skipped: it is
// derived from the primary dataset and never exceeds its bounds.
func (p *Pipeline) CenterOnVisible() {
	combined := render.EmptyBounds()
	found := false
	for _, kind := range []SlotKind{SlotPrimary, SlotSTL, SlotGenerated, SlotDefault} {
		slot := p.slots[kind]
		if slot == nil || !slot.Actor.Visibility() {
			continue
		}
		b := slot.Actor.Bounds()
		if !b.IsValid() {
			continue
		}
		combined = combined.Expand(b)
		found = true
	}
	if !found {
		log.Printf("pipeline: no visible actors to center on")
		return
	}
	p.cubeAxes.SetBounds(combined)
	p.renderer.ResetCameraClippingRange()
	p.renderer.ResetCamera(combined)
	p.signalRender()
	p.signalCameraReset()
}

// Slot returns the registry entry for a kind, or nil if the slot has
// not been constructed yet.
func (p *Pipeline) Slot(kind SlotKind) *Slot {
	if kind < 0 || kind >= numSlots {
		return nil
	}
	return p.slots[kind]
}

// Actor returns the actor for a slot kind, or nil.
func (p *Pipeline) Actor(kind SlotKind) *render.Actor {
	if slot := p.Slot(kind); slot != nil {
		return slot.Actor
	}
	return nil
}

// DatasetArrays returns the descriptors scanned from the current primary
// dataset. Empty for geometry-only content.
func (p *Pipeline) DatasetArrays() []dataset.ArrayInfo { return p.arrays }

// DefaultRange returns the range of the default (first) field.
func (p *Pipeline) DefaultRange() (min, max float64) {
	return p.defaultMin, p.defaultMax
}

// ContourValue returns the current iso value.
func (p *Pipeline) ContourValue() float64 { return p.contourValue }

// Renderer exposes the scene renderer.
func (p *Pipeline) Renderer() *render.Renderer { return p.renderer }

// CubeAxes exposes the axis overlay actor.
func (p *Pipeline) CubeAxes() *render.CubeAxes { return p.cubeAxes }

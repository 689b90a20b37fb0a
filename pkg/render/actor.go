package render

// Representation enumerates actor drawing modes.
type Representation int

const (
	RepresentationPoints Representation = iota
	RepresentationWireframe
	RepresentationSurface
	RepresentationSurfaceWithEdges
)

func (r Representation) String() string {
	switch r {
	case RepresentationPoints:
		return "points"
	case RepresentationWireframe:
		return "wireframe"
	case RepresentationSurface:
		return "surface"
	case RepresentationSurfaceWithEdges:
		return "surface-with-edges"
	default:
		return "unknown"
	}
}

// Property carries an actor's style settings. All setters are pure
// mutations; applying the same value twice is a no-op.
type Property struct {
	Representation Representation
	Color          [3]float64
	Opacity        float64
	PointSize      float64
	LineWidth      float64
	EdgeVisibility bool
}

// SetRepresentation applies a drawing mode along with the point-size and
// edge-visibility conventions the viewer uses for each mode.
func (p *Property) SetRepresentation(r Representation) {
	p.Representation = r
	switch r {
	case RepresentationPoints:
		p.PointSize = 5
		p.EdgeVisibility = false
	case RepresentationSurfaceWithEdges:
		p.PointSize = 1
		p.EdgeVisibility = true
	default:
		p.PointSize = 1
		p.EdgeVisibility = false
	}
}

// Actor pairs a mapper with style properties and a visibility flag. Once
// added to a renderer an actor is never removed, only hidden, so slot
// identity and style survive reloads.
type Actor struct {
	Name     string
	Mapper   *Mapper
	Property Property
	visible  bool
}

// NewActor returns a surface-representation actor wrapping the mapper,
// initially visible.
func NewActor(name string, m *Mapper) *Actor {
	a := &Actor{
		Name:   name,
		Mapper: m,
		Property: Property{
			Color:     [3]float64{1, 1, 1},
			Opacity:   1.0,
			PointSize: 1,
			LineWidth: 1,
		},
		visible: true,
	}
	a.Property.SetRepresentation(RepresentationSurface)
	return a
}

// SetVisibility shows or hides the actor.
func (a *Actor) SetVisibility(v bool) { a.visible = v }

// Visibility reports whether the actor is shown.
func (a *Actor) Visibility() bool { return a.visible }

// Bounds returns the bounds of the actor's current geometry.
func (a *Actor) Bounds() Bounds {
	if a.Mapper == nil {
		return EmptyBounds()
	}
	return a.Mapper.Bounds()
}

package render

// Renderer owns the actor list, the background color, and the active
// camera. Actors are append-only: loading new data into a slot hides or
// reconnects existing actors, it never removes them.
type Renderer struct {
	actors     []*Actor
	Background [3]float64
	camera     *Camera
}

// NewRenderer returns a renderer with a white background, matching the
// viewer's default theme.
func NewRenderer() *Renderer {
	return &Renderer{
		Background: [3]float64{1, 1, 1},
		camera:     NewCamera(),
	}
}

// AddActor appends an actor to the scene. Adding the same actor twice is
// a no-op so lazy slot construction can be idempotent.
func (r *Renderer) AddActor(a *Actor) {
	for _, existing := range r.actors {
		if existing == a {
			return
		}
	}
	r.actors = append(r.actors, a)
}

// Actors returns all actors in the scene, visible or not.
func (r *Renderer) Actors() []*Actor { return r.actors }

// VisibleActors returns the actors whose visibility is currently true.
func (r *Renderer) VisibleActors() []*Actor {
	var visible []*Actor
	for _, a := range r.actors {
		if a.Visibility() {
			visible = append(visible, a)
		}
	}
	return visible
}

// ActiveCamera returns the renderer's camera.
func (r *Renderer) ActiveCamera() *Camera { return r.camera }

// ResetCamera frames the given bounds with the active camera.
func (r *Renderer) ResetCamera(b Bounds) {
	r.camera.ResetCamera(b)
}

// ResetCameraClippingRange recomputes clip planes over the union of all
// visible actors' bounds.
func (r *Renderer) ResetCameraClippingRange() {
	combined := EmptyBounds()
	for _, a := range r.VisibleActors() {
		combined = combined.Expand(a.Bounds())
	}
	if combined.IsValid() {
		r.camera.ResetClippingRange(combined)
	}
}

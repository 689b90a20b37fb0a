package render

import "testing"

func TestSetRepresentationConventions(t *testing.T) {
	var p Property

	p.SetRepresentation(RepresentationPoints)
	if p.PointSize != 5 || p.EdgeVisibility {
		t.Errorf("points mode: size=%g edges=%v, want size 5 and edges off", p.PointSize, p.EdgeVisibility)
	}

	p.SetRepresentation(RepresentationSurfaceWithEdges)
	if p.PointSize != 1 || !p.EdgeVisibility {
		t.Errorf("surface-with-edges mode: size=%g edges=%v, want size 1 and edges on", p.PointSize, p.EdgeVisibility)
	}

	p.SetRepresentation(RepresentationSurface)
	if p.PointSize != 1 || p.EdgeVisibility {
		t.Errorf("surface mode: size=%g edges=%v, want size 1 and edges off", p.PointSize, p.EdgeVisibility)
	}

	p.SetRepresentation(RepresentationWireframe)
	if p.EdgeVisibility {
		t.Error("wireframe mode should not force edge visibility")
	}
}

func TestNewActorDefaults(t *testing.T) {
	a := NewActor("mesh", NewMapper())
	if !a.Visibility() {
		t.Error("new actor should be visible")
	}
	if a.Property.Representation != RepresentationSurface {
		t.Errorf("representation = %v, want surface", a.Property.Representation)
	}
	if a.Property.Opacity != 1.0 {
		t.Errorf("opacity = %g, want 1", a.Property.Opacity)
	}
}

func TestRendererAddActorIdempotent(t *testing.T) {
	r := NewRenderer()
	a := NewActor("mesh", NewMapper())
	r.AddActor(a)
	r.AddActor(a)
	if len(r.Actors()) != 1 {
		t.Errorf("actor count = %d, want 1 after duplicate add", len(r.Actors()))
	}
}

func TestRendererVisibleActors(t *testing.T) {
	r := NewRenderer()
	shown := NewActor("shown", NewMapper())
	hidden := NewActor("hidden", NewMapper())
	hidden.SetVisibility(false)
	r.AddActor(shown)
	r.AddActor(hidden)

	visible := r.VisibleActors()
	if len(visible) != 1 || visible[0] != shown {
		t.Errorf("VisibleActors = %v, want only the shown actor", visible)
	}
}

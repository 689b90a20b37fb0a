package render

import "math"

// Camera is a perspective camera with VTK-style reset semantics: the
// framing operations reposition it along its current view direction so
// user orientation survives a refit.
type Camera struct {
	Position   [3]float64
	FocalPoint [3]float64
	ViewUp     [3]float64
	ViewAngle  float64 // degrees
	ClipNear   float64
	ClipFar    float64
}

// NewCamera returns a camera on the +Z axis looking at the origin.
func NewCamera() *Camera {
	return &Camera{
		Position:   [3]float64{0, 0, 1},
		FocalPoint: [3]float64{0, 0, 0},
		ViewUp:     [3]float64{0, 1, 0},
		ViewAngle:  30,
		ClipNear:   0.1,
		ClipFar:    1000,
	}
}

// viewDirection returns the unit vector from position to focal point.
func (c *Camera) viewDirection() [3]float64 {
	d := [3]float64{
		c.FocalPoint[0] - c.Position[0],
		c.FocalPoint[1] - c.Position[1],
		c.FocalPoint[2] - c.Position[2],
	}
	l := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
	if l == 0 {
		return [3]float64{0, 0, -1}
	}
	return [3]float64{d[0] / l, d[1] / l, d[2] / l}
}

// ResetCamera repositions the camera so the given bounds fill the view,
// keeping the current view direction. Invalid bounds are ignored.
func (c *Camera) ResetCamera(b Bounds) {
	if !b.IsValid() {
		return
	}
	cx, cy, cz := b.Center()
	radius := 0.5 * b.Diagonal()
	if radius == 0 {
		radius = 1
	}
	dir := c.viewDirection()
	distance := radius / math.Sin(0.5*c.ViewAngle*math.Pi/180)

	c.FocalPoint = [3]float64{cx, cy, cz}
	c.Position = [3]float64{
		cx - dir[0]*distance,
		cy - dir[1]*distance,
		cz - dir[2]*distance,
	}
	c.ResetClippingRange(b)
}

// ResetClippingRange recomputes near/far clip planes to tightly enclose
// the bounds from the camera's current position.
func (c *Camera) ResetClippingRange(b Bounds) {
	if !b.IsValid() {
		return
	}
	cx, cy, cz := b.Center()
	dx := c.Position[0] - cx
	dy := c.Position[1] - cy
	dz := c.Position[2] - cz
	center := math.Sqrt(dx*dx + dy*dy + dz*dz)
	radius := 0.5 * b.Diagonal()

	near := center - radius
	far := center + radius
	if near < 0.001*far {
		near = 0.001 * far
	}
	if near <= 0 {
		near = 0.001
	}
	if far <= near {
		far = near + 1
	}
	c.ClipNear, c.ClipFar = near, far
}

package render

// CubeAxes is the axis-overlay annotation drawn around the dominant
// geometry. Its bounds are recomputed after every successful load so the
// labeled box always matches what the camera frames.
type CubeAxes struct {
	bounds      Bounds
	visible     bool
	LabelFormat string
	LineColor   [3]float64
	GridColor   [3]float64
}

// NewCubeAxes returns a visible axes overlay styled for a white
// background.
func NewCubeAxes() *CubeAxes {
	return &CubeAxes{
		bounds:      EmptyBounds(),
		visible:     true,
		LabelFormat: "%6.1f",
		LineColor:   [3]float64{0.3, 0.3, 0.3},
		GridColor:   [3]float64{0.5, 0.5, 0.5},
	}
}

// SetBounds updates the labeled box extents.
func (c *CubeAxes) SetBounds(b Bounds) { c.bounds = b }

// Bounds returns the current labeled box extents.
func (c *CubeAxes) Bounds() Bounds { return c.bounds }

// SetVisibility shows or hides the overlay.
func (c *CubeAxes) SetVisibility(v bool) { c.visible = v }

// Visibility reports whether the overlay is shown.
func (c *CubeAxes) Visibility() bool { return c.visible }

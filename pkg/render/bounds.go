package render

import "math"

// Bounds is an axis-aligned bounding box stored as the VTK-style 6-tuple
// (xmin, xmax, ymin, ymax, zmin, zmax).
type Bounds [6]float64

// EmptyBounds returns an inverted bounds value that any real point expands.
func EmptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{inf, -inf, inf, -inf, inf, -inf}
}

// IsValid reports whether the bounds enclose at least one point.
func (b Bounds) IsValid() bool {
	return b[0] <= b[1] && b[2] <= b[3] && b[4] <= b[5]
}

// Center returns the geometric center of the bounds.
func (b Bounds) Center() (x, y, z float64) {
	return 0.5 * (b[0] + b[1]), 0.5 * (b[2] + b[3]), 0.5 * (b[4] + b[5])
}

// Diagonal returns the length of the bounds diagonal.
func (b Bounds) Diagonal() float64 {
	dx := b[1] - b[0]
	dy := b[3] - b[2]
	dz := b[5] - b[4]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Expand grows the bounds to include another bounds value. Mins take the
// component-wise minimum, maxes the component-wise maximum.
func (b Bounds) Expand(other Bounds) Bounds {
	return Bounds{
		math.Min(b[0], other[0]), math.Max(b[1], other[1]),
		math.Min(b[2], other[2]), math.Max(b[3], other[3]),
		math.Min(b[4], other[4]), math.Max(b[5], other[5]),
	}
}

// CombineBounds unions several bounds. Callers are expected to pass only
// bounds of actors whose visibility is currently true, otherwise hidden
// geometry distorts camera framing.
func CombineBounds(all ...Bounds) Bounds {
	combined := EmptyBounds()
	for _, b := range all {
		if !b.IsValid() {
			continue
		}
		combined = combined.Expand(b)
	}
	return combined
}

// BoundsFromPoints computes bounds over flat xyz point coordinates.
func BoundsFromPoints(points []float64) Bounds {
	b := EmptyBounds()
	for i := 0; i+2 < len(points); i += 3 {
		x, y, z := points[i], points[i+1], points[i+2]
		if x < b[0] {
			b[0] = x
		}
		if x > b[1] {
			b[1] = x
		}
		if y < b[2] {
			b[2] = y
		}
		if y > b[3] {
			b[3] = y
		}
		if z < b[4] {
			b[4] = z
		}
		if z > b[5] {
			b[5] = z
		}
	}
	return b
}

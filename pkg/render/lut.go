package render

import "math"

// Preset names the built-in lookup table configurations.
type Preset int

const (
	PresetRainbow Preset = iota
	PresetInvertedRainbow
	PresetGrayscale
	PresetInvertedGrayscale
)

// LookupTable maps scalar values to RGB colors through an HSV ramp, the
// same model the classic rainbow/grayscale color maps use: hue,
// saturation, and value each interpolate linearly across the scalar
// range.
type LookupTable struct {
	HueRange        [2]float64
	SaturationRange [2]float64
	ValueRange      [2]float64

	scalarMin float64
	scalarMax float64

	table [256][3]float64
	built bool
}

// NewLookupTable returns a rainbow table over [0, 1].
func NewLookupTable() *LookupTable {
	lut := &LookupTable{scalarMin: 0, scalarMax: 1}
	lut.ApplyPreset(PresetRainbow)
	return lut
}

// ApplyPreset configures the HSV ramps for a named preset and rebuilds.
func (l *LookupTable) ApplyPreset(p Preset) {
	switch p {
	case PresetRainbow:
		l.HueRange = [2]float64{0.666, 0.0}
		l.SaturationRange = [2]float64{1.0, 1.0}
		l.ValueRange = [2]float64{1.0, 1.0}
	case PresetInvertedRainbow:
		l.HueRange = [2]float64{0.0, 0.666}
		l.SaturationRange = [2]float64{1.0, 1.0}
		l.ValueRange = [2]float64{1.0, 1.0}
	case PresetGrayscale:
		l.HueRange = [2]float64{0.0, 0.0}
		l.SaturationRange = [2]float64{0.0, 0.0}
		l.ValueRange = [2]float64{0.0, 1.0}
	case PresetInvertedGrayscale:
		l.HueRange = [2]float64{0.0, 0.666}
		l.SaturationRange = [2]float64{0.0, 0.0}
		l.ValueRange = [2]float64{1.0, 0.0}
	}
	l.Build()
}

// SetRange sets the scalar range the table spans.
func (l *LookupTable) SetRange(min, max float64) {
	l.scalarMin, l.scalarMax = min, max
}

// Range returns the scalar range the table spans.
func (l *LookupTable) Range() (min, max float64) {
	return l.scalarMin, l.scalarMax
}

// Build precomputes the 256-entry color table from the HSV ramps.
func (l *LookupTable) Build() {
	for i := range l.table {
		t := float64(i) / float64(len(l.table)-1)
		h := l.HueRange[0] + t*(l.HueRange[1]-l.HueRange[0])
		s := l.SaturationRange[0] + t*(l.SaturationRange[1]-l.SaturationRange[0])
		v := l.ValueRange[0] + t*(l.ValueRange[1]-l.ValueRange[0])
		l.table[i] = hsvToRGB(h, s, v)
	}
	l.built = true
}

// MapValue returns the RGB color for a scalar value, clamped to the
// table's scalar range.
func (l *LookupTable) MapValue(v float64) [3]float64 {
	if !l.built {
		l.Build()
	}
	span := l.scalarMax - l.scalarMin
	t := 0.0
	if span > 0 {
		t = (v - l.scalarMin) / span
	}
	t = math.Max(0, math.Min(1, t))
	idx := int(t * float64(len(l.table)-1))
	return l.table[idx]
}

func hsvToRGB(h, s, v float64) [3]float64 {
	h = math.Mod(h, 1.0)
	if h < 0 {
		h += 1.0
	}
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)
	switch i % 6 {
	case 0:
		return [3]float64{v, t, p}
	case 1:
		return [3]float64{q, v, p}
	case 2:
		return [3]float64{p, v, t}
	case 3:
		return [3]float64{p, q, v}
	case 4:
		return [3]float64{t, p, v}
	default:
		return [3]float64{v, p, q}
	}
}

package render

import (
	"image/color"
	"math"
)

// A Scale maps field values to colors over a fixed range, quantized into
// discrete levels so neighbouring triangles with similar values read as
// bands rather than a smooth wash.
type Scale struct {
	Min    float64
	Max    float64
	Levels int
	stops  []stop
}

type stop struct {
	t float64 // position in [0, 1]
	c color.RGBA
}

// DivergingScale builds a blue-white-red scale centred on zero. vmin must
// be negative and vmax positive; the centre maps to the midpoint of the
// color ramp regardless of how asymmetric the range is.
func DivergingScale(vmin, vmax float64, levels int) Scale {
	return Scale{
		Min:    vmin,
		Max:    vmax,
		Levels: levels,
		stops: []stop{
			{0.00, color.RGBA{R: 8, G: 48, B: 107, A: 255}},
			{0.25, color.RGBA{R: 66, G: 146, B: 198, A: 255}},
			{0.50, color.RGBA{R: 247, G: 251, B: 255, A: 255}},
			{0.50, color.RGBA{R: 255, G: 255, B: 204, A: 255}},
			{0.75, color.RGBA{R: 254, G: 178, B: 76, A: 255}},
			{1.00, color.RGBA{R: 189, G: 0, B: 38, A: 255}},
		},
	}
}

// SequentialScale builds a yellow-to-red scale for magnitudes such as RMSE.
func SequentialScale(vmin, vmax float64, levels int) Scale {
	return Scale{
		Min:    vmin,
		Max:    vmax,
		Levels: levels,
		stops: []stop{
			{0.00, color.RGBA{R: 255, G: 255, B: 229, A: 255}},
			{0.35, color.RGBA{R: 254, G: 217, B: 118, A: 255}},
			{0.70, color.RGBA{R: 253, G: 141, B: 60, A: 255}},
			{1.00, color.RGBA{R: 177, G: 0, B: 38, A: 255}},
		},
	}
}

// Color maps v onto the scale. Values outside [Min, Max] clamp to the end
// colors. NaN maps to transparent so masked triangles vanish.
func (s Scale) Color(v float64) color.Color {
	if math.IsNaN(v) {
		return color.RGBA{}
	}

	t := s.normalize(v)
	if s.Levels > 1 {
		// Snap to the centre of the containing level.
		bin := math.Floor(t * float64(s.Levels))
		if bin >= float64(s.Levels) {
			bin = float64(s.Levels) - 1
		}
		t = (bin + 0.5) / float64(s.Levels)
	}

	return s.at(t)
}

// normalize maps v to [0, 1] with zero pinned to 0.5 when the range spans
// the origin.
func (s Scale) normalize(v float64) float64 {
	if v <= s.Min {
		return 0
	}
	if v >= s.Max {
		return 1
	}
	if s.Min < 0 && s.Max > 0 {
		if v < 0 {
			return 0.5 * (1 - v/s.Min)
		}
		return 0.5 + 0.5*v/s.Max
	}
	return (v - s.Min) / (s.Max - s.Min)
}

func (s Scale) at(t float64) color.Color {
	for i := 1; i < len(s.stops); i++ {
		lo, hi := s.stops[i-1], s.stops[i]
		if t > hi.t {
			continue
		}
		if hi.t == lo.t {
			if t < hi.t {
				return lo.c
			}
			return hi.c
		}
		f := (t - lo.t) / (hi.t - lo.t)
		return lerp(lo.c, hi.c, f)
	}
	return s.stops[len(s.stops)-1].c
}

func lerp(a, b color.RGBA, f float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + f*(float64(y)-float64(x)))
	}
	return color.RGBA{
		R: mix(a.R, b.R),
		G: mix(a.G, b.G),
		B: mix(a.B, b.B),
		A: 255,
	}
}

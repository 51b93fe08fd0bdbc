package adcirc

import "math"

// OutlierThreshold is the magnitude beyond which a difference value is
// treated as junk rather than signal. Bias-correction differences beyond
// 1.5 m come from wetting/drying artifacts, not the correction.
const OutlierThreshold = 1.5

// BadNodes flags nodes whose value is NaN or beyond threshold in
// magnitude.
func BadNodes(f Field, threshold float64) []bool {
	bad := make([]bool, len(f))
	for i, v := range f {
		bad[i] = math.IsNaN(v) || math.Abs(v) > threshold
	}
	return bad
}

// MaskTriangles flags every triangle touching a bad node. Masked triangles
// are excluded from contour fills.
func (m *Mesh) MaskTriangles(bad []bool) []bool {
	mask := make([]bool, len(m.Elements))
	for i, e := range m.Elements {
		mask[i] = bad[e[0]] || bad[e[1]] || bad[e[2]]
	}
	return mask
}

// CleanField zeroes bad nodes so they cannot leak into interpolation at
// the edge of masked triangles.
func CleanField(f Field, bad []bool) Field {
	out := make(Field, len(f))
	for i, v := range f {
		if bad[i] {
			out[i] = 0
		} else {
			out[i] = v
		}
	}
	return out
}

package adcirc

import (
	"github.com/pkg/errors"
)

// A Box is a longitude/latitude bounding box.
type Box struct {
	LonMin, LonMax float64
	LatMin, LatMax float64
}

// Contains reports whether the point is inside the box.
func (b Box) Contains(lon, lat float64) bool {
	return lon >= b.LonMin && lon <= b.LonMax && lat >= b.LatMin && lat <= b.LatMax
}

// Pad returns the box grown by buffer degrees on every side.
func (b Box) Pad(buffer float64) Box {
	return Box{
		LonMin: b.LonMin - buffer, LonMax: b.LonMax + buffer,
		LatMin: b.LatMin - buffer, LatMax: b.LatMax + buffer,
	}
}

// DefaultBuffer pads regional extractions so triangles straddling the box
// edge survive.
const DefaultBuffer = 0.1

// A Subset is a regional cut of a mesh with node indices remapped to a
// dense 0..n-1 range. NodeIndex maps each subset node back to its index in
// the full mesh, for slicing full-mesh fields.
type Subset struct {
	Mesh
	NodeIndex []int32
}

// Extract cuts the mesh down to the nodes inside box (padded by buffer)
// and the triangles whose three vertices all survive, remapping the
// connectivity onto the retained nodes. A region covering no triangles is
// an error.
func (m *Mesh) Extract(box Box, buffer float64) (*Subset, error) {
	padded := box.Pad(buffer)

	indexMap := make(map[int32]int32)
	var nodeIndex []int32
	for i := range m.X {
		if padded.Contains(m.X[i], m.Y[i]) {
			indexMap[int32(i)] = int32(len(nodeIndex))
			nodeIndex = append(nodeIndex, int32(i))
		}
	}

	var elements [][3]int32
	for _, e := range m.Elements {
		n0, ok0 := indexMap[e[0]]
		n1, ok1 := indexMap[e[1]]
		n2, ok2 := indexMap[e[2]]
		if !ok0 || !ok1 || !ok2 {
			continue
		}
		elements = append(elements, [3]int32{n0, n1, n2})
	}

	if len(elements) == 0 {
		return nil, errors.Errorf("no triangles inside [%g, %g] x [%g, %g]",
			box.LonMin, box.LonMax, box.LatMin, box.LatMax)
	}

	x := make([]float64, len(nodeIndex))
	y := make([]float64, len(nodeIndex))
	for i, orig := range nodeIndex {
		x[i] = m.X[orig]
		y[i] = m.Y[orig]
	}

	return &Subset{
		Mesh:      Mesh{X: x, Y: y, Elements: elements},
		NodeIndex: nodeIndex,
	}, nil
}

// Slice cuts a full-mesh field down to the subset's nodes.
func (s *Subset) Slice(f Field) Field {
	out := make(Field, len(s.NodeIndex))
	for i, orig := range s.NodeIndex {
		out[i] = f[orig]
	}
	return out
}

// Diff returns b - a per node.
func Diff(a, b Field) (Field, error) {
	if len(a) != len(b) {
		return nil, errors.Errorf("field lengths disagree: %d vs %d", len(a), len(b))
	}
	out := make(Field, len(a))
	for i := range a {
		out[i] = b[i] - a[i]
	}
	return out, nil
}

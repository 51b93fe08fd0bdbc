package adcirc

import (
	"math"
	"testing"
)

// testMesh is a 3x3 node grid with 8 triangles:
//
//	6 7 8
//	3 4 5
//	0 1 2
func testMesh() *Mesh {
	var x, y []float64
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			x = append(x, float64(i))
			y = append(y, float64(j))
		}
	}
	elements := [][3]int32{
		{0, 1, 4}, {0, 4, 3},
		{1, 2, 5}, {1, 5, 4},
		{3, 4, 7}, {3, 7, 6},
		{4, 5, 8}, {4, 8, 7},
	}
	return &Mesh{X: x, Y: y, Elements: elements}
}

func TestExtract(t *testing.T) {
	m := testMesh()

	// Left 2x3 column of nodes.
	box := Box{LonMin: 0, LonMax: 1, LatMin: 0, LatMax: 2}
	s, err := m.Extract(box, 0)
	if err != nil {
		t.Fatal(err)
	}

	if s.NumNodes() != 6 {
		t.Fatalf("got %d nodes, want 6", s.NumNodes())
	}
	// Only triangles fully inside survive.
	if len(s.Elements) != 4 {
		t.Fatalf("got %d triangles, want 4", len(s.Elements))
	}

	// Connectivity must be dense over the retained nodes.
	for _, e := range s.Elements {
		for _, v := range e {
			if v < 0 || int(v) >= s.NumNodes() {
				t.Fatalf("triangle index %d outside dense range 0..%d", v, s.NumNodes()-1)
			}
		}
	}

	// NodeIndex maps back to original coordinates.
	for i, orig := range s.NodeIndex {
		if s.X[i] != m.X[orig] || s.Y[i] != m.Y[orig] {
			t.Errorf("node %d maps to %d but coordinates disagree", i, orig)
		}
	}
}

func TestExtractBuffer(t *testing.T) {
	m := testMesh()

	// A box covering only the lower-left cell, padded enough to pull in
	// the full mesh.
	box := Box{LonMin: 0, LonMax: 0.5, LatMin: 0, LatMax: 0.5}
	if _, err := m.Extract(box, 0.2); err == nil {
		t.Fatal("narrow box with thin buffer should hold no complete triangle")
	}

	s, err := m.Extract(box, 1.6)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Elements) != len(m.Elements) {
		t.Errorf("wide buffer kept %d of %d triangles", len(s.Elements), len(m.Elements))
	}
}

func TestExtractEmpty(t *testing.T) {
	m := testMesh()
	if _, err := m.Extract(Box{LonMin: 50, LonMax: 51, LatMin: 50, LatMax: 51}, DefaultBuffer); err == nil {
		t.Fatal("empty region not reported")
	}
}

func TestSlice(t *testing.T) {
	m := testMesh()
	field := make(Field, m.NumNodes())
	for i := range field {
		field[i] = float64(i) * 10
	}

	s, err := m.Extract(Box{LonMin: 1, LonMax: 2, LatMin: 1, LatMax: 2}, 0)
	if err != nil {
		t.Fatal(err)
	}

	reg := s.Slice(field)
	for i, orig := range s.NodeIndex {
		if reg[i] != float64(orig)*10 {
			t.Errorf("regional field[%d] = %g, want %g", i, reg[i], float64(orig)*10)
		}
	}
}

func TestDiff(t *testing.T) {
	a := Field{1, 2, 3}
	b := Field{1.5, 1.5, 3}
	d, err := Diff(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if d[0] != 0.5 || d[1] != -0.5 || d[2] != 0 {
		t.Errorf("diff = %v", d)
	}

	if _, err := Diff(Field{1}, Field{1, 2}); err == nil {
		t.Error("length mismatch not reported")
	}
}

func TestMasking(t *testing.T) {
	m := testMesh()
	field := make(Field, m.NumNodes())
	field[4] = 2.0 // centre node is an outlier
	field[8] = math.NaN()

	bad := BadNodes(field, OutlierThreshold)
	if !bad[4] || !bad[8] {
		t.Fatalf("bad nodes = %v", bad)
	}
	if bad[0] {
		t.Fatal("clean node flagged")
	}

	mask := m.MaskTriangles(bad)
	masked := 0
	for i, badTri := range mask {
		touches := false
		for _, v := range m.Elements[i] {
			if v == 4 || v == 8 {
				touches = true
			}
		}
		if badTri != touches {
			t.Errorf("triangle %d mask = %v, touches bad = %v", i, badTri, touches)
		}
		if badTri {
			masked++
		}
	}
	if masked == 0 || masked == len(m.Elements) {
		t.Errorf("mask count %d not selective", masked)
	}

	clean := CleanField(field, bad)
	if clean[4] != 0 || clean[8] != 0 {
		t.Errorf("bad values not zeroed: %v", clean)
	}
	if clean[0] != field[0] {
		t.Error("clean value changed")
	}
}

func TestParseTimeUnits(t *testing.T) {
	cases := []string{
		"seconds since 2025-11-22 00:00:00",
		"seconds since 2025-11-22 00:00:00 UTC",
		"seconds since 2025-11-22",
	}
	for _, units := range cases {
		base, err := parseTimeUnits(units)
		if err != nil {
			t.Errorf("parseTimeUnits(%q): %v", units, err)
			continue
		}
		if base.Year() != 2025 || base.Month() != 11 || base.Day() != 22 {
			t.Errorf("parseTimeUnits(%q) = %v", units, base)
		}
	}

	if _, err := parseTimeUnits("days since 2025-11-22"); err == nil {
		t.Error("unsupported units accepted")
	}
}

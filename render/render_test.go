package render

import (
	"bytes"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/mansurjisan/My-Scripts/adcirc"
)

func testSubset() *adcirc.Subset {
	// 2x2 unit square split into two triangles.
	return &adcirc.Subset{
		Mesh: adcirc.Mesh{
			X:        []float64{-74.2, -74.0, -74.2, -74.0},
			Y:        []float64{40.5, 40.5, 40.7, 40.7},
			Elements: [][3]int32{{0, 1, 2}, {1, 3, 2}},
		},
		NodeIndex: []int32{0, 1, 2, 3},
	}
}

func TestLookup(t *testing.T) {
	r, ok := Lookup("conus")
	if !ok || r.Box.LonMin != -125 {
		t.Errorf("conus = %+v, ok=%v", r, ok)
	}

	r, ok = Lookup("tampa_bay")
	if !ok || r.Name != "Tampa Bay" {
		t.Errorf("tampa_bay = %+v, ok=%v", r, ok)
	}

	if _, ok := Lookup("atlantis"); ok {
		t.Error("unknown region resolved")
	}
}

func TestKeysSorted(t *testing.T) {
	keys := Keys()
	if len(keys) != len(presets)+len(ValidationRegions) {
		t.Fatalf("got %d keys", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Errorf("keys out of order: %q before %q", keys[i-1], keys[i])
		}
	}
}

func TestDivergingScale(t *testing.T) {
	s := DivergingScale(-0.5, 0.5, 61)

	r0, g0, b0, _ := s.Color(-0.5).RGBA()
	if !(b0 > r0 && b0 > g0) {
		t.Errorf("min color not blue: %v %v %v", r0, g0, b0)
	}

	r1, g1, b1, _ := s.Color(0.5).RGBA()
	if !(r1 > b1 && r1 > g1) {
		t.Errorf("max color not red: %v %v %v", r1, g1, b1)
	}

	// Near zero the color should be close to white on the negative side.
	rc, gc, bc, _ := s.Color(-1e-9).RGBA()
	if rc < 0xe000 || gc < 0xe000 || bc < 0xe000 {
		t.Errorf("centre color not near white: %v %v %v", rc, gc, bc)
	}

	// Out-of-range values clamp rather than wrap.
	if s.Color(-10) != s.Color(-0.5) {
		t.Error("below-range value did not clamp")
	}

	if c, ok := s.Color(math.NaN()).(color.RGBA); !ok || c.A != 0 {
		t.Errorf("NaN color = %v, want transparent", s.Color(math.NaN()))
	}
}

func TestScaleQuantizes(t *testing.T) {
	s := SequentialScale(0, 0.5, 5)
	// Values in the same level share one color.
	if s.Color(0.11) != s.Color(0.19) {
		t.Error("same level, different colors")
	}
	if s.Color(0.11) == s.Color(0.31) {
		t.Error("different levels, same color")
	}
}

func TestFieldMap(t *testing.T) {
	sub := testSubset()
	field := adcirc.Field{0.1, -0.1, 0.2, math.NaN()}

	p, err := FieldMap(&sub.Mesh, field, nil, MapOptions{
		Title: "test",
		Scale: DivergingScale(-0.5, 0.5, 61),
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	wt, err := p.WriterTo(300, 200, "png")
	if err != nil {
		t.Fatal(err)
	}
	n, err := wt.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Error("empty PNG")
	}
}

func TestFieldMapLengthMismatch(t *testing.T) {
	sub := testSubset()
	_, err := FieldMap(&sub.Mesh, adcirc.Field{1, 2}, nil, MapOptions{})
	if err == nil {
		t.Fatal("length mismatch accepted")
	}
}

func TestDifferenceMapMasksOutliers(t *testing.T) {
	sub := testSubset()
	a := adcirc.Field{0, 0, 0, 0}
	b := adcirc.Field{0.2, 0.3, 0.1, 5.0} // node 3 beyond the threshold

	p, err := DifferenceMap(sub, a, b, MapOptions{
		Title: "diff",
		Scale: DivergingScale(-0.5, 0.5, 61),
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	wt, err := p.WriterTo(300, 200, "png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("empty PNG")
	}
}

func TestTimeseries(t *testing.T) {
	base := time.Date(2025, 11, 22, 0, 0, 0, 0, time.UTC)
	model := Series{
		Name:   "STOFS-2D",
		Times:  []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)},
		Values: []float64{0.1, math.NaN(), 0.3},
	}
	obs := Series{
		Name:   "The Battery, NY",
		Times:  []time.Time{base, base.Add(time.Hour)},
		Values: []float64{0.12, 0.22},
	}

	p, err := Timeseries("Water level", "Elevation (m, MSL)", model, obs)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	wt, err := p.WriterTo(400, 200, "png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("empty PNG")
	}
}

func TestTimeseriesNoSeries(t *testing.T) {
	if _, err := Timeseries("t", "y"); err == nil {
		t.Fatal("empty plot accepted")
	}
}

func TestRMSEMap(t *testing.T) {
	region, _ := Lookup("east_coast")
	scores := []StationScore{
		{Name: "The Battery, NY", Lon: -74.0142, Lat: 40.7006, RMSE: 0.12},
		{Name: "Boston, MA", Lon: -71.0503, Lat: 42.3539, RMSE: math.NaN()},
	}

	p, err := RMSEMap(scores, MapOptions{
		Title:  "RMSE",
		Region: region,
		Scale:  SequentialScale(0, 0.5, 10),
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	wt, err := p.WriterTo(300, 200, "png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wt.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("empty PNG")
	}
}

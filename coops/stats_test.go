package coops

import (
	"math"
	"testing"
	"time"
)

func TestCompare(t *testing.T) {
	obs := []float64{1, 2, 3, 4}
	model := []float64{1.5, 2.5, 3.5, 4.5}

	s := Compare(obs, model)
	if s.N != 4 {
		t.Fatalf("n = %d", s.N)
	}
	if math.Abs(s.Bias-0.5) > 1e-12 {
		t.Errorf("bias = %g, want 0.5", s.Bias)
	}
	if math.Abs(s.RMSE-0.5) > 1e-12 {
		t.Errorf("rmse = %g, want 0.5", s.RMSE)
	}
	// Perfectly shifted series correlate perfectly.
	if math.Abs(s.Corr-1) > 1e-12 {
		t.Errorf("corr = %g, want 1", s.Corr)
	}
}

func TestCompareSkipsNaN(t *testing.T) {
	nan := math.NaN()
	obs := []float64{1, nan, 3, 4}
	model := []float64{1, 2, nan, 4}

	s := Compare(obs, model)
	if s.N != 2 {
		t.Fatalf("n = %d, want 2", s.N)
	}
	if s.RMSE != 0 || s.Bias != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestCompareTooFew(t *testing.T) {
	s := Compare([]float64{1}, []float64{2})
	if s.N != 1 {
		t.Fatalf("n = %d", s.N)
	}
	if !math.IsNaN(s.RMSE) || !math.IsNaN(s.Bias) || !math.IsNaN(s.Corr) {
		t.Errorf("stats = %+v, want NaN", s)
	}
}

func TestCompareConstantSeries(t *testing.T) {
	s := Compare([]float64{2, 2, 2}, []float64{3, 3, 3})
	if !math.IsNaN(s.Corr) {
		t.Errorf("corr of constant series = %g, want NaN", s.Corr)
	}
	if s.Bias != 1 {
		t.Errorf("bias = %g", s.Bias)
	}
}

func TestAlign(t *testing.T) {
	base := time.Date(2025, 11, 22, 0, 0, 0, 0, time.UTC)

	// 6-minute observations around the first two model hours, nothing
	// near the third.
	obs := []Sample{
		{Time: base.Add(2 * time.Minute), Value: 0.5},
		{Time: base.Add(58 * time.Minute), Value: 0.7},
		{Time: base.Add(66 * time.Minute), Value: 0.9},
	}
	times := []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)}
	values := []float64{0.4, 0.8, 1.2}

	o, m := Align(obs, times, values, DefaultAlignTolerance)

	if o[0] != 0.5 {
		t.Errorf("o[0] = %g, want 0.5", o[0])
	}
	// 58 min is closer to hour 1 than 66 min.
	if o[1] != 0.7 {
		t.Errorf("o[1] = %g, want 0.7", o[1])
	}
	if !math.IsNaN(o[2]) {
		t.Errorf("o[2] = %g, want NaN", o[2])
	}
	if m[0] != 0.4 || m[2] != 1.2 {
		t.Errorf("model series disturbed: %v", m)
	}
}

func TestHaversine(t *testing.T) {
	// The Battery to Boston is roughly 300 km.
	d := Haversine(-74.0142, 40.7006, -71.0503, 42.3539)
	if d < 250 || d > 350 {
		t.Errorf("distance = %g km", d)
	}
	if z := Haversine(-74, 40, -74, 40); z != 0 {
		t.Errorf("zero distance = %g", z)
	}
}

func TestNearest(t *testing.T) {
	m := NewMatcher()
	g, dist, ok := m.Nearest(-74.1, 40.6)
	if !ok {
		t.Fatal("no match")
	}
	if g.ID != "8518750" {
		t.Errorf("nearest = %v", g)
	}
	if dist > 30 {
		t.Errorf("distance = %g km", dist)
	}
}

package render

import (
	"image/color"
	"math"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// A Series is one line on a timeseries plot.
type Series struct {
	Name   string
	Times  []time.Time
	Values []float64
}

var seriesPalette = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
}

// Timeseries plots one or more water level series against time. NaN samples
// break nothing; they are simply dropped from the line.
func Timeseries(title, ylabel string, series ...Series) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, errors.New("no series to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (UTC)"
	p.Y.Label.Text = ylabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "01/02\n15:04"}
	p.Legend.Top = true

	for i, s := range series {
		if len(s.Times) != len(s.Values) {
			return nil, errors.Errorf("series %q: %d times for %d values",
				s.Name, len(s.Times), len(s.Values))
		}

		var xys plotter.XYs
		for j, t := range s.Times {
			if math.IsNaN(s.Values[j]) {
				continue
			}
			xys = append(xys, plotter.XY{X: float64(t.Unix()), Y: s.Values[j]})
		}
		if len(xys) == 0 {
			continue
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Wrapf(err, "series %q", s.Name)
		}
		line.Color = seriesPalette[i%len(seriesPalette)]
		line.Width = vg.Points(1.5)

		p.Add(line)
		p.Legend.Add(s.Name, line)
	}
	p.Add(plotter.NewGrid())

	return p, nil
}

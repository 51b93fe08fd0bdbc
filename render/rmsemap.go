package render

import (
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// A StationScore is one gauge on an RMSE map.
type StationScore struct {
	Name string
	Lon  float64
	Lat  float64
	RMSE float64
}

// RMSEMap plots per-station RMSE as colored markers over the region
// window. Stations with NaN RMSE are drawn as hollow grey circles so gaps
// in the record stay visible.
func RMSEMap(scores []StationScore, opts MapOptions) (*plot.Plot, error) {
	if len(scores) == 0 {
		return nil, errors.New("no stations to plot")
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	xys := make(plotter.XYs, len(scores))
	for i, s := range scores {
		xys[i] = plotter.XY{X: s.Lon, Y: s.Lat}
	}

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		style := draw.GlyphStyle{Radius: vg.Points(5), Shape: draw.CircleGlyph{}}
		if math.IsNaN(scores[i].RMSE) {
			style.Color = color.RGBA{R: 128, G: 128, B: 128, A: 255}
			style.Shape = draw.RingGlyph{}
			return style
		}
		style.Color = opts.Scale.Color(scores[i].RMSE)
		return style
	}
	p.Add(sc)

	box := opts.Region.Box
	if box.LonMax > box.LonMin {
		p.X.Min, p.X.Max = box.LonMin, box.LonMax
		p.Y.Min, p.Y.Max = box.LatMin, box.LatMax
	}
	return p, nil
}

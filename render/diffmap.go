package render

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/mansurjisan/My-Scripts/adcirc"
)

// MapOptions configures a field map.
type MapOptions struct {
	Title  string
	Region Region
	Scale  Scale
}

// fieldPlotter flat-shades every unmasked mesh triangle with the scale
// color of its mean vertex value.
type fieldPlotter struct {
	mesh   *adcirc.Mesh
	values adcirc.Field
	mask   []bool
	scale  Scale
}

// Plot implements plot.Plotter.
func (fp *fieldPlotter) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	pts := make([]vg.Point, 3)
	for e, tri := range fp.mesh.Elements {
		if fp.mask != nil && fp.mask[e] {
			continue
		}

		var sum float64
		for i, n := range tri {
			sum += fp.values[n]
			pts[i] = vg.Point{X: trX(fp.mesh.X[n]), Y: trY(fp.mesh.Y[n])}
		}
		mean := sum / 3
		if math.IsNaN(mean) {
			continue
		}

		c.FillPolygon(fp.scale.Color(mean), pts)
	}
}

// DataRange implements plot.DataRanger.
func (fp *fieldPlotter) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for i := range fp.mesh.X {
		xmin = math.Min(xmin, fp.mesh.X[i])
		xmax = math.Max(xmax, fp.mesh.X[i])
		ymin = math.Min(ymin, fp.mesh.Y[i])
		ymax = math.Max(ymax, fp.mesh.Y[i])
	}
	return xmin, xmax, ymin, ymax
}

// FieldMap renders field over the mesh as a flat-shaded triangle map
// clipped to the region window. Triangles flagged in mask are left blank.
func FieldMap(mesh *adcirc.Mesh, field adcirc.Field, mask []bool, opts MapOptions) (*plot.Plot, error) {
	if len(field) != len(mesh.X) {
		return nil, errors.Errorf("field has %d values for %d nodes", len(field), len(mesh.X))
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	p.Add(&fieldPlotter{mesh: mesh, values: field, mask: mask, scale: opts.Scale})

	box := opts.Region.Box
	if box.LonMax > box.LonMin {
		p.X.Min, p.X.Max = box.LonMin, box.LonMax
		p.Y.Min, p.Y.Max = box.LatMin, box.LatMax
	}
	return p, nil
}

// DifferenceMap renders b-a over the subset mesh after masking triangles
// that touch outliers or missing data in either field.
func DifferenceMap(s *adcirc.Subset, a, b adcirc.Field, opts MapOptions) (*plot.Plot, error) {
	diff, err := adcirc.Diff(a, b)
	if err != nil {
		return nil, err
	}

	bad := adcirc.BadNodes(diff, adcirc.OutlierThreshold)
	mask := s.Mesh.MaskTriangles(bad)
	return FieldMap(&s.Mesh, adcirc.CleanField(diff, bad), mask, opts)
}

// SavePNG writes the plot as a PNG with the given size in inches.
func SavePNG(p *plot.Plot, widthIn, heightIn float64, path string) error {
	return p.Save(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch, path)
}

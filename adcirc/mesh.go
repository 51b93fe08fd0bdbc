// Package adcirc reads ADCIRC unstructured-mesh model output: global field
// files such as maxele, the triangulated mesh they ride on, and station
// output files.
package adcirc

import (
	"math"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/pkg/errors"
)

// ADCIRC marks dry or absent nodes with large negative fill values.
const fillThreshold = -9999

// A Mesh is the triangulation a field file is defined on: node coordinates
// and triangle connectivity. Elements hold 0-based node indices; the file
// stores them 1-based.
type Mesh struct {
	X        []float64
	Y        []float64
	Elements [][3]int32
}

// NumNodes returns the node count.
func (m *Mesh) NumNodes() int { return len(m.X) }

// A Field holds one scalar value per mesh node. Fill values are NaN.
type Field []float64

// A File is an open ADCIRC NetCDF output file.
type File struct {
	nc api.Group
}

// Open opens an ADCIRC NetCDF file.
func Open(path string) (*File, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %v", path)
	}
	return &File{nc: nc}, nil
}

// Close closes the file.
func (f *File) Close() {
	f.nc.Close()
}

// Mesh reads the x/y/element variable contract and checks it is coherent:
// coordinate arrays of equal length and every connectivity index on a real
// node.
func (f *File) Mesh() (*Mesh, error) {
	x, err := f.floats1("x")
	if err != nil {
		return nil, err
	}
	y, err := f.floats1("y")
	if err != nil {
		return nil, err
	}
	if len(x) != len(y) {
		return nil, errors.Errorf("coordinate arrays disagree: %d x values, %d y values", len(x), len(y))
	}

	vr, err := f.nc.GetVariable("element")
	if err != nil {
		return nil, errors.Wrap(err, "reading element")
	}
	elements, err := toTriangles(vr.Values)
	if err != nil {
		return nil, err
	}

	n := int32(len(x))
	for i, e := range elements {
		for _, v := range e {
			if v < 0 || v >= n {
				return nil, errors.Errorf("element %d references node %d of %d", i, v+1, n)
			}
		}
	}

	return &Mesh{X: x, Y: y, Elements: elements}, nil
}

// Field reads a per-node scalar variable such as zeta_max or depth.
func (f *File) Field(name string) (Field, error) {
	vals, err := f.floats1(name)
	if err != nil {
		return nil, err
	}
	return maskFill(vals), nil
}

// FieldAt reads one time step of a [time, node] variable such as zeta.
func (f *File) FieldAt(name string, step int) (Field, error) {
	vr, err := f.nc.GetVariable(name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %v", name)
	}

	rows, err := toFloats2(vr.Values)
	if err != nil {
		return nil, errors.Wrapf(err, "variable %v", name)
	}
	if step < 0 || step >= len(rows) {
		return nil, errors.Errorf("time step %d out of range [0, %d]", step, len(rows)-1)
	}

	return maskFill(rows[step]), nil
}

// NumSteps returns the number of time steps in the file.
func (f *File) NumSteps() (int, error) {
	vr, err := f.nc.GetVariable("time")
	if err != nil {
		return 0, errors.Wrap(err, "reading time")
	}
	vals, err := toFloats1(vr.Values)
	if err != nil {
		return 0, err
	}
	return len(vals), nil
}

// Times reads the time axis, resolving the epoch in the units attribute
// ("seconds since YYYY-MM-DD HH:MM:SS ...").
func (f *File) Times() ([]time.Time, error) {
	vr, err := f.nc.GetVariable("time")
	if err != nil {
		return nil, errors.Wrap(err, "reading time")
	}
	vals, err := toFloats1(vr.Values)
	if err != nil {
		return nil, err
	}

	units, _ := attrString(vr, "units")
	base, err := parseTimeUnits(units)
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, len(vals))
	for i, v := range vals {
		times[i] = base.Add(time.Duration(v * float64(time.Second)))
	}
	return times, nil
}

// parseTimeUnits resolves a CF-style "seconds since ..." epoch.
func parseTimeUnits(units string) (time.Time, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(units), "seconds since ")
	if !ok {
		return time.Time{}, errors.Errorf("unsupported time units %q", units)
	}
	rest = strings.TrimSuffix(strings.TrimSpace(rest), " UTC")

	for _, layout := range []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, rest); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Errorf("unsupported time units %q", units)
}

func (f *File) floats1(name string) ([]float64, error) {
	vr, err := f.nc.GetVariable(name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %v", name)
	}
	vals, err := toFloats1(vr.Values)
	if err != nil {
		return nil, errors.Wrapf(err, "variable %v", name)
	}
	return vals, nil
}

func maskFill(vals []float64) Field {
	out := make(Field, len(vals))
	for i, v := range vals {
		if v <= fillThreshold {
			out[i] = math.NaN()
		} else {
			out[i] = v
		}
	}
	return out
}

func attrString(vr *api.Variable, name string) (string, bool) {
	if vr.Attributes == nil {
		return "", false
	}
	val, ok := vr.Attributes.Get(name)
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

func toFloats1(values interface{}) ([]float64, error) {
	switch v := values.(type) {
	case []float64:
		return v, nil
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, errors.Errorf("unsupported 1-D value type %T", values)
	}
}

func toFloats2(values interface{}) ([][]float64, error) {
	switch v := values.(type) {
	case [][]float64:
		return v, nil
	case [][]float32:
		out := make([][]float64, len(v))
		for i, row := range v {
			out[i] = make([]float64, len(row))
			for j, x := range row {
				out[i][j] = float64(x)
			}
		}
		return out, nil
	default:
		return nil, errors.Errorf("unsupported 2-D value type %T", values)
	}
}

// toTriangles converts the element connectivity variable, shifting the
// stored 1-based node numbers down to 0-based indices.
func toTriangles(values interface{}) ([][3]int32, error) {
	var rows [][]int64
	switch v := values.(type) {
	case [][]int32:
		rows = make([][]int64, len(v))
		for i, row := range v {
			rows[i] = make([]int64, len(row))
			for j, x := range row {
				rows[i][j] = int64(x)
			}
		}
	case [][]int64:
		rows = v
	default:
		return nil, errors.Errorf("unsupported element value type %T", values)
	}

	out := make([][3]int32, len(rows))
	for i, row := range rows {
		if len(row) != 3 {
			return nil, errors.Errorf("element %d has %d vertices, want 3", i, len(row))
		}
		out[i] = [3]int32{int32(row[0]) - 1, int32(row[1]) - 1, int32(row[2]) - 1}
	}
	return out, nil
}

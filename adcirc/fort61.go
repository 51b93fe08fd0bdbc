// fort.61 station output.

package adcirc

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// A StationSeries is one station's elevation timeseries from a fort.61
// file.
type StationSeries struct {
	Name  string
	Lon   float64
	Lat   float64
	Times []time.Time
	Elev  []float64
}

// A Fort61 is an open fort.61.nc station output file.
type Fort61 struct {
	f     *File
	names []string
	x     []float64
	y     []float64
	times []time.Time
	zeta  [][]float64
}

// OpenFort61 opens and fully loads a fort.61.nc file. Station files are
// small enough that reading everything up front keeps the per-station
// accessors trivial.
func OpenFort61(path string) (*Fort61, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}

	st := &Fort61{f: f}
	if err := st.load(); err != nil {
		f.Close()
		return nil, err
	}
	return st, nil
}

func (st *Fort61) load() error {
	var err error
	if st.x, err = st.f.floats1("x"); err != nil {
		return err
	}
	if st.y, err = st.f.floats1("y"); err != nil {
		return err
	}
	if st.times, err = st.f.Times(); err != nil {
		return err
	}

	vr, err := st.f.nc.GetVariable("station_name")
	if err != nil {
		return errors.Wrap(err, "reading station_name")
	}
	if st.names, err = toStrings(vr.Values); err != nil {
		return err
	}

	zr, err := st.f.nc.GetVariable("zeta")
	if err != nil {
		return errors.Wrap(err, "reading zeta")
	}
	rows, err := toFloats2(zr.Values)
	if err != nil {
		return errors.Wrap(err, "variable zeta")
	}
	st.zeta = rows

	n := len(st.names)
	if len(st.x) != n || len(st.y) != n {
		return errors.Errorf("station arrays disagree: %d names, %d coordinates", n, len(st.x))
	}
	return nil
}

// Close closes the underlying file.
func (st *Fort61) Close() {
	st.f.Close()
}

// NumStations returns the station count.
func (st *Fort61) NumStations() int {
	return len(st.names)
}

// Name returns the trimmed station name.
func (st *Fort61) Name(i int) string {
	return st.names[i]
}

// FindStation returns the index of the first station whose name contains
// needle, or -1.
func (st *Fort61) FindStation(needle string) int {
	needle = strings.ToLower(needle)
	for i, name := range st.names {
		if strings.Contains(strings.ToLower(name), needle) {
			return i
		}
	}
	return -1
}

// Station extracts one station's timeseries with fill values masked.
func (st *Fort61) Station(i int) (*StationSeries, error) {
	if i < 0 || i >= len(st.names) {
		return nil, errors.Errorf("station %d out of range [0, %d]", i, len(st.names)-1)
	}

	elev := make([]float64, len(st.times))
	for t, row := range st.zeta {
		if i >= len(row) {
			return nil, errors.Errorf("zeta row %d has %d stations", t, len(row))
		}
		elev[t] = maskFill(row[i : i+1])[0]
	}

	return &StationSeries{
		Name:  st.names[i],
		Lon:   st.x[i],
		Lat:   st.y[i],
		Times: st.times,
		Elev:  elev,
	}, nil
}

// toStrings handles the station_name variable, stored either as strings or
// as a character matrix.
func toStrings(values interface{}) ([]string, error) {
	switch v := values.(type) {
	case []string:
		out := make([]string, len(v))
		for i, s := range v {
			out[i] = strings.TrimRight(s, " \x00")
		}
		return out, nil
	case [][]byte:
		out := make([]string, len(v))
		for i, b := range v {
			out[i] = strings.TrimRight(string(b), " \x00")
		}
		return out, nil
	default:
		return nil, errors.Errorf("unsupported station name type %T", values)
	}
}

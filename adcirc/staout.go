// SCHISM-style station text output, used by the SECOFS comparisons.

package adcirc

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// staout fill values are huge magnitudes rather than a fixed sentinel.
const staoutFill = 1e6

// A Station is one entry of a station.in request file.
type Station struct {
	Idx  int
	Lon  float64
	Lat  float64
	Name string
}

// ParseStationIn parses a station.in file: a comment line, the station
// count, then one line per station with index, lon, lat, depth and an
// optional "name: description" comment.
func ParseStationIn(r io.Reader) ([]Station, error) {
	scanner := bufio.NewScanner(r)

	// Header comment line.
	if !scanner.Scan() {
		return nil, errors.New("empty station.in")
	}
	if !scanner.Scan() {
		return nil, errors.New("station.in missing count line")
	}
	count, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return nil, errors.Wrap(err, "station.in count line")
	}

	stations := make([]Station, 0, count)
	for len(stations) < count && scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			return nil, errors.Errorf("station line %d too short", len(stations)+1)
		}

		idx, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, errors.Wrapf(err, "station line %d", len(stations)+1)
		}
		lon, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "station line %d", len(stations)+1)
		}
		lat, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "station line %d", len(stations)+1)
		}

		name := "Station_" + parts[0]
		if len(parts) > 4 {
			comment := strings.Join(parts[4:], " ")
			comment = strings.TrimSpace(strings.TrimPrefix(comment, "!"))
			if head, _, found := strings.Cut(comment, ":"); found {
				name = strings.TrimSpace(head)
			} else if comment != "" {
				name = comment
			}
		}

		stations = append(stations, Station{Idx: idx, Lon: lon, Lat: lat, Name: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(stations) != count {
		return nil, errors.Errorf("station.in declares %d stations, found %d", count, len(stations))
	}

	return stations, nil
}

// ParseStaout parses a staout timeseries file: one line per time step with
// the model time in seconds followed by one value per station. Fill values
// come back as NaN.
func ParseStaout(r io.Reader, nStations int) (times []float64, data [][]float64, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		if len(fields) < nStations+1 {
			return nil, nil, errors.Errorf("staout line %d has %d values, want %d",
				len(times)+1, len(fields)-1, nStations)
		}

		t, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "staout line %d", len(times)+1)
		}

		row := make([]float64, nStations)
		for i := 0; i < nStations; i++ {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "staout line %d", len(times)+1)
			}
			if math.Abs(v) > staoutFill {
				v = math.NaN()
			}
			row[i] = v
		}

		times = append(times, t)
		data = append(data, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	return times, data, nil
}

package coops

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// A Gauge is a CO-OPS tide gauge.
type Gauge struct {
	ID   string
	Name string
	Lon  float64
	Lat  float64
}

// DefaultGauges covers the standing validation regions with one
// long-record gauge each.
var DefaultGauges = []Gauge{
	{ID: "8518750", Name: "The Battery, NY", Lon: -74.0142, Lat: 40.7006},
	{ID: "8443970", Name: "Boston, MA", Lon: -71.0503, Lat: 42.3539},
	{ID: "8557380", Name: "Lewes, DE", Lon: -75.1193, Lat: 38.7828},
	{ID: "8726520", Name: "St. Petersburg, FL", Lon: -82.6269, Lat: 27.7606},
	{ID: "8771450", Name: "Galveston Pier 21, TX", Lon: -94.7933, Lat: 29.3100},
	{ID: "8735180", Name: "Dauphin Island, AL", Lon: -88.0750, Lat: 30.2500},
	{ID: "9447130", Name: "Seattle, WA", Lon: -122.3392, Lat: 47.6026},
	{ID: "9755371", Name: "San Juan, PR", Lon: -66.1164, Lat: 18.4592},
}

// LoadGauges reads a gauge listing in "id,name,lon,lat" CSV form, header
// line optional.
func LoadGauges(r io.Reader) ([]Gauge, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	var gauges []Gauge
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 4 {
			return nil, errors.Errorf("gauge record too short: %v", record)
		}

		lon, lonErr := strconv.ParseFloat(record[2], 64)
		lat, latErr := strconv.ParseFloat(record[3], 64)
		if lonErr != nil || latErr != nil {
			// Header line.
			if len(gauges) == 0 {
				continue
			}
			return nil, errors.Errorf("bad gauge coordinates: %v", record)
		}

		gauges = append(gauges, Gauge{ID: record[0], Name: record[1], Lon: lon, Lat: lat})
	}
	return gauges, nil
}

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance between two points in
// kilometres.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// A Matcher finds the gauge nearest a model location.
type Matcher struct {
	Gauges []Gauge
}

// NewMatcher returns a matcher over the default gauge set.
func NewMatcher() *Matcher {
	return &Matcher{Gauges: DefaultGauges}
}

// Nearest returns the closest gauge to the given point and its distance in
// kilometres. ok is false when the matcher holds no gauges.
func (m *Matcher) Nearest(lon, lat float64) (gauge Gauge, distKm float64, ok bool) {
	best := math.Inf(1)
	for _, g := range m.Gauges {
		d := Haversine(lon, lat, g.Lon, g.Lat)
		if d < best {
			best = d
			gauge = g
			ok = true
		}
	}
	return gauge, best, ok
}

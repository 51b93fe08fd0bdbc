package adcirc

import (
	"math"
	"strings"
	"testing"
)

const stationInFixture = `ACE (BP) ! comment line
3
1 -74.0141 40.7005 0.0 ! battery: The Battery, NY
2 -71.0534 42.3539 0.0 ! boston: Boston, MA
3 -80.9000 31.4000 0.0
`

const staoutFixture = `3600.0 0.123 0.456 -0.789
7200.0 0.234 99999999.0 -0.678
10800.0 0.345 0.567 -0.567
`

func TestParseStationIn(t *testing.T) {
	stations, err := ParseStationIn(strings.NewReader(stationInFixture))
	if err != nil {
		t.Fatal(err)
	}
	if len(stations) != 3 {
		t.Fatalf("got %d stations", len(stations))
	}

	if stations[0].Name != "battery" {
		t.Errorf("station 0 name = %q", stations[0].Name)
	}
	if stations[0].Lon != -74.0141 || stations[0].Lat != 40.7005 {
		t.Errorf("station 0 at %g, %g", stations[0].Lon, stations[0].Lat)
	}
	// No comment: synthesized name.
	if stations[2].Name != "Station_3" {
		t.Errorf("station 2 name = %q", stations[2].Name)
	}
}

func TestParseStationInErrors(t *testing.T) {
	if _, err := ParseStationIn(strings.NewReader("")); err == nil {
		t.Error("empty input accepted")
	}
	short := "header\n2\n1 -74.0 40.7 0.0\n"
	if _, err := ParseStationIn(strings.NewReader(short)); err == nil {
		t.Error("undercount accepted")
	}
}

func TestParseStaout(t *testing.T) {
	times, data, err := ParseStaout(strings.NewReader(staoutFixture), 3)
	if err != nil {
		t.Fatal(err)
	}

	if len(times) != 3 || len(data) != 3 {
		t.Fatalf("got %d steps", len(times))
	}
	if times[1] != 7200.0 {
		t.Errorf("times[1] = %g", times[1])
	}
	if data[0][2] != -0.789 {
		t.Errorf("data[0][2] = %g", data[0][2])
	}
	if !math.IsNaN(data[1][1]) {
		t.Errorf("fill value survived: %g", data[1][1])
	}
}

func TestParseStaoutShortLine(t *testing.T) {
	if _, _, err := ParseStaout(strings.NewReader("3600.0 0.1 0.2\n"), 3); err == nil {
		t.Error("short line accepted")
	}
}

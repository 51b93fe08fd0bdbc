package main

import (
	"testing"
)

func TestParseRange(t *testing.T) {
	min, max, err := parseRange("-74.5, -71.5")
	if err != nil {
		t.Fatal(err)
	}
	if min != -74.5 || max != -71.5 {
		t.Errorf("got [%g, %g]", min, max)
	}

	for _, bad := range []string{"", "-74.5", "1,zzz", "5,3"} {
		if _, _, err := parseRange(bad); err == nil {
			t.Errorf("%q accepted", bad)
		}
	}
}

func TestResolveRegionPreset(t *testing.T) {
	// The default region works without any coordinate flags.
	region, err := resolveRegion("east_coast", "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if region.Box.LonMin != -82 || region.Box.LonMax != -65 ||
		region.Box.LatMin != 24 || region.Box.LatMax != 45 {
		t.Errorf("east_coast box = %+v", region.Box)
	}

	region, err = resolveRegion("tampa_bay", "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if region.Name != "Tampa Bay" {
		t.Errorf("region = %+v", region)
	}

	if _, err := resolveRegion("tampa_bay", "-83,-81", "", ""); err == nil {
		t.Error("coordinate ranges accepted alongside a preset")
	}
	if _, err := resolveRegion("atlantis", "", "", ""); err == nil {
		t.Error("unknown preset accepted")
	}
}

func TestResolveRegionCustom(t *testing.T) {
	region, err := resolveRegion("custom", "-76,-74.5", "38.5,40", "Delaware Bay")
	if err != nil {
		t.Fatal(err)
	}
	if region.Name != "Delaware Bay" || region.Box.LonMin != -76 || region.Box.LatMax != 40 {
		t.Errorf("region = %+v", region)
	}

	if _, err := resolveRegion("custom", "-76,-74.5", "", ""); err == nil {
		t.Error("custom region without --lat-range accepted")
	}
}

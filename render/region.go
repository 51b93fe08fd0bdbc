// Package render draws validation graphics from model fields and station
// comparisons: regional difference maps, timeseries and RMSE maps.
package render

import (
	"sort"

	"github.com/mansurjisan/My-Scripts/adcirc"
)

// A Region is a named plotting window.
type Region struct {
	Key  string
	Name string
	Box  adcirc.Box
}

// Wide presets selectable with --region.
var presets = map[string]Region{
	"conus": {
		Key: "conus", Name: "CONUS",
		Box: adcirc.Box{LonMin: -125, LonMax: -66, LatMin: 24, LatMax: 50},
	},
	"global": {
		Key: "global", Name: "Global",
		Box: adcirc.Box{LonMin: -180, LonMax: 180, LatMin: -90, LatMax: 90},
	},
	"east_coast": {
		Key: "east_coast", Name: "US East Coast",
		Box: adcirc.Box{LonMin: -82, LonMax: -65, LatMin: 24, LatMax: 45},
	},
	"north_atlantic": {
		Key: "north_atlantic", Name: "North Atlantic",
		Box: adcirc.Box{LonMin: -80, LonMax: 20, LatMin: 20, LatMax: 80},
	},
}

// ValidationRegions is the standing set of harbors the agent plots for
// every cycle.
var ValidationRegions = []Region{
	{Key: "new_york_harbor", Name: "New York Harbor",
		Box: adcirc.Box{LonMin: -74.5, LonMax: -71.5, LatMin: 40.0, LatMax: 41.5}},
	{Key: "boston_harbor", Name: "Boston Harbor",
		Box: adcirc.Box{LonMin: -71.5, LonMax: -69.5, LatMin: 41.5, LatMax: 43.0}},
	{Key: "delaware_bay", Name: "Delaware Bay",
		Box: adcirc.Box{LonMin: -76.0, LonMax: -74.5, LatMin: 38.5, LatMax: 40.0}},
	{Key: "tampa_bay", Name: "Tampa Bay",
		Box: adcirc.Box{LonMin: -83.0, LonMax: -81.5, LatMin: 26.0, LatMax: 28.5}},
	{Key: "galveston_bay", Name: "Galveston Bay",
		Box: adcirc.Box{LonMin: -95.5, LonMax: -94.0, LatMin: 29.0, LatMax: 30.0}},
	{Key: "mobile_bay", Name: "Mobile Bay",
		Box: adcirc.Box{LonMin: -88.5, LonMax: -87.0, LatMin: 30.0, LatMax: 31.0}},
	{Key: "puget_sound", Name: "Puget Sound",
		Box: adcirc.Box{LonMin: -123.5, LonMax: -122.0, LatMin: 47.0, LatMax: 48.5}},
	{Key: "puerto_rico", Name: "Puerto Rico",
		Box: adcirc.Box{LonMin: -67.5, LonMax: -65.0, LatMin: 17.5, LatMax: 18.8}},
}

// Lookup resolves a region key against the presets and the validation
// regions.
func Lookup(key string) (Region, bool) {
	if r, ok := presets[key]; ok {
		return r, true
	}
	for _, r := range ValidationRegions {
		if r.Key == key {
			return r, true
		}
	}
	return Region{}, false
}

// Keys lists every selectable region key, sorted.
func Keys() []string {
	keys := []string{}
	for k := range presets {
		keys = append(keys, k)
	}
	for _, r := range ValidationRegions {
		keys = append(keys, r.Key)
	}
	sort.Strings(keys)
	return keys
}

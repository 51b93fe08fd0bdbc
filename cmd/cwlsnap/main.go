// cwlsnap renders a single water elevation difference snapshot from a pair
// of STOFS-2D field files: bias-corrected minus non-bias-corrected, over a
// preset or custom region.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/akamensky/argparse"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mansurjisan/My-Scripts/adcirc"
	"github.com/mansurjisan/My-Scripts/render"
)

// The first six hourly steps of a cycle's field file are the nowcast; the
// rest are forecast.
const nowcastSteps = 6

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	parser := argparse.NewParser("cwlsnap", "Water elevation difference snapshot from a STOFS-2D field pair")

	rawFn := parser.StringPositional(&argparse.Options{
		Required: true,
		Help:     "non-bias-corrected field file (noanomaly)"})
	cwlFn := parser.StringPositional(&argparse.Options{
		Required: true,
		Help:     "bias-corrected field file (cwl)"})
	output := parser.String("o", "output", &argparse.Options{
		Required: true,
		Help:     "output PNG path"})
	variable := parser.String("", "variable", &argparse.Options{
		Default: "zeta",
		Help:    "field variable to difference"})
	timestep := parser.Int("t", "timestep", &argparse.Options{
		Default: 0,
		Help:    "time step index to plot"})
	regionKey := parser.String("r", "region", &argparse.Options{
		Default: "east_coast",
		Help:    "region preset, or \"custom\" with --lon-range/--lat-range"})
	lonRange := parser.String("", "lon-range", &argparse.Options{
		Default: "",
		Help:    "custom longitude range as min,max"})
	latRange := parser.String("", "lat-range", &argparse.Options{
		Default: "",
		Help:    "custom latitude range as min,max"})
	locationName := parser.String("", "location-name", &argparse.Options{
		Default: "",
		Help:    "title label for a custom region"})
	vmin := parser.Float("", "vmin", &argparse.Options{
		Default: -0.3,
		Help:    "color scale minimum (m)"})
	vmax := parser.Float("", "vmax", &argparse.Options{
		Default: 0.3,
		Help:    "color scale maximum (m)"})
	saveSubset := parser.String("", "save-netcdf", &argparse.Options{
		Default: "",
		Help:    "also write the regional difference field to this NetCDF file"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	region, err := resolveRegion(*regionKey, *lonRange, *latRange, *locationName)
	if err != nil {
		log.Fatal().Err(err).Msg("bad region selection")
	}

	raw, err := adcirc.Open(*rawFn)
	if err != nil {
		log.Fatal().Err(err).Msg("opening non-bias-corrected file")
	}
	defer raw.Close()

	cwl, err := adcirc.Open(*cwlFn)
	if err != nil {
		log.Fatal().Err(err).Msg("opening bias-corrected file")
	}
	defer cwl.Close()

	mesh, err := raw.Mesh()
	if err != nil {
		log.Fatal().Err(err).Msg("reading mesh")
	}

	rawField, err := raw.FieldAt(*variable, *timestep)
	if err != nil {
		log.Fatal().Err(err).Str("variable", *variable).Msg("reading field")
	}
	cwlField, err := cwl.FieldAt(*variable, *timestep)
	if err != nil {
		log.Fatal().Err(err).Str("variable", *variable).Msg("reading field")
	}

	sub, err := mesh.Extract(region.Box, adcirc.DefaultBuffer)
	if err != nil {
		log.Fatal().Err(err).Str("region", region.Key).Msg("extracting region")
	}
	log.Info().Int("nodes", sub.NumNodes()).Int("triangles", len(sub.Elements)).
		Str("region", region.Name).Msg("region extracted")

	title := fmt.Sprintf("%s\n%s Difference (CWL - No Anomaly), %s",
		region.Name, *variable, periodLabel(raw, *timestep))

	p, err := render.DifferenceMap(sub, sub.Slice(rawField), sub.Slice(cwlField), render.MapOptions{
		Title:  title,
		Region: region,
		Scale:  render.DivergingScale(*vmin, *vmax, 61),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("rendering")
	}
	if err := render.SavePNG(p, 10, 8, *output); err != nil {
		log.Fatal().Err(err).Msg("writing plot")
	}
	log.Info().Str("plot", *output).Msg("wrote")

	if *saveSubset != "" {
		diff, err := adcirc.Diff(sub.Slice(rawField), sub.Slice(cwlField))
		if err != nil {
			log.Fatal().Err(err).Msg("differencing")
		}
		if err := adcirc.WriteSubset(*saveSubset, sub, "zeta_diff", diff); err != nil {
			log.Fatal().Err(err).Msg("writing subset NetCDF")
		}
		log.Info().Str("file", *saveSubset).Msg("wrote subset")
	}
}

// resolveRegion turns the region flags into a plotting window. A custom
// region needs both coordinate ranges.
func resolveRegion(key, lonRange, latRange, name string) (render.Region, error) {
	if key != "custom" {
		if lonRange != "" || latRange != "" {
			return render.Region{}, fmt.Errorf("--lon-range/--lat-range only apply with --region custom")
		}
		region, ok := render.Lookup(key)
		if !ok {
			return render.Region{}, fmt.Errorf("unknown region %q (try --region custom or one of %v)",
				key, render.Keys())
		}
		return region, nil
	}

	if lonRange == "" || latRange == "" {
		return render.Region{}, fmt.Errorf("custom region needs both --lon-range and --lat-range")
	}
	lonMin, lonMax, err := parseRange(lonRange)
	if err != nil {
		return render.Region{}, fmt.Errorf("bad --lon-range: %w", err)
	}
	latMin, latMax, err := parseRange(latRange)
	if err != nil {
		return render.Region{}, fmt.Errorf("bad --lat-range: %w", err)
	}

	if name == "" {
		name = fmt.Sprintf("[%g, %g] x [%g, %g]", lonMin, lonMax, latMin, latMax)
	}
	return render.Region{
		Key:  "custom",
		Name: name,
		Box:  adcirc.Box{LonMin: lonMin, LonMax: lonMax, LatMin: latMin, LatMax: latMax},
	}, nil
}

// parseRange parses a "min,max" pair.
func parseRange(s string) (min, max float64, err error) {
	lo, hi, found := strings.Cut(s, ",")
	if !found {
		return 0, 0, fmt.Errorf("%q is not min,max", s)
	}
	if min, err = strconv.ParseFloat(strings.TrimSpace(lo), 64); err != nil {
		return 0, 0, err
	}
	if max, err = strconv.ParseFloat(strings.TrimSpace(hi), 64); err != nil {
		return 0, 0, err
	}
	if max <= min {
		return 0, 0, fmt.Errorf("%q: max not above min", s)
	}
	return min, max, nil
}

// periodLabel names the step and whether it falls in the nowcast or the
// forecast period.
func periodLabel(f *adcirc.File, step int) string {
	phase := "FORECAST"
	if step < nowcastSteps {
		phase = fmt.Sprintf("NOWCAST (Hour %d/%d)", step+1, nowcastSteps)
	}

	times, err := f.Times()
	if err != nil || step >= len(times) {
		return phase
	}
	return fmt.Sprintf("%s, %s", times[step].UTC().Format("2006-01-02 15:04 UTC"), phase)
}

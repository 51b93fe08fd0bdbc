// rmsemap scores a pair of STOFS-2D station output files against CO-OPS
// water level observations and maps the per-station RMSE for both the
// bias-corrected and non-bias-corrected runs.
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/akamensky/argparse"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mansurjisan/My-Scripts/adcirc"
	"github.com/mansurjisan/My-Scripts/coops"
	"github.com/mansurjisan/My-Scripts/render"
)

type stationResult struct {
	Gauge coops.Gauge
	CWL   coops.Stats
	Raw   coops.Stats
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	parser := argparse.NewParser("rmsemap", "Per-station RMSE maps for a STOFS-2D station output pair")

	cwlFn := parser.StringPositional(&argparse.Options{
		Required: true,
		Help:     "bias-corrected fort.61.nc"})
	rawFn := parser.StringPositional(&argparse.Options{
		Required: true,
		Help:     "non-bias-corrected fort.61.nc"})
	gaugesFn := parser.String("g", "gauges", &argparse.Options{
		Default: "",
		Help:    "gauge listing CSV (id,name,lon,lat); default: built-in validation gauges"})
	outputDir := parser.String("o", "output-dir", &argparse.Options{
		Default: ".",
		Help:    "directory for the CSV and maps"})
	regionKey := parser.String("r", "region", &argparse.Options{
		Default: "east_coast",
		Help:    "map region preset"})
	datum := parser.String("", "datum", &argparse.Options{
		Default: "MSL",
		Help:    "preferred CO-OPS datum (falls back to MSL)"})
	vmax := parser.Float("", "vmax", &argparse.Options{
		Default: 0.5,
		Help:    "RMSE color scale maximum (m)"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	region, ok := render.Lookup(*regionKey)
	if !ok {
		log.Fatal().Str("region", *regionKey).Msg("unknown region")
	}

	gauges := coops.DefaultGauges
	if *gaugesFn != "" {
		f, err := os.Open(*gaugesFn)
		if err != nil {
			log.Fatal().Err(err).Msg("opening gauge listing")
		}
		gauges, err = coops.LoadGauges(f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("reading gauge listing")
		}
	}

	cwl, err := adcirc.OpenFort61(*cwlFn)
	if err != nil {
		log.Fatal().Err(err).Msg("opening bias-corrected station file")
	}
	defer cwl.Close()

	raw, err := adcirc.OpenFort61(*rawFn)
	if err != nil {
		log.Fatal().Err(err).Msg("opening non-bias-corrected station file")
	}
	defer raw.Close()

	client := coops.NewClient("stofs-validation")
	results := scoreStations(client, cwl, raw, gauges, *datum)
	if len(results) == 0 {
		log.Fatal().Msg("no stations could be scored")
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("creating output directory")
	}

	csvFn := filepath.Join(*outputDir, "station_rmse.csv")
	if err := writeCSV(csvFn, results); err != nil {
		log.Fatal().Err(err).Msg("writing CSV")
	}
	log.Info().Str("file", csvFn).Msg("wrote statistics")

	scale := render.SequentialScale(0, *vmax, 10)
	for _, variant := range []struct {
		name  string
		title string
		pick  func(r stationResult) coops.Stats
	}{
		{"cwl", "RMSE vs CO-OPS, bias-corrected (CWL)", func(r stationResult) coops.Stats { return r.CWL }},
		{"noanomaly", "RMSE vs CO-OPS, non-bias-corrected", func(r stationResult) coops.Stats { return r.Raw }},
	} {
		scores := make([]render.StationScore, len(results))
		for i, r := range results {
			scores[i] = render.StationScore{
				Name: r.Gauge.Name,
				Lon:  r.Gauge.Lon,
				Lat:  r.Gauge.Lat,
				RMSE: variant.pick(r).RMSE,
			}
		}

		p, err := render.RMSEMap(scores, render.MapOptions{
			Title:  variant.title,
			Region: region,
			Scale:  scale,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("rendering map")
		}

		mapFn := filepath.Join(*outputDir, "rmse_map_"+variant.name+".png")
		if err := render.SavePNG(p, 10, 8, mapFn); err != nil {
			log.Fatal().Err(err).Msg("writing map")
		}
		log.Info().Str("plot", mapFn).Msg("wrote")
	}
}

// scoreStations matches each gauge to its model station, fetches the
// observations covering the model period and scores both variants. Gauges
// that fail to match or fetch are logged and skipped, not fatal: one dead
// gauge should not sink the whole validation.
func scoreStations(client *coops.Client, cwl, raw *adcirc.Fort61, gauges []coops.Gauge, datum string) []stationResult {
	var results []stationResult
	for _, gauge := range gauges {
		idx := cwl.FindStation(gauge.ID)
		if idx < 0 {
			idx = cwl.FindStation(gauge.Name)
		}
		if idx < 0 {
			log.Warn().Str("gauge", gauge.ID).Msg("no matching model station")
			continue
		}

		cwlSeries, err := cwl.Station(idx)
		if err != nil {
			log.Warn().Err(err).Str("gauge", gauge.ID).Msg("reading station")
			continue
		}
		rawIdx := raw.FindStation(gauge.ID)
		if rawIdx < 0 {
			rawIdx = idx
		}
		rawSeries, err := raw.Station(rawIdx)
		if err != nil {
			log.Warn().Err(err).Str("gauge", gauge.ID).Msg("reading station")
			continue
		}

		begin := cwlSeries.Times[0]
		end := cwlSeries.Times[len(cwlSeries.Times)-1]
		obs, err := client.WaterLevelsMSL(gauge.ID, begin, end, datum)
		if err != nil {
			log.Warn().Err(err).Str("gauge", gauge.ID).Msg("fetching observations")
			continue
		}

		o, m := coops.Align(obs, cwlSeries.Times, cwlSeries.Elev, coops.DefaultAlignTolerance)
		cwlStats := coops.Compare(o, m)

		o, m = coops.Align(obs, rawSeries.Times, rawSeries.Elev, coops.DefaultAlignTolerance)
		rawStats := coops.Compare(o, m)

		log.Info().Str("gauge", gauge.ID).Str("name", gauge.Name).
			Float64("rmse_cwl", cwlStats.RMSE).Float64("rmse_raw", rawStats.RMSE).
			Int("n", cwlStats.N).Msg("scored")

		results = append(results, stationResult{Gauge: gauge, CWL: cwlStats, Raw: rawStats})
	}
	return results
}

func writeCSV(path string, results []stationResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"station_id", "name", "lon", "lat",
		"rmse_cwl", "bias_cwl", "corr_cwl",
		"rmse_noanomaly", "bias_noanomaly", "corr_noanomaly", "n"})

	for _, r := range results {
		w.Write([]string{
			r.Gauge.ID,
			r.Gauge.Name,
			strconv.FormatFloat(r.Gauge.Lon, 'f', 4, 64),
			strconv.FormatFloat(r.Gauge.Lat, 'f', 4, 64),
			formatStat(r.CWL.RMSE),
			formatStat(r.CWL.Bias),
			formatStat(r.CWL.Corr),
			formatStat(r.Raw.RMSE),
			formatStat(r.Raw.Bias),
			formatStat(r.Raw.Corr),
			strconv.Itoa(r.CWL.N),
		})
	}

	w.Flush()
	return w.Error()
}

// formatStat renders a statistic, leaving the cell empty when the value is
// undefined.
func formatStat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

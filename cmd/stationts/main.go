// stationts extracts a station elevation timeseries from a fort.61.nc
// station output file as text, and can plot it against the nearest CO-OPS
// gauge.
package main

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/akamensky/argparse"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mansurjisan/My-Scripts/adcirc"
	"github.com/mansurjisan/My-Scripts/coops"
	"github.com/mansurjisan/My-Scripts/render"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	parser := argparse.NewParser("stationts", "Station timeseries extraction from fort.61.nc")

	inputFn := parser.StringPositional(&argparse.Options{
		Required: true,
		Help:     "fort.61.nc station output file, or a staout text file with --station-in"})
	station := parser.Int("s", "station", &argparse.Options{
		Default: -1,
		Help:    "station index"})
	name := parser.String("n", "name", &argparse.Options{
		Default: "",
		Help:    "station name substring (case-insensitive)"})
	list := parser.Flag("l", "list", &argparse.Options{
		Help: "list the stations in the file and exit"})
	stationIn := parser.String("", "station-in", &argparse.Options{
		Default: "",
		Help:    "station.in request file; switches the input to SCHISM staout text format"})
	start := parser.String("", "start", &argparse.Options{
		Default: "",
		Help:    "model start time for staout input (YYYY-MM-DDTHH:MM, UTC)"})
	output := parser.String("o", "output", &argparse.Options{
		Default: "",
		Help:    "write the text timeseries here instead of stdout"})
	plotFn := parser.String("p", "plot", &argparse.Options{
		Default: "",
		Help:    "also plot the series against the nearest CO-OPS gauge to this PNG"})
	datum := parser.String("", "datum", &argparse.Options{
		Default: "MSL",
		Help:    "preferred CO-OPS datum for the comparison plot"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var (
		series *adcirc.StationSeries
		err    error
	)
	if *stationIn != "" {
		series, err = staoutSeries(*inputFn, *stationIn, *start, *station, *name, *list)
	} else {
		series, err = fort61Series(*inputFn, *station, *name, *list)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("extracting station")
	}
	if series == nil {
		// --list already printed.
		return
	}
	log.Info().Str("station", series.Name).
		Float64("lon", series.Lon).Float64("lat", series.Lat).
		Int("samples", len(series.Times)).Msg("extracted")

	var out io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal().Err(err).Msg("creating output file")
		}
		defer f.Close()
		out = f
	}
	if err := writeSeries(out, series); err != nil {
		log.Fatal().Err(err).Msg("writing timeseries")
	}

	if *plotFn != "" {
		if err := plotAgainstGauge(series, *datum, *plotFn); err != nil {
			log.Fatal().Err(err).Msg("plotting")
		}
	}
}

// fort61Series pulls one station out of a fort.61.nc file. A nil series
// with a nil error means --list handled the request.
func fort61Series(path string, station int, name string, list bool) (*adcirc.StationSeries, error) {
	st, err := adcirc.OpenFort61(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if list {
		for i := 0; i < st.NumStations(); i++ {
			fmt.Printf("%4d  %s\n", i, st.Name(i))
		}
		return nil, nil
	}

	idx := station
	if name != "" {
		idx = st.FindStation(name)
		if idx < 0 {
			return nil, fmt.Errorf("no station matches %q", name)
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("pick a station with --station or --name")
	}

	return st.Station(idx)
}

// staoutSeries pulls one station out of a SCHISM staout text file, with the
// station listing from station.in and the time axis anchored at startStr.
func staoutSeries(staoutFn, stationInFn, startStr string, station int, name string, list bool) (*adcirc.StationSeries, error) {
	sf, err := os.Open(stationInFn)
	if err != nil {
		return nil, err
	}
	stations, err := adcirc.ParseStationIn(sf)
	sf.Close()
	if err != nil {
		return nil, err
	}

	if list {
		for i, s := range stations {
			fmt.Printf("%4d  %-20s (%.4f, %.4f)\n", i, s.Name, s.Lon, s.Lat)
		}
		return nil, nil
	}

	idx := station
	if name != "" {
		idx = -1
		needle := strings.ToLower(name)
		for i, s := range stations {
			if strings.Contains(strings.ToLower(s.Name), needle) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("no station matches %q", name)
		}
	}
	if idx < 0 || idx >= len(stations) {
		return nil, fmt.Errorf("pick a station with --station or --name")
	}

	if startStr == "" {
		return nil, fmt.Errorf("staout input needs --start")
	}
	startTime, err := time.Parse("2006-01-02T15:04", startStr)
	if err != nil {
		return nil, fmt.Errorf("bad --start: %w", err)
	}

	df, err := os.Open(staoutFn)
	if err != nil {
		return nil, err
	}
	defer df.Close()

	seconds, data, err := adcirc.ParseStaout(df, len(stations))
	if err != nil {
		return nil, err
	}

	picked := stations[idx]
	series := &adcirc.StationSeries{
		Name: picked.Name,
		Lon:  picked.Lon,
		Lat:  picked.Lat,
	}
	for i, s := range seconds {
		series.Times = append(series.Times, startTime.Add(time.Duration(s*float64(time.Second))))
		series.Elev = append(series.Elev, data[i][idx])
	}
	return series, nil
}

// writeSeries emits the "datetime | elevation" text form. Masked samples
// print as NaN so gaps stay visible in the record.
func writeSeries(out io.Writer, series *adcirc.StationSeries) error {
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "# Station: %s (%.4f, %.4f)\n", series.Name, series.Lon, series.Lat)
	fmt.Fprintf(w, "# datetime (UTC) | elevation (m)\n")
	for i, t := range series.Times {
		fmt.Fprintf(w, "%s | %8.4f\n", t.UTC().Format("2006-01-02 15:04:05"), series.Elev[i])
	}
	return w.Flush()
}

// plotAgainstGauge fetches the nearest CO-OPS gauge's observations over the
// model period and plots both series.
func plotAgainstGauge(series *adcirc.StationSeries, datum, plotFn string) error {
	if len(series.Times) == 0 {
		return fmt.Errorf("station has no samples")
	}

	gauge, distKm, ok := coops.NewMatcher().Nearest(series.Lon, series.Lat)
	if !ok {
		return fmt.Errorf("no gauges to match against")
	}
	log.Info().Str("gauge", gauge.ID).Str("name", gauge.Name).
		Float64("distance_km", distKm).Msg("nearest gauge")

	begin := series.Times[0]
	end := series.Times[len(series.Times)-1]

	client := coops.NewClient("stofs-validation")
	obs, err := client.WaterLevelsMSL(gauge.ID, begin, end, datum)
	if err != nil {
		return err
	}

	lines := []render.Series{{
		Name:   "Model: " + series.Name,
		Times:  series.Times,
		Values: series.Elev,
	}}
	if len(obs) > 0 {
		obsSeries := render.Series{Name: "Observed: " + gauge.Name}
		for _, s := range obs {
			obsSeries.Times = append(obsSeries.Times, s.Time)
			obsSeries.Values = append(obsSeries.Values, s.Value)
		}
		lines = append(lines, obsSeries)

		o, m := coops.Align(obs, series.Times, series.Elev, coops.DefaultAlignTolerance)
		stats := coops.Compare(o, m)
		if !math.IsNaN(stats.RMSE) {
			lines[0].Name = fmt.Sprintf("%s (RMSE %.3f m, bias %+.3f m)",
				lines[0].Name, stats.RMSE, stats.Bias)
			log.Info().Float64("rmse", stats.RMSE).Float64("bias", stats.Bias).
				Int("n", stats.N).Msg("agreement")
		}
	}

	title := fmt.Sprintf("Water Level: %s\nvs %s (%.1f km away)", series.Name, gauge.Name, distKm)
	p, err := render.Timeseries(title, "Elevation (m, MSL)", lines...)
	if err != nil {
		return err
	}
	if err := render.SavePNG(p, 11, 5, plotFn); err != nil {
		return err
	}
	log.Info().Str("plot", plotFn).Msg("wrote")
	return nil
}

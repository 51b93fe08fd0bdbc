// stofsagent downloads STOFS-2D Global maximum elevation fields for a range
// of dates and cycles and renders bias-correction difference maps for the
// standing validation regions.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/akamensky/argparse"
	"github.com/gosuri/uiprogress"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/mansurjisan/My-Scripts/adcirc"
	"github.com/mansurjisan/My-Scripts/noaa"
	"github.com/mansurjisan/My-Scripts/render"
)

const maximumSimultaneousDownloads = 4

// Global semaphore used to limit the number of simultaneous downloads
var fetchSem = make(chan int, maximumSimultaneousDownloads)

type config struct {
	Root    string
	Cycles  []string
	Regions []string
	VMin    float64
	VMax    float64
	Levels  int
	// An existing file at least this large is trusted and not re-fetched.
	MinSize int64
}

func defaultConfig() config {
	regions := []string{}
	for _, r := range render.ValidationRegions {
		regions = append(regions, r.Key)
	}
	return config{
		Root:    noaa.STOFS2DGlobalSource.Root,
		Cycles:  noaa.DefaultCycles,
		Regions: regions,
		VMin:    -0.5,
		VMax:    0.5,
		Levels:  20,
		MinSize: 100 << 20,
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("bucket_root", cfg.Root)
	v.SetDefault("cycles", cfg.Cycles)
	v.SetDefault("regions", cfg.Regions)
	v.SetDefault("plot.vmin", cfg.VMin)
	v.SetDefault("plot.vmax", cfg.VMax)
	v.SetDefault("plot.levels", cfg.Levels)
	v.SetDefault("min_size", cfg.MinSize)

	if err := v.ReadInConfig(); err != nil {
		return cfg, err
	}

	cfg.Root = v.GetString("bucket_root")
	cfg.Cycles = v.GetStringSlice("cycles")
	cfg.Regions = v.GetStringSlice("regions")
	cfg.VMin = v.GetFloat64("plot.vmin")
	cfg.VMax = v.GetFloat64("plot.vmax")
	cfg.Levels = v.GetInt("plot.levels")
	cfg.MinSize = v.GetInt64("min_size")
	return cfg, nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	parser := argparse.NewParser("stofsagent", "STOFS-2D maxele download and validation plotting agent")

	date := parser.String("d", "date", &argparse.Options{
		Help: "single date to process (YYYYMMDD)"})
	startDate := parser.String("", "start-date", &argparse.Options{
		Help: "first date of a range (YYYYMMDD)"})
	endDate := parser.String("", "end-date", &argparse.Options{
		Help: "last date of a range (YYYYMMDD)"})
	cycles := parser.String("c", "cycles", &argparse.Options{
		Default: "",
		Help:    "comma-separated cycle hours, e.g. 00,12 (default: all four)"})
	outputDir := parser.String("o", "output-dir", &argparse.Options{
		Default: ".",
		Help:    "directory to place downloads and plots under"})
	configFn := parser.String("", "config", &argparse.Options{
		Default: "",
		Help:    "YAML configuration file overriding bucket root, cycles, regions and plot parameters"})
	downloadOnly := parser.Flag("", "download-only", &argparse.Options{
		Help: "download fields without plotting"})
	plotOnly := parser.Flag("", "plot-only", &argparse.Options{
		Help: "plot from already-downloaded fields without touching the network"})
	listRegions := parser.Flag("", "list-regions", &argparse.Options{
		Help: "list the available region keys and exit"})
	verbose := parser.Flag("v", "verbose", &argparse.Options{
		Help: "enable debug logging"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(2)
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *listRegions {
		for _, key := range render.Keys() {
			fmt.Println(key)
		}
		return
	}

	cfg, err := loadConfig(*configFn)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configFn).Msg("reading configuration")
	}
	if *cycles != "" {
		cfg.Cycles = strings.Split(*cycles, ",")
	}

	dates, err := datesFromFlags(*date, *startDate, *endDate)
	if err != nil {
		log.Fatal().Err(err).Msg("bad date selection")
	}

	source := noaa.STOFS2DGlobalSource
	source.Root = cfg.Root

	failed := 0
	for _, day := range dates {
		for _, hour := range cfg.Cycles {
			if err := processCycle(&source, day, hour, *outputDir, cfg, *downloadOnly, *plotOnly); err != nil {
				log.Error().Err(err).
					Str("date", day.Format("20060102")).Str("cycle", hour).
					Msg("cycle failed")
				failed++
			}
		}
	}
	if failed > 0 {
		log.Fatal().Int("failed", failed).Msg("some cycles did not complete")
	}
}

func datesFromFlags(date, start, end string) ([]time.Time, error) {
	const layout = "20060102"

	if date != "" {
		d, err := time.Parse(layout, date)
		if err != nil {
			return nil, err
		}
		return []time.Time{d}, nil
	}
	if start == "" {
		// Yesterday's cycles are complete; today's may still be uploading.
		return []time.Time{time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)}, nil
	}

	s, err := time.Parse(layout, start)
	if err != nil {
		return nil, err
	}
	e := s
	if end != "" {
		if e, err = time.Parse(layout, end); err != nil {
			return nil, err
		}
	}
	if e.Before(s) {
		return nil, fmt.Errorf("end date %v before start date %v", end, start)
	}

	var dates []time.Time
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates, nil
}

// cycleDir is where one cycle's downloads and plots live.
func cycleDir(outputDir string, day time.Time, hour string) string {
	return filepath.Join(outputDir, day.Format("20060102"), "t"+hour+"z")
}

func processCycle(source *noaa.DataSource, day time.Time, hour, outputDir string, cfg config, downloadOnly, plotOnly bool) error {
	dir := cycleDir(outputDir, day, hour)

	cwlFn := filepath.Join(dir, fmt.Sprintf(noaa.MaxeleCWLPattern, hour))
	rawFn := filepath.Join(dir, fmt.Sprintf(noaa.MaxeleNoAnomalyPattern, hour))

	if !plotOnly {
		if err := downloadPair(source, day, hour, cwlFn, rawFn, cfg); err != nil {
			return err
		}
	}
	if downloadOnly {
		return nil
	}

	return plotCycle(day, hour, dir, cwlFn, rawFn, cfg)
}

// downloadPair fetches both maxele variants concurrently.
func downloadPair(source *noaa.DataSource, day time.Time, hour, cwlFn, rawFn string, cfg config) error {
	cycle, err := source.CycleAt(day, hour)
	if err != nil {
		return err
	}

	files := map[string]string{
		fmt.Sprintf(noaa.MaxeleCWLPattern, hour):       cwlFn,
		fmt.Sprintf(noaa.MaxeleNoAnomalyPattern, hour): rawFn,
	}

	uiprogress.Start()
	defer uiprogress.Stop()

	var wg sync.WaitGroup
	errs := make(chan error, len(files))
	for name, destFn := range files {
		wg.Add(1)
		go func(name, destFn string) {
			defer wg.Done()

			fetchSem <- 1
			defer func() { <-fetchSem }()

			bar := uiprogress.AddBar(100).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return fmt.Sprintf("%-45s", name)
			})

			product := cycle.Product(name)
			log.Info().Str("product", name).Str("cycle", cycle.Identifier).Msg("downloading")

			err := product.Download(destFn, noaa.DownloadOptions{
				MinSize: cfg.MinSize,
				Progress: func(done, total int64) {
					if total > 0 {
						bar.Set(int(done * 100 / total))
					}
				},
			})
			if err != nil {
				errs <- err
				return
			}
			bar.Set(100)
			if fi, err := os.Stat(destFn); err == nil {
				log.Info().Str("product", name).
					Str("size", noaa.ByteCount(fi.Size()).String()).
					Msg("downloaded")
			}
		}(name, destFn)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func plotCycle(day time.Time, hour, dir, cwlFn, rawFn string, cfg config) error {
	cwl, err := adcirc.Open(cwlFn)
	if err != nil {
		return err
	}
	defer cwl.Close()

	raw, err := adcirc.Open(rawFn)
	if err != nil {
		return err
	}
	defer raw.Close()

	mesh, err := cwl.Mesh()
	if err != nil {
		return err
	}
	cwlMax, err := cwl.Field("zeta_max")
	if err != nil {
		return err
	}
	rawMax, err := raw.Field("zeta_max")
	if err != nil {
		return err
	}

	scale := render.DivergingScale(cfg.VMin, cfg.VMax, cfg.Levels)
	stamp := day.Format("20060102")

	for _, key := range cfg.Regions {
		region, ok := render.Lookup(key)
		if !ok {
			log.Warn().Str("region", key).Msg("unknown region, skipping")
			continue
		}

		sub, err := mesh.Extract(region.Box, adcirc.DefaultBuffer)
		if err != nil {
			log.Warn().Err(err).Str("region", key).Msg("region not covered by mesh")
			continue
		}

		p, err := render.DifferenceMap(sub, sub.Slice(rawMax), sub.Slice(cwlMax), render.MapOptions{
			Title: fmt.Sprintf("%s\nMax Elevation Difference (CWL - No Anomaly), %s t%sz",
				region.Name, stamp, hour),
			Region: region,
			Scale:  scale,
		})
		if err != nil {
			return err
		}

		plotFn := filepath.Join(dir, fmt.Sprintf("maxele_diff_%s_%s_t%sz.png", key, stamp, hour))
		if err := render.SavePNG(p, 10, 8, plotFn); err != nil {
			return err
		}
		log.Info().Str("plot", filepath.Base(plotFn)).Msg("wrote")
	}
	return nil
}

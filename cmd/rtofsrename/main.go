// rtofsrename files a directory of RTOFS archives under date-stamped names,
// optionally downloading them from NOMADS first and running the NetCDF
// conversion afterwards.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/akamensky/argparse"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mansurjisan/My-Scripts/noaa"
	"github.com/mansurjisan/My-Scripts/rtofs"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})

	parser := argparse.NewParser("rtofsrename", "Date-stamp RTOFS archive files for a forecast cycle")

	dir := parser.StringPositional(&argparse.Options{
		Default: ".",
		Help:    "directory holding the cycle's archive files"})
	date := parser.String("d", "date", &argparse.Options{
		Help: "cycle date (YYYYMMDD, default: today UTC)"})
	jobs := parser.Int("j", "jobs", &argparse.Options{
		Default: 4,
		Help:    "parallel downloads and conversions"})
	fetch := parser.Flag("", "fetch", &argparse.Options{
		Help: "download the cycle's archives from NOMADS first"})
	surfaceOnly := parser.Flag("", "surface-only", &argparse.Options{
		Help: "with --fetch, transfer only the surface records of each .a archive"})
	convert := parser.Flag("", "convert", &argparse.Options{
		Help: "run the NetCDF converter on each date-stamped pair"})
	controlFn := parser.String("", "control", &argparse.Options{
		Default: "",
		Help:    "converter control input file (required with --convert)"})
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

	cycleDate := time.Now().UTC().Truncate(24 * time.Hour)
	if *date != "" {
		var err error
		if cycleDate, err = time.Parse("20060102", *date); err != nil {
			log.Fatal().Err(err).Msg("bad --date")
		}
	}

	if *convert && *controlFn == "" {
		log.Fatal().Msg("--convert requires --control")
	}

	if *fetch {
		if err := fetchCycle(*dir, cycleDate, *jobs, *surfaceOnly); err != nil {
			log.Fatal().Err(err).Msg("fetching cycle")
		}
	}

	plan, err := rtofs.PlanRenames(*dir, cycleDate)
	if err != nil {
		log.Fatal().Err(err).Msg("scanning archive directory")
	}
	for _, step := range plan.MissingSteps {
		log.Warn().Str("step", step).Msg("step not present")
	}
	for _, step := range plan.BrokenPairs {
		log.Warn().Str("step", step).Msg("archive pair incomplete, skipping")
	}
	if err := plan.Apply(); err != nil {
		log.Fatal().Err(err).Msg("renaming")
	}
	log.Info().Int("renamed", len(plan.Renames)).Msg("cycle filed")

	if *convert {
		if err := convertAll(plan, *controlFn, *jobs); err != nil {
			log.Fatal().Err(err).Msg("converting")
		}
	}
}

// fetchCycle downloads the cycle's archives: the ".b" inventories fully,
// then the ".a" companions either fully or cut down to their surface
// records with ranged requests.
func fetchCycle(dir string, cycleDate time.Time, jobs int, surfaceOnly bool) error {
	source := &noaa.RTOFSGlobalSource

	cycles, err := source.FetchCycles()
	if err != nil {
		return err
	}

	want := "rtofs." + cycleDate.Format("20060102")
	var cycle *noaa.Cycle
	for _, c := range cycles {
		if c.Identifier == want {
			cycle = c
			break
		}
	}
	if cycle == nil {
		return fmt.Errorf("cycle %v not on the server", want)
	}

	products, err := cycle.FetchProducts()
	if err != nil {
		return err
	}
	log.Info().Str("cycle", want).Int("products", len(products)).Msg("cycle found")
	if len(products) < source.MinProducts {
		return fmt.Errorf("cycle %v has %d products, expecting at least %d",
			want, len(products), source.MinProducts)
	}

	// Inventories first: the ranged ".a" fetches need them on disk.
	var inventories, archives []*noaa.Product
	for _, p := range products {
		if p.Ext == "b" {
			inventories = append(inventories, p)
		} else {
			archives = append(archives, p)
		}
	}

	if err := forEachProduct(inventories, jobs, func(p *noaa.Product) error {
		return p.Download(filepath.Join(dir, p.Identifier), noaa.DownloadOptions{})
	}); err != nil {
		return err
	}

	return forEachProduct(archives, jobs, func(p *noaa.Product) error {
		destFn := filepath.Join(dir, p.Identifier)
		if !surfaceOnly {
			return p.Download(destFn, noaa.DownloadOptions{})
		}
		return fetchSurface(p, destFn)
	})
}

// fetchSurface transfers only the surface record slabs of a ".a" archive,
// located with the ".b" inventory downloaded beforehand.
func fetchSurface(p *noaa.Product, destFn string) error {
	invFn := strings.TrimSuffix(destFn, ".a") + ".b"
	invFile, err := os.Open(invFn)
	if err != nil {
		return err
	}
	defer invFile.Close()

	inv, err := rtofs.ParseInventory(invFile)
	if err != nil {
		return fmt.Errorf("parsing %v: %w", invFn, err)
	}

	records := rtofs.SurfaceRecords(inv)
	if len(records) == 0 {
		return fmt.Errorf("%v describes no surface records", invFn)
	}

	out, err := os.Create(destFn)
	if err != nil {
		return err
	}
	defer out.Close()

	var total int64
	for _, r := range records {
		total += r.Extent
	}
	log.Info().Str("product", p.Identifier).
		Int("records", len(records)).
		Str("size", noaa.ByteCount(total).String()).
		Msg("fetching surface records")

	return p.FetchRanges(out, rtofs.Spans(records))
}

// forEachProduct runs fn over the products with at most jobs in flight.
func forEachProduct(products []*noaa.Product, jobs int, fn func(*noaa.Product) error) error {
	if jobs < 1 {
		jobs = 1
	}
	sem := make(chan int, jobs)
	errs := make(chan error, len(products))

	var wg sync.WaitGroup
	for _, p := range products {
		wg.Add(1)
		go func(p *noaa.Product) {
			defer wg.Done()

			sem <- 1
			defer func() { <-sem }()

			if err := fn(p); err != nil {
				log.Error().Err(err).Str("product", p.Identifier).Msg("fetch failed")
				errs <- err
			}
		}(p)
	}
	wg.Wait()
	close(errs)

	return <-errs
}

// convertAll runs the NetCDF converter over every renamed pair, one job per
// valid date.
func convertAll(plan *rtofs.RenamePlan, controlFn string, parallel int) error {
	var jobs []rtofs.Job
	for _, r := range plan.Renames {
		if !strings.HasSuffix(r.To, ".a") {
			continue
		}

		archvFn := strings.TrimSuffix(r.To, ".a")
		destFn := archvFn + ".nc"

		// With the extension stripped, the stamped name ends in the
		// valid date.
		parts := strings.Split(filepath.Base(archvFn), ".")
		validDate, err := time.Parse("20060102", parts[len(parts)-1])
		if err != nil {
			return fmt.Errorf("unstamped archive name %v", r.To)
		}

		jobs = append(jobs, rtofs.Job{
			Date: validDate,
			Run: func() error {
				control, err := os.Open(controlFn)
				if err != nil {
					return err
				}
				defer control.Close()
				return rtofs.Archv2NCDF(archvFn, destFn, control)
			},
		})
	}

	failures := rtofs.RunBatch(jobs, parallel)
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d conversions failed", len(failures), len(jobs))
	}
	log.Info().Int("converted", len(jobs)).Msg("conversions complete")
	return nil
}

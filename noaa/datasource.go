package noaa

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// A DataSource contains information on where to get forecast cycles and
// their products from.
type DataSource struct {
	Root           string        // root URL for the source
	CyclePattern   string        // pattern matching directories holding individual cycles
	CyclePrefix    string        // literal prefix of cycle directory names on index-less sources
	CycleFormat    string        // time layout for the date part of those names
	ProductPattern string        // pattern matching individual products within a cycle
	FetchStrategy  FetchStrategy // strategy to use when fetching data
	MinProducts    int           // minimum number of products for a cycle to be "good" (0 for no limit)
}

// FetchCycles fetches the available cycles from the source's index page.
// Partial cycles (those with only some products uploaded yet) are also
// returned, so check the product count against what you expect.
func (ds *DataSource) FetchCycles() ([]*Cycle, error) {
	baseURL, err := url.Parse(ds.Root)
	if err != nil {
		return nil, err
	}

	cycleRegexp, err := regexp.Compile(ds.CyclePattern)
	if err != nil {
		return nil, err
	}

	doc, err := getAndParse(ds.Root, ds.FetchStrategy)
	if err != nil {
		return nil, err
	}

	return parseCycles(doc, ds, baseURL, cycleRegexp), nil
}

// CycleAt returns the cycle for a given day and run hour on a source whose
// directories are addressed by convention (the S3 bucket publishes no
// index page to scrape). The prefix is concatenated rather than embedded in
// the layout: time.Format treats substrings like "_2" as layout tokens.
func (ds *DataSource) CycleAt(day time.Time, hour string) (*Cycle, error) {
	if ds.CycleFormat == "" {
		return nil, errors.New("data source has no cycle naming convention")
	}

	identifier := ds.CyclePrefix + day.UTC().Format(ds.CycleFormat)
	u, err := url.Parse(ds.Root + identifier + "/")
	if err != nil {
		return nil, err
	}

	h, err := strconv.Atoi(hour)
	if err != nil {
		return nil, errors.Wrapf(err, "bad cycle hour %q", hour)
	}

	when := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, time.UTC)
	return &Cycle{Source: ds, Identifier: identifier, URL: u, When: when}, nil
}

// Parse an index page looking for anchors matching the cycle pattern.
func parseCycles(doc *html.Node, ds *DataSource, baseURL *url.URL, cycleRegexp *regexp.Regexp) []*Cycle {
	cycles := []*Cycle{}

	anchorHrefs(doc, func(href string) {
		identifier := strings.TrimRight(href, "/")

		submatches := cycleRegexp.FindStringSubmatch(identifier)
		if submatches == nil {
			return
		}

		relURL, err := url.Parse(href)
		if err != nil {
			return
		}
		u := baseURL.ResolveReference(relURL)

		var year, month, day, hour int
		for idx, subexpName := range cycleRegexp.SubexpNames() {
			val, err := strconv.Atoi(submatches[idx])
			if err != nil {
				continue
			}
			switch subexpName {
			case "year":
				year = val
			case "month":
				month = val
			case "day":
				day = val
			case "hour":
				hour = val
			}
		}

		when := time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC)
		cycles = append(cycles, &Cycle{Source: ds, Identifier: identifier, URL: u, When: when})
	})

	return cycles
}

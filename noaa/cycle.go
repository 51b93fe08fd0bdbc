// Individual forecast cycles.

package noaa

import (
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// A Cycle is a description of an individual run of a forecast system: one
// date-stamped directory holding that run's products.
type Cycle struct {
	Source     *DataSource
	Identifier string
	URL        *url.URL
	When       time.Time
}

// Product returns the named product within the cycle without consulting the
// server. Used with convention-addressed sources such as the S3 bucket.
func (c *Cycle) Product(name string) *Product {
	u := *c.URL
	u.Path = u.Path + name
	return &Product{Cycle: c, Identifier: name, URL: &u}
}

// FetchProducts fetches a list of the individual products available in the
// cycle by scraping its index page.
func (c *Cycle) FetchProducts() ([]*Product, error) {
	productRegexp, err := regexp.Compile(c.Source.ProductPattern)
	if err != nil {
		return nil, err
	}

	doc, err := getAndParse(c.URL.String(), c.Source.FetchStrategy)
	if err != nil {
		return nil, err
	}

	return parseProducts(doc, c, productRegexp), nil
}

// Parse a cycle index page looking for anchors matching the product
// pattern. Products whose run hour disagrees with the cycle's hour are
// skipped.
func parseProducts(doc *html.Node, c *Cycle, productRegexp *regexp.Regexp) []*Product {
	products := []*Product{}

	anchorHrefs(doc, func(href string) {
		identifier := strings.TrimRight(href, "/")

		submatches := productRegexp.FindStringSubmatch(identifier)
		if submatches == nil {
			return
		}

		relURL, err := url.Parse(href)
		if err != nil {
			return
		}
		u := c.URL.ResolveReference(relURL)

		var (
			runHour      int
			forecastHour int
			ext          string
		)
		for idx, subexpName := range productRegexp.SubexpNames() {
			val := submatches[idx]
			switch subexpName {
			case "runHour":
				runHour, _ = strconv.Atoi(val)
			case "stepId":
				forecastHour = parseStepID(val)
			case "ext":
				ext = val
			}
		}

		if runHour != c.When.Hour() {
			log.Debug().Str("product", identifier).
				Int("runHour", runHour).Int("cycleHour", c.When.Hour()).
				Msg("product run hour does not match cycle")
			return
		}

		products = append(products, &Product{
			Cycle: c, Identifier: identifier, URL: u,
			ForecastHour: forecastHour, Ext: ext,
		})
	})

	return products
}

// parseStepID maps an archive step identifier to a forecast hour: "n00" is
// the nowcast (hour 0), "fNN"/"fNNN" the forecast hour.
func parseStepID(step string) int {
	if strings.HasPrefix(step, "f") {
		h, _ := strconv.Atoi(step[1:])
		return h
	}
	return 0
}

// Sorting cycles by date
type ByDate []*Cycle

func (d ByDate) Len() int           { return len(d) }
func (d ByDate) Swap(i, j int)      { d[i], d[j] = d[j], d[i] }
func (d ByDate) Less(i, j int) bool { return d[i].When.Before(d[j].When) }

// Latest returns the cycles sorted most recent first.
func Latest(cycles []*Cycle) []*Cycle {
	out := append([]*Cycle{}, cycles...)
	sort.Sort(sort.Reverse(ByDate(out)))
	return out
}

// Package coops fetches water level observations from the NOAA CO-OPS
// Tides & Currents API and compares them against model output.
package coops

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mansurjisan/My-Scripts/noaa"
)

// DefaultAPIRoot is the CO-OPS data getter endpoint.
const DefaultAPIRoot = "https://api.tidesandcurrents.gov/api/prod/datagetter"

// A Client talks to the CO-OPS API. The zero value is not usable; call
// NewClient.
type Client struct {
	Root        string
	Application string
	Strategy    noaa.FetchStrategy

	httpClient *http.Client
}

// NewClient returns a client with the default endpoint and fetch strategy.
func NewClient(application string) *Client {
	strategy := noaa.DefaultFetchStrategy
	return &Client{
		Root:        DefaultAPIRoot,
		Application: application,
		Strategy:    strategy,
		httpClient:  &http.Client{Timeout: strategy.FetchTimeout},
	}
}

// A Sample is one observed water level.
type Sample struct {
	Time  time.Time
	Value float64
}

type apiResponse struct {
	Data []struct {
		T string `json:"t"`
		V string `json:"v"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// WaterLevels fetches verified/preliminary water levels for a station over
// [begin, end], relative to the given datum, in metric units and GMT.
// Samples the gauge reported but left empty are dropped.
func (c *Client) WaterLevels(station string, begin, end time.Time, datum string) ([]Sample, error) {
	q := url.Values{}
	q.Set("product", "water_level")
	q.Set("application", c.Application)
	q.Set("station", station)
	q.Set("begin_date", begin.UTC().Format("20060102 15:04"))
	q.Set("end_date", end.UTC().Format("20060102 15:04"))
	q.Set("datum", datum)
	q.Set("time_zone", "gmt")
	q.Set("units", "metric")
	q.Set("format", "json")

	reqURL := c.Root + "?" + q.Encode()

	var lastErr error
	for try := 0; try < max(c.Strategy.MaximumRetries, 1); try++ {
		if try > 0 {
			time.Sleep(c.Strategy.RetrySleep)
		}

		samples, err := c.fetchOnce(reqURL)
		if err == nil {
			return samples, nil
		}
		lastErr = err

		// An API-level error (bad station, unsupported datum) will not
		// improve with retrying.
		var apiErr apiError
		if errors.As(err, &apiErr) {
			return nil, err
		}
		log.Warn().Err(err).Str("station", station).Msg("retrying observation fetch")
	}
	return nil, lastErr
}

// WaterLevelsMSL fetches water levels for the requested datum, falling
// back to MSL when the station does not support it.
func (c *Client) WaterLevelsMSL(station string, begin, end time.Time, datum string) ([]Sample, error) {
	samples, err := c.WaterLevels(station, begin, end, datum)
	if err == nil || datum == "MSL" {
		return samples, err
	}
	log.Warn().Str("station", station).Str("datum", datum).Msg("falling back to MSL datum")
	return c.WaterLevels(station, begin, end, "MSL")
}

func (c *Client) fetchOnce(reqURL string) ([]Sample, error) {
	resp, err := c.httpClient.Get(reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("CO-OPS API: HTTP %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decoding CO-OPS response")
	}
	if body.Error != nil {
		return nil, apiError{message: body.Error.Message}
	}

	samples := make([]Sample, 0, len(body.Data))
	for _, d := range body.Data {
		if d.V == "" {
			continue
		}
		v, err := strconv.ParseFloat(d.V, 64)
		if err != nil {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02 15:04", d.T, time.UTC)
		if err != nil {
			return nil, errors.Wrapf(err, "bad observation time %q", d.T)
		}
		samples = append(samples, Sample{Time: t, Value: v})
	}
	return samples, nil
}

type apiError struct {
	message string
}

func (e apiError) Error() string {
	return fmt.Sprintf("CO-OPS API: %s", e.message)
}

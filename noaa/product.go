// An individual product file from a forecast cycle.

package noaa

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// A Product is one file within a forecast cycle: a NetCDF field file, an
// archive record file, etc.
type Product struct {
	Cycle        *Cycle
	Identifier   string
	URL          *url.URL
	ForecastHour int
	Ext          string
}

// DownloadOptions tune Product.Download.
type DownloadOptions struct {
	// MinSize: an existing destination at least this large is reused
	// without touching the network. Zero disables reuse.
	MinSize int64
	// Progress, when non-nil, is called as bytes arrive. total is zero
	// when the server did not announce a length.
	Progress func(done, total int64)
}

// ContentLength asks the server for the product's size.
func (p *Product) ContentLength() (int64, error) {
	resp, err := http.Head(p.URL.String())
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("fetching headers for %v: HTTP %d", p.Identifier, resp.StatusCode)
	}
	if resp.ContentLength < 0 {
		return 0, errors.New("server did not give Content-Length for product")
	}
	return resp.ContentLength, nil
}

// Download fetches the product to destFn. The transfer goes to a temporary
// file in the destination directory which is renamed into place only once
// it verifies, so a partial download never masquerades as a product. A 404
// aborts immediately; other failures retry per the cycle's fetch strategy.
func (p *Product) Download(destFn string, opts DownloadOptions) error {
	if opts.MinSize > 0 {
		if fi, err := os.Stat(destFn); err == nil && fi.Size() >= opts.MinSize {
			log.Info().Str("file", filepath.Base(destFn)).Msg("already downloaded")
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(destFn), 0o755); err != nil {
		return err
	}

	strategy := p.Cycle.Source.FetchStrategy
	var lastErr error
	for try := 0; try < strategy.attempts(); try++ {
		if try > 0 {
			log.Warn().Err(lastErr).Str("product", p.Identifier).
				Int("try", try+1).Msg("retrying download")
			sleep(strategy.RetrySleep)
		}

		err := p.downloadOnce(destFn, opts)
		if err == nil {
			return nil
		}
		lastErr = err
		if isNotFound(err) {
			return err
		}
	}
	return lastErr
}

func (p *Product) downloadOnce(destFn string, opts DownloadOptions) error {
	client := p.Cycle.Source.FetchStrategy.client()

	resp, err := client.Get(p.URL.String())
	if err != nil {
		return errors.Wrapf(err, "fetching %v", p.Identifier)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%v: %w", p.Identifier, errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("fetching %v: HTTP %d", p.Identifier, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destFn), filepath.Base(destFn)+".part.")
	if err != nil {
		return err
	}
	tmpFn := tmp.Name()
	defer os.Remove(tmpFn)

	total := resp.ContentLength
	var reader io.Reader = resp.Body
	if opts.Progress != nil {
		reported := total
		if reported < 0 {
			reported = 0
		}
		reader = &progressReader{r: resp.Body, total: reported, report: opts.Progress}
	}

	written, err := io.Copy(tmp, reader)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrapf(err, "writing %v", destFn)
	}

	if written == 0 {
		return errors.Errorf("%v: empty download", p.Identifier)
	}
	if total > 0 && written != total {
		return errors.Errorf("%v: short download: %d of %d bytes", p.Identifier, written, total)
	}

	return os.Rename(tmpFn, destFn)
}

// A ByteSpan addresses a contiguous run of bytes within the product.
type ByteSpan struct {
	Offset int64
	Extent int64
}

// FetchRanges fetches the given byte spans of the product and writes them
// to output in the order given. Contiguous spans coalesce into one request;
// each remaining span gets its own request, since a multi-range request
// comes back as multipart/byteranges with MIME framing in the body (and S3
// refuses them outright).
func (p *Product) FetchRanges(output io.Writer, spans []ByteSpan) error {
	client := new(http.Client)

	for _, s := range coalesceSpans(spans) {
		if err := p.fetchRange(client, output, s); err != nil {
			return err
		}
	}
	return nil
}

func (p *Product) fetchRange(client *http.Client, output io.Writer, s ByteSpan) error {
	req, err := http.NewRequest("GET", p.URL.String(), nil)
	if err != nil {
		return err
	}

	// Range header values are *inclusive*.
	req.Header.Add("Range", fmt.Sprintf("bytes=%d-%d", s.Offset, s.Offset+s.Extent-1))

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPartialContent {
		return errors.Errorf("expected HTTP partial content, got %v", resp.StatusCode)
	}

	written, err := io.Copy(output, resp.Body)
	if err != nil {
		return err
	}
	if written != s.Extent {
		return errors.Errorf("range %d+%d: got %d of %d bytes",
			s.Offset, s.Extent, written, s.Extent)
	}
	return nil
}

// coalesceSpans merges adjacent spans so a contiguous run costs a single
// request.
func coalesceSpans(spans []ByteSpan) []ByteSpan {
	var out []ByteSpan
	for _, s := range spans {
		if n := len(out); n > 0 && out[n-1].Offset+out[n-1].Extent == s.Offset {
			out[n-1].Extent += s.Extent
			continue
		}
		out = append(out, s)
	}
	return out
}

var errNotFound = errors.New("not found on server")

func isNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

type progressReader struct {
	r      io.Reader
	done   int64
	total  int64
	report func(done, total int64)
}

func (pr *progressReader) Read(b []byte) (int, error) {
	n, err := pr.r.Read(b)
	pr.done += int64(n)
	pr.report(pr.done, pr.total)
	return n, err
}

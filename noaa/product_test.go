package noaa

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func testCycle(t *testing.T, serverURL string) *Cycle {
	t.Helper()
	ds := &DataSource{FetchStrategy: FetchStrategy{MaximumRetries: 2, FetchTimeout: 5 * time.Second}}
	u, err := url.Parse(serverURL + "/")
	if err != nil {
		t.Fatal(err)
	}
	return &Cycle{Source: ds, URL: u, When: time.Now().UTC()}
}

func TestDownload(t *testing.T) {
	sleep = func(time.Duration) {}
	defer func() { sleep = time.Sleep }()

	body := []byte("maxele field bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	c := testCycle(t, srv.URL)
	p := c.Product("stofs_2d_glo.t00z.fields.cwl.maxele.nc")

	dest := filepath.Join(t.TempDir(), "out", "maxele.nc")
	if err := p.Download(dest, DownloadOptions{}); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(body) {
		t.Errorf("downloaded %q", got)
	}

	// No stray partial files left behind.
	entries, _ := os.ReadDir(filepath.Dir(dest))
	if len(entries) != 1 {
		t.Errorf("destination dir has %d entries, want 1", len(entries))
	}
}

func TestDownloadNotFoundDoesNotRetry(t *testing.T) {
	sleep = func(time.Duration) {}
	defer func() { sleep = time.Sleep }()

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := testCycle(t, srv.URL)
	p := c.Product("missing.nc")

	err := p.Download(filepath.Join(t.TempDir(), "missing.nc"), DownloadOptions{})
	if err == nil {
		t.Fatal("want error for missing product")
	}
	if !isNotFound(err) {
		t.Errorf("error not classified as missing: %v", err)
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}

func TestDownloadEmptyBodyRetries(t *testing.T) {
	sleep = func(time.Duration) {}
	defer func() { sleep = time.Sleep }()

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	c := testCycle(t, srv.URL)
	p := c.Product("empty.nc")

	if err := p.Download(filepath.Join(t.TempDir(), "empty.nc"), DownloadOptions{}); err == nil {
		t.Fatal("want error for empty download")
	}
	if hits != 2 {
		t.Errorf("server hit %d times, want 2", hits)
	}
}

func TestDownloadReusesExisting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be contacted")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "have.nc")
	if err := os.WriteFile(dest, make([]byte, 2048), 0o644); err != nil {
		t.Fatal(err)
	}

	c := testCycle(t, srv.URL)
	p := c.Product("have.nc")
	if err := p.Download(dest, DownloadOptions{MinSize: 1024}); err != nil {
		t.Fatal(err)
	}
}

func TestProgressReporting(t *testing.T) {
	body := make([]byte, 1<<16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The body is larger than the server's write buffer, so announce
		// the length explicitly or the response goes out chunked.
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Write(body)
	}))
	defer srv.Close()

	c := testCycle(t, srv.URL)
	p := c.Product("big.nc")

	var last, total int64
	err := p.Download(filepath.Join(t.TempDir(), "big.nc"), DownloadOptions{
		Progress: func(done, tot int64) { last, total = done, tot },
	})
	if err != nil {
		t.Fatal(err)
	}
	if last != int64(len(body)) {
		t.Errorf("final progress %d, want %d", last, len(body))
	}
	if total != int64(len(body)) {
		t.Errorf("reported total %d, want %d", total, len(body))
	}
}

func TestProgressUnknownTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flushing mid-body forces a chunked response with no
		// Content-Length.
		w.Write(make([]byte, 1024))
		w.(http.Flusher).Flush()
		w.Write(make([]byte, 1024))
	}))
	defer srv.Close()

	c := testCycle(t, srv.URL)
	p := c.Product("chunked.nc")

	var total int64 = -2
	err := p.Download(filepath.Join(t.TempDir(), "chunked.nc"), DownloadOptions{
		Progress: func(done, tot int64) { total = tot },
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("unknown length reported as %d, want 0", total)
	}
}

func TestFetchRanges(t *testing.T) {
	content := []byte("AAAABBBBCCCCDDDD")
	var ranges []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rng := r.Header.Get("Range")
		ranges = append(ranges, rng)

		var lo, hi int
		if _, err := fmt.Sscanf(rng, "bytes=%d-%d", &lo, &hi); err != nil {
			t.Errorf("bad range header %q", rng)
			http.Error(w, "bad range", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", lo, hi, len(content)))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(content[lo : hi+1])
	}))
	defer srv.Close()

	c := testCycle(t, srv.URL)
	p := c.Product("archive.a")

	// Disjoint spans: the body of each response must land in the output
	// as bare bytes, one request per span.
	var buf bytes.Buffer
	spans := []ByteSpan{{Offset: 0, Extent: 4}, {Offset: 8, Extent: 4}}
	if err := p.FetchRanges(&buf, spans); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "AAAACCCC" {
		t.Errorf("fetched %q, want %q", buf.String(), "AAAACCCC")
	}
	if len(ranges) != 2 || ranges[0] != "bytes=0-3" || ranges[1] != "bytes=8-11" {
		t.Errorf("range headers = %v", ranges)
	}

	// Contiguous spans coalesce into a single request.
	ranges = nil
	buf.Reset()
	spans = []ByteSpan{{Offset: 0, Extent: 4}, {Offset: 4, Extent: 4}, {Offset: 12, Extent: 4}}
	if err := p.FetchRanges(&buf, spans); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "AAAABBBBDDDD" {
		t.Errorf("fetched %q, want %q", buf.String(), "AAAABBBBDDDD")
	}
	if len(ranges) != 2 || ranges[0] != "bytes=0-7" {
		t.Errorf("range headers = %v", ranges)
	}
}

func TestFetchRangesShortBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte("AB"))
	}))
	defer srv.Close()

	c := testCycle(t, srv.URL)
	p := c.Product("archive.a")

	var buf bytes.Buffer
	err := p.FetchRanges(&buf, []ByteSpan{{Offset: 0, Extent: 8}})
	if err == nil {
		t.Fatal("short range body not reported")
	}
}

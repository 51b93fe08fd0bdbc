// Network utilities

package noaa

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// replaced in tests
var sleep = time.Sleep

// Fetch data from a URL interpreting the result as HTML and return the root
// of the HTML parse tree. Retries per the strategy; a 404 is terminal since
// the index is simply not there yet.
func getAndParse(url string, strategy FetchStrategy) (*html.Node, error) {
	client := strategy.client()

	var lastErr error
	for try := 0; try < strategy.attempts(); try++ {
		if try > 0 {
			sleep(strategy.RetrySleep)
		}
		log.Debug().Str("url", url).Int("try", try+1).Msg("fetching index")

		resp, err := client.Get(url)
		if err != nil {
			lastErr = errors.Wrapf(err, "fetching %v", url)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = errors.Errorf("fetching %v: HTTP %d", url, resp.StatusCode)
			if resp.StatusCode == http.StatusNotFound {
				return nil, lastErr
			}
			continue
		}

		doc, err := html.Parse(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = errors.Wrapf(err, "parsing %v", url)
			continue
		}

		return doc, nil
	}

	return nil, lastErr
}

type nodeFunc func(node *html.Node)

// Walk a HTML parse tree in a depth first manner calling nodeFn for each
// node.
func walkNodeTree(root *html.Node, nodeFn nodeFunc) {
	nodeFn(root)

	for c := root.FirstChild; c != nil; c = c.NextSibling {
		walkNodeTree(c, nodeFn)
	}
}

// anchorHrefs calls fn with the href of every anchor under root.
func anchorHrefs(root *html.Node, fn func(href string)) {
	walkNodeTree(root, func(node *html.Node) {
		if node.Type != html.ElementNode || node.Data != "a" {
			return
		}
		for _, a := range node.Attr {
			if a.Key == "href" {
				fn(a.Val)
			}
		}
	})
}

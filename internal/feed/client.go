// Package feed fetches signal documents from the data endpoint.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dgnsrekt/fxboard/internal/signals"
)

const maxDocumentBytes = 16 << 20

// ErrUnknownSource is returned for sources other than 10pair and 28pair.
var ErrUnknownSource = errors.New("unknown data source")

// Client fetches fx_signals_{source}.json documents. Every request carries
// a millisecond timestamp query so intermediate caches never answer it.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// NewClient fetches from an HTTP base URL such as https://example.com.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// NewFileClient reads documents from publicDir through a file transport, so
// the same /data/... URLs work without a web server in front.
func NewFileClient(publicDir string) *Client {
	t := &http.Transport{}
	t.RegisterProtocol("file", http.NewFileTransport(http.Dir(publicDir)))
	return &Client{
		baseURL: "file://",
		http:    &http.Client{Transport: t},
		now:     time.Now,
	}
}

// WithHTTPClient swaps the underlying client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// URL returns the cache-busted document URL for source.
func (c *Client) URL(source string, at time.Time) string {
	return fmt.Sprintf("%s/data/fx_signals_%s.json?%d", c.baseURL, source, at.UnixMilli())
}

// Fetch makes a single attempt to download and decode a feed. There is no
// retry; callers decide what a failure means.
func (c *Client) Fetch(ctx context.Context, source string) (signals.Feed, error) {
	if _, ok := signals.ModeFor(source); !ok {
		return signals.Feed{}, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(source, c.now()), nil)
	if err != nil {
		return signals.Feed{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return signals.Feed{}, fmt.Errorf("feed %s: %w", source, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return signals.Feed{}, fmt.Errorf("feed %s: status=%d", source, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return signals.Feed{}, fmt.Errorf("feed %s: read body: %w", source, err)
	}

	feed, err := signals.DecodeFeed(body)
	if err != nil {
		return signals.Feed{}, fmt.Errorf("feed %s: %w", source, err)
	}
	return feed, nil
}

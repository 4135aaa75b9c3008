// Package fetch retrieves the watched page using a Colly collector.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gocolly/colly/v2"
)

// Config controls collector behavior.
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int
	// CABundle is an optional PEM file appended to the system trust store.
	CABundle string
}

// Page is the raw result of a single fetch.
type Page struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Error is returned for any failed fetch: connect errors, timeouts,
// non-2xx statuses and oversized responses. It is fatal to a run.
type Error struct {
	URL    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fetcher performs a single HTTP GET per call. It holds no state between
// fetches beyond the shared transport.
type Fetcher struct {
	cfg       Config
	transport http.RoundTripper
}

// New builds a Fetcher with an explicit trust store.
func New(cfg Config) (*Fetcher, error) {
	roots, err := trustedRoots(cfg.CABundle)
	if err != nil {
		return nil, fmt.Errorf("init trust store: %w", err)
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:       &tls.Config{RootCAs: roots},
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          4,
		IdleConnTimeout:       90 * time.Second,
	}
	return &Fetcher{cfg: cfg, transport: transport}, nil
}

// Fetch executes a single HTTP GET using Colly. There is no retry: the run
// is scheduled externally and the next attempt is the next run.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (Page, error) {
	var (
		page     Page
		fetchErr error
	)
	start := time.Now()

	collector := colly.NewCollector(
		colly.Async(false),
		colly.MaxBodySize(f.cfg.MaxBodyBytes),
	)
	collector.IgnoreRobotsTxt = true
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 25 * time.Second
	}
	collector.SetRequestTimeout(timeout)
	collector.WithTransport(f.transport)

	collector.OnResponseHeaders(func(r *colly.Response) {
		if length := r.Headers.Get("Content-Length"); length != "" {
			if n, err := strconv.Atoi(length); err == nil && n > f.cfg.MaxBodyBytes {
				fetchErr = fmt.Errorf("response too large: %d bytes over %d limit", n, f.cfg.MaxBodyBytes)
				r.Request.Abort()
			}
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		page = Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    r.Headers.Clone(),
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})
	collector.OnError(func(r *colly.Response, err error) {
		if fetchErr == nil {
			fetchErr = err
		}
		if r != nil {
			page.StatusCode = r.StatusCode
		}
	})

	if err := f.runCollector(ctx, collector, pageURL, &fetchErr); err != nil {
		return Page{}, &Error{URL: pageURL, Status: page.StatusCode, Err: err}
	}
	if page.StatusCode < 200 || page.StatusCode > 299 {
		return Page{}, &Error{URL: pageURL, Status: page.StatusCode, Err: fmt.Errorf("unexpected status %d", page.StatusCode)}
	}
	return page, nil
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, pageURL string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(pageURL)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		// A deliberate abort records its reason in fetchErr; prefer it over
		// the collector's generic abort error.
		if *fetchErr != nil {
			return fmt.Errorf("response failed: %w", *fetchErr)
		}
		if err != nil {
			return fmt.Errorf("visit failed: %w", err)
		}
		return nil
	}
}

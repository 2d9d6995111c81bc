package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"scraper-station/pkg/config"
	"scraper-station/pkg/utils"
)

// Result is the success variant of a fetch: the final status code after
// redirects, the advertised content type, and the raw body. Any HTTP
// response is a Result, including 4xx/5xx; callers apply their own status
// policy.
type Result struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Getter is the fetch capability consumed by the crawl engine and the
// sitemap discoverer. Implementations return an error only for
// transport-level failures (network error, timeout); callers branch on the
// result-or-error variant instead of relying on panics or status sniffing.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*Result, error)
}

// Fetcher performs HTTP GETs with a per-request timeout, a configured
// User-Agent, and a global in-flight request bound shared by all callers.
type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	sem       *semaphore.Weighted
	log       *logrus.Entry
}

// NewFetcher creates a new Fetcher instance
func NewFetcher(client *http.Client, cfg *config.AppConfig, log *logrus.Entry) *Fetcher {
	return &Fetcher{
		client:    client,
		userAgent: cfg.DefaultUserAgent,
		timeout:   cfg.FetchTimeout,
		sem:       semaphore.NewWeighted(int64(cfg.MaxRequests)),
		log:       log,
	}
}

// Get performs a GET against rawURL. Transport failures (including the
// per-request timeout) are returned as errors wrapping utils.ErrTransport;
// they are never fatal to a crawl, the caller degrades and continues.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Result, error) {
	if err := f.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: acquiring request slot: %v", utils.ErrTransport, err)
	}
	defer f.sem.Release(1)

	reqCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", utils.ErrTransport, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.WithField("url", rawURL).Debugf("Fetch failed: %v", err)
		return nil, fmt.Errorf("%w: %v", utils.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", utils.ErrTransport, err)
	}

	f.log.WithFields(logrus.Fields{
		"url":         rawURL,
		"status_code": resp.StatusCode,
	}).Debug("Fetched")

	return &Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

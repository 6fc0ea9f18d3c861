package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/time/rate"

	"github.com/chrismah84/ai-competitive-intel/pkg/domain"
)

// maxBodySize caps how much of a listing page we read, listing pages
// larger than this are almost certainly not what we want anyway
const maxBodySize = 10 << 20 // 10MB

// HTTPFetcher fetches source pages over HTTP with per-host politeness.
// A single rate limiter per host guarantees the configured minimum delay
// between consecutive requests this process issues to that host.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	rateLimit time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates a new fetcher with the given timeout, user agent
// and per-host minimum request interval
func NewHTTPFetcher(timeout time.Duration, userAgent string, rateLimit time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
		rateLimit: rateLimit,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Fetch retrieves the raw content of the source page. It issues exactly one
// request, retry policy belongs to the caller. All failures come back as
// *domain.FetchError so the pipeline can keep going with other sources.
func (f *HTTPFetcher) Fetch(ctx context.Context, src domain.Source) ([]byte, error) {
	u, err := url.Parse(src.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &domain.FetchError{Source: src.Name, Reason: domain.ReasonConnectionFailed, Err: err}
	}

	// wait for the politeness slot before touching the host
	if err := f.limiter(u.Host).Wait(ctx); err != nil {
		return nil, &domain.FetchError{Source: src.Name, Reason: domain.ReasonTimeout, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, http.NoBody)
	if err != nil {
		return nil, &domain.FetchError{Source: src.Name, Reason: domain.ReasonConnectionFailed, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	addBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Source: src.Name, Reason: classifyTransportError(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{Source: src.Name, Reason: domain.HTTPStatusReason(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &domain.FetchError{Source: src.Name, Reason: classifyTransportError(err), Err: err}
	}

	lgr.Printf("[DEBUG] fetched %d bytes from %s", len(body), src.URL)
	return body, nil
}

// limiter returns the rate limiter for a host, creating it on first use
func (f *HTTPFetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	lim, ok := f.limiters[host]
	if !ok {
		// burst of 1 so the very first request goes out immediately
		lim = rate.NewLimiter(rate.Every(f.rateLimit), 1)
		f.limiters[host] = lim
	}
	return lim
}

// classifyTransportError maps transport failures to report-facing reasons
func classifyTransportError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ReasonTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return domain.ReasonTimeout
	}
	return domain.ReasonConnectionFailed
}

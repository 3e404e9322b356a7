package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ErrPageNotFound is returned for a 404, which marks the end of pagination.
var ErrPageNotFound = errors.New("page not found")

var defaultHTTPClient = &http.Client{Timeout: 60 * time.Second}

// Fetcher performs paced GET requests, optionally backed by a PageCache.
type Fetcher struct {
	Client  *http.Client
	Limiter *rate.Limiter
	Cache   PageCache
}

// NewFetcher paces requests at rps per second. rps <= 0 disables pacing.
func NewFetcher(rps float64, cache PageCache) *Fetcher {
	f := &Fetcher{Client: defaultHTTPClient, Cache: cache}
	if rps > 0 {
		f.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return f
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.Cache != nil {
		if body, ok := f.Cache.Get(ctx, url); ok {
			return body, nil
		}
	}

	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "text/html")

	client := f.Client
	if client == nil {
		client = defaultHTTPClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%s: %w", url, ErrPageNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d for %s", resp.StatusCode, url)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	body := string(b)

	if f.Cache != nil {
		f.Cache.Set(ctx, url, body)
	}
	return body, nil
}

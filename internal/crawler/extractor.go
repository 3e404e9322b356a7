package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"fashionetl/internal/model"
)

// PagePolicy decides what happens when a page after the first fails.
type PagePolicy string

const (
	// KeepPages stops pagination and returns what was already collected.
	KeepPages PagePolicy = "keep"
	// DiscardPages fails the whole extraction.
	DiscardPages PagePolicy = "discard"
)

func ParsePagePolicy(s string) (PagePolicy, error) {
	switch PagePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case KeepPages, "":
		return KeepPages, nil
	case DiscardPages:
		return DiscardPages, nil
	}
	return "", fmt.Errorf("unknown page policy %q", s)
}

// ExtractionError means the source could not produce a usable batch.
type ExtractionError struct {
	Page int
	URL  string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed at page %d (%s): %v", e.Page, e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

type Extractor struct {
	BaseURL  string
	MaxPages int
	Policy   PagePolicy
	Fetcher  *Fetcher
	Now      func() time.Time
}

// PageURL returns the listing URL for a 1-based page number: the base for
// page 1 and <base>/pageN afterwards.
func PageURL(base string, page int) string {
	base = strings.TrimRight(base, "/")
	if page <= 1 {
		return base + "/"
	}
	return fmt.Sprintf("%s/page%d", base, page)
}

// Extract walks the listing pages in order until MaxPages, a 404 or an
// empty page. The batch timestamp is taken before the first request.
func (e *Extractor) Extract(ctx context.Context) (model.RawBatch, error) {
	now := e.Now
	if now == nil {
		now = time.Now
	}
	batch := model.RawBatch{ExtractedAt: now()}

	fetcher := e.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher(0, nil)
	}
	maxPages := e.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	for page := 1; page <= maxPages; page++ {
		url := PageURL(e.BaseURL, page)

		products, err := e.fetchPage(ctx, fetcher, url)
		if err != nil {
			if page == 1 {
				return model.RawBatch{}, &ExtractionError{Page: page, URL: url, Err: err}
			}
			if errors.Is(err, ErrPageNotFound) {
				zap.S().Infof("page %d not found, pagination finished", page)
				break
			}
			if e.Policy == DiscardPages {
				return model.RawBatch{}, &ExtractionError{Page: page, URL: url, Err: err}
			}
			zap.S().Warnf("page %d failed, keeping %d pages already fetched: %v", page, batch.Pages, err)
			batch.Partial = true
			break
		}

		if len(products) == 0 {
			if page == 1 {
				return model.RawBatch{}, &ExtractionError{Page: page, URL: url, Err: errors.New("no products on first page")}
			}
			zap.S().Infof("page %d is empty, pagination finished", page)
			break
		}

		batch.Products = append(batch.Products, products...)
		batch.Pages++
		zap.S().Debugf("page %d: %d products", page, len(products))
	}

	return batch, nil
}

func (e *Extractor) fetchPage(ctx context.Context, fetcher *Fetcher, url string) ([]model.RawProduct, error) {
	html, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	products, err := ParseListing(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return products, nil
}

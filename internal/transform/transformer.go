// Package transform turns a scraped RawBatch into the normalized Table every
// sink writes.
package transform

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fashionetl/internal/model"
)

// DefaultExchangeRate converts the site's USD prices to IDR.
const DefaultExchangeRate = 16000

// Drop reasons reported in Stats.Dropped.
const (
	DropTitle     = "title"
	DropPrice     = "price"
	DropDuplicate = "duplicate"
)

var placeholderTitles = map[string]bool{
	"unknown product": true,
}

// TransformError means the batch as a whole cannot become a table.
type TransformError struct {
	Err error
}

func (e *TransformError) Error() string { return "transform failed: " + e.Err.Error() }
func (e *TransformError) Unwrap() error { return e.Err }

var (
	ErrEmptyBatch   = errors.New("batch has no products")
	ErrMissingField = errors.New("field missing from every product")
)

type Stats struct {
	Input         int
	Output        int
	Dropped       map[string]int
	NulledRatings int
}

type Transformer struct {
	ExchangeRate float64
}

func New(exchangeRate float64) *Transformer {
	if exchangeRate <= 0 {
		exchangeRate = DefaultExchangeRate
	}
	return &Transformer{ExchangeRate: exchangeRate}
}

// Transform resolves every raw field, drops rows without a usable title or
// price, nulls bad ratings and collapses duplicates, keeping first
// occurrences in order. Every row carries batch.ExtractedAt.
func (t *Transformer) Transform(batch model.RawBatch) (model.Table, Stats, error) {
	stats := Stats{Input: len(batch.Products), Dropped: map[string]int{}}

	if err := checkStructure(batch); err != nil {
		return model.Table{}, stats, &TransformError{Err: err}
	}

	rate := decimal.NewFromFloat(t.ExchangeRate)
	seen := make(map[rowKey]bool, len(batch.Products))
	rows := make([]model.ProductRecord, 0, len(batch.Products))

	for i, p := range batch.Products {
		title := strings.TrimSpace(p.Title.String())
		if title == "" || placeholderTitles[strings.ToLower(title)] {
			stats.Dropped[DropTitle]++
			continue
		}

		price, err := ParsePrice(p.Price, rate)
		if err != nil {
			zap.S().Debugf("row %d (%s): %v", i, title, err)
			stats.Dropped[DropPrice]++
			continue
		}

		rating := ParseRating(p.Rating)
		if rating == nil && !p.Rating.IsMissing() {
			stats.NulledRatings++
		}

		rec := model.ProductRecord{
			Title:     title,
			Price:     price,
			Rating:    rating,
			Size:      NormalizeSize(p.Size),
			Gender:    NormalizeGender(p.Gender),
			Colors:    NormalizeColors(p.Colors),
			Timestamp: batch.ExtractedAt,
			Image:     strings.TrimSpace(p.Image.String()),
		}

		key := keyOf(rec)
		if seen[key] {
			stats.Dropped[DropDuplicate]++
			continue
		}
		seen[key] = true
		rows = append(rows, rec)
	}

	stats.Output = len(rows)
	return model.Table{Rows: rows}, stats, nil
}

func checkStructure(batch model.RawBatch) error {
	if len(batch.Products) == 0 {
		return ErrEmptyBatch
	}
	var hasTitle, hasPrice bool
	for _, p := range batch.Products {
		hasTitle = hasTitle || !p.Title.IsMissing()
		hasPrice = hasPrice || !p.Price.IsMissing()
	}
	if !hasTitle {
		return fmt.Errorf("title: %w", ErrMissingField)
	}
	if !hasPrice {
		return fmt.Errorf("price: %w", ErrMissingField)
	}
	return nil
}

// rowKey is a record without its timestamp.
type rowKey struct {
	title     string
	price     float64
	hasRating bool
	rating    float64
	size      string
	gender    string
	colors    string
	image     string
}

func keyOf(r model.ProductRecord) rowKey {
	k := rowKey{
		title:  r.Title,
		price:  r.Price,
		size:   r.Size,
		gender: r.Gender,
		colors: r.Colors,
		image:  r.Image,
	}
	if r.Rating != nil {
		k.hasRating = true
		k.rating = *r.Rating
	}
	return k
}

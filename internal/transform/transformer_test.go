package transform

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fashionetl/internal/model"
)

var stamp = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func raw(title, price, rating, colors, size, gender string) model.RawProduct {
	return model.RawProduct{
		Title:  model.TextValue(title),
		Price:  model.TextValue(price),
		Rating: model.TextValue(rating),
		Colors: model.TextValue(colors),
		Size:   model.TextValue(size),
		Gender: model.TextValue(gender),
		Image:  model.TextValue("https://img.example/" + title),
	}
}

func page(prefix string, n int) []model.RawProduct {
	out := make([]model.RawProduct, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, raw(
			fmt.Sprintf("%s %d", prefix, i),
			fmt.Sprintf("$%d.99", 20+i),
			fmt.Sprintf("Rating: ⭐ %.1f / 5", 3.5+float64(i)/10),
			fmt.Sprintf("%d Colors", 1+i%3),
			"Size: M",
			"Gender: Men",
		))
	}
	return out
}

func TestParsePrice(t *testing.T) {
	rate := decimal.NewFromInt(16000)
	tests := []struct {
		name    string
		in      model.RawValue
		want    float64
		wantErr bool
	}{
		{name: "rupiah with thousands dots", in: model.TextValue("Rp 1.500.000"), want: 1500000},
		{name: "rupiah without space", in: model.TextValue("Rp1.500.000"), want: 1500000},
		{name: "rupiah with decimals", in: model.TextValue("IDR 1.500,50"), want: 1500.5},
		{name: "dollars", in: model.TextValue("$100.00"), want: 1600000},
		{name: "dollars with grouping", in: model.TextValue("$1,000.50"), want: 16008000},
		{name: "rupiah with decimal point", in: model.TextValue("IDR 1500000.00"), want: 1500000},
		{name: "rupiah with thousands commas", in: model.TextValue("Rp 1,500,000"), want: 1500000},
		{name: "rupiah with commas and decimal point", in: model.TextValue("IDR 1,500,000.00"), want: 1500000},
		{name: "rupiah with dots and decimal comma", in: model.TextValue("Rp 1.500.000,75"), want: 1500000.75},
		{name: "rupiah single thousands dot", in: model.TextValue("Rp 250.000"), want: 250000},
		{name: "dollars with decimal comma", in: model.TextValue("$12,5"), want: 200000},
		{name: "broken grouping", in: model.TextValue("Rp 1.50.000"), wantErr: true},
		{name: "numeric", in: model.NumericValue(2.5), want: 40000},
		{name: "unavailable", in: model.TextValue("Price Unavailable"), wantErr: true},
		{name: "missing", in: model.RawValue{}, wantErr: true},
		{name: "negative", in: model.TextValue("$-5.00"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.in, rate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		in   model.RawValue
		want *float64
	}{
		{in: model.TextValue("Rating: ⭐ 4.8 / 5"), want: ptr(4.8)},
		{in: model.TextValue("3,5"), want: ptr(3.5)},
		{in: model.NumericValue(5), want: ptr(5)},
		{in: model.NumericValue(0), want: ptr(0)},
		{in: model.TextValue("Rating: ⭐ Invalid Rating / 5")},
		{in: model.TextValue("Not Rated")},
		{in: model.TextValue("Rating: 7.2 / 5")},
		{in: model.NumericValue(-1)},
		{in: model.RawValue{}},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			got := ParseRating(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestNormalizeCategoricals(t *testing.T) {
	assert.Equal(t, "M", NormalizeSize(model.TextValue("Size: M")))
	assert.Equal(t, "XXL", NormalizeSize(model.TextValue("size: 2xl")))
	assert.Equal(t, "L", NormalizeSize(model.TextValue("Large")))
	assert.Equal(t, "One Size", NormalizeSize(model.TextValue("Size: One Size")))

	assert.Equal(t, "Men", NormalizeGender(model.TextValue("Gender: Men")))
	assert.Equal(t, "Women", NormalizeGender(model.TextValue("female")))
	assert.Equal(t, "Unisex", NormalizeGender(model.TextValue("Gender: UNISEX")))
	assert.Equal(t, "Kids", NormalizeGender(model.TextValue("Gender: Kids")))

	assert.Equal(t, "3", NormalizeColors(model.TextValue("3 Colors")))
	assert.Equal(t, "1", NormalizeColors(model.TextValue("1 Color")))
	assert.Equal(t, "4", NormalizeColors(model.NumericValue(4)))
	assert.Equal(t, "Red", NormalizeColors(model.TextValue("Colors: Red")))
	assert.Equal(t, "", NormalizeColors(model.RawValue{}))
}

func TestTransform_DuplicateAcrossPages(t *testing.T) {
	first := page("Shirt", 10)
	second := page("Pants", 9)
	second = append(second, first[4])

	batch := model.RawBatch{Products: append(first, second...), ExtractedAt: stamp}

	table, stats, err := New(0).Transform(batch)
	require.NoError(t, err)

	assert.Equal(t, 19, table.Len())
	assert.Equal(t, 20, stats.Input)
	assert.Equal(t, 19, stats.Output)
	assert.Equal(t, 1, stats.Dropped[DropDuplicate])
}

func TestTransform_Invariants(t *testing.T) {
	products := page("Tee", 6)
	products = append(products,
		raw("Unknown Product", "$100.00", "Rating: ⭐ 4.0 / 5", "3 Colors", "Size: M", "Gender: Men"),
		raw("Hoodie 1", "Price Unavailable", "Rating: ⭐ 4.0 / 5", "3 Colors", "Size: M", "Gender: Men"),
		raw("Hoodie 2", "$55.00", "Rating: ⭐ Invalid Rating / 5", "2 Colors", "Size: XL", "Gender: Women"),
		raw("Hoodie 3", "Rp 1.500.000", "Not Rated", "5 Colors", "Size: S", "Gender: Unisex"),
		page("Tee", 2)[1],
	)

	table, stats, err := New(16000).Transform(model.RawBatch{Products: products, ExtractedAt: stamp})
	require.NoError(t, err)

	assert.Equal(t, 8, table.Len())
	assert.Equal(t, 1, stats.Dropped[DropTitle])
	assert.Equal(t, 1, stats.Dropped[DropPrice])
	assert.Equal(t, 1, stats.Dropped[DropDuplicate])
	assert.Equal(t, 2, stats.NulledRatings)

	seen := map[rowKey]bool{}
	for _, r := range table.Rows {
		assert.GreaterOrEqual(t, r.Price, 0.0)
		if r.Rating != nil {
			assert.GreaterOrEqual(t, *r.Rating, MinRating)
			assert.LessOrEqual(t, *r.Rating, MaxRating)
		}
		assert.True(t, r.Timestamp.Equal(stamp))
		assert.False(t, seen[keyOf(r)], "duplicate row %q", r.Title)
		seen[keyOf(r)] = true
	}

	last := table.Rows[len(table.Rows)-1]
	assert.Equal(t, "Hoodie 3", last.Title)
	assert.Equal(t, 1500000.0, last.Price)
	assert.Nil(t, last.Rating)
	assert.Equal(t, "Unisex", last.Gender)
}

func TestTransform_StructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		batch model.RawBatch
		want  error
	}{
		{name: "empty", batch: model.RawBatch{ExtractedAt: stamp}, want: ErrEmptyBatch},
		{
			name:  "no titles",
			batch: model.RawBatch{Products: []model.RawProduct{{Price: model.TextValue("$1")}}},
			want:  ErrMissingField,
		},
		{
			name:  "no prices",
			batch: model.RawBatch{Products: []model.RawProduct{{Title: model.TextValue("Cap")}}},
			want:  ErrMissingField,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := New(0).Transform(tt.batch)
			var tErr *TransformError
			require.True(t, errors.As(err, &tErr))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTransform_AllRowsBadIsNotFatal(t *testing.T) {
	batch := model.RawBatch{Products: []model.RawProduct{
		raw("Cap", "Price Unavailable", "", "", "", ""),
	}}
	table, stats, err := New(0).Transform(batch)
	require.NoError(t, err)
	assert.Zero(t, table.Len())
	assert.Equal(t, 1, stats.Dropped[DropPrice])
}

func ptr(f float64) *float64 { return &f }

package model

import (
	"strconv"
	"time"
)

// Kind tags which variant a RawValue carries.
type Kind int

const (
	Missing Kind = iota
	Text
	Numeric
)

// RawValue is one scraped field: numeric, text or missing.
type RawValue struct {
	Kind Kind
	Str  string
	Num  float64
}

func TextValue(s string) RawValue {
	if s == "" {
		return RawValue{}
	}
	return RawValue{Kind: Text, Str: s}
}

func NumericValue(n float64) RawValue {
	return RawValue{Kind: Numeric, Num: n}
}

func (v RawValue) IsMissing() bool { return v.Kind == Missing }

// String renders the value as text, empty for Missing.
func (v RawValue) String() string {
	switch v.Kind {
	case Text:
		return v.Str
	case Numeric:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return ""
}

type RawProduct struct {
	Title  RawValue
	Price  RawValue
	Rating RawValue
	Size   RawValue
	Gender RawValue
	Colors RawValue
	Image  RawValue
}

// Empty reports whether no field was scraped at all.
func (p RawProduct) Empty() bool {
	return p.Title.IsMissing() && p.Price.IsMissing() && p.Rating.IsMissing() &&
		p.Size.IsMissing() && p.Gender.IsMissing() && p.Colors.IsMissing() && p.Image.IsMissing()
}

// RawBatch is everything scraped in one extraction run. ExtractedAt is
// captured once and shared by every row.
type RawBatch struct {
	Products    []RawProduct
	ExtractedAt time.Time
	Pages       int
	Partial     bool
}

// ProductRecord is a normalized row. Rating is nil when missing.
type ProductRecord struct {
	Title     string
	Price     float64
	Rating    *float64
	Size      string
	Gender    string
	Colors    string
	Timestamp time.Time
	Image     string
}

// Columns is the column order every sink writes.
var Columns = []string{"Title", "Price", "Rating", "Size", "Gender", "Colors", "Timestamp", "Image"}

const TimestampLayout = time.RFC3339Nano

type Table struct {
	Rows []ProductRecord
}

func (t Table) Len() int { return len(t.Rows) }

// Values renders row i as text in Columns order.
func (t Table) Values(i int) []string {
	r := t.Rows[i]
	rating := ""
	if r.Rating != nil {
		rating = strconv.FormatFloat(*r.Rating, 'f', -1, 64)
	}
	return []string{
		r.Title,
		strconv.FormatFloat(r.Price, 'f', -1, 64),
		rating,
		r.Size,
		r.Gender,
		r.Colors,
		r.Timestamp.Format(TimestampLayout),
		r.Image,
	}
}

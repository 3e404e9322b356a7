package transform

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"fashionetl/internal/model"
)

const (
	MinRating = 0.0
	MaxRating = 5.0
)

var errNoNumber = errors.New("no numeric value")

var (
	reIDR       = regexp.MustCompile(`(?i)\b(rp|idr)\.?`)
	reUSD       = regexp.MustCompile(`(?i)(\$|\busd\b)`)
	reAmount    = regexp.MustCompile(`^\d[\d.,]*$`)
	reLabel     = regexp.MustCompile(`(?i)^\s*(rating|size|gender|colou?rs?)\s*:\s*`)
	reRating    = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s*(?:/\s*\d+(?:[.,]\d+)?)?$`)
	reColors    = regexp.MustCompile(`(?i)^(\d+)\s*colou?rs?$`)
	starReplace = strings.NewReplacer("⭐", "", "★", "", "☆", "")
)

// ParsePrice resolves a raw price to IDR. Amounts tagged Rp/IDR are already
// rupiah and use '.' for thousands; everything else, including bare numbers,
// is in the source currency (USD) and converted at rate.
func ParsePrice(v model.RawValue, rate decimal.Decimal) (float64, error) {
	var amount decimal.Decimal
	switch v.Kind {
	case model.Missing:
		return 0, errNoNumber
	case model.Numeric:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return 0, errNoNumber
		}
		amount = decimal.NewFromFloat(v.Num).Mul(rate)
	case model.Text:
		s := strings.TrimSpace(v.Str)
		idr := reIDR.MatchString(s)
		s = reIDR.ReplaceAllString(s, "")
		s = reUSD.ReplaceAllString(s, "")
		s = strings.Join(strings.Fields(s), "")

		negative := strings.HasPrefix(s, "-")
		s = strings.TrimPrefix(s, "-")
		if !reAmount.MatchString(s) {
			return 0, fmt.Errorf("price %q: %w", v.Str, errNoNumber)
		}

		s, err := canonicalAmount(s)
		if err != nil {
			return 0, fmt.Errorf("price %q: %w", v.Str, err)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("price %q: %w", v.Str, err)
		}
		if negative {
			d = d.Neg()
		}
		if !idr {
			d = d.Mul(rate)
		}
		amount = d
	}

	if amount.IsNegative() {
		return 0, fmt.Errorf("negative price %s", amount.String())
	}
	f, _ := amount.Float64()
	return f, nil
}

// canonicalAmount rewrites a digit string using '.' and ',' in either role
// to plain "1234.56" form. With both separators present the last one is
// the decimal point. A single kind is grouping only when every group after
// the first has exactly three digits.
func canonicalAmount(s string) (string, error) {
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		decSep, groupSep := ".", ","
		if comma > dot {
			decSep, groupSep = ",", "."
		}
		i := strings.LastIndex(s, decSep)
		whole, frac := s[:i], s[i+1:]
		if strings.Contains(whole, decSep) || !grouped(strings.Split(whole, groupSep)) {
			return "", fmt.Errorf("ambiguous separators in %q", s)
		}
		return strings.ReplaceAll(whole, groupSep, "") + "." + frac, nil
	case dot >= 0 || comma >= 0:
		sep := "."
		if comma >= 0 {
			sep = ","
		}
		parts := strings.Split(s, sep)
		if grouped(parts) {
			return strings.Join(parts, ""), nil
		}
		if len(parts) == 2 {
			return parts[0] + "." + parts[1], nil
		}
		return "", fmt.Errorf("ambiguous separators in %q", s)
	}
	return s, nil
}

// grouped reports whether parts[1:] are all three-digit groups.
func grouped(parts []string) bool {
	if len(parts) < 2 || parts[0] == "" {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

// ParseRating returns nil when the value is missing, unparseable or
// outside [MinRating, MaxRating].
func ParseRating(v model.RawValue) *float64 {
	var r float64
	switch v.Kind {
	case model.Numeric:
		r = v.Num
	case model.Text:
		s := reLabel.ReplaceAllString(v.Str, "")
		s = strings.TrimSpace(starReplace.Replace(s))
		m := reRating.FindStringSubmatch(s)
		if m == nil {
			return nil
		}
		f, err := cast.ToFloat64E(strings.Replace(m[1], ",", ".", 1))
		if err != nil {
			return nil
		}
		r = f
	default:
		return nil
	}
	if math.IsNaN(r) || r < MinRating || r > MaxRating {
		return nil
	}
	return &r
}

var sizeVocabulary = map[string]string{
	"XS": "XS", "EXTRA SMALL": "XS",
	"S": "S", "SMALL": "S",
	"M": "M", "MEDIUM": "M",
	"L": "L", "LARGE": "L",
	"XL": "XL", "EXTRA LARGE": "XL",
	"XXL": "XXL", "2XL": "XXL",
	"XXXL": "XXXL", "3XL": "XXXL",
}

// NormalizeSize maps a size to the fixed vocabulary; unknown sizes pass
// through with only the label removed.
func NormalizeSize(v model.RawValue) string {
	s := strings.TrimSpace(reLabel.ReplaceAllString(v.String(), ""))
	if n, ok := sizeVocabulary[strings.ToUpper(s)]; ok {
		return n
	}
	return s
}

var genderVocabulary = map[string]string{
	"men": "Men", "man": "Men", "male": "Men", "pria": "Men",
	"women": "Women", "woman": "Women", "female": "Women", "wanita": "Women",
	"unisex": "Unisex",
}

func NormalizeGender(v model.RawValue) string {
	s := strings.TrimSpace(reLabel.ReplaceAllString(v.String(), ""))
	if n, ok := genderVocabulary[strings.ToLower(s)]; ok {
		return n
	}
	return s
}

// NormalizeColors turns "3 Colors" or a bare number into the count text.
func NormalizeColors(v model.RawValue) string {
	if v.Kind == model.Numeric {
		if n, err := cast.ToIntE(v.Num); err == nil && float64(n) == v.Num {
			return strconv.Itoa(n)
		}
		return v.String()
	}
	s := strings.TrimSpace(reLabel.ReplaceAllString(v.String(), ""))
	if m := reColors.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return strconv.Itoa(n)
	}
	return s
}

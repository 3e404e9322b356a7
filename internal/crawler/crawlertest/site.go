// Package crawlertest serves a fake listing site for tests.
package crawlertest

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
)

// Card is one product card as the site renders it. Empty fields are left
// out of the markup.
type Card struct {
	Title  string
	Price  string
	Rating string
	Colors string
	Size   string
	Gender string
	Image  string
}

// Product returns a fully populated card with the site's label formats.
func Product(title, price string, rating float64, colors int, size, gender string) Card {
	return Card{
		Title:  title,
		Price:  price,
		Rating: fmt.Sprintf("Rating: ⭐ %.1f / 5", rating),
		Colors: fmt.Sprintf("%d Colors", colors),
		Size:   "Size: " + size,
		Gender: "Gender: " + gender,
		Image:  "https://picsum.photos/280/350?random=" + strings.ReplaceAll(title, " ", "-"),
	}
}

func RenderPage(cards []Card) string {
	var sb strings.Builder
	sb.WriteString(`<html><head><title>Fashion Studio</title></head><body><div class="collection-grid">`)
	for _, c := range cards {
		sb.WriteString(`<div class="collection-card"><div style="position: relative;">`)
		if c.Image != "" {
			fmt.Fprintf(&sb, `<img src="%s" class="collection-image" alt="%s">`, html.EscapeString(c.Image), html.EscapeString(c.Title))
		}
		sb.WriteString(`</div><div class="product-details">`)
		if c.Title != "" {
			fmt.Fprintf(&sb, `<h3 class="product-title">%s</h3>`, html.EscapeString(c.Title))
		}
		if c.Price != "" {
			fmt.Fprintf(&sb, `<div class="price-container"><span class="price">%s</span></div>`, html.EscapeString(c.Price))
		}
		for _, line := range []string{c.Rating, c.Colors, c.Size, c.Gender} {
			if line != "" {
				fmt.Fprintf(&sb, `<p style="font-size: 14px; color: #777;">%s</p>`, html.EscapeString(line))
			}
		}
		sb.WriteString(`</div></div>`)
	}
	sb.WriteString(`</div></body></html>`)
	return sb.String()
}

// Site serves pages[0] at "/" and pages[n-1] at "/pageN". Pages past the
// end return 404. Statuses overrides the response code for a page number.
type Site struct {
	*httptest.Server
	Pages    [][]Card
	Statuses map[int]int
	hits     atomic.Int64
}

func NewSite(pages ...[]Card) *Site {
	s := &Site{Pages: pages, Statuses: map[int]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Hits counts requests received.
func (s *Site) Hits() int { return int(s.hits.Load()) }

func (s *Site) serve(w http.ResponseWriter, r *http.Request) {
	s.hits.Add(1)

	page := 1
	if r.URL.Path != "/" {
		n, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/page"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		page = n
	}

	if code, ok := s.Statuses[page]; ok {
		w.WriteHeader(code)
		return
	}
	if page < 1 || page > len(s.Pages) {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(RenderPage(s.Pages[page-1])))
}

// Catalog builds n distinct products whose titles start with prefix.
func Catalog(prefix string, n int) []Card {
	sizes := []string{"S", "M", "L", "XL", "XXL"}
	genders := []string{"Men", "Women", "Unisex"}
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, Product(
			fmt.Sprintf("%s %d", prefix, i+1),
			fmt.Sprintf("$%d.50", 10+i),
			3.0+float64(i%20)/10,
			1+i%5,
			sizes[i%len(sizes)],
			genders[i%len(genders)],
		))
	}
	return cards
}

package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"fashionetl/internal/model"
)

// ParseListing maps every product card on a listing page to a RawProduct.
// Field text is kept as scraped, labels included; the transformer owns all
// cleanup.
func ParseListing(html string) ([]model.RawProduct, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var products []model.RawProduct
	doc.Find("div.collection-card").Each(func(_ int, card *goquery.Selection) {
		products = append(products, parseCard(card))
	})
	return products, nil
}

func parseCard(card *goquery.Selection) model.RawProduct {
	p := model.RawProduct{
		Title: textOf(card.Find(".product-title").First()),
		Price: textOf(card.Find(".price").First()),
	}

	img := card.Find("img.collection-image").First()
	if img.Length() == 0 {
		img = card.Find("img").First()
	}
	if src, ok := img.Attr("src"); ok {
		p.Image = model.TextValue(strings.TrimSpace(src))
	}

	card.Find(".product-details p").Each(func(_ int, s *goquery.Selection) {
		line := strings.TrimSpace(s.Text())
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "rating"):
			p.Rating = model.TextValue(line)
		case strings.HasPrefix(lower, "size"):
			p.Size = model.TextValue(line)
		case strings.HasPrefix(lower, "gender"):
			p.Gender = model.TextValue(line)
		case strings.Contains(lower, "color"):
			p.Colors = model.TextValue(line)
		}
	})
	return p
}

func textOf(s *goquery.Selection) model.RawValue {
	return model.TextValue(strings.TrimSpace(s.Text()))
}

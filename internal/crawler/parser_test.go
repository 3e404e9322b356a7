package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fashionetl/internal/crawler/crawlertest"
	"fashionetl/internal/model"
)

func TestParseListing(t *testing.T) {
	html := crawlertest.RenderPage([]crawlertest.Card{
		crawlertest.Product("T-shirt 2", "$102.15", 3.9, 3, "M", "Women"),
		{Title: "Unknown Product", Price: "Price Unavailable", Rating: "Rating: ⭐ Invalid Rating / 5"},
	})

	products, err := ParseListing(html)
	require.NoError(t, err)
	require.Len(t, products, 2)

	first := products[0]
	assert.Equal(t, "T-shirt 2", first.Title.String())
	assert.Equal(t, "$102.15", first.Price.String())
	assert.Equal(t, "Rating: ⭐ 3.9 / 5", first.Rating.String())
	assert.Equal(t, "3 Colors", first.Colors.String())
	assert.Equal(t, "Size: M", first.Size.String())
	assert.Equal(t, "Gender: Women", first.Gender.String())
	assert.Equal(t, "https://picsum.photos/280/350?random=T-shirt-2", first.Image.String())

	second := products[1]
	assert.Equal(t, "Price Unavailable", second.Price.String())
	assert.Equal(t, model.Missing, second.Size.Kind)
	assert.Equal(t, model.Missing, second.Image.Kind)
}

func TestParseListing_NoCards(t *testing.T) {
	products, err := ParseListing("<html><body><p>Nothing here</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestParseListing_PriceAsParagraph(t *testing.T) {
	html := `<div class="collection-card"><div class="product-details">
		<h3 class="product-title">Jacket 7</h3>
		<p class="price">Price Unavailable</p>
		<p>Size: L</p>
	</div></div>`

	products, err := ParseListing(html)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Price Unavailable", products[0].Price.String())
	assert.Equal(t, "Size: L", products[0].Size.String())
	assert.True(t, products[0].Colors.IsMissing())
}

package scraper

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	extractor, err := NewExtractor("dockers", "https://example.com", testListSelectors())
	require.NoError(t, err)
	extractor.now = func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	return extractor
}

func TestExtractorAllFieldsPresent(t *testing.T) {
	extractor := newTestExtractor(t)

	html := `<html><body>
		<div class="product">
			<a class="plink" href="/products/alpha-khaki-sku100" title="Alpha Khaki">Alpha Khaki</a>
			<span class="price">$59.99</span>
			<s class="was">$79.99</s>
			<span class="category">Pants</span>
			<img src="/img/alpha.jpg" />
		</div>
		<div class="product">
			<a class="plink" href="/products/beta-chino-sku200">Beta Chino</a>
			<span class="price">$1,049.50</span>
		</div>
	</body></html>`

	doc, err := extractor.Parse(strings.NewReader(html))
	require.NoError(t, err)

	records, skipped := extractor.Extract(doc)
	require.Len(t, records, 2)
	assert.Equal(t, 0, skipped)

	first := records[0]
	assert.Equal(t, "Alpha Khaki", first.Name)
	assert.Equal(t, "sku100", first.SKU)
	assert.Equal(t, "Pants", first.Category)
	assert.True(t, first.Price.Equal(decimal.RequireFromString("59.99")))
	require.NotNil(t, first.OriginalPrice)
	assert.True(t, first.OriginalPrice.Equal(decimal.RequireFromString("79.99")))
	assert.True(t, first.OnSale())
	assert.True(t, first.InStock)
	assert.Equal(t, "https://example.com/img/alpha.jpg", first.ImageURL)
	assert.Equal(t, "https://example.com/products/alpha-khaki-sku100", first.URL)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), first.ScrapedAt)

	second := records[1]
	assert.Equal(t, "Beta Chino", second.Name)
	assert.Equal(t, "sku200", second.SKU)
	assert.True(t, second.Price.Equal(decimal.RequireFromString("1049.50")))
	assert.Nil(t, second.OriginalPrice)
	assert.False(t, second.OnSale())
	assert.Empty(t, second.ImageURL)
}

func TestExtractorSkipsMalformedRecords(t *testing.T) {
	extractor := newTestExtractor(t)

	html := `<html><body>
		<div class="product">
			<a class="plink" href="/products/good-khaki-sku1">Good Khaki</a>
			<span class="price">$49.99</span>
		</div>
		<div class="product">
			<a class="plink" href="/products/no-price-sku2">No Price</a>
		</div>
		<div class="product">
			<a class="plink" href="/products/nameless-sku3"></a>
			<span class="price">$19.99</span>
		</div>
		<div class="product">
			<a class="plink" href="/products/free-khaki-sku4">Free Khaki</a>
			<span class="price">$0.00</span>
		</div>
		<div class="product">
			<a class="plink" href="/products/noslug">No SKU</a>
			<span class="price">$29.99</span>
		</div>
	</body></html>`

	doc, err := extractor.Parse(strings.NewReader(html))
	require.NoError(t, err)

	records, skipped := extractor.Extract(doc)
	require.Len(t, records, 1)
	assert.Equal(t, "Good Khaki", records[0].Name)
	assert.Equal(t, 4, skipped)
}

func TestExtractorAvailability(t *testing.T) {
	extractor := newTestExtractor(t)

	html := `<html><body>
		<div class="product">
			<a class="plink" href="/products/in-stock-sku1">In Stock Khaki</a>
			<span class="price">$49.99</span>
			<div class="stock">In Stock</div>
		</div>
		<div class="product">
			<a class="plink" href="/products/oos-text-sku2">OOS Text Khaki</a>
			<span class="price">$49.99</span>
			<div class="stock">Out of Stock</div>
		</div>
		<div class="product">
			<a class="plink" href="/products/oos-marker-sku3">OOS Marker Khaki</a>
			<span class="price">$49.99</span>
			<div class="oos"></div>
		</div>
	</body></html>`

	doc, err := extractor.Parse(strings.NewReader(html))
	require.NoError(t, err)

	records, skipped := extractor.Extract(doc)
	require.Len(t, records, 3)
	assert.Equal(t, 0, skipped)
	assert.True(t, records[0].InStock)
	assert.False(t, records[1].InStock)
	assert.False(t, records[2].InStock)
}

func TestExtractorDataSKUAttribute(t *testing.T) {
	extractor := newTestExtractor(t)

	html := `<html><body>
		<div class="product">
			<a class="plink" href="/products/khakis" data-sku="A3159-0022">Attr Khaki</a>
			<span class="price">$49.99</span>
		</div>
	</body></html>`

	doc, err := extractor.Parse(strings.NewReader(html))
	require.NoError(t, err)

	records, skipped := extractor.Extract(doc)
	require.Len(t, records, 1)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, "A3159-0022", records[0].SKU)
}

func TestExtractorNextPageURL(t *testing.T) {
	extractor := newTestExtractor(t)

	doc, err := extractor.Parse(strings.NewReader(
		`<html><body><a rel="next" href="/shop?page=2">Next</a></body></html>`))
	require.NoError(t, err)

	next, ok := extractor.NextPageURL(doc)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/shop?page=2", next)

	doc, err = extractor.Parse(strings.NewReader(`<html><body>no pagination</body></html>`))
	require.NoError(t, err)

	_, ok = extractor.NextPageURL(doc)
	assert.False(t, ok)
}

func TestSelectorValidation(t *testing.T) {
	// Missing required selector
	selectors := testListSelectors()
	selectors.Price = ""
	_, err := NewExtractor("dockers", "https://example.com", selectors)
	assert.Error(t, err)

	// Broken selector syntax
	selectors = testListSelectors()
	selectors.Product = "div[unclosed"
	_, err = NewExtractor("dockers", "https://example.com", selectors)
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"$49.99", "49.99", false},
		{"$1,049.50", "1049.50", false},
		{"  $5  ", "5", false},
		{"$19.99 $29.99", "19.99", false},
		{"", "", true},
		{"N/A", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			price, err := parsePrice(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, price.Equal(decimal.RequireFromString(tt.expected)), "got %s", price)
		})
	}
}

func TestDiscountPercent(t *testing.T) {
	original := decimal.RequireFromString("100.00")
	record := ProductRecord{
		Price:         decimal.RequireFromString("75.00"),
		OriginalPrice: &original,
	}

	discount, ok := record.DiscountPercent()
	require.True(t, ok)
	assert.True(t, discount.Equal(decimal.RequireFromString("25")))

	record.OriginalPrice = nil
	_, ok = record.DiscountPercent()
	assert.False(t, ok)
}

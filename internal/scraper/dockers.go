package scraper

// Selector tables for dockers.com. The listing selectors carry fallbacks for
// the storefront's several price markups; the capability each selector must
// satisfy (text vs attribute) is documented on the selector struct fields.

// DockersListSelectors returns the selector table for the listing pages
func DockersListSelectors() ListSelectors {
	return ListSelectors{
		Product:       "li.product-card_thumbnail-container",
		Link:          `a[href*="/products/"]`,
		Price:         `[data-testid*="price"], .product-card_price, .price, span[class*="price"]`,
		OriginalPrice: `[class*="original"], [class*="regular"], [class*="was"], s`,
		Availability:  `[class*="availability"], [data-testid*="availability"]`,
		OutOfStock:    `[class*="out-of-stock"], [class*="unavailable"]`,
		Image:         "img",
		Category:      `[class*="category"]`,
		NextPage:      `a[rel="next"], .pagination a.next, a[aria-label*="next"]`,
	}
}

// DockersProductSelectors returns the selector table for single product pages
func DockersProductSelectors() ProductSelectors {
	return ProductSelectors{
		Title:            "h1.product-form_title",
		Subtitle:         "p.product-form_subtitle",
		PriceContainer:   `div[js-product-form="priceElements"]`,
		PriceMeta:        `meta[itemprop="price"]`,
		AvailabilityMeta: `meta[itemprop="availability"]`,
		OutOfStock:       `[class*="out-of-stock"], [class*="unavailable"]`,
		Image:            `meta[property="og:image"]`,
	}
}

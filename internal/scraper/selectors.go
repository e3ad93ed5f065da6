package scraper

import (
	"fmt"

	"github.com/andybalholm/cascadia"

	apperrors "pricetracker/pkg/errors"
)

// ListSelectors contains CSS selectors for the fields of a listing page.
// Product, Link and Price must yield results for a record to be kept;
// the remaining selectors are optional and missing matches produce empty
// or nil fields.
type ListSelectors struct {
	Product       string // repeating product card element
	Link          string // anchor carrying the product URL and name
	Price         string // current price text
	OriginalPrice string // strikethrough / "was" price text
	Availability  string // element whose text carries a stock marker
	OutOfStock    string // presence-only out-of-stock marker
	Image         string // product image, read via the src attribute
	Category      string // category text
	NextPage      string // next-page anchor, read via the href attribute
}

// Validate compiles every configured selector once at startup so a broken
// selector table fails the run before any page is fetched.
func (s ListSelectors) Validate() error {
	required := map[string]string{
		"product": s.Product,
		"link":    s.Link,
		"price":   s.Price,
	}
	for field, sel := range required {
		if sel == "" {
			return apperrors.NewValidation("", fmt.Sprintf("selector for %q is required", field))
		}
	}

	all := map[string]string{
		"product":        s.Product,
		"link":           s.Link,
		"price":          s.Price,
		"original_price": s.OriginalPrice,
		"availability":   s.Availability,
		"out_of_stock":   s.OutOfStock,
		"image":          s.Image,
		"category":       s.Category,
		"next_page":      s.NextPage,
	}
	return compileSelectors(all)
}

// ProductSelectors contains CSS selectors for a single product page.
// The price container groups the spans holding current and original price;
// PriceMeta is the fallback when the container yields nothing.
type ProductSelectors struct {
	Title            string // product name
	Subtitle         string // secondary description, stored as category
	PriceContainer   string // element whose child spans carry the prices
	PriceMeta        string // meta tag fallback, read via the content attribute
	AvailabilityMeta string // schema.org availability meta tag
	OutOfStock       string // presence-only out-of-stock marker
	Image            string // product image, read via the src attribute
}

// Validate compiles every configured selector once at startup.
func (s ProductSelectors) Validate() error {
	if s.Title == "" {
		return apperrors.NewValidation("", "selector for \"title\" is required")
	}
	if s.PriceContainer == "" && s.PriceMeta == "" {
		return apperrors.NewValidation("", "a price container or price meta selector is required")
	}

	all := map[string]string{
		"title":             s.Title,
		"subtitle":          s.Subtitle,
		"price_container":   s.PriceContainer,
		"price_meta":        s.PriceMeta,
		"availability_meta": s.AvailabilityMeta,
		"out_of_stock":      s.OutOfStock,
		"image":             s.Image,
	}
	return compileSelectors(all)
}

func compileSelectors(selectors map[string]string) error {
	for field, sel := range selectors {
		if sel == "" {
			continue
		}
		if _, err := cascadia.ParseGroup(sel); err != nil {
			return apperrors.NewValidation("", fmt.Sprintf("selector for %q does not compile: %v", field, err))
		}
	}
	return nil
}

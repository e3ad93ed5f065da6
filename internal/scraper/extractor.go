package scraper

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"pricetracker/helpers"
	"pricetracker/internal/observability"
	"pricetracker/logger"

	apperrors "pricetracker/pkg/errors"
)

// Extractor turns listing-page markup into product records. Records missing
// a required field (name, price, SKU) are dropped and counted; the page as a
// whole only fails when the document itself does not parse.
type Extractor struct {
	selectors ListSelectors
	baseURL   *url.URL
	retailer  string
	log       *logger.Logger

	now func() time.Time
}

// NewExtractor creates an extractor and validates the selector table
func NewExtractor(retailer, baseURL string, selectors ListSelectors) (*Extractor, error) {
	if err := selectors.Validate(); err != nil {
		return nil, err
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, apperrors.NewConfiguration(fmt.Sprintf("invalid base URL %q", baseURL), err)
	}
	return &Extractor{
		selectors: selectors,
		baseURL:   parsed,
		retailer:  retailer,
		log:       logger.ForScraper(retailer),
		now:       time.Now,
	}, nil
}

// Parse creates a goquery document from a page body
func (e *Extractor) Parse(body io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, apperrors.NewParse(e.retailer, "failed to parse HTML document", err)
	}
	return doc, nil
}

// Extract returns the valid records on a page plus the count of malformed
// records that were dropped
func (e *Extractor) Extract(doc *goquery.Document) ([]ProductRecord, int) {
	var records []ProductRecord
	skipped := 0

	doc.Find(e.selectors.Product).Each(func(i int, s *goquery.Selection) {
		record, err := e.extractRecord(s)
		if err != nil {
			skipped++
			e.log.Warn().Err(err).Int("position", i).Msg("Skipping malformed record")
			return
		}
		records = append(records, *record)
	})

	observability.RecordsExtracted.Add(float64(len(records)))
	observability.RecordsSkipped.Add(float64(skipped))
	return records, skipped
}

// NextPageURL returns the href of the next-page affordance, if any
func (e *Extractor) NextPageURL(doc *goquery.Document) (string, bool) {
	if e.selectors.NextPage == "" {
		return "", false
	}
	href, exists := doc.Find(e.selectors.NextPage).First().Attr("href")
	href = strings.TrimSpace(href)
	if !exists || href == "" {
		return "", false
	}
	return e.resolveURL(href), true
}

// extractRecord maps a single product card to a record
func (e *Extractor) extractRecord(s *goquery.Selection) (*ProductRecord, error) {
	linkSel := s.Find(e.selectors.Link).First()
	if linkSel.Length() == 0 {
		return nil, apperrors.NewParse(e.retailer, "no product link", nil)
	}

	var name string
	if titleAttr, exists := linkSel.Attr("title"); exists && strings.TrimSpace(titleAttr) != "" {
		name = strings.TrimSpace(titleAttr)
	} else {
		name = strings.TrimSpace(linkSel.Text())
	}
	if name == "" {
		return nil, apperrors.NewParse(e.retailer, "empty product name", nil)
	}

	href, _ := linkSel.Attr("href")
	productURL := e.resolveURL(strings.TrimSpace(href))

	sku := e.extractSKU(linkSel, productURL)
	if sku == "" {
		return nil, apperrors.NewParse(e.retailer, fmt.Sprintf("no resolvable SKU for %q", name), nil)
	}

	priceText := strings.TrimSpace(s.Find(e.selectors.Price).First().Text())
	price, err := parsePrice(priceText)
	if err != nil {
		return nil, apperrors.NewParse(e.retailer, fmt.Sprintf("unparseable price for %q", name), err)
	}
	if !price.IsPositive() {
		return nil, apperrors.NewParse(e.retailer, fmt.Sprintf("non-positive price for %q", name), nil)
	}

	record := &ProductRecord{
		Name:      name,
		SKU:       sku,
		Price:     price,
		InStock:   e.extractAvailability(s),
		URL:       productURL,
		ScrapedAt: e.now().UTC(),
	}

	// Optional fields yield zero values when their selectors miss
	if e.selectors.OriginalPrice != "" {
		if original, err := parsePrice(strings.TrimSpace(s.Find(e.selectors.OriginalPrice).First().Text())); err == nil && original.IsPositive() {
			record.OriginalPrice = &original
		}
	}
	if e.selectors.Image != "" {
		if src, exists := s.Find(e.selectors.Image).First().Attr("src"); exists {
			record.ImageURL = e.resolveURL(strings.TrimSpace(src))
		}
	}
	if e.selectors.Category != "" {
		record.Category = strings.TrimSpace(s.Find(e.selectors.Category).First().Text())
	}

	return record, nil
}

// extractSKU prefers an explicit data attribute, falling back to the final
// slug token of the product URL
func (e *Extractor) extractSKU(linkSel *goquery.Selection, productURL string) string {
	if sku, exists := linkSel.Attr("data-sku"); exists && strings.TrimSpace(sku) != "" {
		return strings.TrimSpace(sku)
	}
	return helpers.LastSlugPart(productURL)
}

// extractAvailability derives the stock flag from the card's markers,
// defaulting to in stock
func (e *Extractor) extractAvailability(s *goquery.Selection) bool {
	if e.selectors.OutOfStock != "" && s.Find(e.selectors.OutOfStock).Length() > 0 {
		return false
	}
	if e.selectors.Availability != "" {
		text := strings.ToLower(strings.TrimSpace(s.Find(e.selectors.Availability).First().Text()))
		if strings.Contains(text, "out of stock") || strings.Contains(text, "unavailable") {
			return false
		}
	}
	return true
}

// resolveURL makes relative hrefs absolute against the retailer base URL
func (e *Extractor) resolveURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	return e.baseURL.ResolveReference(parsed).String()
}

// parsePrice converts price text like "$1,049.99" to a fixed-point decimal
func parsePrice(text string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Decimal{}, fmt.Errorf("empty price text")
	}
	// Keep only the leading price token; listing markup sometimes joins
	// several prices in one element.
	if i := strings.IndexAny(cleaned, " \n\t"); i > 0 {
		cleaned = cleaned[:i]
	}
	return decimal.NewFromString(cleaned)
}

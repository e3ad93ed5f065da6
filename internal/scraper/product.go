package scraper

import (
	"context"
	"fmt"
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

// ProductScraper scrapes a fixed list of product-page URLs with the same
// delay discipline as the catalog paginator. Product pages carry a richer
// markup than listing cards, so they get their own selector table.
type ProductScraper struct {
	fetcher    *Fetcher
	selectors  ProductSelectors
	baseURL    *url.URL
	retailer   string
	bestEffort bool
	log        *logger.Logger

	now func() time.Time
}

// NewProductScraper creates a product-page scraper and validates its
// selector table
func NewProductScraper(retailer, baseURL string, selectors ProductSelectors, fetcher *Fetcher, bestEffort bool) (*ProductScraper, error) {
	if err := selectors.Validate(); err != nil {
		return nil, err
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, apperrors.NewConfiguration(fmt.Sprintf("invalid base URL %q", baseURL), err)
	}
	return &ProductScraper{
		fetcher:    fetcher,
		selectors:  selectors,
		baseURL:    parsed,
		retailer:   retailer,
		bestEffort: bestEffort,
		log:        logger.ForScraper("product"),
		now:        time.Now,
	}, nil
}

// Run scrapes every URL in order. A fetch failure aborts the run; a page
// whose record cannot be extracted is skipped and counted.
func (s *ProductScraper) Run(ctx context.Context, urls []string) (*RunResult, error) {
	result := &RunResult{}

	for _, pageURL := range urls {
		select {
		case <-ctx.Done():
			s.log.Warn().Int("pages", result.Pages).Msg("Run interrupted")
			result.State = RunCancelled
			return result, nil
		default:
		}

		s.log.Info().Str("url", pageURL).Msg("Scraping product")

		body, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			// Only the run's own context marks a cancellation; a request
			// deadline also reports context.DeadlineExceeded but is a fetch
			// failure
			if ctx.Err() != nil {
				result.State = RunCancelled
				return result, nil
			}
			result.State = RunAborted
			if !s.bestEffort {
				result.Records = nil
			}
			return result, err
		}

		doc, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			result.State = RunAborted
			if !s.bestEffort {
				result.Records = nil
			}
			return result, apperrors.NewParse(s.retailer, "failed to parse HTML document", err)
		}

		result.Pages++

		record, err := s.extractProduct(doc, pageURL)
		if err != nil {
			result.Skipped++
			observability.RecordsSkipped.Inc()
			s.log.Warn().Err(err).Str("url", pageURL).Msg("Skipping product page")
			continue
		}

		observability.RecordsExtracted.Inc()
		result.Records = append(result.Records, *record)
		s.log.Info().Str("name", record.Name).Str("sku", record.SKU).Msg("Product scraped")
	}

	result.State = RunDone
	return result, nil
}

// extractProduct maps a product page to a record
func (s *ProductScraper) extractProduct(doc *goquery.Document, pageURL string) (*ProductRecord, error) {
	name := strings.TrimSpace(doc.Find(s.selectors.Title).First().Text())
	if name == "" {
		return nil, apperrors.NewParse(s.retailer, "empty product name", nil)
	}

	sku := helpers.LastSlugPart(pageURL)
	if sku == "" {
		return nil, apperrors.NewParse(s.retailer, fmt.Sprintf("no resolvable SKU for %q", name), nil)
	}

	price, original, err := s.extractPrices(doc)
	if err != nil {
		return nil, err
	}

	record := &ProductRecord{
		Name:      name,
		SKU:       sku,
		Price:     price,
		InStock:   s.extractAvailability(doc),
		URL:       pageURL,
		ScrapedAt: s.now().UTC(),
	}
	if original != nil {
		record.OriginalPrice = original
	}
	if s.selectors.Subtitle != "" {
		record.Category = strings.TrimSpace(doc.Find(s.selectors.Subtitle).First().Text())
	}
	if s.selectors.Image != "" {
		imageSel := doc.Find(s.selectors.Image).First()
		if content, exists := imageSel.Attr("content"); exists {
			record.ImageURL = strings.TrimSpace(content)
		} else if src, exists := imageSel.Attr("src"); exists {
			record.ImageURL = strings.TrimSpace(src)
		}
	}

	return record, nil
}

// extractPrices scans the price container's spans: the first dollar amount
// is the current price, a later differing one the original. The meta tag is
// the fallback when the container yields nothing.
func (s *ProductScraper) extractPrices(doc *goquery.Document) (decimal.Decimal, *decimal.Decimal, error) {
	var current, original *decimal.Decimal

	if s.selectors.PriceContainer != "" {
		doc.Find(s.selectors.PriceContainer).First().Find("span").Each(func(_ int, span *goquery.Selection) {
			text := strings.TrimSpace(span.Text())
			if !strings.HasPrefix(text, "$") {
				return
			}
			value, err := parsePrice(text)
			if err != nil || !value.IsPositive() {
				return
			}
			switch {
			case current == nil:
				current = &value
			case original == nil && !value.Equal(*current):
				original = &value
			}
		})
	}

	if current == nil && s.selectors.PriceMeta != "" {
		if content, exists := doc.Find(s.selectors.PriceMeta).First().Attr("content"); exists {
			if value, err := parsePrice(content); err == nil && value.IsPositive() {
				current = &value
			}
		}
	}

	if current == nil {
		return decimal.Decimal{}, nil, apperrors.NewParse(s.retailer, "no current price found", nil)
	}
	return *current, original, nil
}

// extractAvailability maps schema.org availability URLs and out-of-stock
// markers to the stock flag, defaulting to in stock
func (s *ProductScraper) extractAvailability(doc *goquery.Document) bool {
	if s.selectors.OutOfStock != "" && doc.Find(s.selectors.OutOfStock).Length() > 0 {
		return false
	}
	if s.selectors.AvailabilityMeta != "" {
		if content, exists := doc.Find(s.selectors.AvailabilityMeta).First().Attr("content"); exists {
			if strings.Contains(content, "OutOfStock") {
				return false
			}
		}
	}
	return true
}

package scraper

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductRecord represents one scraped product
type ProductRecord struct {
	Name          string           `json:"name"`
	SKU           string           `json:"sku"`
	Category      string           `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	InStock       bool             `json:"in_stock"`
	ImageURL      string           `json:"image_url"`
	URL           string           `json:"url"`
	ScrapedAt     time.Time        `json:"scraped_at"`
}

// OnSale reports whether the record carries a discounted price
func (r ProductRecord) OnSale() bool {
	return r.OriginalPrice != nil && r.Price.LessThan(*r.OriginalPrice)
}

// DiscountPercent returns the discount relative to the original price,
// rounded to two places. The second return value is false when the record
// is not on sale.
func (r ProductRecord) DiscountPercent() (decimal.Decimal, bool) {
	if !r.OnSale() {
		return decimal.Decimal{}, false
	}
	diff := r.OriginalPrice.Sub(r.Price)
	return diff.Div(*r.OriginalPrice).Mul(decimal.NewFromInt(100)).Round(2), true
}

// RunState represents the terminal state of a scrape run
type RunState string

const (
	// RunDone means the run completed normally
	RunDone RunState = "done"
	// RunAborted means a fetch failure ended the run
	RunAborted RunState = "aborted"
	// RunCancelled means an external signal interrupted the run
	RunCancelled RunState = "cancelled"
)

// RunResult holds everything a scrape run produced
type RunResult struct {
	Records   []ProductRecord
	State     RunState
	Pages     int
	Skipped   int
	Truncated bool
}

// RunSummary is the user-visible report printed at run end
type RunSummary struct {
	RunID            string        `json:"run_id"`
	Retailer         string        `json:"retailer"`
	Mode             string        `json:"mode"`
	State            RunState      `json:"state"`
	PagesFetched     int           `json:"pages_fetched"`
	RecordsExtracted int           `json:"records_extracted"`
	RecordsSkipped   int           `json:"records_skipped"`
	RecordsPersisted int           `json:"records_persisted"`
	SinkFailures     int           `json:"sink_failures"`
	Truncated        bool          `json:"truncated"`
	Duration         time.Duration `json:"duration"`
}

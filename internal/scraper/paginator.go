package scraper

import (
	"context"

	"pricetracker/logger"
)

// Paginator drives the fetcher/extractor pair across listing pages until the
// retailer stops offering a next page or the configured ceiling is reached.
// A fetch failure aborts the run; the partial accumulation is discarded
// unless best-effort mode is configured.
type Paginator struct {
	fetcher    *Fetcher
	extractor  *Extractor
	startURL   string
	maxPages   int
	bestEffort bool
	log        *logger.Logger
}

// NewPaginator creates a paginator starting at the first listing page
func NewPaginator(fetcher *Fetcher, extractor *Extractor, startURL string, maxPages int, bestEffort bool) *Paginator {
	return &Paginator{
		fetcher:    fetcher,
		extractor:  extractor,
		startURL:   startURL,
		maxPages:   maxPages,
		bestEffort: bestEffort,
		log:        logger.ForScraper("catalog"),
	}
}

// Run walks the listing pages sequentially. Cancellation is checked before
// each fetch; on cancel the accumulated records are kept and the run is
// reported as cancelled. The returned error is non-nil only for aborted runs.
func (p *Paginator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}
	pageURL := p.startURL

	for pageURL != "" {
		select {
		case <-ctx.Done():
			p.log.Warn().Int("pages", result.Pages).Msg("Run interrupted")
			result.State = RunCancelled
			return result, nil
		default:
		}

		p.log.Info().Int("page", result.Pages+1).Str("url", pageURL).Msg("Scraping page")

		body, err := p.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			// Only the run's own context marks a cancellation; a request
			// deadline also reports context.DeadlineExceeded but is a fetch
			// failure
			if ctx.Err() != nil {
				result.State = RunCancelled
				return result, nil
			}
			return p.abort(result, err)
		}

		doc, err := p.extractor.Parse(body)
		if err != nil {
			// A page that does not even parse is as untrustworthy as a
			// failed fetch
			return p.abort(result, err)
		}

		records, skipped := p.extractor.Extract(doc)
		result.Pages++
		result.Skipped += skipped
		result.Records = append(result.Records, records...)

		p.log.Info().
			Int("page", result.Pages).
			Int("records", len(records)).
			Int("skipped", skipped).
			Int("total", len(result.Records)).
			Msg("Page extracted")

		if len(records) == 0 && skipped == 0 {
			p.log.Warn().Int("page", result.Pages).Msg("No products found, stopping")
			break
		}

		next, hasNext := p.extractor.NextPageURL(doc)
		if result.Pages >= p.maxPages {
			result.Truncated = hasNext
			if hasNext {
				p.log.Info().Int("max_pages", p.maxPages).Msg("Page ceiling reached, truncating run")
			}
			break
		}
		if !hasNext {
			break
		}
		pageURL = next
	}

	result.State = RunDone
	return result, nil
}

func (p *Paginator) abort(result *RunResult, err error) (*RunResult, error) {
	result.State = RunAborted
	if !p.bestEffort {
		result.Records = nil
	}
	return result, err
}

package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"pricetracker/helpers"
	"pricetracker/internal/observability"
	"pricetracker/logger"
	"pricetracker/services/cache"

	apperrors "pricetracker/pkg/errors"
)

// Fetcher issues rate-limited HTTP GETs for retailer pages. The configured
// delay is applied before every request except the first; the per-request
// timeout lives on the HTTP client. A cooldown cache, when present, blocks
// fetching for a window after the retailer rate-limits us.
type Fetcher struct {
	client      *http.Client
	retailer    string
	delay       time.Duration
	cooldown    cache.CooldownCache
	cooldownKey string
	blockTime   time.Duration
	log         *logger.Logger

	last time.Time
}

// NewFetcher creates a fetcher for one retailer
func NewFetcher(retailer string, timeout, delay time.Duration, cooldown cache.CooldownCache, blockTime time.Duration) *Fetcher {
	return &Fetcher{
		client:      helpers.NewHTTPClient(timeout),
		retailer:    retailer,
		delay:       delay,
		cooldown:    cooldown,
		cooldownKey: retailer + "_rate_limited",
		blockTime:   blockTime,
		log:         logger.ForScraper(retailer),
	}
}

// Fetch retrieves one page as a UTF-8 reader. Errors carry the taxonomy from
// pkg/errors; a context cancellation during the inter-request wait surfaces
// as the context's error.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (io.Reader, error) {
	// Check whether a previous run left a cooldown marker
	if f.cooldown != nil {
		if _, err := f.cooldown.Get(f.cooldownKey); err == nil {
			return nil, apperrors.NewRateLimit(f.retailer, fmt.Sprintf("%d seconds (cooldown marker)", int(f.blockTime/time.Second)))
		}
	}

	if err := f.waitDelay(ctx); err != nil {
		return nil, err
	}
	f.last = time.Now()

	body, err := helpers.FetchPage(ctx, f.client, f.retailer, pageURL)
	if err != nil {
		if errType, ok := apperrors.TypeOf(err); ok && errType == apperrors.ErrorTypeRateLimit {
			f.setCooldown()
		}
		return nil, err
	}

	observability.PagesFetched.Inc()
	f.log.Debug().Str("url", pageURL).Msg("Fetched page")
	return body, nil
}

// waitDelay sleeps the configured delay since the previous fetch, except
// before the first one
func (f *Fetcher) waitDelay(ctx context.Context) error {
	if f.last.IsZero() || f.delay <= 0 {
		return nil
	}
	remaining := f.delay - time.Since(f.last)
	if remaining <= 0 {
		return nil
	}

	f.log.Debug().Dur("wait", remaining).Msg("Waiting before next request")
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *Fetcher) setCooldown() {
	if f.cooldown == nil {
		return
	}
	value := []byte(fmt.Sprintf("%d", int(f.blockTime/time.Second)))
	if err := f.cooldown.Set(f.cooldownKey, value, f.blockTime); err != nil {
		f.log.Warn().Err(err).Msg("Failed to set cooldown marker")
	}
}

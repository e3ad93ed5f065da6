package sink

import (
	"context"

	"pricetracker/internal/observability"
	"pricetracker/internal/scraper"
	"pricetracker/logger"

	apperrors "pricetracker/pkg/errors"
)

// Result reports what a sink did with one record batch
type Result struct {
	Persisted int
	Failures  int
}

// Sink persists a scraped record batch to one target
type Sink interface {
	// Name identifies the sink in logs and summaries
	Name() string

	// Persist writes the records. Per-record failures are counted, not
	// fatal; the error is non-nil only when the whole sink failed.
	Persist(ctx context.Context, records []scraper.ProductRecord) (Result, error)
}

// Composite runs every sink to completion independently: a failure in one
// target never blocks the others.
type Composite struct {
	sinks []Sink
}

// NewComposite creates a composite over the given sinks
func NewComposite(sinks ...Sink) *Composite {
	return &Composite{sinks: sinks}
}

// Persist fans the batch out to each sink in order, aggregating counts.
// The returned error is non-nil only when every sink failed outright.
func (c *Composite) Persist(ctx context.Context, records []scraper.ProductRecord) (Result, error) {
	var total Result
	failedSinks := 0
	var lastErr error

	for _, s := range c.sinks {
		log := logger.ForSink(s.Name())
		result, err := s.Persist(ctx, records)
		total.Persisted += result.Persisted
		total.Failures += result.Failures
		if err != nil {
			failedSinks++
			lastErr = err
			log.Error().Err(err).Msg("Sink failed")
			continue
		}
		log.Info().
			Int("persisted", result.Persisted).
			Int("failures", result.Failures).
			Msg("Sink completed")
	}

	observability.RecordsPersisted.Add(float64(total.Persisted))
	observability.SinkFailures.Add(float64(total.Failures))

	if len(c.sinks) > 0 && failedSinks == len(c.sinks) {
		return total, apperrors.NewPersist("composite", "all sinks failed", lastErr)
	}
	return total, nil
}

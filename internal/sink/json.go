package sink

import (
	"context"
	"encoding/json"
	"os"

	"pricetracker/internal/scraper"

	apperrors "pricetracker/pkg/errors"
)

// JSONSink writes the full record batch to a file, replacing any prior
// snapshot at the path. Each run's output is a complete snapshot, never an
// append.
type JSONSink struct {
	path string
}

// NewJSONSink creates a JSON snapshot sink
func NewJSONSink(path string) *JSONSink {
	return &JSONSink{path: path}
}

// Name identifies the sink
func (s *JSONSink) Name() string {
	return "json"
}

// Persist serializes the batch and overwrites the snapshot file
func (s *JSONSink) Persist(_ context.Context, records []scraper.ProductRecord) (Result, error) {
	if records == nil {
		records = []scraper.ProductRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return Result{Failures: len(records)}, apperrors.NewPersist(s.Name(), "failed to serialize records", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return Result{Failures: len(records)}, apperrors.NewPersist(s.Name(), "failed to write snapshot "+s.path, err)
	}

	return Result{Persisted: len(records)}, nil
}

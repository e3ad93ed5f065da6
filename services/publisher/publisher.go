package publisher

import (
	"pricetracker/internal/scraper"
)

// Publisher hands persisted price observations to the external alerting
// collaborator
type Publisher interface {
	// PublishObservation pushes one observation onto the stream
	PublishObservation(record scraper.ProductRecord) error

	// Trim caps the stream at its configured maximum length
	Trim() error

	// Close closes the publisher connection
	Close() error
}

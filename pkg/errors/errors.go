package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeTimeout represents a request that exceeded its deadline
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeHTTPStatus represents a non-2xx HTTP response
	ErrorTypeHTTPStatus ErrorType = "http_status"
	// ErrorTypeNetwork represents DNS or connection failures
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit represents rate limiting by the retailer
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeParse represents HTML parsing errors
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypePersist represents sink write errors
	ErrorTypePersist ErrorType = "persist"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a scraper-specific error
type ScrapeError struct {
	Type       ErrorType
	Retailer   string
	Message    string
	StatusCode int
	Err        error
	Time       time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Type == ErrorTypeHTTPStatus {
		return fmt.Sprintf("[%s] %s: %s (status %d)", e.Type, e.Retailer, e.Message, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Retailer, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Retailer, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *ScrapeError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeTimeout:
		return true
	default:
		return false
	}
}

// IsFetch returns true for the transport error classes that abort a run
func (e *ScrapeError) IsFetch() bool {
	switch e.Type {
	case ErrorTypeTimeout, ErrorTypeHTTPStatus, ErrorTypeNetwork, ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, retailer, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:     errType,
		Retailer: retailer,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewTimeout creates a new timeout error
func NewTimeout(retailer, message string, err error) *ScrapeError {
	return New(ErrorTypeTimeout, retailer, message, err)
}

// NewHTTPStatus creates a new HTTP status error
func NewHTTPStatus(retailer string, statusCode int, url string) *ScrapeError {
	e := New(ErrorTypeHTTPStatus, retailer, fmt.Sprintf("unexpected status fetching %s", url), nil)
	e.StatusCode = statusCode
	return e
}

// NewNetwork creates a new network error
func NewNetwork(retailer, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, retailer, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(retailer, retryAfter string) *ScrapeError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, retailer, message, nil)
}

// NewParse creates a new parsing error
func NewParse(retailer, message string, err error) *ScrapeError {
	return New(ErrorTypeParse, retailer, message, err)
}

// NewPersist creates a new persistence error
func NewPersist(sinkName, message string, err error) *ScrapeError {
	return New(ErrorTypePersist, sinkName, message, err)
}

// NewValidation creates a new validation error
func NewValidation(retailer, message string) *ScrapeError {
	return New(ErrorTypeValidation, retailer, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the ErrorType of err if it is a ScrapeError
func TypeOf(err error) (ErrorType, bool) {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Type, true
	}
	return "", false
}

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := NewHTTPStatus("dockers", 503, "https://www.dockers.com/en/shop/mens/pants")
	assert.Contains(t, err.Error(), "http_status")
	assert.Contains(t, err.Error(), "status 503")
	assert.Equal(t, 503, err.StatusCode)

	wrapped := NewNetwork("dockers", "connection refused", fmt.Errorf("dial tcp"))
	assert.Contains(t, wrapped.Error(), "dial tcp")

	bare := NewRateLimit("dockers", "60 seconds")
	assert.Contains(t, bare.Error(), "retry after 60 seconds")
}

func TestUnwrap(t *testing.T) {
	inner := fmt.Errorf("underlying failure")
	err := NewParse("dockers", "bad markup", inner)
	assert.ErrorIs(t, err, inner)

	var scrapeErr *ScrapeError
	require.True(t, errors.As(fmt.Errorf("run failed: %w", err), &scrapeErr))
	assert.Equal(t, ErrorTypeParse, scrapeErr.Type)
}

func TestTypeOf(t *testing.T) {
	errType, ok := TypeOf(NewTimeout("dockers", "deadline exceeded", nil))
	require.True(t, ok)
	assert.Equal(t, ErrorTypeTimeout, errType)

	_, ok = TypeOf(fmt.Errorf("plain error"))
	assert.False(t, ok)
}

func TestErrorClasses(t *testing.T) {
	tests := []struct {
		err       *ScrapeError
		isFetch   bool
		retryable bool
	}{
		{NewTimeout("dockers", "deadline exceeded", nil), true, true},
		{NewNetwork("dockers", "connection refused", nil), true, true},
		{NewHTTPStatus("dockers", 500, "https://example.com"), true, false},
		{NewRateLimit("dockers", ""), true, false},
		{NewParse("dockers", "bad markup", nil), false, false},
		{NewPersist("json", "write failed", nil), false, false},
		{NewValidation("dockers", "missing selector"), false, false},
		{NewConfiguration("bad base URL", nil), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Type), func(t *testing.T) {
			assert.Equal(t, tt.isFetch, tt.err.IsFetch())
			assert.Equal(t, tt.retryable, tt.err.IsRetryable())
		})
	}
}

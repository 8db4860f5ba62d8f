package extractor

import (
	"context"
	"errors"

	"github.com/bbookman/mom0mind/internal/models"
)

// ErrNoExtractableContent is returned when the input cannot be split into
// any sentence-bearing unit (empty or whitespace-only input). Callers may
// retry with cleaned input.
var ErrNoExtractableContent = errors.New("extractor: no extractable content")

// ExtractRequest carries one unit of raw text plus its metadata.
type ExtractRequest struct {
	// Content is the raw conversational or document text.
	Content string
	// Context is a section or topic label (e.g. "social", "work").
	Context string
	// TimeContext is an optional date or time phrase the content is
	// anchored to, e.g. "2024-03-10".
	TimeContext string
}

// Extractor defines the interface for extracting facts from content.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) ([]models.Fact, error)
}

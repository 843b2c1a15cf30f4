package engine

import (
	"context"
	"io"
)

// ModelClient abstracts LLM calls. Implementations can wrap OpenAI, local models, etc.
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Enricher produces summaries and translations. Every provider failure is
// returned as *model.EnrichmentError; a nil error always comes with
// non-empty text.
type Enricher interface {
	Summarize(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// DocumentExtractor turns an uploaded document into plain text.
type DocumentExtractor interface {
	Extract(ctx context.Context, blob io.Reader, mediaType string) (string, error)
}

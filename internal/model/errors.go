package model

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match with errors.Is; the typed errors below
// unwrap to one of these.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnsupportedFormat     = errors.New("unsupported format")
	ErrExtraction            = errors.New("extraction failed")
	ErrEnrichmentUnavailable = errors.New("enrichment unavailable")
	ErrNotFound              = errors.New("not found")
	ErrDuplicate             = errors.New("already exists")
	ErrUnauthorized          = errors.New("unauthorized")
)

// InvalidInputError reports why input was rejected before any external call.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// UnsupportedFormatError carries the rejected media type.
type UnsupportedFormatError struct {
	MediaType string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q", e.MediaType)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ExtractionError wraps a parse failure for a supported media type.
type ExtractionError struct {
	MediaType string
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.MediaType, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

// EnrichmentError is returned for every failed provider call. Stage is
// "summarize" or "translate".
type EnrichmentError struct {
	Stage      string
	Provider   string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *EnrichmentError) Error() string {
	msg := e.Stage
	if e.Provider != "" {
		msg += " via " + e.Provider
	}
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err == nil {
		return msg + ": " + ErrEnrichmentUnavailable.Error()
	}
	return msg + ": " + e.Err.Error()
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}

func (e *EnrichmentError) Is(target error) bool {
	return target == ErrEnrichmentUnavailable
}

// IsRetryable lets a retry policy decide without knowing the provider.
func (e *EnrichmentError) IsRetryable() bool {
	return e.Retryable
}

// StepName reports the pipeline stage that failed.
func (e *EnrichmentError) StepName() string {
	return e.Stage
}

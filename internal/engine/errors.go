package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/model"
)

// Enrichment stages, as reported in model.EnrichmentError.Stage.
const (
	StageSummarize = "summarize"
	StageTranslate = "translate"
)

// apiError represents a non-2xx response from a hand-rolled provider client.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// isRetryable returns true for transient errors (rate limit, server errors).
func (e *apiError) isRetryable() bool {
	return isRetryableStatus(e.StatusCode)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// enrichmentError classifies err into a *model.EnrichmentError. Input
// validation errors and errors that are already classified pass through.
func enrichmentError(stage, provider string, err error) error {
	if err == nil {
		return nil
	}
	var ee *model.EnrichmentError
	if errors.As(err, &ee) || errors.Is(err, model.ErrInvalidInput) {
		return err
	}

	out := &model.EnrichmentError{Stage: stage, Provider: provider, Err: err}

	var (
		ae        *apiError
		oaiAPI    *openai.APIError
		oaiReq    *openai.RequestError
		claudeAPI *anthropic.APIError
		claudeReq *anthropic.RequestError
		netErr    net.Error
	)
	switch {
	case errors.As(err, &ae):
		out.StatusCode = ae.StatusCode
		out.Retryable = ae.isRetryable()
	case errors.As(err, &oaiAPI):
		out.StatusCode = oaiAPI.HTTPStatusCode
		out.Retryable = isRetryableStatus(oaiAPI.HTTPStatusCode)
	case errors.As(err, &oaiReq):
		out.StatusCode = oaiReq.HTTPStatusCode
		out.Retryable = isRetryableStatus(oaiReq.HTTPStatusCode)
	case errors.As(err, &claudeReq):
		out.StatusCode = claudeReq.StatusCode
		out.Retryable = isRetryableStatus(claudeReq.StatusCode)
	case errors.As(err, &claudeAPI):
		switch string(claudeAPI.Type) {
		case "rate_limit_error", "overloaded_error", "api_error":
			out.Retryable = true
		}
	case errors.Is(err, context.Canceled):
	case errors.Is(err, context.DeadlineExceeded):
		out.Retryable = true
	case errors.As(err, &netErr):
		out.Retryable = netErr.Timeout()
	}
	return out
}

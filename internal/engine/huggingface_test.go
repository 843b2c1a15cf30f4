package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/model"
)

func TestHuggingFaceSummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/facebook/bart-large-cnn", r.URL.Path)
		assert.Equal(t, "Bearer hf-test", r.Header.Get("Authorization"))

		var req hfRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "A long article.", req.Inputs)
		require.NotNil(t, req.Parameters)
		assert.Equal(t, 30, req.Parameters.MinLength)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"summary_text":"  Short.  "}]`))
	}))
	defer srv.Close()

	c := NewHuggingFaceClient("hf-test", WithHuggingFaceURL(srv.URL+"/"))
	got, err := c.Summarize(context.Background(), "A long article.")
	require.NoError(t, err)
	assert.Equal(t, "Short.", got)
}

func TestHuggingFaceTranslateUsesLanguagePairModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/Helsinki-NLP/opus-mt-en-fr", r.URL.Path)

		var req hfRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Nil(t, req.Parameters)

		w.Write([]byte(`[{"translation_text":"Bonjour"}]`))
	}))
	defer srv.Close()

	c := NewHuggingFaceClient("hf-test", WithHuggingFaceURL(srv.URL))
	got, err := c.Translate(context.Background(), "Hello", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", got)
}

func TestHuggingFaceFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		retryable  bool
	}{
		{"model loading", http.StatusServiceUnavailable, `{"error":"Model is currently loading","estimated_time":20}`, 503, true},
		{"rate limited", http.StatusTooManyRequests, `{"error":"rate limit"}`, 429, true},
		{"bad token", http.StatusUnauthorized, `{"error":"invalid token"}`, 401, false},
		{"malformed body", http.StatusOK, `not json`, 0, false},
		{"empty list", http.StatusOK, `[]`, 0, false},
		{"wrong shape", http.StatusOK, `[{"generated_text":"x"}]`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewHuggingFaceClient("hf-test", WithHuggingFaceURL(srv.URL))
			got, err := c.Summarize(context.Background(), "some text")
			require.Error(t, err)
			assert.Empty(t, got)
			assert.ErrorIs(t, err, model.ErrEnrichmentUnavailable)

			var ee *model.EnrichmentError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, StageSummarize, ee.Stage)
			assert.Equal(t, "huggingface", ee.Provider)
			assert.Equal(t, tt.wantStatus, ee.StatusCode)
			assert.Equal(t, tt.retryable, ee.Retryable)
		})
	}
}

func TestHuggingFaceErrorMessageFromBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model is currently loading"}`))
	}))
	defer srv.Close()

	c := NewHuggingFaceClient("", WithHuggingFaceURL(srv.URL))
	_, err := c.Translate(context.Background(), "Hello", "en", "de")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Model is currently loading")
	assert.Contains(t, err.Error(), "translate")
}

func TestHuggingFaceRejectsEmptyTextWithoutCalling(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := NewHuggingFaceClient("hf-test", WithHuggingFaceURL(srv.URL))
	_, err := c.Summarize(context.Background(), "   \n")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.NotErrorIs(t, err, model.ErrEnrichmentUnavailable)
	assert.Zero(t, calls.Load())
}

func TestHuggingFaceCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"summary_text":"x"}]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewHuggingFaceClient("hf-test", WithHuggingFaceURL(srv.URL))
	_, err := c.Summarize(ctx, "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrEnrichmentUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsRetryable(err))
}

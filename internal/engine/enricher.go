package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/model"
)

// LLMEnricher adapts a chat-style ModelClient into an Enricher using the
// summarize and translate prompts.
type LLMEnricher struct {
	client   ModelClient
	provider string
	maxRunes int
	logger   *zap.Logger
}

var _ Enricher = (*LLMEnricher)(nil)

// LLMOption configures an LLMEnricher.
type LLMOption func(*LLMEnricher)

// WithPromptRunes sets the longest text embedded in a prompt. Longer text is
// rejected rather than cut. Keep it in step with the pipeline's input cap.
func WithPromptRunes(n int) LLMOption {
	return func(e *LLMEnricher) {
		if n > 0 {
			e.maxRunes = n
		}
	}
}

// NewLLMEnricher creates an Enricher backed by client. provider names the
// backend in errors and logs.
func NewLLMEnricher(client ModelClient, provider string, logger *zap.Logger, opts ...LLMOption) *LLMEnricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &LLMEnricher{
		client:   client,
		provider: provider,
		maxRunes: DefaultMaxInputRunes,
		logger:   logger.Named("llm").With(zap.String("provider", provider)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summarize asks the model for a short summary of text.
func (e *LLMEnricher) Summarize(ctx context.Context, text string) (string, error) {
	if err := e.checkText(text); err != nil {
		return "", err
	}
	return e.complete(ctx, StageSummarize, buildSummarizePrompt(text), len(text))
}

// Translate asks the model to translate text. It always calls the model,
// even when sourceLang equals targetLang.
func (e *LLMEnricher) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if err := e.checkText(text); err != nil {
		return "", err
	}
	return e.complete(ctx, StageTranslate, buildTranslatePrompt(text, sourceLang, targetLang), len(text))
}

func (e *LLMEnricher) complete(ctx context.Context, stage, prompt string, inputLen int) (string, error) {
	start := time.Now()
	out, err := e.client.Complete(ctx, prompt)
	if err != nil {
		e.logger.Warn("model call failed",
			zap.String("stage", stage),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", enrichmentError(stage, e.provider, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", enrichmentError(stage, e.provider, errors.New("model returned empty text"))
	}
	e.logger.Debug("model call completed",
		zap.String("stage", stage),
		zap.Int("input_len", inputLen),
		zap.Int("output_len", len(out)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func (e *LLMEnricher) checkText(text string) error {
	if err := requireText(text); err != nil {
		return err
	}
	if utf8.RuneCountInString(text) > e.maxRunes {
		return &model.InvalidInputError{Reason: fmt.Sprintf("text exceeds %d characters", e.maxRunes)}
	}
	return nil
}

// requireText rejects empty or whitespace-only input before any provider call.
func requireText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &model.InvalidInputError{Reason: "text is empty"}
	}
	return nil
}

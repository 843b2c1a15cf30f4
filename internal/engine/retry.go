package engine

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy defines exponential backoff for retryable enrichment failures.
// The zero value never retries.
type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // 0.0-1.0, +/- fraction applied to each delay
}

// NoRetry is the default policy: one attempt per call.
func NoRetry() RetryPolicy {
	return RetryPolicy{}
}

// BackoffPolicy returns a policy with maxRetries extra attempts, starting at
// 500ms and doubling up to 10s with 10% jitter.
func BackoffPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:   maxRetries,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// retryable is implemented by errors that declare whether a retry may help.
type retryable interface {
	IsRetryable() bool
}

// IsRetryable reports whether err, or any error it wraps, declares itself
// transient.
func IsRetryable(err error) bool {
	var r retryable
	return errors.As(err, &r) && r.IsRetryable()
}

func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// Do calls fn until it succeeds, fails with a non-retryable error, or the
// retry budget is spent. Waiting between attempts aborts on ctx
// cancellation.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	delay := p.InitialDelay
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) || attempt == p.MaxRetries {
			return lastErr
		}
		select {
		case <-time.After(applyJitter(delay, p.JitterFactor)):
		case <-ctx.Done():
			return lastErr
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return lastErr
}

// RetryingEnricher applies a RetryPolicy to another Enricher.
type RetryingEnricher struct {
	next   Enricher
	policy RetryPolicy
	logger *zap.Logger
}

var _ Enricher = (*RetryingEnricher)(nil)

// WithRetry wraps next with policy. A policy without retries returns next
// unchanged.
func WithRetry(next Enricher, policy RetryPolicy, logger *zap.Logger) Enricher {
	if policy.MaxRetries <= 0 {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingEnricher{next: next, policy: policy, logger: logger.Named("retry")}
}

func (r *RetryingEnricher) Summarize(ctx context.Context, text string) (string, error) {
	var out string
	attempt := 0
	err := r.policy.Do(ctx, func() error {
		attempt++
		var err error
		out, err = r.next.Summarize(ctx, text)
		r.logFailure(StageSummarize, attempt, err)
		return err
	})
	return out, err
}

func (r *RetryingEnricher) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	var out string
	attempt := 0
	err := r.policy.Do(ctx, func() error {
		attempt++
		var err error
		out, err = r.next.Translate(ctx, text, sourceLang, targetLang)
		r.logFailure(StageTranslate, attempt, err)
		return err
	})
	return out, err
}

func (r *RetryingEnricher) logFailure(stage string, attempt int, err error) {
	if err == nil || !IsRetryable(err) {
		return
	}
	r.logger.Warn("enrichment attempt failed",
		zap.String("stage", stage),
		zap.Int("attempt", attempt),
		zap.Error(err),
	)
}

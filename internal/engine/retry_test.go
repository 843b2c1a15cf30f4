package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/model"
)

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:   retries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func transient() error {
	return &model.EnrichmentError{Stage: StageSummarize, Provider: "p", StatusCode: 503, Retryable: true}
}

func TestRetryPolicyRetriesTransientErrors(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return transient()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := &model.EnrichmentError{Stage: StageSummarize, Provider: "p", StatusCode: 401}
	err := fastPolicy(3).Do(context.Background(), func() error {
		calls++
		return permanent
	})
	assert.Same(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicyExhausted(t *testing.T) {
	calls := 0
	err := fastPolicy(2).Do(context.Background(), func() error {
		calls++
		return transient()
	})
	assert.ErrorIs(t, err, model.ErrEnrichmentUnavailable)
	assert.Equal(t, 3, calls)
}

func TestNoRetryCallsOnce(t *testing.T) {
	calls := 0
	_ = NoRetry().Do(context.Background(), func() error {
		calls++
		return transient()
	})
	assert.Equal(t, 1, calls)
}

func TestRetryPolicyCanceledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{MaxRetries: 5, InitialDelay: time.Hour, Multiplier: 2}

	calls := 0
	err := p.Do(ctx, func() error {
		calls++
		cancel()
		return transient()
	})
	assert.ErrorIs(t, err, model.ErrEnrichmentUnavailable)
	assert.Equal(t, 1, calls)
}

func TestApplyJitterStaysInBounds(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 100; i++ {
		d := applyJitter(base, 0.1)
		assert.GreaterOrEqual(t, d, 90*time.Millisecond)
		assert.LessOrEqual(t, d, 110*time.Millisecond)
	}
	assert.Equal(t, base, applyJitter(base, 0))
}

// flakyEnricher fails the first n calls with a transient error.
type flakyEnricher struct {
	mu    sync.Mutex
	fails int
	calls int
}

func (f *flakyEnricher) next() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.fails {
		return transient()
	}
	return nil
}

func (f *flakyEnricher) Summarize(context.Context, string) (string, error) {
	if err := f.next(); err != nil {
		return "", err
	}
	return "summary", nil
}

func (f *flakyEnricher) Translate(context.Context, string, string, string) (string, error) {
	if err := f.next(); err != nil {
		return "", err
	}
	return "translation", nil
}

func TestWithRetry(t *testing.T) {
	inner := &flakyEnricher{fails: 2}
	assert.Same(t, Enricher(inner), WithRetry(inner, NoRetry(), nil))

	e := WithRetry(inner, fastPolicy(2), nil)
	got, err := e.Summarize(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "summary", got)
	assert.Equal(t, 3, inner.calls)

	inner = &flakyEnricher{fails: 5}
	e = WithRetry(inner, fastPolicy(1), nil)
	_, err = e.Translate(context.Background(), "text", "en", "fr")
	assert.ErrorIs(t, err, model.ErrEnrichmentUnavailable)
	assert.Equal(t, 2, inner.calls)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(transient()))
	assert.True(t, IsRetryable(errors.Join(errors.New("ctx"), transient())))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	var (
		active  atomic.Int32
		overlap atomic.Bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("k")
			if active.Add(1) > 1 {
				overlap.Store(true)
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
			unlock()
		}()
	}
	wg.Wait()
	assert.False(t, overlap.Load())

	// The key is free again once every holder has unlocked.
	unlock := km.Lock("k")
	unlock()
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()
	unlockA := km.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := km.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestLockKeySeparatesParts(t *testing.T) {
	assert.NotEqual(t, lockKey("ab", "c"), lockKey("a", "bc"))
	assert.Equal(t, lockKey("x", "y"), lockKey("x", "y"))
	assert.Len(t, lockKey("anything"), 64)
}

func TestStubEnricher(t *testing.T) {
	s := StubEnricher{}
	got, err := s.Summarize(context.Background(), "First one. Second  one!\nThird one? Fourth.")
	require.NoError(t, err)
	assert.Equal(t, "First one. Second one!", got)

	got, err = s.Summarize(context.Background(), "No terminal punctuation")
	require.NoError(t, err)
	assert.Equal(t, "No terminal punctuation", got)

	got, err = s.Translate(context.Background(), " hi ", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "[fr] hi", got)

	_, err = s.Summarize(context.Background(), " ")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

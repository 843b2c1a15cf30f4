package engine

import (
	"context"
	"strings"
)

// stubSummarySentences is how many leading sentences StubEnricher keeps.
const stubSummarySentences = 2

// StubEnricher returns deterministic enrichment results (for development/testing).
type StubEnricher struct{}

var _ Enricher = StubEnricher{}

// Summarize returns the leading sentences of text.
func (StubEnricher) Summarize(_ context.Context, text string) (string, error) {
	if err := requireText(text); err != nil {
		return "", err
	}
	return leadingSentences(strings.Join(strings.Fields(text), " "), stubSummarySentences), nil
}

// Translate tags text with the target language instead of translating it.
func (StubEnricher) Translate(_ context.Context, text, _, targetLang string) (string, error) {
	if err := requireText(text); err != nil {
		return "", err
	}
	return "[" + targetLang + "] " + strings.TrimSpace(text), nil
}

func leadingSentences(s string, n int) string {
	count := 0
	for i, r := range s {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(s) && s[i+1] != ' ' {
			continue
		}
		count++
		if count == n {
			return s[:i+1]
		}
	}
	return s
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "huggingface", cfg.LLMProvider)
	assert.Equal(t, "facebook/bart-large-cnn", cfg.HuggingFaceSummarizer)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 0, cfg.EnrichmentMaxRetries)
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.Equal(t, int64(10485760), cfg.MaxUploadBytes)
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `port: "9090"
llm_provider: openai
history_limit: 10
http_timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("HISTORY_LIMIT", "15")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, 15, cfg.HistoryLimit)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"bad driver", map[string]string{"DB_DRIVER": "mongo"}},
		{"bad provider", map[string]string{"LLM_PROVIDER": "gemini"}},
		{"history too large", map[string]string{"HISTORY_LIMIT": "50"}},
		{"negative retries", map[string]string{"ENRICHMENT_MAX_RETRIES": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestUseStubs(t *testing.T) {
	tests := []struct {
		cfg  Config
		want bool
	}{
		{Config{LLMProvider: "huggingface"}, true},
		{Config{LLMProvider: "huggingface", HuggingFaceKey: "hf"}, false},
		{Config{LLMProvider: "openai"}, true},
		{Config{LLMProvider: "openai", OpenAIKey: "sk"}, false},
		{Config{LLMProvider: "claude"}, true},
		{Config{LLMProvider: "claude", AnthropicKey: "ak"}, false},
		{Config{LLMProvider: "ollama"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cfg.UseStubs(), tt.cfg.LLMProvider)
	}
}

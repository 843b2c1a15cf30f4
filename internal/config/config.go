// Package config provides centralized configuration for the summarizer server.
// Values come from an optional YAML file with environment variable overrides;
// secrets are read from the environment only.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all server configuration values.
type Config struct {
	// Port is the HTTP server listen port.
	Port string `yaml:"port" env:"PORT" env-default:"5000"`

	// DBDriver selects the storage backend: "sqlite" or "postgres".
	DBDriver string `yaml:"db_driver" env:"DB_DRIVER" env-default:"sqlite"`

	// DBDSN is the SQLite file path or the PostgreSQL connection string.
	DBDSN string `yaml:"db_dsn" env:"DB_DSN" env-default:"summarizer.db"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`

	// JWTSecret signs session tokens.
	JWTSecret string        `yaml:"-" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"1h"`

	// LLMProvider selects the enrichment backend: "huggingface", "openai",
	// "claude" or "ollama".
	LLMProvider string `yaml:"llm_provider" env:"LLM_PROVIDER" env-default:"huggingface"`

	HuggingFaceKey        string `yaml:"-" env:"HUGGINGFACE_API_KEY"`
	HuggingFaceURL        string `yaml:"huggingface_url" env:"HUGGINGFACE_URL" env-default:"https://api-inference.huggingface.co"`
	HuggingFaceSummarizer string `yaml:"huggingface_summary_model" env:"HUGGINGFACE_SUMMARY_MODEL" env-default:"facebook/bart-large-cnn"`
	// HuggingFaceTranslator is a model template; {src} and {tgt} are replaced
	// with the language tags of each request.
	HuggingFaceTranslator string `yaml:"huggingface_translation_model" env:"HUGGINGFACE_TRANSLATION_MODEL" env-default:"Helsinki-NLP/opus-mt-{src}-{tgt}"`

	OpenAIKey     string `yaml:"-" env:"OPENAI_API_KEY"`
	OpenAIModel   string `yaml:"openai_model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	OpenAIBaseURL string `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`

	AnthropicKey   string `yaml:"-" env:"ANTHROPIC_API_KEY"`
	AnthropicModel string `yaml:"anthropic_model" env:"ANTHROPIC_MODEL" env-default:"claude-sonnet-4-20250514"`

	OllamaURL   string `yaml:"ollama_url" env:"OLLAMA_URL" env-default:"http://localhost:11434"`
	OllamaModel string `yaml:"ollama_model" env:"OLLAMA_MODEL" env-default:"llama3"`

	// HTTPTimeout bounds each outgoing provider call.
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"HTTP_TIMEOUT" env-default:"60s"`

	// EnrichmentMaxRetries is the number of extra attempts for retryable
	// provider failures. Zero disables retry.
	EnrichmentMaxRetries int `yaml:"enrichment_max_retries" env:"ENRICHMENT_MAX_RETRIES" env-default:"0"`

	// MaxInputRunes rejects submissions longer than this many runes.
	MaxInputRunes int `yaml:"max_input_runes" env:"MAX_INPUT_RUNES" env-default:"20000"`

	// MaxUploadBytes bounds the uploaded file size.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"10485760"`

	// HistoryLimit is the number of artifacts returned by the history listing.
	HistoryLimit int `yaml:"history_limit" env:"HISTORY_LIMIT" env-default:"20"`

	// CORSOrigin is the allowed CORS origin.
	CORSOrigin string `yaml:"cors_origin" env:"CORS_ORIGIN" env-default:"*"`
}

// Load reads configuration from the YAML file at path with environment
// overrides. A missing file is not an error; the environment and defaults
// are used instead.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	useFile := path != ""
	if useFile {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			useFile = false
		}
	}

	if useFile {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("db_driver must be sqlite or postgres, got %q", c.DBDriver)
	}
	switch c.LLMProvider {
	case "huggingface", "openai", "claude", "ollama":
	default:
		return fmt.Errorf("unknown llm_provider %q", c.LLMProvider)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	if c.EnrichmentMaxRetries < 0 {
		return errors.New("enrichment_max_retries must not be negative")
	}
	if c.MaxInputRunes <= 0 || c.MaxUploadBytes <= 0 {
		return errors.New("max_input_runes and max_upload_bytes must be positive")
	}
	if c.HistoryLimit < 1 || c.HistoryLimit > 20 {
		return fmt.Errorf("history_limit must be between 1 and 20, got %d", c.HistoryLimit)
	}
	return nil
}

// UseStubs returns true when no API key is configured for the selected provider.
func (c Config) UseStubs() bool {
	switch c.LLMProvider {
	case "claude":
		return c.AnthropicKey == ""
	case "openai":
		return c.OpenAIKey == ""
	case "ollama":
		return false // Ollama runs locally, no key needed
	default:
		return c.HuggingFaceKey == ""
	}
}

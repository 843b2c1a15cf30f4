package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/api"
	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/auth"
	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/config"
	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/engine"
	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/extract"
	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/logging"
	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()
	logger.Info("store ready", zap.String("driver", cfg.DBDriver))

	enricher := engine.WithRetry(newEnricher(cfg, logger), engine.BackoffPolicy(cfg.EnrichmentMaxRetries), logger)
	extractor := extract.New(extract.WithMaxBytes(cfg.MaxUploadBytes), extract.WithLogger(logger))
	pipeline := engine.NewPipeline(s, extractor, enricher,
		engine.WithMaxInputRunes(cfg.MaxInputRunes),
		engine.WithHistoryLimit(cfg.HistoryLimit),
		engine.WithPipelineLogger(logger),
	)

	accounts := auth.NewService(s, cfg.JWTSecret, cfg.TokenTTL, logger)
	srv := api.New(pipeline, accounts, auth.NewMiddleware(accounts, logger), s, api.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigin:     cfg.CORSOrigin,
		Logger:         logger,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// newEnricher builds the enrichment client for the configured provider,
// falling back to stubs when its credentials are missing.
func newEnricher(cfg *config.Config, logger *zap.Logger) engine.Enricher {
	if cfg.UseStubs() {
		logger.Warn("no API key for provider, using stub enricher", zap.String("provider", cfg.LLMProvider))
		return engine.StubEnricher{}
	}

	logger.Info("using enrichment provider", zap.String("provider", cfg.LLMProvider))
	promptRunes := engine.WithPromptRunes(cfg.MaxInputRunes)
	switch cfg.LLMProvider {
	case "openai":
		opts := []engine.OpenAIOption{engine.WithModel(cfg.OpenAIModel), engine.WithTimeout(cfg.HTTPTimeout)}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, engine.WithBaseURL(cfg.OpenAIBaseURL))
		}
		return engine.NewLLMEnricher(engine.NewOpenAIClient(cfg.OpenAIKey, opts...), "openai", logger, promptRunes)
	case "claude":
		return engine.NewLLMEnricher(engine.NewClaudeClient(cfg.AnthropicKey,
			engine.WithClaudeModel(cfg.AnthropicModel),
			engine.WithClaudeTimeout(cfg.HTTPTimeout),
		), "claude", logger, promptRunes)
	case "ollama":
		return engine.NewLLMEnricher(engine.NewOllamaClient(cfg.OllamaURL,
			engine.WithOllamaModel(cfg.OllamaModel),
			engine.WithOllamaTimeout(cfg.HTTPTimeout),
		), "ollama", logger, promptRunes)
	default:
		return engine.NewHuggingFaceClient(cfg.HuggingFaceKey,
			engine.WithHuggingFaceURL(cfg.HuggingFaceURL),
			engine.WithSummaryModel(cfg.HuggingFaceSummarizer),
			engine.WithTranslationModel(cfg.HuggingFaceTranslator),
			engine.WithHuggingFaceTimeout(cfg.HTTPTimeout),
			engine.WithHuggingFaceLogger(logger),
		)
	}
}

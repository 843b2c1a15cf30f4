package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultHuggingFaceURL         = "https://api-inference.huggingface.co"
	defaultHuggingFaceSummarizer  = "facebook/bart-large-cnn"
	defaultHuggingFaceTranslation = "Helsinki-NLP/opus-mt-{src}-{tgt}"

	// maxResponseSize bounds a provider response body (1MB).
	maxResponseSize = 1 << 20
)

// HuggingFaceClient implements Enricher on the Hugging Face Inference API:
// a summarization model and a family of translation models selected by
// language pair.
type HuggingFaceClient struct {
	apiKey           string
	baseURL          string
	summaryModel     string
	translationModel string
	minLength        int
	maxLength        int
	httpClient       *http.Client
	logger           *zap.Logger
}

var _ Enricher = (*HuggingFaceClient)(nil)

// HuggingFaceOption configures the Hugging Face client.
type HuggingFaceOption func(*HuggingFaceClient)

// WithHuggingFaceURL overrides the inference endpoint.
func WithHuggingFaceURL(url string) HuggingFaceOption {
	return func(c *HuggingFaceClient) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithSummaryModel sets the summarization model id.
func WithSummaryModel(model string) HuggingFaceOption {
	return func(c *HuggingFaceClient) { c.summaryModel = model }
}

// WithTranslationModel sets the translation model template; {src} and {tgt}
// are replaced with the request's language tags.
func WithTranslationModel(template string) HuggingFaceOption {
	return func(c *HuggingFaceClient) { c.translationModel = template }
}

// WithHuggingFaceTimeout sets the per-request timeout.
func WithHuggingFaceTimeout(d time.Duration) HuggingFaceOption {
	return func(c *HuggingFaceClient) { c.httpClient.Timeout = d }
}

// WithHuggingFaceLogger sets the logger.
func WithHuggingFaceLogger(l *zap.Logger) HuggingFaceOption {
	return func(c *HuggingFaceClient) { c.logger = l }
}

// NewHuggingFaceClient creates a new Hugging Face enrichment client.
func NewHuggingFaceClient(apiKey string, opts ...HuggingFaceOption) *HuggingFaceClient {
	c := &HuggingFaceClient{
		apiKey:           apiKey,
		baseURL:          defaultHuggingFaceURL,
		summaryModel:     defaultHuggingFaceSummarizer,
		translationModel: defaultHuggingFaceTranslation,
		minLength:        30,
		maxLength:        10000,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("huggingface")
	return c
}

type hfRequest struct {
	Inputs     string        `json:"inputs"`
	Parameters *hfParameters `json:"parameters,omitempty"`
}

type hfParameters struct {
	MaxLength int `json:"max_length"`
	MinLength int `json:"min_length"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

type hfTranslation struct {
	TranslationText string `json:"translation_text"`
}

type hfError struct {
	Error string `json:"error"`
}

// Summarize runs the summarization model and returns summary_text.
func (c *HuggingFaceClient) Summarize(ctx context.Context, text string) (string, error) {
	if err := requireText(text); err != nil {
		return "", err
	}
	body := hfRequest{
		Inputs:     text,
		Parameters: &hfParameters{MaxLength: c.maxLength, MinLength: c.minLength},
	}
	var out []hfSummary
	if err := c.post(ctx, c.summaryModel, body, &out); err != nil {
		return "", enrichmentError(StageSummarize, "huggingface", err)
	}
	if len(out) == 0 || strings.TrimSpace(out[0].SummaryText) == "" {
		return "", enrichmentError(StageSummarize, "huggingface", errors.New("response has no summary_text"))
	}
	return strings.TrimSpace(out[0].SummaryText), nil
}

// Translate runs the translation model for the sourceLang-targetLang pair.
func (c *HuggingFaceClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if err := requireText(text); err != nil {
		return "", err
	}
	modelID := c.translationModelFor(sourceLang, targetLang)
	var out []hfTranslation
	if err := c.post(ctx, modelID, hfRequest{Inputs: text}, &out); err != nil {
		return "", enrichmentError(StageTranslate, "huggingface", err)
	}
	if len(out) == 0 || strings.TrimSpace(out[0].TranslationText) == "" {
		return "", enrichmentError(StageTranslate, "huggingface", errors.New("response has no translation_text"))
	}
	return strings.TrimSpace(out[0].TranslationText), nil
}

func (c *HuggingFaceClient) translationModelFor(sourceLang, targetLang string) string {
	return strings.NewReplacer("{src}", sourceLang, "{tgt}", targetLang).Replace(c.translationModel)
}

func (c *HuggingFaceClient) post(ctx context.Context, modelID string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/models/"+modelID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("inference call",
		zap.String("model", modelID),
		zap.Int("status", resp.StatusCode),
		zap.Int("input_len", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		msg := string(respBody)
		var he hfError
		if json.Unmarshal(respBody, &he) == nil && he.Error != "" {
			msg = he.Error
		}
		return &apiError{StatusCode: resp.StatusCode, Body: msg}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

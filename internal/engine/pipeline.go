package engine

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/model"
	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/store"
)

// DefaultMaxInputRunes bounds the text accepted by Submit and RunSummarize.
const DefaultMaxInputRunes = 20000

// Pipeline drives artifacts through Extract, Summarize and Translate. Every
// operation is scoped to an explicit owner id.
type Pipeline struct {
	store         store.ArtifactStore
	extractor     DocumentExtractor
	enricher      Enricher
	locks         *KeyedMutex
	logger        *zap.Logger
	maxInputRunes int
	historyLimit  int
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithMaxInputRunes caps the length of submitted text.
func WithMaxInputRunes(n int) PipelineOption {
	return func(p *Pipeline) { p.maxInputRunes = n }
}

// WithHistoryLimit sets the default page size of History.
func WithHistoryLimit(n int) PipelineOption {
	return func(p *Pipeline) { p.historyLimit = n }
}

// WithPipelineLogger sets the logger.
func WithPipelineLogger(l *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline with the given dependencies.
func NewPipeline(s store.ArtifactStore, extractor DocumentExtractor, enricher Enricher, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		store:         s,
		extractor:     extractor,
		enricher:      enricher,
		locks:         NewKeyedMutex(),
		logger:        zap.NewNop(),
		maxInputRunes: DefaultMaxInputRunes,
		historyLimit:  store.MaxHistory,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.historyLimit <= 0 || p.historyLimit > store.MaxHistory {
		p.historyLimit = store.MaxHistory
	}
	p.logger = p.logger.Named("pipeline")
	return p
}

// Input is raw user input: either Text or a Blob with its MediaType.
type Input struct {
	Text      string
	Blob      io.Reader
	MediaType string
}

// SummarizeRequest selects what to summarize. ArtifactID, when set, takes
// precedence over Text.
type SummarizeRequest struct {
	ArtifactID string
	Text       string
}

// TranslateRequest selects what to translate. ArtifactID, when set, takes
// precedence over Text, which is otherwise matched against stored summaries.
type TranslateRequest struct {
	ArtifactID string
	Text       string
	Source     string
	Target     string
}

// Submit extracts text from in when it carries a blob and records a new Raw
// artifact.
func (p *Pipeline) Submit(ctx context.Context, ownerID string, in Input) (*model.Artifact, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	text := in.Text
	if in.Blob != nil {
		extracted, err := p.extractor.Extract(ctx, in.Blob, in.MediaType)
		if err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}
		text = extracted
	}
	text = strings.TrimSpace(text)
	if err := p.validateText(text); err != nil {
		return nil, err
	}

	a := model.NewArtifact(model.NewID(), ownerID, text)
	if err := p.store.CreateArtifact(ctx, a); err != nil {
		return nil, fmt.Errorf("create artifact: %w", err)
	}
	p.logger.Info("artifact submitted",
		zap.String("artifact_id", a.ID),
		zap.Int("text_len", len(text)),
		zap.Bool("document", in.Blob != nil),
	)
	return &a, nil
}

// RunSummarize summarizes the requested text and records the summary. The
// provider is called before anything is written, so a failed call leaves
// the store untouched.
func (p *Pipeline) RunSummarize(ctx context.Context, ownerID string, req SummarizeRequest) (*model.Artifact, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	var (
		target *model.Artifact
		text   string
	)
	if req.ArtifactID != "" {
		a, err := p.ownedArtifact(ctx, ownerID, req.ArtifactID)
		if err != nil {
			return nil, err
		}
		if a.Summary != nil {
			return nil, &model.InvalidInputError{Reason: "artifact is already summarized"}
		}
		target, text = a, a.OriginalText
	} else {
		text = strings.TrimSpace(req.Text)
		if err := p.validateText(text); err != nil {
			return nil, err
		}
	}

	summary, err := p.enricher.Summarize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	unlock := p.locks.Lock(lockKey(StageSummarize, ownerID, text))
	defer unlock()

	if target == nil {
		target, err = p.store.MostRecentUnsummarized(ctx, ownerID, text)
		if err != nil {
			return nil, fmt.Errorf("find artifact: %w", err)
		}
	}

	if target != nil {
		ok, err := p.store.SetSummary(ctx, ownerID, target.ID, summary)
		if err != nil {
			return nil, fmt.Errorf("set summary: %w", err)
		}
		if ok {
			target.Summary = &summary
			p.logger.Info("artifact summarized",
				zap.String("artifact_id", target.ID),
				zap.Int("summary_len", len(summary)),
			)
			return target, nil
		}
		if req.ArtifactID != "" {
			return nil, &model.InvalidInputError{Reason: "artifact is already summarized"}
		}
	}

	a := model.NewArtifact(model.NewID(), ownerID, text)
	a.Summary = &summary
	if err := p.store.CreateArtifact(ctx, a); err != nil {
		return nil, fmt.Errorf("create artifact: %w", err)
	}
	p.logger.Info("artifact created with summary",
		zap.String("artifact_id", a.ID),
		zap.Int("summary_len", len(summary)),
	)
	return &a, nil
}

// RunTranslate translates the requested summary and records the result. It
// returns the updated artifact, which is nil when nothing matched, along
// with the translation itself.
func (p *Pipeline) RunTranslate(ctx context.Context, ownerID string, req TranslateRequest) (*model.Artifact, string, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, "", err
	}
	target := strings.TrimSpace(req.Target)
	if target == "" {
		return nil, "", &model.InvalidInputError{Reason: "target language is required"}
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = model.DefaultSourceLanguage
	}

	var text string
	if req.ArtifactID != "" {
		a, err := p.ownedArtifact(ctx, ownerID, req.ArtifactID)
		if err != nil {
			return nil, "", err
		}
		if a.Summary == nil {
			return nil, "", &model.InvalidInputError{Reason: "artifact has no summary yet"}
		}
		text = *a.Summary
	} else {
		text = strings.TrimSpace(req.Text)
		if text == "" {
			return nil, "", &model.InvalidInputError{Reason: "text is empty"}
		}
	}

	translation, err := p.enricher.Translate(ctx, text, source, target)
	if err != nil {
		return nil, "", fmt.Errorf("translate: %w", err)
	}

	var updated *model.Artifact
	if req.ArtifactID != "" {
		updated, err = p.store.SetTranslation(ctx, ownerID, req.ArtifactID, translation, target)
	} else {
		p.logger.Warn("translation correlated by content, no artifact id given",
			zap.Int("text_len", len(text)),
		)
		unlock := p.locks.Lock(lockKey(StageTranslate, ownerID, text))
		updated, err = p.store.SetTranslationByMatch(ctx, ownerID, text, translation, target)
		unlock()
	}
	if err != nil {
		return nil, "", fmt.Errorf("set translation: %w", err)
	}

	if updated != nil {
		p.logger.Info("artifact translated",
			zap.String("artifact_id", updated.ID),
			zap.String("language", target),
		)
	} else {
		p.logger.Info("translation not attached to any artifact", zap.String("language", target))
	}
	return updated, translation, nil
}

// History returns the owner's newest artifacts first. A non-positive limit
// uses the configured default.
func (p *Pipeline) History(ctx context.Context, ownerID string, limit int) ([]model.Artifact, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > p.historyLimit {
		limit = p.historyLimit
	}
	artifacts, err := p.store.ListArtifacts(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return artifacts, nil
}

// Replay returns one of the owner's artifacts without changing it.
func (p *Pipeline) Replay(ctx context.Context, ownerID, id string) (*model.Artifact, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return p.ownedArtifact(ctx, ownerID, id)
}

// ClearHistory deletes all of the owner's artifacts.
func (p *Pipeline) ClearHistory(ctx context.Context, ownerID string) (int64, error) {
	if err := requireOwner(ownerID); err != nil {
		return 0, err
	}
	n, err := p.store.DeleteAllArtifacts(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("delete artifacts: %w", err)
	}
	p.logger.Info("history cleared", zap.Int64("deleted", n))
	return n, nil
}

func (p *Pipeline) ownedArtifact(ctx context.Context, ownerID, id string) (*model.Artifact, error) {
	a, err := p.store.GetArtifact(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("get artifact: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("artifact %s: %w", id, model.ErrNotFound)
	}
	return a, nil
}

func (p *Pipeline) validateText(text string) error {
	if text == "" {
		return &model.InvalidInputError{Reason: "text is empty"}
	}
	if p.maxInputRunes > 0 && utf8.RuneCountInString(text) > p.maxInputRunes {
		return &model.InvalidInputError{Reason: fmt.Sprintf("text exceeds %d characters", p.maxInputRunes)}
	}
	return nil
}

func requireOwner(ownerID string) error {
	if ownerID == "" {
		return model.ErrUnauthorized
	}
	return nil
}

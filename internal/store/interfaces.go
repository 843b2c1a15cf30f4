package store

import (
	"context"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/model"
)

// MaxHistory is the upper bound on artifacts returned by one listing.
const MaxHistory = 20

// ArtifactReader provides owner-scoped read access to artifacts.
type ArtifactReader interface {
	GetArtifact(ctx context.Context, ownerID, id string) (*model.Artifact, error)
	ListArtifacts(ctx context.Context, ownerID string, limit int) ([]model.Artifact, error)
	MostRecentUnsummarized(ctx context.Context, ownerID, text string) (*model.Artifact, error)
}

// ArtifactWriter provides owner-scoped mutations. Every method matches on
// ownerID, so a caller can never touch another owner's artifacts.
type ArtifactWriter interface {
	CreateArtifact(ctx context.Context, a model.Artifact) error
	SetSummary(ctx context.Context, ownerID, id, summary string) (bool, error)
	SetTranslation(ctx context.Context, ownerID, id, translation, targetLang string) (*model.Artifact, error)
	SetTranslationByMatch(ctx context.Context, ownerID, matchText, translation, targetLang string) (*model.Artifact, error)
	DeleteAllArtifacts(ctx context.Context, ownerID string) (int64, error)
}

// ArtifactStore combines all artifact operations for the pipeline.
type ArtifactStore interface {
	ArtifactReader
	ArtifactWriter
}

// UserStore provides access to registered accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

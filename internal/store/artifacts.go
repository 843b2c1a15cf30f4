package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/model"
)

const artifactColumns = `id, owner_id, original_text, summary, translation, target_language, created_at`

// CreateArtifact inserts a new artifact.
func (s *Store) CreateArtifact(ctx context.Context, a model.Artifact) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO artifacts (`+artifactColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		a.ID, a.OwnerID, a.OriginalText, a.Summary, a.Translation, a.TargetLanguage, toUnixNano(a.CreatedAt),
	)
	return err
}

// GetArtifact returns the owner's artifact with the given id, or nil if it
// does not exist or belongs to someone else.
func (s *Store) GetArtifact(ctx context.Context, ownerID, id string) (*model.Artifact, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+artifactColumns+` FROM artifacts WHERE owner_id = ? AND id = ?`), ownerID, id)
	return scanArtifactOrNil(row)
}

// ListArtifacts returns the owner's newest artifacts first. limit is clamped
// to MaxHistory; a non-positive limit means MaxHistory.
func (s *Store) ListArtifacts(ctx context.Context, ownerID string, limit int) ([]model.Artifact, error) {
	if limit <= 0 || limit > MaxHistory {
		limit = MaxHistory
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+artifactColumns+` FROM artifacts
		WHERE owner_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`), ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	artifacts := make([]model.Artifact, 0, limit)
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, *a)
	}
	return artifacts, rows.Err()
}

// MostRecentUnsummarized returns the owner's newest artifact whose original
// text equals text and which has no summary yet, or nil if there is none.
func (s *Store) MostRecentUnsummarized(ctx context.Context, ownerID, text string) (*model.Artifact, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+artifactColumns+` FROM artifacts
		WHERE owner_id = ? AND original_text = ? AND summary IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT 1`), ownerID, text)
	return scanArtifactOrNil(row)
}

// SetSummary stores the summary of a Raw artifact. It reports false when no
// Raw artifact with that id exists for the owner; a summary is never
// overwritten.
func (s *Store) SetSummary(ctx context.Context, ownerID, id, summary string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE artifacts SET summary = ?
		WHERE owner_id = ? AND id = ? AND summary IS NULL`),
		summary, ownerID, id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetTranslation stores a translation on the owner's summarized artifact
// with the given id. Returns nil when no such artifact exists.
func (s *Store) SetTranslation(ctx context.Context, ownerID, id, translation, targetLang string) (*model.Artifact, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		UPDATE artifacts SET translation = ?, target_language = ?
		WHERE owner_id = ? AND id = ? AND summary IS NOT NULL
		RETURNING `+artifactColumns),
		translation, targetLang, ownerID, id,
	)
	return scanArtifactOrNil(row)
}

// SetTranslationByMatch atomically picks the owner's newest artifact whose
// summary equals matchText and stores the translation on it. Returns nil
// when nothing matches.
func (s *Store) SetTranslationByMatch(ctx context.Context, ownerID, matchText, translation, targetLang string) (*model.Artifact, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		UPDATE artifacts SET translation = ?, target_language = ?
		WHERE id = (
			SELECT id FROM artifacts
			WHERE owner_id = ? AND summary = ?
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
		RETURNING `+artifactColumns),
		translation, targetLang, ownerID, matchText,
	)
	return scanArtifactOrNil(row)
}

// DeleteAllArtifacts removes every artifact of the owner.
func (s *Store) DeleteAllArtifacts(ctx context.Context, ownerID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM artifacts WHERE owner_id = ?`), ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanArtifact(row scanner) (*model.Artifact, error) {
	var (
		a         model.Artifact
		createdAt int64
	)
	err := row.Scan(&a.ID, &a.OwnerID, &a.OriginalText, &a.Summary, &a.Translation, &a.TargetLanguage, &createdAt)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = fromUnixNano(createdAt)
	return &a, nil
}

func scanArtifactOrNil(row scanner) (*model.Artifact, error) {
	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

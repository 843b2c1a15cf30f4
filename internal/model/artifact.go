package model

import (
	"encoding/json"
	"time"
)

// Stage is the derived pipeline position of an Artifact.
type Stage string

// Stage constants
const (
	StageRaw        Stage = "RAW"
	StageSummarized Stage = "SUMMARIZED"
	StageTranslated Stage = "TRANSLATED"
)

// Artifact is one tracked unit of work: the original text plus its optional
// summary and translation. Summary and Translation are nil until the
// corresponding stage has run.
type Artifact struct {
	ID             string
	OwnerID        string
	OriginalText   string
	Summary        *string
	Translation    *string
	TargetLanguage *string
	CreatedAt      time.Time
}

// NewArtifact creates a Raw artifact stamped with the current time.
func NewArtifact(id, ownerID, originalText string) Artifact {
	return Artifact{
		ID:           id,
		OwnerID:      ownerID,
		OriginalText: originalText,
		CreatedAt:    time.Now().UTC(),
	}
}

// Stage derives the pipeline position from which optional fields are set.
func (a *Artifact) Stage() Stage {
	switch {
	case a.Summary == nil:
		return StageRaw
	case a.Translation == nil:
		return StageSummarized
	default:
		return StageTranslated
	}
}

// SummaryText returns the summary or "" when the artifact is still Raw.
func (a *Artifact) SummaryText() string {
	if a.Summary == nil {
		return ""
	}
	return *a.Summary
}

// artifactJSON keeps the field names the browser client already consumes.
type artifactJSON struct {
	ID             string  `json:"_id"`
	OwnerID        string  `json:"userId"`
	OriginalText   string  `json:"originalText"`
	Summary        *string `json:"summarizedText,omitempty"`
	Translation    *string `json:"translatedText,omitempty"`
	TargetLanguage *string `json:"language,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	Stage          Stage   `json:"stage"`
}

// MarshalJSON emits the history wire format, including the derived stage.
func (a Artifact) MarshalJSON() ([]byte, error) {
	return json.Marshal(artifactJSON{
		ID:             a.ID,
		OwnerID:        a.OwnerID,
		OriginalText:   a.OriginalText,
		Summary:        a.Summary,
		Translation:    a.Translation,
		TargetLanguage: a.TargetLanguage,
		CreatedAt:      a.CreatedAt.UTC().Format(time.RFC3339Nano),
		Stage:          a.Stage(),
	})
}

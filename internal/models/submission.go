package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

const (
	// SubmissionStatusStarted means the SPACECAT fields have been saved and
	// the text is unlocked for annotation.
	SubmissionStatusStarted = "started"
	// SubmissionStatusThesisDrafted means a valid thesis has been saved.
	SubmissionStatusThesisDrafted = "thesis_drafted"
	// SubmissionStatusSubmitted means the final essay has been handed in.
	SubmissionStatusSubmitted = "submitted"
)

// submissionTransitions is the explicit status machine: each status may only
// advance, never regress, and saves that don't name a later status keep the
// current one.
var submissionTransitions = map[string][]string{
	"":                            {SubmissionStatusStarted},
	SubmissionStatusStarted:       {SubmissionStatusThesisDrafted, SubmissionStatusSubmitted},
	SubmissionStatusThesisDrafted: {SubmissionStatusSubmitted},
	SubmissionStatusSubmitted:     {},
}

// CanTransition reports whether a submission may move from one status to
// another. Staying put is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return from != ""
	}
	for _, allowed := range submissionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Spacecat holds the rhetorical-situation answers collected before the text
// is unlocked for annotation.
type Spacecat struct {
	Speaker  string `json:"speaker" validate:"required,min=3"`
	Purpose  string `json:"purpose" validate:"required,min=5"`
	Audience string `json:"audience" validate:"required,min=3"`
	Context  string `json:"context" validate:"required,min=10"`
	Exigence string `json:"exigence" validate:"required,min=10"`
}

// ThesisPayload is the persisted form of the thesis builder output: the raw
// slots plus the rendered sentence.
type ThesisPayload struct {
	Verb1    string `json:"verb1"`
	Verb2    string `json:"verb2"`
	Purpose  string `json:"purpose"`
	Sentence string `json:"sentence"`
}

// Paragraph is one body paragraph assembled in the paragraph builder. The
// evidence text is seeded verbatim from the dragged annotation and is not
// re-derived from offsets afterwards.
type Paragraph struct {
	ID              string `json:"id"`
	ClaimVerb       string `json:"claim_verb"`
	ClaimAnnotation uint   `json:"claim_annotation_id"`
	Evidence        string `json:"evidence"`
	Commentary      string `json:"commentary"`
	Complete        bool   `json:"complete"`
}

// Submission is the per-(user, assignment) aggregate holding every wizard
// stage's output. Partial saves merge individual columns so independent
// steps never clobber each other.
type Submission struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;uniqueIndex:idx_submission_owner" json:"user_id"`
	AssignmentID uint           `gorm:"not null;uniqueIndex:idx_submission_owner" json:"assignment_id"`
	Spacecat     datatypes.JSON `gorm:"type:json" json:"spacecat,omitempty"`
	Thesis       datatypes.JSON `gorm:"type:json" json:"thesis,omitempty"`
	Paragraphs   datatypes.JSON `gorm:"type:json" json:"paragraphs,omitempty"`
	Status       string         `gorm:"size:32;not null" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	SubmittedAt  *time.Time     `json:"submitted_at,omitempty"`
}

// DecodeSpacecat parses the stored SPACECAT payload. A missing payload
// returns the zero value without error; a malformed one is reported so the
// caller can treat the document as invalid rather than crash on it.
func (s Submission) DecodeSpacecat() (Spacecat, error) {
	var out Spacecat
	if len(s.Spacecat) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(s.Spacecat, &out); err != nil {
		return Spacecat{}, fmt.Errorf("decode spacecat payload: %w", err)
	}
	return out, nil
}

// DecodeThesis parses the stored thesis payload.
func (s Submission) DecodeThesis() (ThesisPayload, error) {
	var out ThesisPayload
	if len(s.Thesis) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(s.Thesis, &out); err != nil {
		return ThesisPayload{}, fmt.Errorf("decode thesis payload: %w", err)
	}
	return out, nil
}

// DecodeParagraphs parses the stored paragraph list, preserving order.
func (s Submission) DecodeParagraphs() ([]Paragraph, error) {
	if len(s.Paragraphs) == 0 {
		return nil, nil
	}
	var out []Paragraph
	if err := json.Unmarshal(s.Paragraphs, &out); err != nil {
		return nil, fmt.Errorf("decode paragraphs payload: %w", err)
	}
	return out, nil
}

// EncodeJSON marshals a wizard payload for storage in a JSON column.
func EncodeJSON(v any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode submission payload: %w", err)
	}
	return datatypes.JSON(raw), nil
}

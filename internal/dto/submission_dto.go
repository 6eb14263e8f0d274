package dto

import (
	"time"

	"github.com/rhetoriclab/rhetorica-api/internal/models"
)

// SpacecatRequest carries the rhetorical-situation answers. Field minimums
// match the detail the unlock step demands.
type SpacecatRequest struct {
	Speaker  string `json:"speaker" validate:"required,min=3"`
	Purpose  string `json:"purpose" validate:"required,min=5"`
	Audience string `json:"audience" validate:"required,min=3"`
	Context  string `json:"context" validate:"required,min=10"`
	Exigence string `json:"exigence" validate:"required,min=10"`
}

// ThesisRequest carries the thesis builder slots. Validity (all fields
// non-empty after trim) is enforced in the service, not here, so the error
// is field-local rather than a generic 400.
type ThesisRequest struct {
	Verb1   string `json:"verb1"`
	Verb2   string `json:"verb2"`
	Purpose string `json:"purpose"`
}

// ParagraphRequest upserts one body paragraph. The paragraph ID is
// server-generated on create and required on update.
type ParagraphRequest struct {
	ClaimAnnotationID uint   `json:"claim_annotation_id" validate:"required"`
	Commentary        string `json:"commentary" validate:"max=20000"`
}

// ReorderRequest carries the full paragraph ID list in its new order.
type ReorderRequest struct {
	ParagraphIDs []string `json:"paragraph_ids" validate:"required,min=1"`
}

// SubmissionResponse is the API representation of the wizard aggregate, with
// JSON payloads decoded into their typed shapes.
type SubmissionResponse struct {
	ID           uint                  `json:"id"`
	UserID       uint                  `json:"user_id"`
	AssignmentID uint                  `json:"assignment_id"`
	Spacecat     *models.Spacecat      `json:"spacecat,omitempty"`
	Thesis       *models.ThesisPayload `json:"thesis,omitempty"`
	Paragraphs   []models.Paragraph    `json:"paragraphs"`
	Status       string                `json:"status"`
	UpdatedAt    time.Time             `json:"updated_at"`
	SubmittedAt  *time.Time            `json:"submitted_at,omitempty"`
}

// NewSubmissionResponse decodes the stored payloads into the response shape.
// Malformed payloads surface as an error so the handler can report the
// document as invalid instead of crashing on it.
func NewSubmissionResponse(submission models.Submission) (SubmissionResponse, error) {
	response := SubmissionResponse{
		ID:           submission.ID,
		UserID:       submission.UserID,
		AssignmentID: submission.AssignmentID,
		Status:       submission.Status,
		UpdatedAt:    submission.UpdatedAt,
		SubmittedAt:  submission.SubmittedAt,
	}

	if len(submission.Spacecat) > 0 {
		spacecat, err := submission.DecodeSpacecat()
		if err != nil {
			return SubmissionResponse{}, err
		}
		response.Spacecat = &spacecat
	}

	if len(submission.Thesis) > 0 {
		thesis, err := submission.DecodeThesis()
		if err != nil {
			return SubmissionResponse{}, err
		}
		response.Thesis = &thesis
	}

	paragraphs, err := submission.DecodeParagraphs()
	if err != nil {
		return SubmissionResponse{}, err
	}
	if paragraphs == nil {
		paragraphs = []models.Paragraph{}
	}
	response.Paragraphs = paragraphs

	return response, nil
}

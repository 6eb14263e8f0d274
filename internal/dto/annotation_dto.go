package dto

import (
	"time"

	"github.com/rhetoriclab/rhetorica-api/internal/models"
	"github.com/rhetoriclab/rhetorica-api/internal/rhetoric"
	"github.com/rhetoriclab/rhetorica-api/internal/selection"
)

// AnnotationCreateRequest commits a candidate selection with its chosen verb.
// Offsets are re-validated server-side against the assignment content.
type AnnotationCreateRequest struct {
	Text        string `json:"text" validate:"required"`
	Verb        string `json:"verb" validate:"required,max=64"`
	Commentary  string `json:"commentary" validate:"max=5000"`
	StartOffset int    `json:"start_offset" validate:"min=0"`
	EndOffset   int    `json:"end_offset" validate:"required,gtfield=StartOffset"`
}

// Selection converts the request into the candidate span shape.
func (r AnnotationCreateRequest) Selection() selection.Selection {
	return selection.Selection{Text: r.Text, Start: r.StartOffset, End: r.EndOffset}
}

// AnnotationUpdateRequest edits verb and commentary in place. Offsets and
// text are immutable after creation.
type AnnotationUpdateRequest struct {
	Verb       *string `json:"verb" validate:"omitempty,max=64"`
	Commentary *string `json:"commentary" validate:"omitempty,max=5000"`
}

// AnnotationResponse is the API representation of an annotation.
type AnnotationResponse struct {
	ID           uint      `json:"id"`
	AssignmentID uint      `json:"assignment_id"`
	UserID       uint      `json:"user_id"`
	Text         string    `json:"text"`
	Verb         string    `json:"verb"`
	Category     string    `json:"category"`
	Commentary   string    `json:"commentary,omitempty"`
	StartOffset  int       `json:"start_offset"`
	EndOffset    int       `json:"end_offset"`
	Color        string    `json:"color"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewAnnotationResponse maps an annotation model, deriving the verb category
// from the taxonomy.
func NewAnnotationResponse(annotation models.Annotation) AnnotationResponse {
	return AnnotationResponse{
		ID:           annotation.ID,
		AssignmentID: annotation.AssignmentID,
		UserID:       annotation.UserID,
		Text:         annotation.Text,
		Verb:         annotation.Verb,
		Category:     rhetoric.CategoryOf(annotation.Verb),
		Commentary:   annotation.Commentary,
		StartOffset:  annotation.StartOffset,
		EndOffset:    annotation.EndOffset,
		Color:        annotation.Color,
		CreatedAt:    annotation.CreatedAt,
		UpdatedAt:    annotation.UpdatedAt,
	}
}

// NewAnnotationResponseSlice maps a list of annotation models.
func NewAnnotationResponseSlice(annotations []models.Annotation) []AnnotationResponse {
	responses := make([]AnnotationResponse, 0, len(annotations))
	for _, annotation := range annotations {
		responses = append(responses, NewAnnotationResponse(annotation))
	}
	return responses
}

// AnnotationEvent is the realtime payload pushed to subscribed clients on
// every change to an (assignment, user) annotation set.
type AnnotationEvent struct {
	Type       string             `json:"type"` // created | updated | deleted
	Annotation AnnotationResponse `json:"annotation"`
}

const (
	// AnnotationEventCreated marks a newly saved annotation.
	AnnotationEventCreated = "created"
	// AnnotationEventUpdated marks an in-place verb/commentary edit.
	AnnotationEventUpdated = "updated"
	// AnnotationEventDeleted marks an explicit owner delete.
	AnnotationEventDeleted = "deleted"
)

package dto

import (
	"time"

	"github.com/rhetoriclab/rhetorica-api/internal/models"
)

// AssignmentCreateRequest is the teacher-facing payload for assigning a text.
type AssignmentCreateRequest struct {
	Title   string `json:"title" validate:"required,min=2,max=255"`
	Author  string `json:"author" validate:"max=255"`
	Content string `json:"content" validate:"required,min=1"`
	DueDate string `json:"due_date" validate:"required"`
	Status  string `json:"status" validate:"omitempty,oneof=active draft archived"`
}

// AssignmentUpdateRequest carries partial updates. Content updates are
// rejected once any annotation exists for the assignment.
type AssignmentUpdateRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=2,max=255"`
	Author  *string `json:"author" validate:"omitempty,max=255"`
	Content *string `json:"content" validate:"omitempty,min=1"`
	DueDate *string `json:"due_date"`
	Status  *string `json:"status" validate:"omitempty,oneof=active draft archived"`
}

// AssignmentResponse is the API representation of an assignment.
type AssignmentResponse struct {
	ID        uint      `json:"id"`
	ClassID   uint      `json:"class_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	Content   string    `json:"content"`
	DueDate   time.Time `json:"due_date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAssignmentResponse maps an assignment model.
func NewAssignmentResponse(assignment models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:        assignment.ID,
		ClassID:   assignment.ClassID,
		Title:     assignment.Title,
		Author:    assignment.Author,
		Content:   assignment.Content,
		DueDate:   assignment.DueDate,
		Status:    assignment.Status,
		CreatedAt: assignment.CreatedAt,
		UpdatedAt: assignment.UpdatedAt,
	}
}

// NewAssignmentResponseSlice maps a list of assignment models.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}
	return responses
}

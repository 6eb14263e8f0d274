package dto

import (
	"time"

	"github.com/rhetoriclab/rhetorica-api/internal/models"
)

// ClassCreateRequest is the teacher-facing payload for creating a class.
type ClassCreateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

// ClassJoinRequest carries a student's join code.
type ClassJoinRequest struct {
	JoinCode string `json:"join_code" validate:"required,len=6"`
}

// ClassResponse is the API representation of a class.
type ClassResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	TeacherID   uint      `json:"teacher_id"`
	JoinCode    string    `json:"join_code,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewClassResponse maps a class model. The join code is only included for the
// owning teacher; pass includeCode=false for student-facing responses.
func NewClassResponse(class models.Class, includeCode bool) ClassResponse {
	response := ClassResponse{
		ID:          class.ID,
		Name:        class.Name,
		Description: class.Description,
		TeacherID:   class.TeacherID,
		CreatedAt:   class.CreatedAt,
	}
	if includeCode {
		response.JoinCode = class.JoinCode
	}
	return response
}

// NewClassResponseSlice maps a list of class models.
func NewClassResponseSlice(classes []models.Class, includeCode bool) []ClassResponse {
	responses := make([]ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, NewClassResponse(class, includeCode))
	}
	return responses
}

// RosterEntry is one student on a class roster.
type RosterEntry struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// NewRosterEntry maps a user profile onto the roster shape.
func NewRosterEntry(user models.User) RosterEntry {
	return RosterEntry{ID: user.ID, DisplayName: user.DisplayName, Email: user.Email}
}

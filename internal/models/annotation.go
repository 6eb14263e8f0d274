package models

import "time"

// DefaultAnnotationColor is the highlight color assigned at creation.
const DefaultAnnotationColor = "#fef3c7"

// Annotation is a text-span annotation owned by exactly one student.
// StartOffset/EndOffset are 0-indexed offsets into the assignment content
// forming the half-open interval [start, end); Text is the content slice at
// creation time. The teacher-review path only ever reads annotations.
type Annotation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"not null;index:idx_annotation_scope" json:"assignment_id"`
	UserID       uint      `gorm:"not null;index:idx_annotation_scope" json:"user_id"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	Verb         string    `gorm:"size:64;not null" json:"verb"`
	Commentary   string    `gorm:"type:text" json:"commentary,omitempty"`
	StartOffset  int       `gorm:"not null" json:"start_offset"`
	EndOffset    int       `gorm:"not null" json:"end_offset"`
	Color        string    `gorm:"size:32" json:"color"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OwnedBy reports whether the annotation belongs to the given user.
func (a Annotation) OwnedBy(userID uint) bool {
	return a.UserID == userID
}

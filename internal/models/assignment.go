package models

import "time"

const (
	// AssignmentStatusActive means students may read and annotate the text.
	AssignmentStatusActive = "active"
	// AssignmentStatusDraft means the assignment is hidden from students.
	AssignmentStatusDraft = "draft"
	// AssignmentStatusArchived means the assignment is closed for new work.
	AssignmentStatusArchived = "archived"
)

// Assignment is a reading assigned to a class. Content is the authoritative
// string that all annotation offsets index into; once any annotation exists
// the content is frozen (enforced in the service layer) so offsets can never
// silently desynchronize.
type Assignment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   uint      `gorm:"not null;index" json:"class_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Author    string    `gorm:"size:255" json:"author"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`
	Status    string    `gorm:"size:16;not null;default:active" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPastDue returns true when the assignment deadline has already passed.
func (a Assignment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// VisibleToStudents reports whether students can open the assignment.
func (a Assignment) VisibleToStudents() bool {
	return a.Status == AssignmentStatusActive
}

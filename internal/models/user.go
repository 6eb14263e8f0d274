package models

import "time"

const (
	// RoleTeacher marks class owners who assign readings and review heatmaps.
	RoleTeacher = "teacher"
	// RoleStudent marks learners who annotate and submit essays.
	RoleStudent = "student"
)

// User represents a signed-in teacher or student profile.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	DisplayName string    `gorm:"size:255;not null" json:"display_name"`
	PhotoURL    string    `gorm:"size:512" json:"photo_url,omitempty"`
	Role        string    `gorm:"size:16;not null" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsTeacher reports whether the user owns classes.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

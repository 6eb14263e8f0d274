package models

import "time"

// JoinCodeAlphabet excludes visually ambiguous characters (I, 1, O, 0) so
// codes survive being read aloud or copied off a whiteboard.
const JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// JoinCodeLength is the fixed length of generated class join codes.
const JoinCodeLength = 6

// Class groups students under a teacher. The join code carries a real unique
// index: generation is best-effort random, the database is the arbiter.
type Class struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	TeacherID   uint      `gorm:"not null;index" json:"teacher_id"`
	JoinCode    string    `gorm:"size:6;uniqueIndex;not null" json:"join_code"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ClassMembership records one student's enrollment in a class. Membership is
// append-only through the join-by-code flow; there is no unenroll path.
type ClassMembership struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassID   uint      `gorm:"not null;uniqueIndex:idx_class_student" json:"class_id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_class_student" json:"student_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

package dto

import "time"

// AssignmentProgress is one assignment's standing on the student dashboard.
type AssignmentProgress struct {
	AssignmentID uint      `json:"assignment_id"`
	Title        string    `json:"title"`
	ClassID      uint      `json:"class_id"`
	DueDate      time.Time `json:"due_date"`
	Status       string    `json:"status"` // not_started | started | thesis_drafted | submitted
	Overdue      bool      `json:"overdue"`
}

// ProgressSummary aggregates counts across all of a student's assignments.
type ProgressSummary struct {
	TotalAssignments int `json:"total_assignments"`
	Started          int `json:"started"`
	ThesisDrafted    int `json:"thesis_drafted"`
	Submitted        int `json:"submitted"`
	Overdue          int `json:"overdue"`
}

// StudentProgressResponse is the cached dashboard aggregate.
type StudentProgressResponse struct {
	Summary     ProgressSummary      `json:"summary"`
	Assignments []AssignmentProgress `json:"assignments"`
}

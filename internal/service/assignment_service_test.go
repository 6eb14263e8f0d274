package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rhetoriclab/rhetorica-api/internal/dto"
	"github.com/rhetoriclab/rhetorica-api/internal/models"
)

type assignmentServiceFixture struct {
	svc         AssignmentService
	classes     *memoryClassRepo
	assignments *memoryAssignmentRepo
	annotations *memoryAnnotationRepo
	classID     uint
}

func newAssignmentServiceFixture(t *testing.T) assignmentServiceFixture {
	t.Helper()
	classes := newMemoryClassRepo()
	assignments := newMemoryAssignmentRepo()
	annotations := newMemoryAnnotationRepo()

	class := models.Class{Name: "Period 3", TeacherID: 1, JoinCode: "AAAAAA"}
	require.NoError(t, classes.Create(context.Background(), &class))

	svc := NewAssignmentService(assignments, annotations, classes, validator.New(), zerolog.Nop())
	return assignmentServiceFixture{
		svc:         svc,
		classes:     classes,
		assignments: assignments,
		annotations: annotations,
		classID:     class.ID,
	}
}

func futureDate() string {
	return time.Now().Add(14 * 24 * time.Hour).UTC().Format(time.RFC3339)
}

func TestAssignmentServiceCreateRequiresOwnership(t *testing.T) {
	f := newAssignmentServiceFixture(t)

	payload := dto.AssignmentCreateRequest{
		Title:   "Letter from Birmingham Jail",
		Author:  "Martin Luther King Jr.",
		Content: "We know through painful experience that freedom is never voluntarily given.",
		DueDate: futureDate(),
	}

	_, err := f.svc.Create(context.Background(), 99, f.classID, payload)
	require.ErrorIs(t, err, ErrNotClassOwner)

	response, err := f.svc.Create(context.Background(), 1, f.classID, payload)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusActive, response.Status)
}

func TestAssignmentServiceCreateRejectsPastDueDate(t *testing.T) {
	f := newAssignmentServiceFixture(t)

	payload := dto.AssignmentCreateRequest{
		Title:   "The Crisis",
		Content: "These are the times that try men's souls.",
		DueDate: time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
	}

	_, err := f.svc.Create(context.Background(), 1, f.classID, payload)
	require.Error(t, err)
}

func TestAssignmentServiceContentFreezesOnceAnnotated(t *testing.T) {
	f := newAssignmentServiceFixture(t)

	created, err := f.svc.Create(context.Background(), 1, f.classID, dto.AssignmentCreateRequest{
		Title:   "Speech to the Troops at Tilbury",
		Content: "I know I have the body of a weak and feeble woman.",
		DueDate: futureDate(),
	})
	require.NoError(t, err)

	// Content edits stay open until the first annotation lands.
	newContent := "I know I have the body of a weak and feeble woman, but I have the heart of a king."
	updated, err := f.svc.Update(context.Background(), 1, created.ID, dto.AssignmentUpdateRequest{Content: &newContent})
	require.NoError(t, err)
	require.Equal(t, newContent, updated.Content)

	annotation := models.Annotation{AssignmentID: created.ID, UserID: 42, Text: "I know", Verb: "Asserts", StartOffset: 0, EndOffset: 6}
	require.NoError(t, f.annotations.Create(context.Background(), &annotation))

	another := "completely different text"
	_, err = f.svc.Update(context.Background(), 1, created.ID, dto.AssignmentUpdateRequest{Content: &another})
	require.ErrorIs(t, err, ErrContentFrozen)

	// Metadata edits remain allowed after the freeze.
	title := "Tilbury Speech"
	updated, err = f.svc.Update(context.Background(), 1, created.ID, dto.AssignmentUpdateRequest{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Tilbury Speech", updated.Title)
	require.Equal(t, newContent, updated.Content)
}

func TestAssignmentServiceTokens(t *testing.T) {
	f := newAssignmentServiceFixture(t)

	created, err := f.svc.Create(context.Background(), 1, f.classID, dto.AssignmentCreateRequest{
		Title:   "Short",
		Content: "Give me liberty",
		DueDate: futureDate(),
	})
	require.NoError(t, err)

	tokens, err := f.svc.Tokens(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 3)
	require.Equal(t, "Give", tokens[0].Text)
	require.Equal(t, 0, tokens[0].Start)
	require.Equal(t, "liberty", tokens[2].Text)
	require.Equal(t, 8, tokens[2].Start)
	require.Equal(t, 15, tokens[2].End)
}

func TestAssignmentServiceDeleteUnknown(t *testing.T) {
	f := newAssignmentServiceFixture(t)

	err := f.svc.Delete(context.Background(), 1, 404)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

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

type capturingSink struct {
	events []dto.AnnotationEvent
}

func (c *capturingSink) PublishAnnotation(ctx context.Context, event dto.AnnotationEvent) {
	c.events = append(c.events, event)
}

type capturingInvalidator struct {
	assignmentIDs []uint
}

func (c *capturingInvalidator) Invalidate(ctx context.Context, assignmentID uint) {
	c.assignmentIDs = append(c.assignmentIDs, assignmentID)
}

type annotationServiceFixture struct {
	svc          AnnotationService
	assignments  *memoryAssignmentRepo
	annotations  *memoryAnnotationRepo
	sink         *capturingSink
	invalidator  *capturingInvalidator
	assignmentID uint
}

const annotationFixtureContent = "We hold these truths to be self-evident, that all men are created equal."

func newAnnotationServiceFixture(t *testing.T) annotationServiceFixture {
	t.Helper()
	assignments := newMemoryAssignmentRepo()
	annotations := newMemoryAnnotationRepo()
	sink := &capturingSink{}
	invalidator := &capturingInvalidator{}

	assignment := models.Assignment{
		ClassID: 1,
		Title:   "Declaration",
		Content: annotationFixtureContent,
		DueDate: time.Now().Add(time.Hour),
		Status:  models.AssignmentStatusActive,
	}
	require.NoError(t, assignments.Create(context.Background(), &assignment))

	svc := NewAnnotationService(annotations, assignments, validator.New(), sink, invalidator, zerolog.Nop())
	return annotationServiceFixture{
		svc:          svc,
		assignments:  assignments,
		annotations:  annotations,
		sink:         sink,
		invalidator:  invalidator,
		assignmentID: assignment.ID,
	}
}

func TestAnnotationServiceCreateValidatesSelection(t *testing.T) {
	f := newAnnotationServiceFixture(t)

	// Claimed text disagrees with the content slice at those offsets.
	_, err := f.svc.Create(context.Background(), 42, f.assignmentID, dto.AnnotationCreateRequest{
		Text:        "We hold these lies",
		Verb:        "Juxtaposes",
		StartOffset: 0,
		EndOffset:   18,
	})
	require.ErrorIs(t, err, ErrInvalidSelection)

	// Offsets past the end of the content.
	_, err = f.svc.Create(context.Background(), 42, f.assignmentID, dto.AnnotationCreateRequest{
		Text:        "equal.",
		Verb:        "Juxtaposes",
		StartOffset: 500,
		EndOffset:   506,
	})
	require.ErrorIs(t, err, ErrInvalidSelection)

	response, err := f.svc.Create(context.Background(), 42, f.assignmentID, dto.AnnotationCreateRequest{
		Text:        "We hold these truths",
		Verb:        "Juxtaposes",
		StartOffset: 0,
		EndOffset:   20,
	})
	require.NoError(t, err)
	require.Equal(t, models.DefaultAnnotationColor, response.Color)
	require.Equal(t, "Comparison", response.Category)
}

func TestAnnotationServiceCreateStripsMarkupFromCommentary(t *testing.T) {
	f := newAnnotationServiceFixture(t)

	response, err := f.svc.Create(context.Background(), 42, f.assignmentID, dto.AnnotationCreateRequest{
		Text:        "We hold these truths",
		Verb:        "Amplifies",
		Commentary:  `<script>alert("x")</script>The author opens with certainty.`,
		StartOffset: 0,
		EndOffset:   20,
	})
	require.NoError(t, err)
	require.Equal(t, "The author opens with certainty.", response.Commentary)
}

func TestAnnotationServiceEventsAndCacheInvalidation(t *testing.T) {
	f := newAnnotationServiceFixture(t)

	created, err := f.svc.Create(context.Background(), 42, f.assignmentID, dto.AnnotationCreateRequest{
		Text:        "We hold these truths",
		Verb:        "Juxtaposes",
		StartOffset: 0,
		EndOffset:   20,
	})
	require.NoError(t, err)

	verb := "Amplifies"
	_, err = f.svc.Update(context.Background(), 42, created.ID, dto.AnnotationUpdateRequest{Verb: &verb})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), 42, created.ID))

	require.Len(t, f.sink.events, 3)
	require.Equal(t, dto.AnnotationEventCreated, f.sink.events[0].Type)
	require.Equal(t, dto.AnnotationEventUpdated, f.sink.events[1].Type)
	require.Equal(t, "Amplifies", f.sink.events[1].Annotation.Verb)
	require.Equal(t, dto.AnnotationEventDeleted, f.sink.events[2].Type)

	require.Equal(t, []uint{f.assignmentID, f.assignmentID, f.assignmentID}, f.invalidator.assignmentIDs)
}

func TestAnnotationServiceUpdateRequiresOwnership(t *testing.T) {
	f := newAnnotationServiceFixture(t)

	created, err := f.svc.Create(context.Background(), 42, f.assignmentID, dto.AnnotationCreateRequest{
		Text:        "We hold these truths",
		Verb:        "Juxtaposes",
		StartOffset: 0,
		EndOffset:   20,
	})
	require.NoError(t, err)

	verb := "Amplifies"
	_, err = f.svc.Update(context.Background(), 7, created.ID, dto.AnnotationUpdateRequest{Verb: &verb})
	require.ErrorIs(t, err, ErrNotAnnotationOwner)

	err = f.svc.Delete(context.Background(), 7, created.ID)
	require.ErrorIs(t, err, ErrNotAnnotationOwner)
}

func TestAnnotationServiceListOwnOrdersByStart(t *testing.T) {
	f := newAnnotationServiceFixture(t)

	_, err := f.svc.Create(context.Background(), 42, f.assignmentID, dto.AnnotationCreateRequest{
		Text:        "created equal",
		Verb:        "Juxtaposes",
		StartOffset: 58,
		EndOffset:   71,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), 42, f.assignmentID, dto.AnnotationCreateRequest{
		Text:        "We hold these truths",
		Verb:        "Amplifies",
		StartOffset: 0,
		EndOffset:   20,
	})
	require.NoError(t, err)

	own, err := f.svc.ListOwn(context.Background(), 42, f.assignmentID)
	require.NoError(t, err)
	require.Len(t, own, 2)
	require.Equal(t, 0, own[0].StartOffset)
	require.Equal(t, 58, own[1].StartOffset)
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rhetoriclab/rhetorica-api/internal/dto"
	"github.com/rhetoriclab/rhetorica-api/internal/models"
	"github.com/rhetoriclab/rhetorica-api/internal/repository"
	"github.com/rhetoriclab/rhetorica-api/internal/selection"
)

var (
	// ErrAnnotationNotFound indicates the requested annotation does not exist.
	ErrAnnotationNotFound = errors.New("annotation not found")
	// ErrNotAnnotationOwner indicates the caller does not own the annotation.
	ErrNotAnnotationOwner = errors.New("caller does not own this annotation")
	// ErrInvalidSelection indicates the candidate span fails offset or text
	// validation against the current assignment content.
	ErrInvalidSelection = errors.New("invalid selection")
)

// AnnotationEventSink receives change events for the realtime stream. A nil
// sink disables streaming without touching the write path.
type AnnotationEventSink interface {
	PublishAnnotation(ctx context.Context, event dto.AnnotationEvent)
}

// HeatmapInvalidator drops cached review aggregates after annotation writes.
// A nil invalidator leaves caches to expire on their TTL.
type HeatmapInvalidator interface {
	Invalidate(ctx context.Context, assignmentID uint)
}

// AnnotationService exposes annotation CRUD over validated selections.
type AnnotationService interface {
	Create(ctx context.Context, userID, assignmentID uint, payload dto.AnnotationCreateRequest) (dto.AnnotationResponse, error)
	ListOwn(ctx context.Context, userID, assignmentID uint) ([]dto.AnnotationResponse, error)
	Update(ctx context.Context, userID, annotationID uint, payload dto.AnnotationUpdateRequest) (dto.AnnotationResponse, error)
	Delete(ctx context.Context, userID, annotationID uint) error
}

type annotationService struct {
	annotations repository.AnnotationRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	sink        AnnotationEventSink
	invalidator HeatmapInvalidator
	logger      zerolog.Logger
}

// NewAnnotationService builds a new annotation service.
func NewAnnotationService(annotations repository.AnnotationRepository, assignments repository.AssignmentRepository, validate *validator.Validate, sink AnnotationEventSink, invalidator HeatmapInvalidator, logger zerolog.Logger) AnnotationService {
	return &annotationService{
		annotations: annotations,
		assignments: assignments,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		sink:        sink,
		invalidator: invalidator,
		logger:      logger.With().Str("component", "annotation_service").Logger(),
	}
}

// Create validates the candidate span against the authoritative assignment
// content before persisting: offsets in bounds and the claimed text equal to
// the content slice. Commentary is stripped of any markup.
func (s *annotationService) Create(ctx context.Context, userID, assignmentID uint, payload dto.AnnotationCreateRequest) (dto.AnnotationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnnotationResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnnotationResponse{}, ErrAssignmentNotFound
		}
		return dto.AnnotationResponse{}, err
	}

	if err := selection.Validate(assignment.Content, payload.Selection()); err != nil {
		return dto.AnnotationResponse{}, errors.Join(ErrInvalidSelection, err)
	}

	annotation := models.Annotation{
		AssignmentID: assignmentID,
		UserID:       userID,
		Text:         payload.Text,
		Verb:         payload.Verb,
		Commentary:   strings.TrimSpace(s.sanitizer.Sanitize(payload.Commentary)),
		StartOffset:  payload.StartOffset,
		EndOffset:    payload.EndOffset,
		Color:        models.DefaultAnnotationColor,
	}
	if err := s.annotations.Create(ctx, &annotation); err != nil {
		return dto.AnnotationResponse{}, err
	}

	s.logger.Info().
		Uint("annotation_id", annotation.ID).
		Uint("assignment_id", assignmentID).
		Uint("user_id", userID).
		Msg("annotation created")

	response := dto.NewAnnotationResponse(annotation)
	s.emit(ctx, dto.AnnotationEvent{Type: dto.AnnotationEventCreated, Annotation: response})
	return response, nil
}

func (s *annotationService) ListOwn(ctx context.Context, userID, assignmentID uint) ([]dto.AnnotationResponse, error) {
	annotations, err := s.annotations.ListByOwner(ctx, assignmentID, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewAnnotationResponseSlice(annotations), nil
}

// Update edits verb and commentary in place. Offsets and text never change
// after creation; only the owner may edit.
func (s *annotationService) Update(ctx context.Context, userID, annotationID uint, payload dto.AnnotationUpdateRequest) (dto.AnnotationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnnotationResponse{}, err
	}

	annotation, err := s.getOwned(ctx, userID, annotationID)
	if err != nil {
		return dto.AnnotationResponse{}, err
	}

	if payload.Verb != nil {
		annotation.Verb = *payload.Verb
	}
	if payload.Commentary != nil {
		annotation.Commentary = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Commentary))
	}

	if err := s.annotations.Update(ctx, &annotation); err != nil {
		return dto.AnnotationResponse{}, err
	}

	response := dto.NewAnnotationResponse(annotation)
	s.emit(ctx, dto.AnnotationEvent{Type: dto.AnnotationEventUpdated, Annotation: response})
	return response, nil
}

func (s *annotationService) Delete(ctx context.Context, userID, annotationID uint) error {
	annotation, err := s.getOwned(ctx, userID, annotationID)
	if err != nil {
		return err
	}

	if err := s.annotations.Delete(ctx, annotationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAnnotationNotFound
		}
		return err
	}

	s.logger.Info().Uint("annotation_id", annotationID).Uint("user_id", userID).Msg("annotation deleted")

	s.emit(ctx, dto.AnnotationEvent{Type: dto.AnnotationEventDeleted, Annotation: dto.NewAnnotationResponse(annotation)})
	return nil
}

func (s *annotationService) getOwned(ctx context.Context, userID, annotationID uint) (models.Annotation, error) {
	annotation, err := s.annotations.GetByID(ctx, annotationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Annotation{}, ErrAnnotationNotFound
		}
		return models.Annotation{}, err
	}
	if !annotation.OwnedBy(userID) {
		return models.Annotation{}, ErrNotAnnotationOwner
	}
	return annotation, nil
}

func (s *annotationService) emit(ctx context.Context, event dto.AnnotationEvent) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, event.Annotation.AssignmentID)
	}
	if s.sink == nil {
		return
	}
	s.sink.PublishAnnotation(ctx, event)
}

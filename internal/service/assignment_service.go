package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rhetoriclab/rhetorica-api/internal/dto"
	"github.com/rhetoriclab/rhetorica-api/internal/models"
	"github.com/rhetoriclab/rhetorica-api/internal/repository"
	"github.com/rhetoriclab/rhetorica-api/internal/selection"
)

var (
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrContentFrozen indicates the assignment content can no longer change
	// because annotations already index into it.
	ErrContentFrozen = errors.New("assignment content is frozen once annotated")
	// ErrNotAssignmentOwner indicates the caller does not teach the class the
	// assignment belongs to.
	ErrNotAssignmentOwner = errors.New("caller does not own this assignment")
	// ErrInvalidDueDate indicates a malformed or non-future due date.
	ErrInvalidDueDate = errors.New("due date must be a future RFC3339 timestamp")
)

// AssignmentService exposes assignment domain use cases.
type AssignmentService interface {
	Create(ctx context.Context, teacherID, classID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	ListByClass(ctx context.Context, classID uint) ([]dto.AssignmentResponse, error)
	Update(ctx context.Context, teacherID, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, teacherID, id uint) error
	Tokens(ctx context.Context, id uint) ([]selection.Token, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	annotations repository.AnnotationRepository
	classes     repository.ClassRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(assignments repository.AssignmentRepository, annotations repository.AnnotationRepository, classes repository.ClassRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		annotations: annotations,
		classes:     classes,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) Create(ctx context.Context, teacherID, classID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrClassNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	if class.TeacherID != teacherID {
		return dto.AssignmentResponse{}, ErrNotClassOwner
	}

	dueDate, err := time.Parse(time.RFC3339, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, errors.Join(ErrInvalidDueDate, err)
	}
	if !dueDate.After(s.now()) {
		return dto.AssignmentResponse{}, ErrInvalidDueDate
	}

	status := payload.Status
	if status == "" {
		status = models.AssignmentStatusActive
	}

	assignment := models.Assignment{
		ClassID: classID,
		Title:   payload.Title,
		Author:  payload.Author,
		Content: payload.Content,
		DueDate: dueDate,
		Status:  status,
	}
	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("class_id", classID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) ListByClass(ctx context.Context, classID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return dto.NewAssignmentResponseSlice(assignments), nil
}

// Update applies partial edits. Content edits are refused once any annotation
// exists for the assignment: offsets index into the content string, and a
// changed string would silently desynchronize every span.
func (s *assignmentService) Update(ctx context.Context, teacherID, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.getOwned(ctx, teacherID, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if payload.Content != nil && *payload.Content != assignment.Content {
		count, err := s.annotations.CountByAssignment(ctx, id)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		if count > 0 {
			return dto.AssignmentResponse{}, ErrContentFrozen
		}
		assignment.Content = *payload.Content
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Author != nil {
		assignment.Author = *payload.Author
	}
	if payload.Status != nil {
		assignment.Status = *payload.Status
	}
	if payload.DueDate != nil {
		dueDate, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, errors.Join(ErrInvalidDueDate, err)
		}
		assignment.DueDate = dueDate
	}

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, teacherID, id uint) error {
	if _, err := s.getOwned(ctx, teacherID, id); err != nil {
		return err
	}
	if err := s.assignments.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

// Tokens returns the assignment content pre-split into word tokens for the
// touch two-tap selection mode.
func (s *assignmentService) Tokens(ctx context.Context, id uint) ([]selection.Token, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return selection.Tokenize(assignment.Content), nil
}

func (s *assignmentService) getOwned(ctx context.Context, teacherID, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	class, err := s.classes.GetByID(ctx, assignment.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrClassNotFound
		}
		return models.Assignment{}, err
	}
	if class.TeacherID != teacherID {
		return models.Assignment{}, ErrNotAssignmentOwner
	}

	return assignment, nil
}

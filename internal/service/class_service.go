package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rhetoriclab/rhetorica-api/internal/dto"
	"github.com/rhetoriclab/rhetorica-api/internal/models"
	"github.com/rhetoriclab/rhetorica-api/internal/repository"
)

// joinCodeAttempts bounds join-code regeneration before creation fails hard.
const joinCodeAttempts = 3

var (
	// ErrClassNotFound indicates the requested class does not exist.
	ErrClassNotFound = errors.New("class not found")
	// ErrJoinCodeExhausted indicates no unique join code was found within the
	// bounded retry budget.
	ErrJoinCodeExhausted = errors.New("failed to generate a unique join code")
	// ErrInvalidJoinCode indicates the supplied join code matches no class.
	ErrInvalidJoinCode = errors.New("invalid join code")
	// ErrNotClassOwner indicates the caller does not own the class.
	ErrNotClassOwner = errors.New("caller does not own this class")
)

// ClassService exposes class management use cases.
type ClassService interface {
	Create(ctx context.Context, teacherID uint, payload dto.ClassCreateRequest) (dto.ClassResponse, error)
	Get(ctx context.Context, id uint, callerID uint) (dto.ClassResponse, error)
	ListForTeacher(ctx context.Context, teacherID uint) ([]dto.ClassResponse, error)
	ListForStudent(ctx context.Context, studentID uint) ([]dto.ClassResponse, error)
	Join(ctx context.Context, studentID uint, payload dto.ClassJoinRequest) (dto.ClassResponse, error)
	Roster(ctx context.Context, classID, teacherID uint) ([]dto.RosterEntry, error)
}

type classService struct {
	classes   repository.ClassRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
	generate  func() string
}

// NewClassService builds a new class service.
func NewClassService(classes repository.ClassRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		classes:   classes,
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "class_service").Logger(),
		generate:  generateJoinCode,
	}
}

func generateJoinCode() string {
	code := make([]byte, models.JoinCodeLength)
	alphabetSize := big.NewInt(int64(len(models.JoinCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			// crypto/rand failing means the platform entropy source is broken;
			// surface it loudly rather than hand out predictable codes.
			panic(fmt.Sprintf("join code generation: %v", err))
		}
		code[i] = models.JoinCodeAlphabet[n.Int64()]
	}
	return string(code)
}

// Create generates a join code, checking uniqueness with a bounded retry. The
// database's unique index remains the hard constraint; the pre-check just
// keeps the common path free of constraint errors.
func (s *classService) Create(ctx context.Context, teacherID uint, payload dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	var code string
	found := false
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		candidate := s.generate()
		taken, err := s.classes.JoinCodeTaken(ctx, candidate)
		if err != nil {
			return dto.ClassResponse{}, err
		}
		if !taken {
			code = candidate
			found = true
			break
		}
	}
	if !found {
		return dto.ClassResponse{}, ErrJoinCodeExhausted
	}

	class := models.Class{
		Name:        payload.Name,
		Description: payload.Description,
		TeacherID:   teacherID,
		JoinCode:    code,
	}
	if err := s.classes.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Uint("teacher_id", teacherID).Msg("class created")

	return dto.NewClassResponse(class, true), nil
}

func (s *classService) Get(ctx context.Context, id uint, callerID uint) (dto.ClassResponse, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	return dto.NewClassResponse(class, class.TeacherID == callerID), nil
}

func (s *classService) ListForTeacher(ctx context.Context, teacherID uint) ([]dto.ClassResponse, error) {
	classes, err := s.classes.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return dto.NewClassResponseSlice(classes, true), nil
}

func (s *classService) ListForStudent(ctx context.Context, studentID uint) ([]dto.ClassResponse, error) {
	classes, err := s.classes.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewClassResponseSlice(classes, false), nil
}

// Join enrolls a student by join code. Joining a class twice is a no-op, so
// re-submitting a code never errors.
func (s *classService) Join(ctx context.Context, studentID uint, payload dto.ClassJoinRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.classes.GetByJoinCode(ctx, payload.JoinCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ClassResponse{}, ErrInvalidJoinCode
		}
		return dto.ClassResponse{}, err
	}

	if err := s.classes.Enroll(ctx, class.ID, studentID); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Uint("class_id", class.ID).Uint("student_id", studentID).Msg("student joined class")

	return dto.NewClassResponse(class, false), nil
}

func (s *classService) Roster(ctx context.Context, classID, teacherID uint) ([]dto.RosterEntry, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if class.TeacherID != teacherID {
		return nil, ErrNotClassOwner
	}

	ids, err := s.classes.StudentIDs(ctx, classID)
	if err != nil {
		return nil, err
	}

	students, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	roster := make([]dto.RosterEntry, 0, len(students))
	for _, student := range students {
		roster = append(roster, dto.NewRosterEntry(student))
	}
	return roster, nil
}

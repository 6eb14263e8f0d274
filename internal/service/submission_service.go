package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rhetoriclab/rhetorica-api/internal/dto"
	"github.com/rhetoriclab/rhetorica-api/internal/models"
	"github.com/rhetoriclab/rhetorica-api/internal/repository"
	"github.com/rhetoriclab/rhetorica-api/internal/rhetoric"
)

var (
	// ErrSubmissionNotFound indicates no submission exists for the owner pair.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrThesisIncomplete indicates a thesis save with an empty slot.
	ErrThesisIncomplete = errors.New("thesis requires two verbs and a purpose")
	// ErrRatioNotMet indicates paragraph completion was requested before the
	// commentary carried twice the evidence's sentence count.
	ErrRatioNotMet = errors.New("commentary must have at least twice as many sentences as evidence")
	// ErrParagraphNotFound indicates the named paragraph is not on the submission.
	ErrParagraphNotFound = errors.New("paragraph not found")
	// ErrReorderMismatch indicates the reorder list does not name exactly the
	// current paragraph set.
	ErrReorderMismatch = errors.New("reorder list must contain every paragraph exactly once")
	// ErrAlreadySubmitted indicates writes after the final hand-in.
	ErrAlreadySubmitted = errors.New("submission already handed in")
)

// SubmissionService drives the wizard: SPACECAT unlock, thesis, paragraphs,
// reorder, final hand-in, and the plain-text essay export. Every save merges
// its own column; sibling wizard steps are never clobbered.
type SubmissionService interface {
	Get(ctx context.Context, userID, assignmentID uint) (dto.SubmissionResponse, error)
	SaveSpacecat(ctx context.Context, userID, assignmentID uint, payload dto.SpacecatRequest) (dto.SubmissionResponse, error)
	SaveThesis(ctx context.Context, userID, assignmentID uint, payload dto.ThesisRequest) (dto.SubmissionResponse, error)
	AddParagraph(ctx context.Context, userID, assignmentID uint, payload dto.ParagraphRequest) (dto.SubmissionResponse, error)
	UpdateParagraph(ctx context.Context, userID, assignmentID uint, paragraphID string, payload dto.ParagraphRequest) (dto.SubmissionResponse, error)
	DeleteParagraph(ctx context.Context, userID, assignmentID uint, paragraphID string) (dto.SubmissionResponse, error)
	Reorder(ctx context.Context, userID, assignmentID uint, payload dto.ReorderRequest) (dto.SubmissionResponse, error)
	Submit(ctx context.Context, userID, assignmentID uint) (dto.SubmissionResponse, error)
	Essay(ctx context.Context, userID, assignmentID uint) (string, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	annotations repository.AnnotationRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService builds a new submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, assignments repository.AssignmentRepository, annotations repository.AnnotationRepository, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		assignments: assignments,
		annotations: annotations,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Get(ctx context.Context, userID, assignmentID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByOwner(ctx, userID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission)
}

// SaveSpacecat persists the rhetorical-situation answers and unlocks the text
// for annotation by moving the submission to "started".
func (s *submissionService) SaveSpacecat(ctx context.Context, userID, assignmentID uint, payload dto.SpacecatRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	// The first wizard save creates the submission row, so the assignment
	// must exist before one is minted for it.
	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.getOrCreate(ctx, userID, assignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if submission.Status == models.SubmissionStatusSubmitted {
		return dto.SubmissionResponse{}, ErrAlreadySubmitted
	}

	encoded, err := models.EncodeJSON(models.Spacecat{
		Speaker:  payload.Speaker,
		Purpose:  payload.Purpose,
		Audience: payload.Audience,
		Context:  payload.Context,
		Exigence: payload.Exigence,
	})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	return s.merge(ctx, submission, map[string]any{"spacecat": encoded})
}

// SaveThesis validates the three slots, renders the templated sentence with
// the assignment's author, and advances the status to "thesis_drafted".
func (s *submissionService) SaveThesis(ctx context.Context, userID, assignmentID uint, payload dto.ThesisRequest) (dto.SubmissionResponse, error) {
	thesis := rhetoric.Thesis{Verb1: payload.Verb1, Verb2: payload.Verb2, Purpose: payload.Purpose}
	if !thesis.Valid() {
		return dto.SubmissionResponse{}, ErrThesisIncomplete
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.getOrCreate(ctx, userID, assignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if submission.Status == models.SubmissionStatusSubmitted {
		return dto.SubmissionResponse{}, ErrAlreadySubmitted
	}

	author := assignment.Author
	if author == "" {
		author = "The author"
	}

	encoded, err := models.EncodeJSON(models.ThesisPayload{
		Verb1:    payload.Verb1,
		Verb2:    payload.Verb2,
		Purpose:  strings.TrimSpace(payload.Purpose),
		Sentence: thesis.Sentence(author),
	})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	fields := map[string]any{"thesis": encoded}
	if models.CanTransition(submission.Status, models.SubmissionStatusThesisDrafted) {
		fields["status"] = models.SubmissionStatusThesisDrafted
	}

	return s.merge(ctx, submission, fields)
}

// AddParagraph seeds a new paragraph from a dragged annotation: the claim is
// the annotation's verb, the evidence its text verbatim. The completion flag
// follows the sentence-ratio gate.
func (s *submissionService) AddParagraph(ctx context.Context, userID, assignmentID uint, payload dto.ParagraphRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	annotation, err := s.annotations.GetByID(ctx, payload.ClaimAnnotationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAnnotationNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if !annotation.OwnedBy(userID) || annotation.AssignmentID != assignmentID {
		return dto.SubmissionResponse{}, ErrNotAnnotationOwner
	}

	submission, err := s.getOrCreate(ctx, userID, assignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if submission.Status == models.SubmissionStatusSubmitted {
		return dto.SubmissionResponse{}, ErrAlreadySubmitted
	}

	paragraphs, err := submission.DecodeParagraphs()
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	commentary := strings.TrimSpace(s.sanitizer.Sanitize(payload.Commentary))
	paragraphs = append(paragraphs, models.Paragraph{
		ID:              uuid.NewString(),
		ClaimVerb:       annotation.Verb,
		ClaimAnnotation: annotation.ID,
		Evidence:        annotation.Text,
		Commentary:      commentary,
		Complete:        rhetoric.RatioMet(annotation.Text, commentary),
	})

	return s.mergeParagraphs(ctx, submission, paragraphs)
}

// UpdateParagraph replaces a paragraph's commentary (and claim, if the
// annotation changed) and recomputes the ratio gate.
func (s *submissionService) UpdateParagraph(ctx context.Context, userID, assignmentID uint, paragraphID string, payload dto.ParagraphRequest) (dto.SubmissionResponse, error) {
	submission, paragraphs, index, err := s.findParagraph(ctx, userID, assignmentID, paragraphID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if submission.Status == models.SubmissionStatusSubmitted {
		return dto.SubmissionResponse{}, ErrAlreadySubmitted
	}

	paragraph := paragraphs[index]

	if payload.ClaimAnnotationID != 0 && payload.ClaimAnnotationID != paragraph.ClaimAnnotation {
		annotation, err := s.annotations.GetByID(ctx, payload.ClaimAnnotationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.SubmissionResponse{}, ErrAnnotationNotFound
			}
			return dto.SubmissionResponse{}, err
		}
		if !annotation.OwnedBy(userID) || annotation.AssignmentID != assignmentID {
			return dto.SubmissionResponse{}, ErrNotAnnotationOwner
		}
		paragraph.ClaimVerb = annotation.Verb
		paragraph.ClaimAnnotation = annotation.ID
		paragraph.Evidence = annotation.Text
	}

	paragraph.Commentary = strings.TrimSpace(s.sanitizer.Sanitize(payload.Commentary))
	paragraph.Complete = rhetoric.RatioMet(paragraph.Evidence, paragraph.Commentary)
	paragraphs[index] = paragraph

	return s.mergeParagraphs(ctx, submission, paragraphs)
}

func (s *submissionService) DeleteParagraph(ctx context.Context, userID, assignmentID uint, paragraphID string) (dto.SubmissionResponse, error) {
	submission, paragraphs, index, err := s.findParagraph(ctx, userID, assignmentID, paragraphID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if submission.Status == models.SubmissionStatusSubmitted {
		return dto.SubmissionResponse{}, ErrAlreadySubmitted
	}

	paragraphs = append(paragraphs[:index], paragraphs[index+1:]...)
	return s.mergeParagraphs(ctx, submission, paragraphs)
}

// Reorder applies the user's drag order: a pure permutation of the current
// paragraph set, validated to contain every paragraph exactly once.
func (s *submissionService) Reorder(ctx context.Context, userID, assignmentID uint, payload dto.ReorderRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByOwner(ctx, userID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if submission.Status == models.SubmissionStatusSubmitted {
		return dto.SubmissionResponse{}, ErrAlreadySubmitted
	}

	paragraphs, err := submission.DecodeParagraphs()
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if len(payload.ParagraphIDs) != len(paragraphs) {
		return dto.SubmissionResponse{}, ErrReorderMismatch
	}

	byID := make(map[string]models.Paragraph, len(paragraphs))
	for _, paragraph := range paragraphs {
		byID[paragraph.ID] = paragraph
	}

	reordered := make([]models.Paragraph, 0, len(paragraphs))
	for _, id := range payload.ParagraphIDs {
		paragraph, ok := byID[id]
		if !ok {
			return dto.SubmissionResponse{}, ErrReorderMismatch
		}
		delete(byID, id)
		reordered = append(reordered, paragraph)
	}

	return s.mergeParagraphs(ctx, submission, reordered)
}

// Submit hands the essay in. All paragraphs must pass the ratio gate and a
// thesis must exist.
func (s *submissionService) Submit(ctx context.Context, userID, assignmentID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByOwner(ctx, userID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	if submission.Status == models.SubmissionStatusSubmitted {
		return dto.SubmissionResponse{}, ErrAlreadySubmitted
	}

	thesis, err := submission.DecodeThesis()
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if thesis.Sentence == "" {
		return dto.SubmissionResponse{}, ErrThesisIncomplete
	}

	paragraphs, err := submission.DecodeParagraphs()
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	for _, paragraph := range paragraphs {
		if !paragraph.Complete {
			return dto.SubmissionResponse{}, ErrRatioNotMet
		}
	}

	if !models.CanTransition(submission.Status, models.SubmissionStatusSubmitted) {
		return dto.SubmissionResponse{}, fmt.Errorf("cannot submit from status %q", submission.Status)
	}

	submittedAt := s.now().UTC()
	response, err := s.merge(ctx, submission, map[string]any{
		"status":       models.SubmissionStatusSubmitted,
		"submitted_at": submittedAt,
	})
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("user_id", userID).Uint("assignment_id", assignmentID).Msg("essay submitted")
	return response, nil
}

// Essay renders the plain-text export: thesis, then each paragraph's
// claim/evidence/commentary triplet in current order.
func (s *submissionService) Essay(ctx context.Context, userID, assignmentID uint) (string, error) {
	submission, err := s.submissions.GetByOwner(ctx, userID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSubmissionNotFound
		}
		return "", err
	}

	thesis, err := submission.DecodeThesis()
	if err != nil {
		return "", err
	}
	paragraphs, err := submission.DecodeParagraphs()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Thesis: %s\n", thesis.Sentence)
	for _, paragraph := range paragraphs {
		b.WriteString("\nParagraph:\n")
		fmt.Fprintf(&b, "Claim: %s\n", paragraph.ClaimVerb)
		fmt.Fprintf(&b, "Evidence: %q\n", paragraph.Evidence)
		fmt.Fprintf(&b, "Commentary: %s\n", paragraph.Commentary)
	}
	return b.String(), nil
}

func (s *submissionService) getOrCreate(ctx context.Context, userID, assignmentID uint) (models.Submission, error) {
	submission, err := s.submissions.GetByOwner(ctx, userID, assignmentID)
	if err == nil {
		return submission, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Submission{}, err
	}

	submission = models.Submission{
		UserID:       userID,
		AssignmentID: assignmentID,
		Status:       models.SubmissionStatusStarted,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (s *submissionService) mergeParagraphs(ctx context.Context, submission models.Submission, paragraphs []models.Paragraph) (dto.SubmissionResponse, error) {
	encoded, err := models.EncodeJSON(paragraphs)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return s.merge(ctx, submission, map[string]any{"paragraphs": encoded})
}

// merge writes only the named columns, then reloads so the response carries
// every previously saved wizard step alongside the new one.
func (s *submissionService) merge(ctx context.Context, submission models.Submission, fields map[string]any) (dto.SubmissionResponse, error) {
	if err := s.submissions.UpdateFields(ctx, submission.ID, fields); err != nil {
		return dto.SubmissionResponse{}, err
	}
	updated, err := s.submissions.GetByOwner(ctx, submission.UserID, submission.AssignmentID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(updated)
}

func (s *submissionService) findParagraph(ctx context.Context, userID, assignmentID uint, paragraphID string) (models.Submission, []models.Paragraph, int, error) {
	submission, err := s.submissions.GetByOwner(ctx, userID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Submission{}, nil, 0, ErrSubmissionNotFound
		}
		return models.Submission{}, nil, 0, err
	}

	paragraphs, err := submission.DecodeParagraphs()
	if err != nil {
		return models.Submission{}, nil, 0, err
	}

	for index, paragraph := range paragraphs {
		if paragraph.ID == paragraphID {
			return submission, paragraphs, index, nil
		}
	}
	return models.Submission{}, nil, 0, ErrParagraphNotFound
}

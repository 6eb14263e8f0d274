package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rhetoriclab/rhetorica-api/internal/dto"
	"github.com/rhetoriclab/rhetorica-api/internal/models"
	"github.com/rhetoriclab/rhetorica-api/internal/repository"
)

// ProgressService produces the student dashboard: every visible assignment
// across the student's classes with its wizard status and overdue flag.
type ProgressService interface {
	StudentProgress(ctx context.Context, studentID uint) (dto.StudentProgressResponse, error)
	Invalidate(ctx context.Context, studentID uint)
}

type progressService struct {
	classes     repository.ClassRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewProgressService builds the dashboard aggregator.
func NewProgressService(classes repository.ClassRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ProgressService {
	return &progressService{
		classes:     classes,
		assignments: assignments,
		submissions: submissions,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "progress_service").Logger(),
		now:         time.Now,
	}
}

func progressCacheKey(studentID uint) string {
	return fmt.Sprintf("progress:student:%d", studentID)
}

func (s *progressService) StudentProgress(ctx context.Context, studentID uint) (dto.StudentProgressResponse, error) {
	cacheKey := progressCacheKey(studentID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentProgressResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", studentID).Msg("progress cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read progress cache")
		}
	}

	classes, err := s.classes.ListByStudent(ctx, studentID)
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}

	classIDs := make([]uint, 0, len(classes))
	for _, class := range classes {
		classIDs = append(classIDs, class.ID)
	}

	assignments, err := s.assignments.ListByClasses(ctx, classIDs)
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}

	submissions, err := s.submissions.ListByUser(ctx, studentID)
	if err != nil {
		return dto.StudentProgressResponse{}, err
	}

	response := s.buildResponse(assignments, submissions)

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store progress cache")
			}
		}
	}

	return response, nil
}

// Invalidate drops a student's cached dashboard after a wizard save.
func (s *progressService) Invalidate(ctx context.Context, studentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, progressCacheKey(studentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("student_id", studentID).Msg("failed to invalidate progress cache")
	}
}

func (s *progressService) buildResponse(assignments []models.Assignment, submissions []models.Submission) dto.StudentProgressResponse {
	now := s.now()

	submissionByAssignment := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		submissionByAssignment[submission.AssignmentID] = submission
	}

	summary := dto.ProgressSummary{}
	progress := make([]dto.AssignmentProgress, 0, len(assignments))

	for _, assignment := range assignments {
		if !assignment.VisibleToStudents() {
			continue
		}
		summary.TotalAssignments++

		status := "not_started"
		if submission, ok := submissionByAssignment[assignment.ID]; ok && submission.Status != "" {
			status = submission.Status
		}

		switch status {
		case models.SubmissionStatusStarted:
			summary.Started++
		case models.SubmissionStatusThesisDrafted:
			summary.ThesisDrafted++
		case models.SubmissionStatusSubmitted:
			summary.Submitted++
		}

		overdue := assignment.IsPastDue(now) && status != models.SubmissionStatusSubmitted
		if overdue {
			summary.Overdue++
		}

		progress = append(progress, dto.AssignmentProgress{
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
			ClassID:      assignment.ClassID,
			DueDate:      assignment.DueDate,
			Status:       status,
			Overdue:      overdue,
		})
	}

	return dto.StudentProgressResponse{Summary: summary, Assignments: progress}
}

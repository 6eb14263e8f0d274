package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rhetoriclab/rhetorica-api/internal/dto"
	"github.com/rhetoriclab/rhetorica-api/internal/highlight"
	"github.com/rhetoriclab/rhetorica-api/internal/models"
	"github.com/rhetoriclab/rhetorica-api/internal/repository"
)

// ReviewService builds the teacher-side heatmap: every enrolled student's
// annotations over one assignment, partitioned into segments whose intensity
// scales with annotation count. The aggregate is cached and invalidated on
// every annotation write to the assignment.
type ReviewService interface {
	Heatmap(ctx context.Context, teacherID, assignmentID uint) (dto.HeatmapResponse, error)
	SegmentDetail(ctx context.Context, teacherID, assignmentID uint, position int) (dto.SegmentDetailResponse, error)
	Invalidate(ctx context.Context, assignmentID uint)
}

type reviewService struct {
	assignments repository.AssignmentRepository
	annotations repository.AnnotationRepository
	classes     repository.ClassRepository
	users       repository.UserRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewReviewService builds the heatmap aggregator.
func NewReviewService(assignments repository.AssignmentRepository, annotations repository.AnnotationRepository, classes repository.ClassRepository, users repository.UserRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReviewService {
	return &reviewService{
		assignments: assignments,
		annotations: annotations,
		classes:     classes,
		users:       users,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "review_service").Logger(),
	}
}

func heatmapCacheKey(assignmentID uint) string {
	return fmt.Sprintf("review:heatmap:%d", assignmentID)
}

func (s *reviewService) Heatmap(ctx context.Context, teacherID, assignmentID uint) (dto.HeatmapResponse, error) {
	assignment, err := s.getOwnedAssignment(ctx, teacherID, assignmentID)
	if err != nil {
		return dto.HeatmapResponse{}, err
	}

	cacheKey := heatmapCacheKey(assignmentID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.HeatmapResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("assignment_id", assignmentID).Msg("heatmap cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read heatmap cache")
		}
	}

	annotations, err := s.annotations.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return dto.HeatmapResponse{}, err
	}

	response, err := s.buildHeatmap(ctx, assignment, annotations)
	if err != nil {
		return dto.HeatmapResponse{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store heatmap cache")
			}
		}
	}

	return response, nil
}

// SegmentDetail answers a click at one text position with every annotation
// covering it, bypassing the cache to keep the detail panel live.
func (s *reviewService) SegmentDetail(ctx context.Context, teacherID, assignmentID uint, position int) (dto.SegmentDetailResponse, error) {
	assignment, err := s.getOwnedAssignment(ctx, teacherID, assignmentID)
	if err != nil {
		return dto.SegmentDetailResponse{}, err
	}
	if position < 0 || position >= len(assignment.Content) {
		return dto.SegmentDetailResponse{}, ErrInvalidSelection
	}

	annotations, err := s.annotations.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return dto.SegmentDetailResponse{}, err
	}

	active := make([]dto.AnnotationResponse, 0)
	for _, annotation := range annotations {
		if annotation.StartOffset <= position && annotation.EndOffset > position {
			active = append(active, dto.NewAnnotationResponse(annotation))
		}
	}

	return dto.SegmentDetailResponse{Position: position, Annotations: active}, nil
}

// Invalidate drops the cached heatmap after an annotation write. Cache
// failures are logged, never surfaced: the next read recomputes regardless.
func (s *reviewService) Invalidate(ctx context.Context, assignmentID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, heatmapCacheKey(assignmentID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("failed to invalidate heatmap cache")
	}
}

func (s *reviewService) getOwnedAssignment(ctx context.Context, teacherID, assignmentID uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
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
		return models.Assignment{}, ErrNotClassOwner
	}
	return assignment, nil
}

func (s *reviewService) buildHeatmap(ctx context.Context, assignment models.Assignment, annotations []models.Annotation) (dto.HeatmapResponse, error) {
	spans := make([]highlight.Span, 0, len(annotations))
	studentIDs := make(map[uint]struct{})
	for _, annotation := range annotations {
		spans = append(spans, highlight.Span{
			ID:    annotation.ID,
			Start: annotation.StartOffset,
			End:   annotation.EndOffset,
		})
		studentIDs[annotation.UserID] = struct{}{}
	}

	segments := highlight.Partition(len(assignment.Content), spans)
	heatSegments := make([]dto.HeatmapSegment, 0, len(segments))
	for _, segment := range segments {
		count := segment.Count()
		heatSegments = append(heatSegments, dto.HeatmapSegment{
			Start:         segment.Start,
			End:           segment.End,
			Text:          segment.Text(assignment.Content),
			Count:         count,
			Intensity:     highlight.Intensity(count),
			AnnotationIDs: segment.ActiveIDs,
		})
	}

	students, err := s.studentProfiles(ctx, studentIDs)
	if err != nil {
		return dto.HeatmapResponse{}, err
	}

	return dto.HeatmapResponse{
		AssignmentID: assignment.ID,
		Title:        assignment.Title,
		Author:       assignment.Author,
		Segments:     heatSegments,
		Annotations:  dto.NewAnnotationResponseSlice(annotations),
		Students:     students,
	}, nil
}

func (s *reviewService) studentProfiles(ctx context.Context, ids map[uint]struct{}) ([]dto.HeatmapStudent, error) {
	if len(ids) == 0 {
		return []dto.HeatmapStudent{}, nil
	}

	ordered := make([]uint, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	users, err := s.users.GetByIDs(ctx, ordered)
	if err != nil {
		return nil, err
	}

	students := make([]dto.HeatmapStudent, 0, len(users))
	for _, user := range users {
		students = append(students, dto.HeatmapStudent{ID: user.ID, DisplayName: user.DisplayName})
	}
	return students, nil
}

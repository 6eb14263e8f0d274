package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rhetoriclab/rhetorica-api/internal/models"
)

// SubmissionRepository defines persistence operations for the per-student,
// per-assignment submission aggregate.
type SubmissionRepository interface {
	GetByOwner(ctx context.Context, userID, assignmentID uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	// UpdateFields merges the named columns into the submission row without
	// touching sibling wizard-step payloads.
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) GetByOwner(ctx context.Context, userID, assignmentID uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND assignment_id = ?", userID, assignmentID).
		First(&submission).Error
	if err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("updated_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

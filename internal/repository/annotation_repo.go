package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/rhetoriclab/rhetorica-api/internal/models"
)

// AnnotationRepository defines persistence operations for span annotations.
type AnnotationRepository interface {
	Create(ctx context.Context, annotation *models.Annotation) error
	GetByID(ctx context.Context, id uint) (models.Annotation, error)
	ListByOwner(ctx context.Context, assignmentID, userID uint) ([]models.Annotation, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Annotation, error)
	CountByAssignment(ctx context.Context, assignmentID uint) (int64, error)
	Update(ctx context.Context, annotation *models.Annotation) error
	Delete(ctx context.Context, id uint) error
}

type annotationRepository struct {
	db *gorm.DB
}

// NewAnnotationRepository instantiates a GORM-backed repository.
func NewAnnotationRepository(db *gorm.DB) AnnotationRepository {
	return &annotationRepository{db: db}
}

func (r *annotationRepository) Create(ctx context.Context, annotation *models.Annotation) error {
	return r.db.WithContext(ctx).Create(annotation).Error
}

func (r *annotationRepository) GetByID(ctx context.Context, id uint) (models.Annotation, error) {
	var annotation models.Annotation
	if err := r.db.WithContext(ctx).First(&annotation, id).Error; err != nil {
		return models.Annotation{}, err
	}
	return annotation, nil
}

// ListByOwner returns one student's annotations for an assignment ordered by
// start offset, the order the reader view paints them in.
func (r *annotationRepository) ListByOwner(ctx context.Context, assignmentID, userID uint) ([]models.Annotation, error) {
	var annotations []models.Annotation
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		Order("start_offset ASC, id ASC").
		Find(&annotations).Error
	if err != nil {
		return nil, err
	}
	return annotations, nil
}

// ListByAssignment returns every student's annotations for the heatmap view.
func (r *annotationRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Annotation, error) {
	var annotations []models.Annotation
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("start_offset ASC, id ASC").
		Find(&annotations).Error
	if err != nil {
		return nil, err
	}
	return annotations, nil
}

func (r *annotationRepository) CountByAssignment(ctx context.Context, assignmentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Annotation{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error
	return count, err
}

func (r *annotationRepository) Update(ctx context.Context, annotation *models.Annotation) error {
	return r.db.WithContext(ctx).Save(annotation).Error
}

func (r *annotationRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Annotation{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

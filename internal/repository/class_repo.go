package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rhetoriclab/rhetorica-api/internal/models"
)

// ClassRepository defines persistence operations for classes and enrollment.
type ClassRepository interface {
	Create(ctx context.Context, class *models.Class) error
	GetByID(ctx context.Context, id uint) (models.Class, error)
	GetByJoinCode(ctx context.Context, code string) (models.Class, error)
	JoinCodeTaken(ctx context.Context, code string) (bool, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Class, error)
	Enroll(ctx context.Context, classID, studentID uint) error
	StudentIDs(ctx context.Context, classID uint) ([]uint, error)
	IsEnrolled(ctx context.Context, classID, studentID uint) (bool, error)
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository instantiates a GORM-backed repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) GetByID(ctx context.Context, id uint) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).First(&class, id).Error; err != nil {
		return models.Class{}, err
	}
	return class, nil
}

func (r *classRepository) GetByJoinCode(ctx context.Context, code string) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Where("join_code = ?", code).First(&class).Error; err != nil {
		return models.Class{}, err
	}
	return class, nil
}

func (r *classRepository) JoinCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Class{}).Where("join_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *classRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).Where("teacher_id = ?", teacherID).Order("created_at DESC").Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Class, error) {
	var classes []models.Class
	err := r.db.WithContext(ctx).
		Joins("JOIN class_memberships ON class_memberships.class_id = classes.id").
		Where("class_memberships.student_id = ?", studentID).
		Order("classes.created_at DESC").
		Find(&classes).Error
	if err != nil {
		return nil, err
	}
	return classes, nil
}

// Enroll appends the student to the class roster. Joining twice is a no-op:
// the composite unique index absorbs the conflict.
func (r *classRepository) Enroll(ctx context.Context, classID, studentID uint) error {
	membership := models.ClassMembership{
		ClassID:   classID,
		StudentID: studentID,
		JoinedAt:  time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&membership).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func (r *classRepository) StudentIDs(ctx context.Context, classID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.ClassMembership{}).
		Where("class_id = ?", classID).
		Order("joined_at ASC").
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *classRepository) IsEnrolled(ctx context.Context, classID, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ClassMembership{}).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/rhetoriclab/rhetorica-api/internal/models"
)

type memoryUserRepo struct {
	users  map[uint]models.User
	nextID uint
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uint]models.User), nextID: 1}
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	results := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			results = append(results, user)
		}
	}
	return results, nil
}

func (m *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = *user
	return nil
}

type memoryClassRepo struct {
	classes     map[uint]models.Class
	memberships map[uint]map[uint]struct{}
	nextID      uint
}

func newMemoryClassRepo() *memoryClassRepo {
	return &memoryClassRepo{
		classes:     make(map[uint]models.Class),
		memberships: make(map[uint]map[uint]struct{}),
		nextID:      1,
	}
}

func (m *memoryClassRepo) Create(ctx context.Context, class *models.Class) error {
	class.ID = m.nextID
	m.nextID++
	class.CreatedAt = time.Now()
	m.classes[class.ID] = *class
	return nil
}

func (m *memoryClassRepo) GetByID(ctx context.Context, id uint) (models.Class, error) {
	class, ok := m.classes[id]
	if !ok {
		return models.Class{}, gorm.ErrRecordNotFound
	}
	return class, nil
}

func (m *memoryClassRepo) GetByJoinCode(ctx context.Context, code string) (models.Class, error) {
	for _, class := range m.classes {
		if class.JoinCode == code {
			return class, nil
		}
	}
	return models.Class{}, gorm.ErrRecordNotFound
}

func (m *memoryClassRepo) JoinCodeTaken(ctx context.Context, code string) (bool, error) {
	_, err := m.GetByJoinCode(ctx, code)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (m *memoryClassRepo) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error) {
	results := make([]models.Class, 0)
	for _, class := range m.classes {
		if class.TeacherID == teacherID {
			results = append(results, class)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryClassRepo) ListByStudent(ctx context.Context, studentID uint) ([]models.Class, error) {
	results := make([]models.Class, 0)
	for classID, students := range m.memberships {
		if _, ok := students[studentID]; ok {
			results = append(results, m.classes[classID])
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryClassRepo) Enroll(ctx context.Context, classID, studentID uint) error {
	if _, ok := m.memberships[classID]; !ok {
		m.memberships[classID] = make(map[uint]struct{})
	}
	m.memberships[classID][studentID] = struct{}{}
	return nil
}

func (m *memoryClassRepo) StudentIDs(ctx context.Context, classID uint) ([]uint, error) {
	ids := make([]uint, 0)
	for id := range m.memberships[classID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memoryClassRepo) IsEnrolled(ctx context.Context, classID, studentID uint) (bool, error) {
	students, ok := m.memberships[classID]
	if !ok {
		return false, nil
	}
	_, enrolled := students[studentID]
	return enrolled, nil
}

type memoryAssignmentRepo struct {
	assignments map[uint]models.Assignment
	nextID      uint
}

func newMemoryAssignmentRepo() *memoryAssignmentRepo {
	return &memoryAssignmentRepo{assignments: make(map[uint]models.Assignment), nextID: 1}
}

func (m *memoryAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.ID = m.nextID
	m.nextID++
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = assignment.CreatedAt
	m.assignments[assignment.ID] = *assignment
	return nil
}

func (m *memoryAssignmentRepo) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) ListByClass(ctx context.Context, classID uint) ([]models.Assignment, error) {
	return m.ListByClasses(ctx, []uint{classID})
}

func (m *memoryAssignmentRepo) ListByClasses(ctx context.Context, classIDs []uint) ([]models.Assignment, error) {
	wanted := make(map[uint]struct{}, len(classIDs))
	for _, id := range classIDs {
		wanted[id] = struct{}{}
	}
	results := make([]models.Assignment, 0)
	for _, assignment := range m.assignments {
		if _, ok := wanted[assignment.ClassID]; ok {
			results = append(results, assignment)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memoryAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	if _, ok := m.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	assignment.UpdatedAt = time.Now()
	m.assignments[assignment.ID] = *assignment
	return nil
}

func (m *memoryAssignmentRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.assignments, id)
	return nil
}

type memoryAnnotationRepo struct {
	annotations map[uint]models.Annotation
	nextID      uint
}

func newMemoryAnnotationRepo() *memoryAnnotationRepo {
	return &memoryAnnotationRepo{annotations: make(map[uint]models.Annotation), nextID: 1}
}

func (m *memoryAnnotationRepo) Create(ctx context.Context, annotation *models.Annotation) error {
	annotation.ID = m.nextID
	m.nextID++
	annotation.CreatedAt = time.Now()
	annotation.UpdatedAt = annotation.CreatedAt
	m.annotations[annotation.ID] = *annotation
	return nil
}

func (m *memoryAnnotationRepo) GetByID(ctx context.Context, id uint) (models.Annotation, error) {
	annotation, ok := m.annotations[id]
	if !ok {
		return models.Annotation{}, gorm.ErrRecordNotFound
	}
	return annotation, nil
}

func (m *memoryAnnotationRepo) ListByOwner(ctx context.Context, assignmentID, userID uint) ([]models.Annotation, error) {
	results := make([]models.Annotation, 0)
	for _, annotation := range m.annotations {
		if annotation.AssignmentID == assignmentID && annotation.UserID == userID {
			results = append(results, annotation)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].StartOffset < results[j].StartOffset })
	return results, nil
}

func (m *memoryAnnotationRepo) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Annotation, error) {
	results := make([]models.Annotation, 0)
	for _, annotation := range m.annotations {
		if annotation.AssignmentID == assignmentID {
			results = append(results, annotation)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].StartOffset < results[j].StartOffset })
	return results, nil
}

func (m *memoryAnnotationRepo) CountByAssignment(ctx context.Context, assignmentID uint) (int64, error) {
	var count int64
	for _, annotation := range m.annotations {
		if annotation.AssignmentID == assignmentID {
			count++
		}
	}
	return count, nil
}

func (m *memoryAnnotationRepo) Update(ctx context.Context, annotation *models.Annotation) error {
	if _, ok := m.annotations[annotation.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	annotation.UpdatedAt = time.Now()
	m.annotations[annotation.ID] = *annotation
	return nil
}

func (m *memoryAnnotationRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.annotations[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.annotations, id)
	return nil
}

type memorySubmissionRepo struct {
	submissions map[uint]models.Submission
	nextID      uint
}

func newMemorySubmissionRepo() *memorySubmissionRepo {
	return &memorySubmissionRepo{submissions: make(map[uint]models.Submission), nextID: 1}
}

func (m *memorySubmissionRepo) GetByOwner(ctx context.Context, userID, assignmentID uint) (models.Submission, error) {
	for _, submission := range m.submissions {
		if submission.UserID == userID && submission.AssignmentID == assignmentID {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (m *memorySubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	submission.ID = m.nextID
	m.nextID++
	submission.CreatedAt = time.Now()
	submission.UpdatedAt = submission.CreatedAt
	m.submissions[submission.ID] = *submission
	return nil
}

func (m *memorySubmissionRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	submission, ok := m.submissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for column, value := range fields {
		switch column {
		case "spacecat":
			submission.Spacecat = value.(datatypes.JSON)
		case "thesis":
			submission.Thesis = value.(datatypes.JSON)
		case "paragraphs":
			submission.Paragraphs = value.(datatypes.JSON)
		case "status":
			submission.Status = value.(string)
		case "submitted_at":
			at := value.(time.Time)
			submission.SubmittedAt = &at
		}
	}
	submission.UpdatedAt = time.Now()
	m.submissions[id] = submission
	return nil
}

func (m *memorySubmissionRepo) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.Submission, error) {
	results := make([]models.Submission, 0)
	for _, submission := range m.submissions {
		if submission.AssignmentID == assignmentID {
			results = append(results, submission)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (m *memorySubmissionRepo) ListByUser(ctx context.Context, userID uint) ([]models.Submission, error) {
	results := make([]models.Submission, 0)
	for _, submission := range m.submissions {
		if submission.UserID == userID {
			results = append(results, submission)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

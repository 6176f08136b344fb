package mocks

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type QuizRepository struct {
	mock.Mock
}

func quizOrNil(v interface{}) *models.Quiz {
	if v == nil {
		return nil
	}
	return v.(*models.Quiz)
}

func quizzesOrNil(v interface{}) []*models.Quiz {
	if v == nil {
		return nil
	}
	return v.([]*models.Quiz)
}

func stringsOrNil(v interface{}) []string {
	if v == nil {
		return nil
	}
	return v.([]string)
}

func (m *QuizRepository) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	args := m.Called(ctx, tx, quiz)
	return args.Error(0)
}

func (m *QuizRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error) {
	args := m.Called(ctx, tx, id)
	return quizOrNil(args.Get(0)), args.Error(1)
}

func (m *QuizRepository) GetWithQuestions(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error) {
	args := m.Called(ctx, tx, id)
	return quizOrNil(args.Get(0)), args.Error(1)
}

func (m *QuizRepository) GetWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error) {
	args := m.Called(ctx, tx, id)
	return quizOrNil(args.Get(0)), args.Error(1)
}

func (m *QuizRepository) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	args := m.Called(ctx, tx, quiz)
	return args.Error(0)
}

func (m *QuizRepository) ReplaceQuestions(ctx context.Context, tx *gorm.DB, quizID string, entries []models.QuizQuestion) error {
	args := m.Called(ctx, tx, quizID, entries)
	return args.Error(0)
}

func (m *QuizRepository) Archive(ctx context.Context, tx *gorm.DB, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *QuizRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *QuizRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	args := m.Called(ctx, tx, filters)
	return quizzesOrNil(args.Get(0)), args.Get(1).(int64), args.Error(2)
}

func (m *QuizRepository) IsAssigned(ctx context.Context, tx *gorm.DB, quizID, studentID string) (bool, error) {
	args := m.Called(ctx, tx, quizID, studentID)
	return args.Bool(0), args.Error(1)
}

func (m *QuizRepository) GetAssignedStudentIDs(ctx context.Context, tx *gorm.DB, quizID string) ([]string, error) {
	args := m.Called(ctx, tx, quizID)
	return stringsOrNil(args.Get(0)), args.Error(1)
}

func (m *QuizRepository) AssignStudents(ctx context.Context, tx *gorm.DB, quizID string, studentIDs []string, assignedAt time.Time) ([]string, error) {
	args := m.Called(ctx, tx, quizID, studentIDs, assignedAt)
	return stringsOrNil(args.Get(0)), args.Error(1)
}

func (m *QuizRepository) UnassignStudents(ctx context.Context, tx *gorm.DB, quizID string, studentIDs []string) (int64, error) {
	args := m.Called(ctx, tx, quizID, studentIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *QuizRepository) GetAssignedActiveQuizzes(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.Quiz, error) {
	args := m.Called(ctx, tx, studentID)
	return quizzesOrNil(args.Get(0)), args.Error(1)
}

func (m *QuizRepository) CountByCreator(ctx context.Context, tx *gorm.DB, creatorID string) (int64, error) {
	args := m.Called(ctx, tx, creatorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *QuizRepository) CountStudentsByCreator(ctx context.Context, tx *gorm.DB, creatorID string) (int64, error) {
	args := m.Called(ctx, tx, creatorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *QuizRepository) GetStudentsByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	args := m.Called(ctx, tx, creatorID, filters)
	return usersOrNil(args.Get(0)), args.Get(1).(int64), args.Error(2)
}

package mocks

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type AttemptRepository struct {
	mock.Mock
}

func attemptOrNil(v interface{}) *models.QuizAttempt {
	if v == nil {
		return nil
	}
	return v.(*models.QuizAttempt)
}

func attemptsOrNil(v interface{}) []*models.QuizAttempt {
	if v == nil {
		return nil
	}
	return v.([]*models.QuizAttempt)
}

func (m *AttemptRepository) Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	args := m.Called(ctx, tx, attempt)
	return args.Error(0)
}

func (m *AttemptRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.QuizAttempt, error) {
	args := m.Called(ctx, tx, id)
	return attemptOrNil(args.Get(0)), args.Error(1)
}

func (m *AttemptRepository) GetWithQuiz(ctx context.Context, tx *gorm.DB, id string) (*models.QuizAttempt, error) {
	args := m.Called(ctx, tx, id)
	return attemptOrNil(args.Get(0)), args.Error(1)
}

func (m *AttemptRepository) GetActiveAttempt(ctx context.Context, tx *gorm.DB, studentID, quizID string) (*models.QuizAttempt, error) {
	args := m.Called(ctx, tx, studentID, quizID)
	return attemptOrNil(args.Get(0)), args.Error(1)
}

func (m *AttemptRepository) Complete(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) (bool, error) {
	args := m.Called(ctx, tx, attempt)
	return args.Bool(0), args.Error(1)
}

func (m *AttemptRepository) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	args := m.Called(ctx, tx, studentID, filters)
	return attemptsOrNil(args.Get(0)), args.Get(1).(int64), args.Error(2)
}

func (m *AttemptRepository) ListByQuiz(ctx context.Context, tx *gorm.DB, quizID string, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	args := m.Called(ctx, tx, quizID, filters)
	return attemptsOrNil(args.Get(0)), args.Get(1).(int64), args.Error(2)
}

func (m *AttemptRepository) GetCompletedByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AttemptFilters) ([]*models.QuizAttempt, error) {
	args := m.Called(ctx, tx, studentID, filters)
	return attemptsOrNil(args.Get(0)), args.Error(1)
}

func (m *AttemptRepository) HasAttempts(ctx context.Context, tx *gorm.DB, quizID string) (bool, error) {
	args := m.Called(ctx, tx, quizID)
	return args.Bool(0), args.Error(1)
}

func (m *AttemptRepository) GetStudentQuizStats(ctx context.Context, tx *gorm.DB, studentID string, quizIDs []string) (map[string]*repositories.StudentQuizStats, error) {
	args := m.Called(ctx, tx, studentID, quizIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*repositories.StudentQuizStats), args.Error(1)
}

func (m *AttemptRepository) GetCreatorStats(ctx context.Context, tx *gorm.DB, creatorID string) (*repositories.SubmissionStats, error) {
	args := m.Called(ctx, tx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.SubmissionStats), args.Error(1)
}

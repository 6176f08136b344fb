package mocks

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type QuestionRepository struct {
	mock.Mock
}

func questionsOrNil(v interface{}) []*models.Question {
	if v == nil {
		return nil
	}
	return v.([]*models.Question)
}

func (m *QuestionRepository) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	args := m.Called(ctx, tx, question)
	return args.Error(0)
}

func (m *QuestionRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *QuestionRepository) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Question, error) {
	args := m.Called(ctx, tx, ids)
	return questionsOrNil(args.Get(0)), args.Error(1)
}

func (m *QuestionRepository) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	args := m.Called(ctx, tx, question)
	return args.Error(0)
}

func (m *QuestionRepository) Deactivate(ctx context.Context, tx *gorm.DB, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *QuestionRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *QuestionRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	args := m.Called(ctx, tx, filters)
	return questionsOrNil(args.Get(0)), args.Get(1).(int64), args.Error(2)
}

func (m *QuestionRepository) IsReferencedByQuiz(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

func (m *QuestionRepository) CountByCreator(ctx context.Context, tx *gorm.DB, creatorID string) (int64, error) {
	args := m.Called(ctx, tx, creatorID)
	return args.Get(0).(int64), args.Error(1)
}

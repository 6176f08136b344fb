package mocks

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Create(ctx context.Context, tx *gorm.DB, log *models.AuditLog) error {
	args := m.Called(ctx, tx, log)
	return args.Error(0)
}

func (m *AuditRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.AuditFilters) ([]*models.AuditLog, int64, error) {
	args := m.Called(ctx, tx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.AuditLog), args.Get(1).(int64), args.Error(2)
}

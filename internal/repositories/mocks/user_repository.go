package mocks

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type UserRepository struct {
	mock.Mock
}

func userOrNil(v interface{}) *models.User {
	if v == nil {
		return nil
	}
	return v.(*models.User)
}

func usersOrNil(v interface{}) []*models.User {
	if v == nil {
		return nil
	}
	return v.([]*models.User)
}

func (m *UserRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	args := m.Called(ctx, tx, id)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	args := m.Called(ctx, tx, email)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserRepository) GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*models.User, error) {
	args := m.Called(ctx, tx, externalID)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *UserRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *UserRepository) GetActiveStudentsByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error) {
	args := m.Called(ctx, tx, ids)
	return usersOrNil(args.Get(0)), args.Error(1)
}

func (m *UserRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	args := m.Called(ctx, tx, filters)
	return usersOrNil(args.Get(0)), args.Get(1).(int64), args.Error(2)
}

func (m *UserRepository) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	args := m.Called(ctx, tx, email)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepository) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	args := m.Called(ctx, tx, username)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepository) SetActive(ctx context.Context, tx *gorm.DB, id string, active bool) error {
	args := m.Called(ctx, tx, id, active)
	return args.Error(0)
}

func (m *UserRepository) UpdateLastLogin(ctx context.Context, tx *gorm.DB, id string, loginTime time.Time) error {
	args := m.Called(ctx, tx, id, loginTime)
	return args.Error(0)
}

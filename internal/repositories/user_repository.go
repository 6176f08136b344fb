package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository reads and writes accounts. Soft-deleted users are invisible to every method.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// GetActiveStudentsByIDs resolves ids to active student accounts, dropping unknown ids.
	GetActiveStudentsByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error)
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)

	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error)

	SetActive(ctx context.Context, tx *gorm.DB, id string, active bool) error
	UpdateLastLogin(ctx context.Context, tx *gorm.DB, id string, loginTime time.Time) error
}

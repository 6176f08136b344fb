package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(ctx context.Context, tx *gorm.DB, log *models.AuditLog) error
	List(ctx context.Context, tx *gorm.DB, filters AuditFilters) ([]*models.AuditLog, int64, error)
}

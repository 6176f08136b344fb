package postgres

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type AuditPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAuditPostgreSQL(db *gorm.DB) repositories.AuditRepository {
	return &AuditPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *AuditPostgreSQL) Create(ctx context.Context, tx *gorm.DB, log *models.AuditLog) error {
	return a.helpers.GetDB(ctx, tx).Create(log).Error
}

func (a *AuditPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AuditFilters) ([]*models.AuditLog, int64, error) {
	var logs []*models.AuditLog
	var total int64

	query := a.helpers.GetDB(ctx, tx).Model(&models.AuditLog{})
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Action != nil {
		query = query.Where("action = ?", *filters.Action)
	}
	if filters.EntityType != nil {
		query = query.Where("entity_type = ?", *filters.EntityType)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset,
		map[string]string{"created_at": "created_at"}, "created_at")
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/google/uuid"
)

type AuditEntry struct {
	UserID     string
	Action     models.AuditAction
	EntityType models.AuditEntity
	EntityID   string
	Details    map[string]interface{}
}

type auditService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAuditService(repo repositories.Repository, logger *slog.Logger) AuditService {
	return &auditService{
		repo:   repo,
		logger: logger,
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) {
	meta := RequestMetaFrom(ctx)

	log := &models.AuditLog{
		ID:         uuid.NewString(),
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Details:    entry.Details,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		CreatedAt:  time.Now(),
	}
	if entry.UserID != "" {
		userID := entry.UserID
		log.UserID = &userID
	}

	if err := s.repo.Audit().Create(ctx, nil, log); err != nil {
		s.logger.Warn("Failed to write audit log",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"error", err)
	}
}

func (s *auditService) List(ctx context.Context, filters repositories.AuditFilters) ([]*models.AuditLog, Pagination, error) {
	filters.Limit, filters.Offset = NormalizePage(filters.Limit, filters.Offset)

	logs, total, err := s.repo.Audit().List(ctx, nil, filters)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, NewPagination(total, filters.Limit, filters.Offset), nil
}

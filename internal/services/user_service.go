package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/google/uuid"
)

type userService struct {
	repo      repositories.Repository
	notifier  NotificationEventService
	audit     AuditService
	validator *validator.Validator
	logger    *slog.Logger
}

func NewUserService(
	repo repositories.Repository,
	notifier NotificationEventService,
	audit AuditService,
	validator *validator.Validator,
	logger *slog.Logger,
) UserService {
	return &userService{
		repo:      repo,
		notifier:  notifier,
		audit:     audit,
		validator: validator,
		logger:    logger,
	}
}

func (s *userService) List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	filters.Limit, filters.Offset = NormalizePage(filters.Limit, filters.Offset)

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &UserListResponse{
		Users:      toUserResponses(users),
		Pagination: NewPagination(total, filters.Limit, filters.Offset),
	}, nil
}

// InviteTeacher creates a verified teacher account with a generated password and mails the invite.
func (s *userService) InviteTeacher(ctx context.Context, req *InviteTeacherRequest, caller auth.Identity) (*InviteTeacherResponse, error) {
	s.logger.Info("Starting teacher invite", "admin_id", caller.SubjectID, "email", req.Email)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	exists, err := s.repo.User().ExistsByEmail(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}
	exists, err = s.repo.User().ExistsByUsername(ctx, nil, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	password, err := auth.GenerateTemporaryPassword()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	teacher := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     req.Username,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         models.RoleTeacher,
		PasswordHash: hash,
		School:       req.School,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := s.repo.User().Create(ctx, nil, teacher); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}

	if err := s.notifier.NotifyTeacherInvite(ctx, teacher, password); err != nil {
		s.logger.Warn("Failed to send teacher invite", "user_id", teacher.ID, "error", err)
	}
	s.audit.Record(ctx, AuditEntry{
		UserID:     caller.SubjectID,
		Action:     models.AuditCreated,
		EntityType: models.AuditEntityUser,
		EntityID:   teacher.ID,
		Details:    map[string]interface{}{"role": models.RoleTeacher.String()},
	})

	s.logger.Info("Teacher invited successfully", "user_id", teacher.ID)
	return &InviteTeacherResponse{User: ToUserResponse(teacher), TemporaryPassword: password}, nil
}

func (s *userService) SetStatus(ctx context.Context, userID string, active bool, caller auth.Identity) (*UserResponse, error) {
	if userID == caller.SubjectID && !active {
		return nil, NewBusinessRuleError("self_deactivation", "you cannot deactivate your own account", nil)
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsActive == active {
		return ToUserResponse(user), nil
	}

	if err := s.repo.User().SetActive(ctx, nil, userID, active); err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	previous := user.IsActive
	user.IsActive = active

	s.audit.Record(ctx, AuditEntry{
		UserID:     caller.SubjectID,
		Action:     models.AuditStatusChange,
		EntityType: models.AuditEntityUser,
		EntityID:   userID,
		Details:    map[string]interface{}{"from": previous, "to": active},
	})

	s.logger.Info("User status updated", "user_id", userID, "is_active", active)
	return ToUserResponse(user), nil
}

// Delete soft-deletes the account; its content and attempts stay in place.
func (s *userService) Delete(ctx context.Context, userID string, caller auth.Identity) error {
	if userID == caller.SubjectID {
		return NewBusinessRuleError("self_deletion", "you cannot delete your own account", nil)
	}

	if _, err := s.repo.User().GetByID(ctx, nil, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.repo.User().Delete(ctx, nil, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{UserID: caller.SubjectID, Action: models.AuditDeleted, EntityType: models.AuditEntityUser, EntityID: userID})
	s.logger.Info("User deleted successfully", "user_id", userID)
	return nil
}

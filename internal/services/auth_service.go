package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/google/uuid"
)

const (
	codeDigits          = 6
	verificationCodeTTL = 24 * time.Hour
	resetCodeTTL        = time.Hour
)

type authService struct {
	repo      repositories.Repository
	tokens    *auth.JWTManager
	resolver  auth.TokenResolver
	notifier  NotificationEventService
	audit     AuditService
	validator *validator.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService wires account flows. resolver authenticates bearer credentials; it may be the
// JWT manager itself or an external identity provider.
func NewAuthService(
	repo repositories.Repository,
	tokens *auth.JWTManager,
	resolver auth.TokenResolver,
	notifier NotificationEventService,
	audit AuditService,
	validator *validator.Validator,
	logger *slog.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		resolver:  resolver,
		notifier:  notifier,
		audit:     audit,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func codesMatch(stored *string, expires *time.Time, given string, now time.Time) bool {
	if stored == nil || expires == nil || now.After(*expires) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(given)) == 1
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	s.logger.Info("Registering user", "email", email)

	if err := s.ensureAvailable(ctx, email, req.Username); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	code, err := auth.GenerateCode(codeDigits)
	if err != nil {
		return nil, err
	}
	expires := s.now().Add(verificationCodeTTL)

	user := &models.User{
		ID:                    uuid.NewString(),
		Email:                 email,
		Username:              req.Username,
		FirstName:             strings.TrimSpace(req.FirstName),
		LastName:              strings.TrimSpace(req.LastName),
		Role:                  models.RoleStudent,
		PasswordHash:          hash,
		Grade:                 req.Grade,
		School:                req.School,
		IsActive:              true,
		VerificationCode:      &code,
		VerificationExpiresAt: &expires,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.notifier.NotifyVerificationCode(ctx, user, code); err != nil {
		s.logger.Warn("Failed to send verification code", "user_id", user.ID, "error", err)
	}
	s.audit.Record(ctx, AuditEntry{UserID: user.ID, Action: models.AuditCreated, EntityType: models.AuditEntityUser, EntityID: user.ID})

	s.logger.Info("User registered successfully", "user_id", user.ID)
	return ToUserResponse(user), nil
}

func (s *authService) ensureAvailable(ctx context.Context, email, username string) error {
	exists, err := s.repo.User().ExistsByEmail(ctx, nil, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return ErrEmailTaken
	}
	exists, err = s.repo.User().ExistsByUsername(ctx, nil, username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return ErrUsernameTaken
	}
	return nil
}

func (s *authService) VerifyEmail(ctx context.Context, req *VerifyEmailRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.getUserByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrEmailAlreadyVerified
	}
	if !codesMatch(user.VerificationCode, user.VerificationExpiresAt, req.Code, s.now()) {
		return ErrInvalidCode
	}

	user.IsVerified = true
	user.VerificationCode = nil
	user.VerificationExpiresAt = nil
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	s.logger.Info("Email verified successfully", "user_id", user.ID)
	return nil
}

func (s *authService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrEmailAlreadyVerified
	}

	code, err := auth.GenerateCode(codeDigits)
	if err != nil {
		return err
	}
	expires := s.now().Add(verificationCodeTTL)
	user.VerificationCode = &code
	user.VerificationExpiresAt = &expires
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	if err := s.notifier.NotifyVerificationCode(ctx, user, code); err != nil {
		s.logger.Warn("Failed to send verification code", "user_id", user.ID, "error", err)
	}
	return nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, normalizeEmail(req.Email))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("Failed login attempt", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	pair, err := s.tokens.IssueTokenPair(user)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.User().UpdateLastLogin(ctx, nil, user.ID, now); err != nil {
		s.logger.Warn("Failed to update last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginAt = &now
	s.audit.Record(ctx, AuditEntry{UserID: user.ID, Action: models.AuditLogin, EntityType: models.AuditEntityUser, EntityID: user.ID})

	s.logger.Info("User logged in successfully", "user_id", user.ID)
	return newAuthResponse(user, pair), nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	subject, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.repo.User().GetByID(ctx, nil, subject)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.CanSignIn() {
		return nil, ErrInvalidRefreshToken
	}

	pair, err := s.tokens.IssueTokenPair(user)
	if err != nil {
		return nil, err
	}
	return newAuthResponse(user, pair), nil
}

// ForgotPassword succeeds for unknown emails so callers cannot discover which accounts exist.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.User().GetByEmail(ctx, nil, normalizeEmail(email))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			s.logger.Info("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	code, err := auth.GenerateCode(codeDigits)
	if err != nil {
		return err
	}
	expires := s.now().Add(resetCodeTTL)
	user.ResetCode = &code
	user.ResetExpiresAt = &expires
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	if err := s.notifier.NotifyPasswordReset(ctx, user, code); err != nil {
		s.logger.Warn("Failed to send password reset code", "user_id", user.ID, "error", err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, normalizeEmail(req.Email))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrInvalidCode
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if !codesMatch(user.ResetCode, user.ResetExpiresAt, req.Code, s.now()) {
		return ErrInvalidCode
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.ResetCode = nil
	user.ResetExpiresAt = nil
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{UserID: user.ID, Action: models.AuditUpdated, EntityType: models.AuditEntityUser, EntityID: user.ID,
		Details: map[string]interface{}{"field": "password", "via": "reset"}})
	return nil
}

func (s *authService) ResolveIdentity(ctx context.Context, credential string) (*auth.Identity, error) {
	identity, err := s.resolver.Resolve(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	user, err := s.repo.User().GetByID(ctx, nil, identity.SubjectID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.CanSignIn() {
		return nil, ErrUnauthorized
	}

	// Role comes from the stored account, never from the token claim.
	return &auth.Identity{SubjectID: user.ID, Role: user.Role}, nil
}

func (s *authService) GetProfile(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*UserResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Grade != nil {
		user.Grade = req.Grade
	}
	if req.School != nil {
		user.School = req.School
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	s.audit.Record(ctx, AuditEntry{UserID: user.ID, Action: models.AuditUpdated, EntityType: models.AuditEntityUser, EntityID: user.ID})
	return ToUserResponse(user), nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return ErrWrongCurrentPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{UserID: user.ID, Action: models.AuditUpdated, EntityType: models.AuditEntityUser, EntityID: user.ID,
		Details: map[string]interface{}{"field": "password"}})
	return nil
}

func (s *authService) getUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *authService) getUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.User().GetByEmail(ctx, nil, normalizeEmail(email))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func newAuthResponse(user *models.User, pair *auth.TokenPair) *AuthResponse {
	return &AuthResponse{
		User:         ToUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresAt:    pair.ExpiresAt,
	}
}

func ToUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		FullName:    user.FullName(),
		Role:        user.Role,
		Grade:       user.Grade,
		School:      user.School,
		IsActive:    user.IsActive,
		IsVerified:  user.IsVerified,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

func toUserResponses(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}

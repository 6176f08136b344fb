package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/google/uuid"
)

// CasdoorTokenParser is the part of the Casdoor client the resolver needs.
type CasdoorTokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

// CasdoorResolver verifies Casdoor-issued tokens and provisions a local account the first
// time a subject is seen.
type CasdoorResolver struct {
	parser CasdoorTokenParser
	users  repositories.UserRepository
	logger *slog.Logger
}

func NewCasdoorClient(cfg CasdoorConfig) *casdoorsdk.Client {
	return casdoorsdk.NewClient(cfg.Endpoint, cfg.ClientID, cfg.ClientSecret, cfg.Certificate, cfg.OrganizationName, cfg.ApplicationName)
}

func NewCasdoorResolver(parser CasdoorTokenParser, users repositories.UserRepository, logger *slog.Logger) *CasdoorResolver {
	return &CasdoorResolver{
		parser: parser,
		users:  users,
		logger: logger,
	}
}

func (r *CasdoorResolver) Resolve(ctx context.Context, credential string) (*Identity, error) {
	claims, err := r.parser.ParseJwtToken(credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	externalID := claims.User.Id
	if externalID == "" {
		externalID = claims.User.Owner + "/" + claims.User.Name
	}

	user, err := r.users.GetByExternalID(ctx, nil, externalID)
	if err == nil {
		return &Identity{SubjectID: user.ID, Role: user.Role}, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up external user: %w", err)
	}

	user, err = r.provision(ctx, externalID, &claims.User)
	if err != nil {
		return nil, err
	}
	return &Identity{SubjectID: user.ID, Role: user.Role}, nil
}

// provision links an existing account with the same email, or creates a new one.
func (r *CasdoorResolver) provision(ctx context.Context, externalID string, profile *casdoorsdk.User) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email != "" {
		existing, err := r.users.GetByEmail(ctx, nil, email)
		if err == nil {
			existing.ExternalID = &externalID
			if err := r.users.Update(ctx, nil, existing); err != nil {
				return nil, fmt.Errorf("failed to link external user: %w", err)
			}
			r.logger.Info("Linked external identity to existing user", "user_id", existing.ID, "external_id", externalID)
			return existing, nil
		}
		if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to look up user by email: %w", err)
		}
	}

	role := models.RoleStudent
	if profile.IsAdmin {
		role = models.RoleAdmin
	}

	username, err := r.availableUsername(ctx, profile.Name)
	if err != nil {
		return nil, err
	}

	firstName, lastName := profile.FirstName, profile.LastName
	if firstName == "" && lastName == "" {
		firstName, lastName = splitDisplayName(profile.DisplayName)
	}

	user := &models.User{
		ID:         uuid.NewString(),
		ExternalID: &externalID,
		Email:      email,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		Role:       role,
		IsActive:   true,
		IsVerified: true,
	}
	if user.Email == "" {
		user.Email = username + "@" + profile.Owner + ".casdoor"
	}
	if err := r.users.Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to provision external user: %w", err)
	}

	r.logger.Info("Provisioned external user", "user_id", user.ID, "external_id", externalID, "role", role)
	return user, nil
}

func (r *CasdoorResolver) availableUsername(ctx context.Context, base string) (string, error) {
	base = strings.ToLower(strings.TrimSpace(base))
	if base == "" {
		base = "user"
	}
	if len(base) > 20 {
		base = base[:20]
	}
	candidate := base
	for i := 0; i < 5; i++ {
		exists, err := r.users.ExistsByUsername(ctx, nil, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + uuid.NewString()[:6]
	}
	return base + "-" + uuid.NewString()[:8], nil
}

func splitDisplayName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

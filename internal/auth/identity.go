// Package auth turns bearer credentials into identities and owns password and one-time code handling.
package auth

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

var (
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Identity is the authenticated caller.
type Identity struct {
	SubjectID string      `json:"subject_id"`
	Role      models.Role `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// TokenResolver maps a raw bearer credential to an Identity.
type TokenResolver interface {
	Resolve(ctx context.Context, credential string) (*Identity, error)
}

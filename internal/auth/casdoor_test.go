package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/mocks"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeParser struct {
	claims *casdoorsdk.Claims
	err    error
}

func (f fakeParser) ParseJwtToken(string) (*casdoorsdk.Claims, error) {
	return f.claims, f.err
}

func casdoorClaims(isAdmin bool) *casdoorsdk.Claims {
	return &casdoorsdk.Claims{
		User: casdoorsdk.User{
			Owner:       "school",
			Name:        "jdoe",
			Id:          "ext-1",
			Email:       "JDoe@School.test",
			DisplayName: "Jane Doe",
			IsAdmin:     isAdmin,
		},
	}
}

func TestCasdoorResolver_KnownUser(t *testing.T) {
	users := &mocks.UserRepository{}
	users.On("GetByExternalID", mock.Anything, mock.Anything, "ext-1").
		Return(&models.User{ID: "u1", Role: models.RoleTeacher}, nil)

	r := NewCasdoorResolver(fakeParser{claims: casdoorClaims(false)}, users, slog.New(slog.NewTextHandler(io.Discard, nil)))
	identity, err := r.Resolve(context.Background(), "token")

	require.NoError(t, err)
	assert.Equal(t, "u1", identity.SubjectID)
	assert.Equal(t, models.RoleTeacher, identity.Role)
	users.AssertExpectations(t)
}

func TestCasdoorResolver_ProvisionsNewUser(t *testing.T) {
	tests := []struct {
		name     string
		isAdmin  bool
		wantRole models.Role
	}{
		{"student by default", false, models.RoleStudent},
		{"admin from casdoor", true, models.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mocks.UserRepository{}
			users.On("GetByExternalID", mock.Anything, mock.Anything, "ext-1").Return(nil, gorm.ErrRecordNotFound)
			users.On("GetByEmail", mock.Anything, mock.Anything, "jdoe@school.test").Return(nil, gorm.ErrRecordNotFound)
			users.On("ExistsByUsername", mock.Anything, mock.Anything, "jdoe").Return(false, nil)
			users.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(u *models.User) bool {
				return u.Role == tt.wantRole && u.Username == "jdoe" && u.FirstName == "Jane" &&
					u.LastName == "Doe" && u.ExternalID != nil && *u.ExternalID == "ext-1" && u.IsActive && u.IsVerified
			})).Return(nil)

			r := NewCasdoorResolver(fakeParser{claims: casdoorClaims(tt.isAdmin)}, users, slog.New(slog.NewTextHandler(io.Discard, nil)))
			identity, err := r.Resolve(context.Background(), "token")

			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, identity.Role)
			assert.NotEmpty(t, identity.SubjectID)
			users.AssertExpectations(t)
		})
	}
}

func TestCasdoorResolver_LinksExistingEmail(t *testing.T) {
	existing := &models.User{ID: "u9", Email: "jdoe@school.test", Role: models.RoleTeacher}
	users := &mocks.UserRepository{}
	users.On("GetByExternalID", mock.Anything, mock.Anything, "ext-1").Return(nil, gorm.ErrRecordNotFound)
	users.On("GetByEmail", mock.Anything, mock.Anything, "jdoe@school.test").Return(existing, nil)
	users.On("Update", mock.Anything, mock.Anything, existing).Return(nil)

	r := NewCasdoorResolver(fakeParser{claims: casdoorClaims(false)}, users, slog.New(slog.NewTextHandler(io.Discard, nil)))
	identity, err := r.Resolve(context.Background(), "token")

	require.NoError(t, err)
	assert.Equal(t, "u9", identity.SubjectID)
	assert.Equal(t, models.RoleTeacher, identity.Role)
	require.NotNil(t, existing.ExternalID)
	assert.Equal(t, "ext-1", *existing.ExternalID)
}

func TestCasdoorResolver_InvalidToken(t *testing.T) {
	r := NewCasdoorResolver(fakeParser{err: errors.New("bad signature")}, &mocks.UserRepository{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := r.Resolve(context.Background(), "token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

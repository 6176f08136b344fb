package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserService(env *testEnv) UserService {
	return NewUserService(env.repo, env.notifier, env.audit, env.validator, env.logger)
}

func TestUserService_InviteTeacher(t *testing.T) {
	env := newTestEnv(t)
	env.repo.Users.On("ExistsByEmail", mock.Anything, mock.Anything, "ms.frizzle@school.test").Return(false, nil)
	env.repo.Users.On("ExistsByUsername", mock.Anything, mock.Anything, "frizzle").Return(false, nil)
	env.repo.Users.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleTeacher && u.IsVerified && u.IsActive
	})).Return(nil)

	resp, err := newUserService(env).InviteTeacher(context.Background(), &InviteTeacherRequest{
		Email:     "Ms.Frizzle@school.test",
		Username:  "frizzle",
		FirstName: "Valerie",
		LastName:  "Frizzle",
	}, adminIdentity)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, resp.User.Role)
	assert.NotEmpty(t, resp.TemporaryPassword)

	published := env.publisher.Published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventTeacherInvite, published[0].Type)
}

func TestUserService_SetStatus(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		current   bool
		active    bool
		wantKind  ErrorKind
		wantWrite bool
	}{
		{name: "deactivate student", userID: "s1", current: true, active: false, wantWrite: true},
		{name: "reactivate student", userID: "s1", current: false, active: true, wantWrite: true},
		{name: "unchanged is a no-op", userID: "s1", current: true, active: true},
		{name: "admin cannot deactivate self", userID: adminIdentity.SubjectID, active: false, wantKind: KindInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			user := student(tt.userID)
			user.IsActive = tt.current
			env.repo.Users.On("GetByID", mock.Anything, mock.Anything, tt.userID).Return(user, nil).Maybe()
			env.repo.Users.On("SetActive", mock.Anything, mock.Anything, tt.userID, tt.active).Return(nil).Maybe()

			resp, err := newUserService(env).SetStatus(context.Background(), tt.userID, tt.active, adminIdentity)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				env.repo.Users.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.active, resp.IsActive)
			if tt.wantWrite {
				env.repo.Users.AssertCalled(t, "SetActive", mock.Anything, mock.Anything, tt.userID, tt.active)
			} else {
				env.repo.Users.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestUserService_Delete(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		caller  auth.Identity
		found   bool
		wantErr bool
		kind    ErrorKind
	}{
		{name: "deletes another account", userID: "s1", caller: adminIdentity, found: true},
		{name: "missing account", userID: "s9", caller: adminIdentity, wantErr: true, kind: KindNotFound},
		{name: "cannot delete self", userID: adminIdentity.SubjectID, caller: adminIdentity, wantErr: true, kind: KindInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.found {
				env.repo.Users.On("GetByID", mock.Anything, mock.Anything, tt.userID).Return(student(tt.userID), nil)
				env.repo.Users.On("Delete", mock.Anything, mock.Anything, tt.userID).Return(nil)
			} else {
				env.repo.Users.On("GetByID", mock.Anything, mock.Anything, tt.userID).Return(nil, gormNotFound()).Maybe()
			}

			err := newUserService(env).Delete(context.Background(), tt.userID, tt.caller)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.kind, KindOf(err))
				return
			}
			require.NoError(t, err)
			env.repo.AssertExpectations(t)
		})
	}
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
}

func TestJWTManager_IssueAndResolve(t *testing.T) {
	m := newTestManager()
	user := &models.User{ID: "user-1", Role: models.RoleTeacher}

	pair, err := m.IssueTokenPair(user)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	identity, err := m.Resolve(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.SubjectID)
	assert.Equal(t, models.RoleTeacher, identity.Role)

	subject, err := m.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestJWTManager_RejectsRefreshTokenAsAccess(t *testing.T) {
	m := newTestManager()
	pair, err := m.IssueTokenPair(&models.User{ID: "user-1", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = m.Resolve(context.Background(), pair.RefreshToken)
	assert.Error(t, err)

	_, err = m.ParseRefreshToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := newTestManager()
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }
	pair, err := m.IssueTokenPair(&models.User{ID: "user-1", Role: models.RoleStudent})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Resolve(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsNonHMAC(t *testing.T) {
	m := newTestManager()
	claims := Claims{
		Role:      models.RoleAdmin,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "attacker",
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Resolve(context.Background(), raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsWrongSecret(t *testing.T) {
	other := NewJWTManager("other-secret", "refresh-secret", time.Hour, time.Hour)
	pair, err := other.IssueTokenPair(&models.User{ID: "user-1", Role: models.RoleStudent})
	require.NoError(t, err)

	_, err = newTestManager().Resolve(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := HashPassword("Secret#123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "Secret#123"))
	assert.False(t, CheckPassword(hash, "secret#123"))
	assert.False(t, CheckPassword("", "Secret#123"))

	code, err := GenerateCode(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}

	temp, err := GenerateTemporaryPassword()
	require.NoError(t, err)
	assert.Len(t, temp, 16)
}

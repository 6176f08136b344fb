package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	identities map[string]auth.Identity
	err        error
}

func (r stubResolver) ResolveIdentity(_ context.Context, credential string) (*auth.Identity, error) {
	if r.err != nil {
		return nil, r.err
	}
	identity, ok := r.identities[credential]
	if !ok {
		return nil, services.ErrUnauthorized
	}
	return &identity, nil
}

func discardLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	t.Run("generates an id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
		assert.Equal(t, rec.Header().Get(requestIDHeader), rec.Body.String())
	})

	t.Run("reuses the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, "req-42")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
		assert.Equal(t, "req-42", rec.Body.String())
	})
}

func TestAuthenticateAndRequireRoles(t *testing.T) {
	resolver := stubResolver{identities: map[string]auth.Identity{
		"student-token": {SubjectID: "student-1", Role: models.RoleStudent},
		"teacher-token": {SubjectID: "teacher-1", Role: models.RoleTeacher},
	}}

	router := gin.New()
	router.GET("/teachers-only",
		Authenticate(resolver),
		RequireRoles(models.RoleTeacher, models.RoleAdmin),
		func(c *gin.Context) {
			identity, _ := IdentityFrom(c)
			c.String(http.StatusOK, identity.SubjectID)
		},
	)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   services.ErrorKind
		wantBody   string
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantCode: services.KindUnauthenticated},
		{name: "not a bearer token", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: services.KindUnauthenticated},
		{name: "unknown token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantCode: services.KindUnauthenticated},
		{name: "wrong role", header: "Bearer student-token", wantStatus: http.StatusForbidden, wantCode: services.KindForbidden},
		{name: "allowed role", header: "Bearer teacher-token", wantStatus: http.StatusOK, wantBody: "teacher-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/teachers-only", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, string(tt.wantCode), decodeError(t, rec).Code)
			}
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestAuthenticateResolverFailure(t *testing.T) {
	router := gin.New()
	router.GET("/", Authenticate(stubResolver{err: errors.New("connection refused")}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeError(t, rec).Message)
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    services.ErrorKind
		wantMessage string
	}{
		{
			name:        "not found sentinel",
			err:         fmt.Errorf("load: %w", services.ErrQuizNotFound),
			wantStatus:  http.StatusNotFound,
			wantCode:    services.KindNotFound,
			wantMessage: "quiz not found",
		},
		{
			name:        "invalid state",
			err:         services.ErrAttemptAlreadySubmitted,
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    services.KindInvalidState,
			wantMessage: "attempt already submitted",
		},
		{
			name:        "duplicate key",
			err:         fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey),
			wantStatus:  http.StatusConflict,
			wantCode:    services.KindConflict,
			wantMessage: gorm.ErrDuplicatedKey.Error(),
		},
		{
			name:        "permission",
			err:         services.NewPermissionError("teacher-2", "quiz-1", "quiz", "update", "not the owner"),
			wantStatus:  http.StatusForbidden,
			wantCode:    services.KindForbidden,
			wantMessage: "Access denied",
		},
		{
			name:        "validation",
			err:         services.NewValidationError("title", "is required", ""),
			wantStatus:  http.StatusBadRequest,
			wantCode:    services.KindValidation,
			wantMessage: "Validation failed",
		},
		{
			name:        "internal hides details",
			err:         errors.New("pq: relation does not exist"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    services.KindInternal,
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewBaseHandler(discardLogger())
			router := gin.New()
			router.GET("/", func(c *gin.Context) { h.handleServiceError(c, tt.err) })

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, string(tt.wantCode), body.Code)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}

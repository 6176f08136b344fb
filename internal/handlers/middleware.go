package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	userIDKey       = "user_id"
	identityKey     = "identity"
)

// IdentityResolver authenticates a bearer credential.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, credential string) (*auth.Identity, error)
}

// RequestID stamps every request with an id, reusing the caller's X-Request-ID when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestMeta copies client details into the request context for audit entries and operation logs.
func RequestMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := services.WithRequestMeta(c.Request.Context(), services.RequestMeta{
			RequestID: c.GetString(requestIDKey),
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Authenticate resolves the bearer token into an Identity or aborts with 401.
func Authenticate(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authorization header required",
				Code:    string(services.KindUnauthenticated),
			})
			return
		}

		identity, err := resolver.ResolveIdentity(c.Request.Context(), token)
		if err != nil {
			kind := services.KindOf(err)
			message := "Invalid or expired token"
			if kind == services.KindInternal {
				message = "Internal server error"
			}
			c.AbortWithStatusJSON(StatusFor(kind), ErrorResponse{Message: message, Code: string(kind)})
			return
		}

		c.Set(identityKey, *identity)
		c.Set(userIDKey, identity.SubjectID)
		c.Next()
	}
}

// RequireRoles lets through only callers holding one of roles.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
				Code:    string(services.KindUnauthenticated),
			})
			return
		}
		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Insufficient permissions",
			Code:    string(services.KindForbidden),
		})
	}
}

func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := value.(auth.Identity)
	return identity, ok
}

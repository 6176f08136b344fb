package services

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
)

// CheckOwnership passes for admins and for the resource owner.
func CheckOwnership(caller auth.Identity, ownerID, resource, resourceID, action string) error {
	if caller.Role.BypassesOwnership() || caller.SubjectID == ownerID {
		return nil
	}
	return NewPermissionError(caller.SubjectID, resourceID, resource, action, "not owner")
}

// requireAuthor gates content authoring to teachers and admins.
func requireAuthor(caller auth.Identity, resource, action string) error {
	if caller.Role.CanAuthor() {
		return nil
	}
	return NewPermissionError(caller.SubjectID, "", resource, action, "insufficient role permissions")
}

// RequestMeta carries client details recorded in the audit trail and in operation logs.
type RequestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
}

type requestMetaKey struct{}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func RequestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}

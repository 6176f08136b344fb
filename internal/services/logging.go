package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, service string) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", service),
	}
}

// ===== OPERATION LOGGING =====

// LogOperation writes one line per finished operation. Client-caused failures log at warn,
// not-found at info and everything else at error.
func (l *ServiceLogger) LogOperation(ctx context.Context, operation, userID, resourceID, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.String("resource_id", resourceID),
		slog.String("resource_type", resourceType),
		slog.Duration("duration", duration),
	}

	if err != nil {
		kind := KindOf(err)
		status = string(kind)
		switch kind {
		case KindNotFound:
			level = slog.LevelInfo
		case KindInternal:
			level = slog.LevelError
		default:
			level = slog.LevelWarn
		}
		attrs = append(attrs, slog.String("error", err.Error()))

		var ve ValidationErrors
		var bre *BusinessRuleError
		var pe *PermissionError
		switch {
		case errors.As(err, &ve):
			attrs = append(attrs, slog.Int("validation_errors_count", len(ve)))
		case errors.As(err, &bre):
			attrs = append(attrs, slog.String("business_rule", bre.Rule))
		case errors.As(err, &pe):
			attrs = append(attrs, slog.String("permission_action", pe.Action))
		}
	}
	attrs = append(attrs, slog.String("status", status))

	if requestID := RequestMetaFrom(ctx).RequestID; requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// ContextualLogger times one operation.
type ContextualLogger struct {
	logger    *ServiceLogger
	ctx       context.Context
	operation string
	userID    string
	startTime time.Time
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, userID string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		ctx:       ctx,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
	}
}

func (cl *ContextualLogger) LogResult(resourceID, resourceType string, err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.userID, resourceID, resourceType, time.Since(cl.startTime), err)
}

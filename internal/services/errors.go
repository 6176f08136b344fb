package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")
	ErrInvalidState     = errors.New("operation not allowed in current state")

	// Account errors
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountInactive      = errors.New("your account has been deactivated, please contact an administrator")
	ErrEmailNotVerified     = errors.New("please verify your email before logging in")
	ErrEmailAlreadyVerified = errors.New("email is already verified")
	ErrInvalidCode          = errors.New("invalid or expired code")
	ErrEmailTaken           = errors.New("a user with this email already exists")
	ErrUsernameTaken        = errors.New("username is already taken")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")

	// Question errors
	ErrQuestionNotFound = errors.New("question not found")

	// Quiz errors
	ErrQuizNotFound      = errors.New("quiz not found")
	ErrQuizNotActive     = errors.New("quiz is not active")
	ErrQuizNotOpen       = errors.New("quiz is not available at this time")
	ErrQuizNotAssigned   = errors.New("quiz is not assigned to this student")
	ErrQuizInvalidStatus = errors.New("invalid quiz status transition")

	// Attempt errors
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAccessDenied     = errors.New("access denied to attempt")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
	ErrAttemptTimeExceeded     = errors.New("time limit exceeded")
)

// ===== ERROR KINDS =====

// ErrorKind is the stable classification surfaced to clients.
type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "UNAUTHENTICATED"
	KindForbidden       ErrorKind = "FORBIDDEN"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindInvalidState    ErrorKind = "INVALID_STATE"
	KindConflict        ErrorKind = "CONFLICT"
	KindValidation      ErrorKind = "VALIDATION_ERROR"
	KindInternal        ErrorKind = "INTERNAL_ERROR"
)

var kindBySentinel = []struct {
	err  error
	kind ErrorKind
}{
	{ErrUnauthorized, KindUnauthenticated},
	{ErrInvalidCredentials, KindUnauthenticated},
	{ErrInvalidRefreshToken, KindUnauthenticated},

	{ErrForbidden, KindForbidden},
	{ErrAccountInactive, KindForbidden},
	{ErrEmailNotVerified, KindForbidden},
	{ErrQuizNotAssigned, KindForbidden},
	{ErrAttemptAccessDenied, KindForbidden},

	{ErrNotFound, KindNotFound},
	{ErrUserNotFound, KindNotFound},
	{ErrQuestionNotFound, KindNotFound},
	{ErrQuizNotFound, KindNotFound},
	{ErrAttemptNotFound, KindNotFound},

	{ErrInvalidState, KindInvalidState},
	{ErrQuizNotActive, KindInvalidState},
	{ErrQuizNotOpen, KindInvalidState},
	{ErrQuizInvalidStatus, KindInvalidState},
	{ErrAttemptAlreadySubmitted, KindInvalidState},
	{ErrAttemptTimeExceeded, KindInvalidState},

	{ErrConflict, KindConflict},
	{ErrEmailTaken, KindConflict},
	{ErrUsernameTaken, KindConflict},

	{ErrValidationFailed, KindValidation},
	{ErrEmailAlreadyVerified, KindValidation},
	{ErrInvalidCode, KindValidation},
	{ErrWrongCurrentPassword, KindValidation},
}

// KindOf classifies any error returned by a service.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var pe *PermissionError
	if errors.As(err, &pe) {
		return KindForbidden
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return KindValidation
	}
	var single *apperrors.ValidationError
	if errors.As(err, &single) {
		return KindValidation
	}
	var bre *BusinessRuleError
	if errors.As(err, &bre) {
		return KindInvalidState
	}

	for _, entry := range kindBySentinel {
		if errors.Is(err, entry.err) {
			return entry.kind
		}
	}

	if repositories.IsDuplicateKeyError(err) {
		return KindConflict
	}
	if repositories.IsNotFoundError(err) {
		return KindNotFound
	}
	return KindInternal
}

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

package errors

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrors_Error(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs.Add("title", "required", "is required", nil)
	assert.Equal(t, "validation failed: title is required", errs.Error())

	errs.Add("points", "points_range", "must be between 0 and 100", 150)
	assert.Equal(t, "validation failed (2 errors): title is required; points must be between 0 and 100", errs.Error())
}

func TestValidationErrors_ErrOrNil(t *testing.T) {
	var errs ValidationErrors
	assert.NoError(t, errs.ErrOrNil())
	assert.False(t, errs.Has("options"))

	errs.Add("options", "single_correct", "exactly one option must be marked correct", 2)
	err := fmt.Errorf("create question: %w", errs.ErrOrNil())

	var target ValidationErrors
	require.ErrorAs(t, err, &target)
	assert.True(t, target.Has("options"))
	assert.Equal(t, "single_correct", target[0].Rule)
	assert.Equal(t, 2, target[0].Value)
}

func TestFromValidator(t *testing.T) {
	type inviteRequest struct {
		Email string   `validate:"required,email"`
		Size  int      `validate:"max=100"`
		Sort  string   `validate:"oneof=title created_at"`
		IDs   []string `validate:"min=1"`
	}

	err := validator.New().Struct(inviteRequest{Email: "not-an-email", Size: 101, Sort: "score", IDs: []string{}})
	errs := FromValidator(err)

	require.Len(t, errs, 4)
	assert.Equal(t, ValidationError{Field: "Email", Rule: "email", Message: "must be a valid email address", Value: "not-an-email"}, errs[0])
	assert.Equal(t, "must be at most 100", errs[1].Message)
	assert.Equal(t, "must be one of: title, created_at", errs[2].Message)
	assert.Equal(t, "must be at least 1", errs[3].Message)

	assert.Nil(t, FromValidator(nil))
	assert.Nil(t, FromValidator(fmt.Errorf("boom")))
}

func TestValidationError_Single(t *testing.T) {
	err := NewValidationError("end_date", "must be after start_date", "2024-01-01")
	assert.Equal(t, "end_date must be after start_date", err.Error())
	assert.Empty(t, err.Rule)
}

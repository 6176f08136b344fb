package validator

import (
	"testing"

	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
	Role     string `json:"role" validate:"omitempty,user_role"`
	Status   string `json:"status" validate:"omitempty,quiz_status"`
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	err := v.Validate(signupRequest{Email: "a@b.co", Password: "Str0ng!pass", Role: "teacher", Status: "active"})
	assert.NoError(t, err)

	err = v.Validate(signupRequest{Email: "nope", Password: "weakpass", Role: "proctor", Status: "expired"})
	require.Error(t, err)

	var errs apperrors.ValidationErrors
	require.ErrorAs(t, err, &errs)
	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Rule
	}
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "strong_password", fields["password"])
	assert.Equal(t, "user_role", fields["role"])
	assert.Equal(t, "quiz_status", fields["status"])
}

func strPtr(s string) *string { return &s }

func TestQuestionValidator_ValidateQuestion(t *testing.T) {
	qv := NewQuestionValidator()

	tests := []struct {
		name     string
		question models.Question
		wantErr  bool
	}{
		{
			name: "valid multiple choice",
			question: models.Question{
				Title: "2 + 2", Type: models.MultipleChoice, Points: 5,
				Options: datatypes.JSONSlice[models.QuestionOption]{{Text: "3"}, {Text: "4", IsCorrect: true}},
			},
		},
		{
			name: "multiple choice with two correct options",
			question: models.Question{
				Title: "2 + 2", Type: models.MultipleChoice, Points: 5,
				Options: datatypes.JSONSlice[models.QuestionOption]{{Text: "4", IsCorrect: true}, {Text: "four", IsCorrect: true}},
			},
			wantErr: true,
		},
		{
			name: "multiple choice carrying a correct answer",
			question: models.Question{
				Title: "2 + 2", Type: models.MultipleChoice, Points: 5, CorrectAnswer: strPtr("4"),
				Options: datatypes.JSONSlice[models.QuestionOption]{{Text: "3"}, {Text: "4", IsCorrect: true}},
			},
			wantErr: true,
		},
		{
			name: "true false needs two options",
			question: models.Question{
				Title: "Sky is blue", Type: models.TrueFalse, Points: 1,
				Options: datatypes.JSONSlice[models.QuestionOption]{{Text: "True", IsCorrect: true}, {Text: "False"}, {Text: "Maybe"}},
			},
			wantErr: true,
		},
		{
			name: "true false with other labels",
			question: models.Question{
				Title: "Sky is blue", Type: models.TrueFalse, Points: 1,
				Options: datatypes.JSONSlice[models.QuestionOption]{{Text: "Yes", IsCorrect: true}, {Text: "No"}},
			},
			wantErr: true,
		},
		{
			name: "valid true false",
			question: models.Question{
				Title: "Sky is blue", Type: models.TrueFalse, Points: 1,
				Options: datatypes.JSONSlice[models.QuestionOption]{{Text: "True", IsCorrect: true}, {Text: "False"}},
			},
		},
		{
			name: "valid short answer",
			question: models.Question{
				Title: "Capital of France", Type: models.ShortAnswer, Points: 0, CorrectAnswer: strPtr("Paris"),
			},
		},
		{
			name: "short answer without answer",
			question: models.Question{
				Title: "Capital of France", Type: models.ShortAnswer, Points: 2, CorrectAnswer: strPtr("  "),
			},
			wantErr: true,
		},
		{
			name: "short answer with options",
			question: models.Question{
				Title: "Capital of France", Type: models.ShortAnswer, Points: 2, CorrectAnswer: strPtr("Paris"),
				Options: datatypes.JSONSlice[models.QuestionOption]{{Text: "Paris", IsCorrect: true}},
			},
			wantErr: true,
		},
		{
			name:     "negative points",
			question: models.Question{Title: "x", Type: models.ShortAnswer, Points: -1, CorrectAnswer: strPtr("y")},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := qv.ValidateQuestion(&tt.question)
			if tt.wantErr {
				var errs apperrors.ValidationErrors
				assert.ErrorAs(t, err, &errs)
				assert.NotEmpty(t, errs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package validator

import (
	"strings"

	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
	"github.com/SAP-F-2025/quiz-service/internal/models"
)

const (
	minChoiceOptions = 2
	maxChoiceOptions = 10
	maxPoints        = 100
)

// QuestionValidator enforces that a question carries exactly the correctness data its type needs.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion returns nil or a non-empty ValidationErrors.
func (v *QuestionValidator) ValidateQuestion(q *models.Question) error {
	var errs apperrors.ValidationErrors

	if strings.TrimSpace(q.Title) == "" {
		errs.Add("title", "required", "is required", nil)
	}
	if q.Points < 0 || q.Points > maxPoints {
		errs.Add("points", "points_range", "must be between 0 and 100", q.Points)
	}

	switch q.Type {
	case models.MultipleChoice:
		v.validateChoice(q, &errs)
	case models.TrueFalse:
		v.validateChoice(q, &errs)
		if len(q.Options) != 2 {
			errs.Add("options", "true_false_options", "true/false questions need exactly 2 options", len(q.Options))
		} else if !isTrueFalsePair(q.Options) {
			errs.Add("options", "true_false_options", "true/false options must be \"True\" and \"False\"", q.OptionTexts())
		}
	case models.ShortAnswer:
		v.validateShortAnswer(q, &errs)
	default:
		errs.Add("type", "question_type", "must be multiple_choice, true_false or short_answer", q.Type)
	}

	return errs.ErrOrNil()
}

func (v *QuestionValidator) validateChoice(q *models.Question, errs *apperrors.ValidationErrors) {
	if q.CorrectAnswer != nil {
		errs.Add("correct_answer", "excluded", "is only allowed for short answer questions", *q.CorrectAnswer)
	}
	if len(q.Options) < minChoiceOptions || len(q.Options) > maxChoiceOptions {
		errs.Add("options", "options_count", "must contain between 2 and 10 options", len(q.Options))
	}

	seen := make(map[string]bool, len(q.Options))
	correct := 0
	for _, opt := range q.Options {
		if strings.TrimSpace(opt.Text) == "" {
			errs.Add("options", "required", "option text cannot be empty", nil)
			continue
		}
		if seen[opt.Text] {
			errs.Add("options", "unique", "option text must be unique", opt.Text)
		}
		seen[opt.Text] = true
		if opt.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		errs.Add("options", "single_correct", "exactly one option must be marked correct", correct)
	}
}

func (v *QuestionValidator) validateShortAnswer(q *models.Question, errs *apperrors.ValidationErrors) {
	if len(q.Options) > 0 {
		errs.Add("options", "excluded", "are not allowed for short answer questions", len(q.Options))
	}
	if q.CorrectAnswer == nil || strings.TrimSpace(*q.CorrectAnswer) == "" {
		errs.Add("correct_answer", "required", "is required for short answer questions", nil)
	}
}

func isTrueFalsePair(options []models.QuestionOption) bool {
	texts := map[string]bool{}
	for _, opt := range options {
		texts[opt.Text] = true
	}
	return texts["True"] && texts["False"]
}

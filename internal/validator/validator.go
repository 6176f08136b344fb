package validator

import (
	"reflect"
	"strings"
	"unicode"

	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct-tag validation with question invariants.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New returns a Validator with the quiz domain rules registered.
func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// Validate checks struct tags and returns ValidationErrors on failure.
func (v *Validator) Validate(s interface{}) error {
	err := v.structValidator.Struct(s)
	if err == nil {
		return nil
	}

	if errs := apperrors.FromValidator(err); len(errs) > 0 {
		return errs
	}
	return err
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

func oneOf[T ~string](values ...T) validator.Func {
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[string(v)] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := allowed[fl.Field().String()]
		return ok
	}
}

var customRules = map[string]validator.Func{
	"question_type":    oneOf(models.MultipleChoice, models.TrueFalse, models.ShortAnswer),
	"difficulty_level": oneOf(models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard),
	"user_role":        validateUserRole,
	"quiz_status":      oneOf(models.QuizDraft, models.QuizActive, models.QuizArchived),
	"strong_password":  validateStrongPassword,
}

func registerCustomValidators(validate *validator.Validate) {
	for tag, fn := range customRules {
		// Only fails on an empty tag or nil func.
		_ = validate.RegisterValidation(tag, fn)
	}

	// Report json names in errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateUserRole(fl validator.FieldLevel) bool {
	_, err := models.ParseRole(fl.Field().String())
	return err == nil
}

// validateStrongPassword requires 8+ characters with upper, lower, digit and a symbol.
func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

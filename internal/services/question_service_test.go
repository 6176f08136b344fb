package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newQuestionService(env *testEnv) QuestionService {
	return NewQuestionService(env.repo, env.bank, env.audit, env.validator, env.logger)
}

func TestQuestionService_Create(t *testing.T) {
	tests := []struct {
		name     string
		req      *CreateQuestionRequest
		caller   auth.Identity
		wantKind ErrorKind
	}{
		{
			name: "multiple choice",
			req: &CreateQuestionRequest{
				Title:      "2 + 2 = ?",
				Type:       models.MultipleChoice,
				Difficulty: models.DifficultyEasy,
				Subject:    "Mathematics",
				Grade:      "Grade 1",
				Options:    []models.QuestionOption{{Text: "4", IsCorrect: true}, {Text: "5"}},
				Points:     5,
			},
			caller: teacherIdentity,
		},
		{
			name: "short answer",
			req: &CreateQuestionRequest{
				Title:         "Capital of France",
				Type:          models.ShortAnswer,
				Difficulty:    models.DifficultyMedium,
				Subject:       "Geography",
				Grade:         "Grade 4",
				CorrectAnswer: stringPtr("Paris"),
				Points:        10,
			},
			caller: adminIdentity,
		},
		{
			name: "two correct options",
			req: &CreateQuestionRequest{
				Title:      "Pick one",
				Type:       models.MultipleChoice,
				Difficulty: models.DifficultyEasy,
				Subject:    "Mathematics",
				Grade:      "Grade 1",
				Options:    []models.QuestionOption{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}},
				Points:     5,
			},
			caller:   teacherIdentity,
			wantKind: KindValidation,
		},
		{
			name: "short answer without an answer",
			req: &CreateQuestionRequest{
				Title:      "Capital of France",
				Type:       models.ShortAnswer,
				Difficulty: models.DifficultyMedium,
				Subject:    "Geography",
				Grade:      "Grade 4",
				Points:     10,
			},
			caller:   teacherIdentity,
			wantKind: KindValidation,
		},
		{
			name:     "students cannot author",
			req:      &CreateQuestionRequest{Title: "x"},
			caller:   studentIdentity,
			wantKind: KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.wantKind == "" {
				env.repo.Questions.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(q *models.Question) bool {
					return q.CreatedBy == tt.caller.SubjectID && q.IsActive && q.ID != ""
				})).Return(nil)
			}

			question, err := newQuestionService(env).Create(context.Background(), tt.req, tt.caller)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				env.repo.Questions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.req.Title, question.Title)
			env.repo.AssertExpectations(t)
		})
	}
}

func TestQuestionService_Delete(t *testing.T) {
	tests := []struct {
		name       string
		caller     auth.Identity
		referenced bool
		wantSoft   bool
		wantKind   ErrorKind
	}{
		{name: "unused question is removed", caller: teacherIdentity},
		{name: "question in a quiz is deactivated", caller: teacherIdentity, referenced: true, wantSoft: true},
		{name: "admin may delete", caller: adminIdentity},
		{name: "other teacher is forbidden", caller: otherTeacher, wantKind: KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			require.NoError(t, env.redis.Set("quiz:bank:quiz-1", "{}"))
			env.repo.Questions.On("GetByID", mock.Anything, mock.Anything, "q1").Return(choiceQuestion("q1", 5, "4", "3"), nil)
			if tt.wantKind == "" {
				env.repo.Questions.On("IsReferencedByQuiz", mock.Anything, mock.Anything, "q1").Return(tt.referenced, nil)
				if tt.referenced {
					env.repo.Questions.On("Deactivate", mock.Anything, mock.Anything, "q1").Return(nil)
				} else {
					env.repo.Questions.On("Delete", mock.Anything, mock.Anything, "q1").Return(nil)
				}
			}

			outcome, err := newQuestionService(env).Delete(context.Background(), "q1", tt.caller)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSoft, outcome.SoftDeleted)
			assert.Equal(t, !tt.wantSoft, env.redis.Exists("quiz:bank:quiz-1"))
			env.repo.AssertExpectations(t)
		})
	}
}

func TestQuestionService_UpdateSwitchesRepresentation(t *testing.T) {
	env := newTestEnv(t)
	env.repo.Questions.On("GetByID", mock.Anything, mock.Anything, "q1").Return(choiceQuestion("q1", 5, "4", "3"), nil)
	env.repo.Questions.On("Update", mock.Anything, mock.Anything, mock.MatchedBy(func(q *models.Question) bool {
		return q.Type == models.ShortAnswer && len(q.Options) == 0 && q.CorrectAnswer != nil && *q.CorrectAnswer == "four"
	})).Return(nil)

	kind := models.ShortAnswer
	question, err := newQuestionService(env).Update(context.Background(), "q1", &UpdateQuestionRequest{
		Type:          &kind,
		CorrectAnswer: stringPtr("four"),
	}, teacherIdentity)
	require.NoError(t, err)
	assert.Equal(t, models.ShortAnswer, question.Type)
	env.repo.AssertExpectations(t)
}

func TestQuestionService_UpdateByNonOwner(t *testing.T) {
	env := newTestEnv(t)
	env.repo.Questions.On("GetByID", mock.Anything, mock.Anything, "q1").Return(choiceQuestion("q1", 5, "4", "3"), nil)

	_, err := newQuestionService(env).Update(context.Background(), "q1", &UpdateQuestionRequest{Title: stringPtr("new")}, otherTeacher)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
	env.repo.Questions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestQuestionService_ListScopesTeachers(t *testing.T) {
	env := newTestEnv(t)
	env.repo.Questions.On("List", mock.Anything, mock.Anything, mock.MatchedBy(func(f repositories.QuestionFilters) bool {
		return f.CreatedBy != nil && *f.CreatedBy == "teacher-1"
	})).Return([]*models.Question{choiceQuestion("q1", 5, "4", "3")}, int64(1), nil).Once()
	env.repo.Questions.On("List", mock.Anything, mock.Anything, mock.MatchedBy(func(f repositories.QuestionFilters) bool {
		return f.CreatedBy == nil
	})).Return([]*models.Question{}, int64(0), nil).Once()

	svc := newQuestionService(env)
	mine, err := svc.List(context.Background(), repositories.QuestionFilters{}, teacherIdentity)
	require.NoError(t, err)
	assert.Len(t, mine.Questions, 1)
	assert.Equal(t, int64(1), mine.Pagination.Total)

	_, err = svc.List(context.Background(), repositories.QuestionFilters{}, adminIdentity)
	require.NoError(t, err)
	env.repo.AssertExpectations(t)
}

func TestQuestionService_GetNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.repo.Questions.On("GetByID", mock.Anything, mock.Anything, "nope").Return(nil, gormNotFound())

	_, err := newQuestionService(env).GetByID(context.Background(), "nope", teacherIdentity)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

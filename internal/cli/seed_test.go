package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/mocks"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const seedYAML = `
users:
  - email: Teacher@School.test
    username: mrsmith
    first_name: John
    last_name: Smith
    role: teacher
    password: Secret123!
questions:
  - title: Capital of France?
    type: multiple_choice
    difficulty: easy
    subject: Geography
    grade: "7"
    points: 5
    created_by: teacher@school.test
    options:
      - text: Paris
        is_correct: true
      - text: Rome
        is_correct: false
  - title: Largest planet?
    type: short_answer
    subject: Science
    grade: "7"
    points: 10
    created_by: teacher@school.test
    correct_answer: Jupiter
`

func TestLoadSeedFile(t *testing.T) {
	seed, err := loadSeedFile(strings.NewReader(seedYAML))
	require.NoError(t, err)

	require.Len(t, seed.Users, 1)
	assert.Equal(t, "teacher", seed.Users[0].Role)
	require.Len(t, seed.Questions, 2)
	assert.Equal(t, models.MultipleChoice, seed.Questions[0].Type)
	assert.True(t, seed.Questions[0].Options[0].IsCorrect)
	require.NotNil(t, seed.Questions[1].CorrectAnswer)
	assert.Equal(t, "Jupiter", *seed.Questions[1].CorrectAnswer)

	_, err = loadSeedFile(strings.NewReader("users:\n  - emial: typo@school.test\n"))
	assert.Error(t, err)
}

func TestApplySeed(t *testing.T) {
	ctx := context.Background()
	seed, err := loadSeedFile(strings.NewReader(seedYAML))
	require.NoError(t, err)

	t.Run("creates missing records", func(t *testing.T) {
		repo := mocks.NewRepository()
		repo.Users.On("GetByEmail", mock.Anything, mock.Anything, "teacher@school.test").Return(nil, gorm.ErrRecordNotFound).Once()
		repo.Users.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "teacher@school.test" && u.Role == models.RoleTeacher &&
				u.IsActive && u.IsVerified && auth.CheckPassword(u.PasswordHash, "Secret123!")
		})).Return(nil).Once()
		repo.Questions.On("List", mock.Anything, mock.Anything, mock.Anything).Return(nil, int64(0), nil).Twice()
		repo.Questions.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(q *models.Question) bool {
			return q.Title == "Capital of France?" && q.IsActive && len(q.Options) == 2
		})).Return(nil).Once()
		repo.Questions.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(q *models.Question) bool {
			return q.Title == "Largest planet?" && q.Difficulty == models.DifficultyMedium
		})).Return(nil).Once()

		report, err := applySeed(ctx, repo, validator.New(), seed)

		require.NoError(t, err)
		assert.Equal(t, &seedReport{UsersCreated: 1, QuestionsCreated: 2}, report)
		repo.AssertExpectations(t)
	})

	t.Run("second run skips everything", func(t *testing.T) {
		repo := mocks.NewRepository()
		teacher := &models.User{ID: "teacher-1", Email: "teacher@school.test", Role: models.RoleTeacher}
		repo.Users.On("GetByEmail", mock.Anything, mock.Anything, "teacher@school.test").Return(teacher, nil).Once()
		repo.Questions.On("List", mock.Anything, mock.Anything, mock.Anything).Return([]*models.Question{
			{ID: "q1", Title: "Capital of France?", CreatedBy: "teacher-1"},
			{ID: "q2", Title: "Largest planet?", CreatedBy: "teacher-1"},
		}, int64(2), nil).Twice()

		report, err := applySeed(ctx, repo, validator.New(), seed)

		require.NoError(t, err)
		assert.Equal(t, &seedReport{UsersSkipped: 1, QuestionsSkipped: 2}, report)
		repo.Users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		repo.Questions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid question stops the seed", func(t *testing.T) {
		bad := &SeedFile{Questions: []SeedQuestion{{
			Title:     "No answer",
			Type:      models.ShortAnswer,
			Points:    5,
			CreatedBy: "teacher@school.test",
		}}}
		repo := mocks.NewRepository()
		repo.Users.On("GetByEmail", mock.Anything, mock.Anything, "teacher@school.test").
			Return(&models.User{ID: "teacher-1"}, nil).Once()
		repo.Questions.On("List", mock.Anything, mock.Anything, mock.Anything).Return(nil, int64(0), nil).Once()

		_, err := applySeed(ctx, repo, validator.New(), bad)

		assert.Error(t, err)
		repo.Questions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

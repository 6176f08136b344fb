package services

import (
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var attemptClock = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newAttemptService(env *testEnv, now time.Time) AttemptService {
	return NewAttemptService(env.repo, env.bank, env.notifier, env.audit, env.validator, env.logger,
		WithClock(func() time.Time { return now }))
}

func attemptQuiz() *models.Quiz {
	quiz := quizWith("quiz-1",
		choiceQuestion("q1", 5, "4", "3", "5"),
		shortAnswerQuestion("q2", 10, "Paris"),
	)
	quiz.TimeLimit = intPtr(30)
	return quiz
}

func openAttempt(startedAt time.Time) *models.QuizAttempt {
	return &models.QuizAttempt{
		ID:          "attempt-1",
		QuizID:      "quiz-1",
		StudentID:   studentIdentity.SubjectID,
		QuestionIDs: []string{"q1", "q2"},
		Answers:     []models.AttemptAnswer{},
		TotalPoints: 15,
		Status:      models.AttemptInProgress,
		StartedAt:   startedAt,
	}
}

func TestAttemptService_StartPreconditions(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(env *testEnv, quiz *models.Quiz)
		wantErr    error
	}{
		{
			name: "quiz missing",
			setupMocks: func(env *testEnv, quiz *models.Quiz) {
				env.repo.Quizzes.On("GetByID", mock.Anything, mock.Anything, "quiz-1").Return(nil, gormNotFound())
			},
			wantErr: ErrQuizNotFound,
		},
		{
			name: "not assigned",
			setupMocks: func(env *testEnv, quiz *models.Quiz) {
				env.repo.Quizzes.On("GetByID", mock.Anything, mock.Anything, "quiz-1").Return(quiz, nil)
				env.repo.Quizzes.On("IsAssigned", mock.Anything, mock.Anything, "quiz-1", "student-1").Return(false, nil)
			},
			wantErr: ErrQuizNotAssigned,
		},
		{
			name: "draft quiz",
			setupMocks: func(env *testEnv, quiz *models.Quiz) {
				quiz.Status = models.QuizDraft
				env.repo.Quizzes.On("GetByID", mock.Anything, mock.Anything, "quiz-1").Return(quiz, nil)
				env.repo.Quizzes.On("IsAssigned", mock.Anything, mock.Anything, "quiz-1", "student-1").Return(true, nil)
			},
			wantErr: ErrQuizNotActive,
		},
		{
			name: "window closed",
			setupMocks: func(env *testEnv, quiz *models.Quiz) {
				quiz.EndDate = timePtr(attemptClock.Add(-time.Hour))
				env.repo.Quizzes.On("GetByID", mock.Anything, mock.Anything, "quiz-1").Return(quiz, nil)
				env.repo.Quizzes.On("IsAssigned", mock.Anything, mock.Anything, "quiz-1", "student-1").Return(true, nil)
			},
			wantErr: ErrQuizNotOpen,
		},
		{
			name: "window not yet open",
			setupMocks: func(env *testEnv, quiz *models.Quiz) {
				quiz.StartDate = timePtr(attemptClock.Add(time.Hour))
				env.repo.Quizzes.On("GetByID", mock.Anything, mock.Anything, "quiz-1").Return(quiz, nil)
				env.repo.Quizzes.On("IsAssigned", mock.Anything, mock.Anything, "quiz-1", "student-1").Return(true, nil)
			},
			wantErr: ErrQuizNotOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			tt.setupMocks(env, attemptQuiz())

			resp, err := newAttemptService(env, attemptClock).Start(context.Background(), "quiz-1", "student-1")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resp)
			env.repo.Attempts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAttemptService_StartCreatesAttempt(t *testing.T) {
	env := newTestEnv(t)
	quiz := attemptQuiz()

	env.repo.Quizzes.On("GetByID", mock.Anything, mock.Anything, "quiz-1").Return(quiz, nil)
	env.repo.Quizzes.On("IsAssigned", mock.Anything, mock.Anything, "quiz-1", "student-1").Return(true, nil)
	env.repo.Attempts.On("GetActiveAttempt", mock.Anything, mock.Anything, "student-1", "quiz-1").Return(nil, nil)
	env.repo.Quizzes.On("GetWithQuestions", mock.Anything, mock.Anything, "quiz-1").Return(quiz, nil).Once()
	env.repo.Attempts.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(a *models.QuizAttempt) bool {
		return a.Status == models.AttemptInProgress &&
			a.StartedAt.Equal(attemptClock) &&
			a.TotalPoints == 15 &&
			len(a.QuestionIDs) == 2 && a.QuestionIDs[0] == "q1" && a.QuestionIDs[1] == "q2"
	})).Return(nil)

	resp, err := newAttemptService(env, attemptClock).Start(context.Background(), "quiz-1", "student-1")
	require.NoError(t, err)
	assert.False(t, resp.Resumed)
	assert.Equal(t, 15, resp.TotalPoints)
	require.Len(t, resp.Questions, 2)
	assert.Equal(t, []string{"4", "3", "5"}, resp.Questions[0].Options)
	assert.Empty(t, resp.Questions[1].Options)
	env.repo.AssertExpectations(t)
}

func TestAttemptService_StartResumesOpenAttempt(t *testing.T) {
	env := newTestEnv(t)
	quiz := attemptQuiz()
	open := openAttempt(attemptClock.Add(-10 * time.Minute))
	open.QuestionIDs = []string{"q2"}

	env.repo.Quizzes.On("GetByID", mock.Anything, mock.Anything, "quiz-1").Return(quiz, nil)
	env.repo.Quizzes.On("IsAssigned", mock.Anything, mock.Anything, "quiz-1", "student-1").Return(true, nil)
	env.repo.Attempts.On("GetActiveAttempt", mock.Anything, mock.Anything, "student-1", "quiz-1").Return(open, nil)
	env.repo.Quizzes.On("GetWithQuestions", mock.Anything, mock.Anything, "quiz-1").Return(quiz, nil)

	resp, err := newAttemptService(env, attemptClock).Start(context.Background(), "quiz-1", "student-1")
	require.NoError(t, err)
	assert.True(t, resp.Resumed)
	assert.Equal(t, "attempt-1", resp.AttemptID)
	assert.Equal(t, open.StartedAt, resp.StartedAt)
	require.Len(t, resp.Questions, 2)
	assert.Equal(t, "q1", resp.Questions[0].ID)
	assert.Equal(t, "q2", resp.Questions[1].ID)
	assert.Equal(t, []string{"4", "3", "5"}, resp.Questions[0].Options)
	env.repo.Attempts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptService_StartLosesRace(t *testing.T) {
	env := newTestEnv(t)
	quiz := attemptQuiz()
	winner := openAttempt(attemptClock)
	winner.ID = "attempt-winner"

	env.repo.Quizzes.On("GetByID", mock.Anything, mock.Anything, "quiz-1").Return(quiz, nil)
	env.repo.Quizzes.On("IsAssigned", mock.Anything, mock.Anything, "quiz-1", "student-1").Return(true, nil)
	env.repo.Attempts.On("GetActiveAttempt", mock.Anything, mock.Anything, "student-1", "quiz-1").Return(nil, nil).Once()
	env.repo.Attempts.On("GetActiveAttempt", mock.Anything, mock.Anything, "student-1", "quiz-1").Return(winner, nil).Once()
	env.repo.Quizzes.On("GetWithQuestions", mock.Anything, mock.Anything, "quiz-1").Return(quiz, nil)
	env.repo.Attempts.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)

	resp, err := newAttemptService(env, attemptClock).Start(context.Background(), "quiz-1", "student-1")
	require.NoError(t, err)
	assert.True(t, resp.Resumed)
	assert.Equal(t, "attempt-winner", resp.AttemptID)
}

func TestAttemptService_StartSamplesRandomizedQuiz(t *testing.T) {
	env := newTestEnv(t)
	quiz := attemptQuiz()
	quiz.IsRandomized = true
	quiz.QuestionsPerAttempt = intPtr(1)

	env.repo.Quizzes.On("GetByID", mock.Anything, mock.Anything, "quiz-1").Return(quiz, nil)
	env.repo.Quizzes.On("IsAssigned", mock.Anything, mock.Anything, "quiz-1", "student-1").Return(true, nil)
	env.repo.Attempts.On("GetActiveAttempt", mock.Anything, mock.Anything, "student-1", "quiz-1").Return(nil, nil)
	env.repo.Quizzes.On("GetWithQuestions", mock.Anything, mock.Anything, "quiz-1").Return(quiz, nil)
	env.repo.Attempts.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(a *models.QuizAttempt) bool {
		return len(a.QuestionIDs) == 1 && a.TotalPoints == 15
	})).Return(nil)

	resp, err := newAttemptService(env, attemptClock).Start(context.Background(), "quiz-1", "student-1")
	require.NoError(t, err)
	assert.Len(t, resp.Questions, 1)
}

func TestAttemptService_Submit(t *testing.T) {
	answers := []SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "4"},
		{QuestionID: "q2", SelectedAnswer: "london"},
	}

	tests := []struct {
		name      string
		elapsed   time.Duration
		studentID string
		status    models.AttemptStatus
		completed bool
		wantErr   error
		wantLate  bool
	}{
		{name: "on time", elapsed: 29 * time.Minute, studentID: "student-1", status: models.AttemptInProgress, completed: true},
		{name: "late but accepted", elapsed: 35 * time.Minute, studentID: "student-1", status: models.AttemptInProgress, completed: true, wantLate: true},
		{name: "past hard deadline", elapsed: 46 * time.Minute, studentID: "student-1", status: models.AttemptInProgress, wantErr: ErrAttemptTimeExceeded},
		{name: "another student's attempt", elapsed: time.Minute, studentID: "student-2", status: models.AttemptInProgress, wantErr: ErrAttemptAccessDenied},
		{name: "already completed", elapsed: time.Minute, studentID: "student-1", status: models.AttemptCompleted, wantErr: ErrAttemptAlreadySubmitted},
		{name: "concurrent submit won elsewhere", elapsed: time.Minute, studentID: "student-1", status: models.AttemptInProgress, completed: false, wantErr: ErrAttemptAlreadySubmitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			quiz := attemptQuiz()
			attempt := openAttempt(attemptClock.Add(-tt.elapsed))
			attempt.Status = tt.status
			withQuiz := *attempt
			withQuiz.Quiz = quiz

			env.repo.Attempts.On("GetByID", mock.Anything, mock.Anything, "attempt-1").Return(attempt, nil)
			env.repo.Attempts.On("GetWithQuiz", mock.Anything, mock.Anything, "attempt-1").Return(&withQuiz, nil).Maybe()
			env.repo.Attempts.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return(tt.completed, nil).Maybe()

			result, err := newAttemptService(env, attemptClock).Submit(context.Background(), "attempt-1", tt.studentID, answers)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				assert.Empty(t, env.publisher.Published())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, models.AttemptCompleted, result.Status)
			assert.Equal(t, 5, result.Score)
			assert.Equal(t, 15, result.TotalPoints)
			assert.Equal(t, 33.33, result.Percentage)
			assert.False(t, result.IsPassed)
			assert.Equal(t, tt.wantLate, result.IsLateSubmission)
			assert.Equal(t, int(tt.elapsed.Seconds()), result.TimeSpent)
			require.Len(t, result.Answers, 2)
			assert.True(t, result.Answers[0].IsCorrect)
			assert.Equal(t, "Paris", result.Answers[1].CorrectAnswer)

			published := env.publisher.Published()
			require.Len(t, published, 1)
			assert.Equal(t, events.EventAttemptSubmitted, published[0].Type)
		})
	}
}

func TestAttemptService_SubmitValidatesAnswers(t *testing.T) {
	env := newTestEnv(t)

	_, err := newAttemptService(env, attemptClock).Submit(context.Background(), "attempt-1", "student-1",
		[]SubmittedAnswer{{QuestionID: "", SelectedAnswer: "x"}})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	env.repo.Attempts.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptService_SubmitRejectsRepeatedQuestion(t *testing.T) {
	env := newTestEnv(t)

	_, err := newAttemptService(env, attemptClock).Submit(context.Background(), "attempt-1", "student-1", []SubmittedAnswer{
		{QuestionID: "q2", SelectedAnswer: "Paris"},
		{QuestionID: "q2", SelectedAnswer: "Paris"},
	})

	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.True(t, errs.Has("answers"))
	env.repo.Attempts.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptService_SubmitPassDecisionIsUnrounded(t *testing.T) {
	env := newTestEnv(t)
	quiz := quizWith("quiz-1",
		choiceQuestion("q1", 1, "4", "3"),
		shortAnswerQuestion("q2", 2, "Paris"),
	)
	quiz.PassingScore = 66.67
	attempt := openAttempt(attemptClock.Add(-time.Minute))
	attempt.TotalPoints = 3
	withQuiz := *attempt
	withQuiz.Quiz = quiz

	env.repo.Attempts.On("GetByID", mock.Anything, mock.Anything, "attempt-1").Return(attempt, nil)
	env.repo.Attempts.On("GetWithQuiz", mock.Anything, mock.Anything, "attempt-1").Return(&withQuiz, nil)
	env.repo.Attempts.On("Complete", mock.Anything, mock.Anything, mock.MatchedBy(func(a *models.QuizAttempt) bool {
		return a.Score == 2 && !a.IsPassed
	})).Return(true, nil)

	result, err := newAttemptService(env, attemptClock).Submit(context.Background(), "attempt-1", "student-1", []SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: "3"},
		{QuestionID: "q2", SelectedAnswer: "Paris"},
	})

	require.NoError(t, err)
	assert.Equal(t, 66.67, result.Percentage)
	assert.False(t, result.IsPassed)
	env.repo.AssertExpectations(t)
}

func TestAttemptService_GetResultHidesReviewUntilCompleted(t *testing.T) {
	env := newTestEnv(t)
	attempt := openAttempt(attemptClock)
	attempt.Quiz = attemptQuiz()
	env.repo.Attempts.On("GetWithQuiz", mock.Anything, mock.Anything, "attempt-1").Return(attempt, nil)

	svc := newAttemptService(env, attemptClock)
	result, err := svc.GetResult(context.Background(), "attempt-1", "student-1")
	require.NoError(t, err)
	assert.Equal(t, models.AttemptInProgress, result.Status)
	assert.Empty(t, result.Answers)

	_, err = svc.GetResult(context.Background(), "attempt-1", "student-2")
	assert.ErrorIs(t, err, ErrAttemptAccessDenied)
}

func TestAttemptService_GetStudentQuizzes(t *testing.T) {
	env := newTestEnv(t)
	completedAt := attemptClock
	last := openAttempt(attemptClock.Add(-time.Hour))
	last.Status = models.AttemptCompleted
	last.CompletedAt = &completedAt
	last.Score = 12
	last.Percentage = 80

	env.repo.Quizzes.On("GetAssignedActiveQuizzes", mock.Anything, mock.Anything, "student-1").
		Return([]*models.Quiz{attemptQuiz(), quizWith("quiz-2")}, nil)
	env.repo.Attempts.On("GetStudentQuizStats", mock.Anything, mock.Anything, "student-1", []string{"quiz-1", "quiz-2"}).
		Return(map[string]*repositories.StudentQuizStats{"quiz-1": {AttemptCount: 2, LastAttempt: last}}, nil)

	items, err := newAttemptService(env, attemptClock).GetStudentQuizzes(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].AttemptCount)
	require.NotNil(t, items[0].LastAttempt)
	assert.Equal(t, 80.0, items[0].LastAttempt.Percentage)
	assert.Zero(t, items[1].AttemptCount)
	assert.Nil(t, items[1].LastAttempt)
}

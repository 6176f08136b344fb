package services

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/mocks"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type testEnv struct {
	repo      *mocks.Repository
	publisher *events.MemoryPublisher
	bank      *cache.QuizBankCache
	redis     *miniredis.Miniredis
	logger    *slog.Logger
	validator *validator.Validator
	audit     AuditService
	notifier  NotificationEventService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := mocks.NewRepository()
	repo.Audits.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	publisher := events.NewMemoryPublisher(logger)
	return &testEnv{
		repo:      repo,
		publisher: publisher,
		bank:      cache.NewQuizBankCache(cache.NewRedisCache(client, logger), time.Minute, logger),
		redis:     mr,
		logger:    logger,
		validator: validator.New(),
		audit:     NewAuditService(repo, logger),
		notifier:  NewNotificationEventService(publisher, logger),
	}
}

var (
	studentIdentity = auth.Identity{SubjectID: "student-1", Role: models.RoleStudent}
	teacherIdentity = auth.Identity{SubjectID: "teacher-1", Role: models.RoleTeacher}
	otherTeacher    = auth.Identity{SubjectID: "teacher-2", Role: models.RoleTeacher}
	adminIdentity   = auth.Identity{SubjectID: "admin-1", Role: models.RoleAdmin}
)

func stringPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func choiceQuestion(id string, points int, correct string, others ...string) *models.Question {
	options := []models.QuestionOption{{Text: correct, IsCorrect: true}}
	for _, o := range others {
		options = append(options, models.QuestionOption{Text: o})
	}
	return &models.Question{
		ID:         id,
		Title:      "Question " + id,
		Type:       models.MultipleChoice,
		Difficulty: models.DifficultyMedium,
		Subject:    "Mathematics",
		Grade:      "Grade 3",
		Options:    options,
		Points:     points,
		IsActive:   true,
		CreatedBy:  teacherIdentity.SubjectID,
	}
}

func shortAnswerQuestion(id string, points int, answer string) *models.Question {
	return &models.Question{
		ID:            id,
		Title:         "Question " + id,
		Type:          models.ShortAnswer,
		Difficulty:    models.DifficultyEasy,
		Subject:       "English",
		Grade:         "Grade 3",
		CorrectAnswer: stringPtr(answer),
		Points:        points,
		IsActive:      true,
		CreatedBy:     teacherIdentity.SubjectID,
	}
}

// quizWith builds an active quiz owned by teacherIdentity whose total is the sum of its questions.
func quizWith(id string, questions ...*models.Question) *models.Quiz {
	quiz := &models.Quiz{
		ID:           id,
		Title:        "Quiz " + id,
		Subject:      "Mathematics",
		Grade:        "Grade 3",
		PassingScore: 60,
		Status:       models.QuizActive,
		CreatedBy:    teacherIdentity.SubjectID,
	}
	for i, q := range questions {
		quiz.Questions = append(quiz.Questions, models.QuizQuestion{QuizID: id, QuestionID: q.ID, Position: i, Question: q})
		quiz.TotalPoints += q.Points
	}
	return quiz
}

func timePtr(t time.Time) *time.Time { return &t }

func gormNotFound() error { return fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound) }

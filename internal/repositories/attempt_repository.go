package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	// Create fails with gorm.ErrDuplicatedKey when the student already has an open attempt at the quiz.
	Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.QuizAttempt, error)
	// GetWithQuiz resolves the parent quiz and its question bank, even when the quiz is soft-deleted.
	GetWithQuiz(ctx context.Context, tx *gorm.DB, id string) (*models.QuizAttempt, error)
	// GetActiveAttempt returns nil, nil when no attempt is in progress.
	GetActiveAttempt(ctx context.Context, tx *gorm.DB, studentID, quizID string) (*models.QuizAttempt, error)

	// Complete persists the graded attempt only if it is still in progress.
	// It reports false when another submission already completed it.
	Complete(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) (bool, error)

	ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters AttemptFilters) ([]*models.QuizAttempt, int64, error)
	ListByQuiz(ctx context.Context, tx *gorm.DB, quizID string, filters AttemptFilters) ([]*models.QuizAttempt, int64, error)
	// GetCompletedByStudent returns every completed attempt with its quiz, oldest first.
	GetCompletedByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters AttemptFilters) ([]*models.QuizAttempt, error)

	HasAttempts(ctx context.Context, tx *gorm.DB, quizID string) (bool, error)
	GetStudentQuizStats(ctx context.Context, tx *gorm.DB, studentID string, quizIDs []string) (map[string]*StudentQuizStats, error)
	GetCreatorStats(ctx context.Context, tx *gorm.DB, creatorID string) (*SubmissionStats, error)
}

package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

type QuizRepository interface {
	// Create inserts the quiz together with its question entries.
	Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error)
	// GetWithQuestions returns the quiz with its full question bank resolved.
	GetWithQuestions(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error)
	// GetWithDetails additionally resolves assigned students and the creator.
	GetWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error)
	Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error
	ReplaceQuestions(ctx context.Context, tx *gorm.DB, quizID string, entries []models.QuizQuestion) error
	// Archive soft-deletes the quiz and forces its status to archived.
	Archive(ctx context.Context, tx *gorm.DB, id string) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	List(ctx context.Context, tx *gorm.DB, filters QuizFilters) ([]*models.Quiz, int64, error)

	// Assignment
	IsAssigned(ctx context.Context, tx *gorm.DB, quizID, studentID string) (bool, error)
	GetAssignedStudentIDs(ctx context.Context, tx *gorm.DB, quizID string) ([]string, error)
	// AssignStudents inserts assignments that do not exist yet and returns the ids actually added.
	AssignStudents(ctx context.Context, tx *gorm.DB, quizID string, studentIDs []string, assignedAt time.Time) ([]string, error)
	UnassignStudents(ctx context.Context, tx *gorm.DB, quizID string, studentIDs []string) (int64, error)
	GetAssignedActiveQuizzes(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.Quiz, error)

	// Creator statistics
	CountByCreator(ctx context.Context, tx *gorm.DB, creatorID string) (int64, error)
	CountStudentsByCreator(ctx context.Context, tx *gorm.DB, creatorID string) (int64, error)
	GetStudentsByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters UserFilters) ([]*models.User, int64, error)
}

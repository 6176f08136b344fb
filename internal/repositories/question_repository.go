package repositories

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Deactivate(ctx context.Context, tx *gorm.DB, id string) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)

	// IsReferencedByQuiz reports whether any quiz, including soft-deleted ones, lists the question.
	IsReferencedByQuiz(ctx context.Context, tx *gorm.DB, id string) (bool, error)
	CountByCreator(ctx context.Context, tx *gorm.DB, creatorID string) (int64, error)
}

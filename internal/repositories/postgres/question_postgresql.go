package postgres

import (
	"context"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuestionPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	return q.helpers.GetDB(ctx, tx).Omit(clause.Associations).Create(question).Error
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error) {
	var question models.Question
	if err := q.helpers.GetDB(ctx, tx).First(&question, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Question, error) {
	var questions []*models.Question
	if len(ids) == 0 {
		return questions, nil
	}
	if err := q.helpers.GetDB(ctx, tx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	return q.helpers.GetDB(ctx, tx).Omit(clause.Associations).Save(question).Error
}

func (q *QuestionPostgreSQL) Deactivate(ctx context.Context, tx *gorm.DB, id string) error {
	return q.helpers.GetDB(ctx, tx).Model(&models.Question{}).Where("id = ?", id).Update("is_active", false).Error
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	return q.helpers.GetDB(ctx, tx).Delete(&models.Question{}, "id = ?", id).Error
}

func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	var questions []*models.Question
	var total int64

	query := q.applyFilters(q.helpers.GetDB(ctx, tx).Model(&models.Question{}), filters)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset,
		map[string]string{"created_at": "created_at", "title": "title", "points": "points", "difficulty": "difficulty"}, "created_at")
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

func (q *QuestionPostgreSQL) IsReferencedByQuiz(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	var count int64
	if err := q.helpers.GetDB(ctx, tx).Model(&models.QuizQuestion{}).
		Where("question_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (q *QuestionPostgreSQL) CountByCreator(ctx context.Context, tx *gorm.DB, creatorID string) (int64, error) {
	var count int64
	err := q.helpers.GetDB(ctx, tx).Model(&models.Question{}).Where("created_by = ?", creatorID).Count(&count).Error
	return count, err
}

func (q *QuestionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.Subject != "" {
		query = query.Where("subject = ?", filters.Subject)
	}
	if filters.Grade != "" {
		query = query.Where("grade = ?", filters.Grade)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if strings.TrimSpace(filters.Search) != "" {
		query = query.Where("title ILIKE ?", containsPattern(filters.Search))
	}
	return query
}

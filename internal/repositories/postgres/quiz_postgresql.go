package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuizPostgreSQL(db *gorm.DB) repositories.QuizRepository {
	return &QuizPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (q *QuizPostgreSQL) Create(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	return q.helpers.GetDB(ctx, tx).Transaction(func(tx *gorm.DB) error {
		entries := quiz.Questions
		if err := tx.Omit(clause.Associations).Create(quiz).Error; err != nil {
			return fmt.Errorf("failed to create quiz: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		for i := range entries {
			entries[i].QuizID = quiz.ID
		}
		if err := tx.Omit(clause.Associations).Create(&entries).Error; err != nil {
			return fmt.Errorf("failed to create quiz questions: %w", err)
		}
		return nil
	})
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.helpers.GetDB(ctx, tx).First(&quiz, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) GetWithQuestions(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.helpers.GetDB(ctx, tx).
		Preload("Questions", orderByPosition).
		Preload("Questions.Question").
		First(&quiz, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) GetWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.helpers.GetDB(ctx, tx).
		Preload("Questions", orderByPosition).
		Preload("Questions.Question").
		Preload("Assignments.Student").
		Preload("Creator").
		First(&quiz, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) Update(ctx context.Context, tx *gorm.DB, quiz *models.Quiz) error {
	return q.helpers.GetDB(ctx, tx).Omit(clause.Associations).Save(quiz).Error
}

func (q *QuizPostgreSQL) ReplaceQuestions(ctx context.Context, tx *gorm.DB, quizID string, entries []models.QuizQuestion) error {
	db := q.helpers.GetDB(ctx, tx)
	if err := db.Where("quiz_id = ?", quizID).Delete(&models.QuizQuestion{}).Error; err != nil {
		return fmt.Errorf("failed to clear quiz questions: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}
	for i := range entries {
		entries[i].QuizID = quizID
	}
	if err := q.helpers.GetDB(ctx, tx).Omit(clause.Associations).Create(&entries).Error; err != nil {
		return fmt.Errorf("failed to insert quiz questions: %w", err)
	}
	return nil
}

func (q *QuizPostgreSQL) Archive(ctx context.Context, tx *gorm.DB, id string) error {
	db := q.helpers.GetDB(ctx, tx)
	result := db.Model(&models.Quiz{}).Where("id = ?", id).Update("status", models.QuizArchived)
	if result.Error != nil {
		return fmt.Errorf("failed to archive quiz: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return q.helpers.GetDB(ctx, tx).Delete(&models.Quiz{}, "id = ?", id).Error
}

func (q *QuizPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	return q.helpers.GetDB(ctx, tx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&models.QuizQuestion{}).Error; err != nil {
			return fmt.Errorf("failed to delete quiz questions: %w", err)
		}
		if err := tx.Where("quiz_id = ?", id).Delete(&models.QuizAssignment{}).Error; err != nil {
			return fmt.Errorf("failed to delete quiz assignments: %w", err)
		}
		return tx.Unscoped().Delete(&models.Quiz{}, "id = ?", id).Error
	})
}

func (q *QuizPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuizFilters) ([]*models.Quiz, int64, error) {
	var quizzes []*models.Quiz
	var total int64

	query := q.applyFilters(q.helpers.GetDB(ctx, tx).Model(&models.Quiz{}), filters)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset,
		map[string]string{"created_at": "created_at", "title": "title", "start_date": "start_date"}, "created_at")
	if err := query.Find(&quizzes).Error; err != nil {
		return nil, 0, err
	}

	return quizzes, total, nil
}

func (q *QuizPostgreSQL) IsAssigned(ctx context.Context, tx *gorm.DB, quizID, studentID string) (bool, error) {
	var count int64
	if err := q.helpers.GetDB(ctx, tx).Model(&models.QuizAssignment{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (q *QuizPostgreSQL) GetAssignedStudentIDs(ctx context.Context, tx *gorm.DB, quizID string) ([]string, error) {
	var ids []string
	if err := q.helpers.GetDB(ctx, tx).Model(&models.QuizAssignment{}).
		Where("quiz_id = ?", quizID).
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (q *QuizPostgreSQL) AssignStudents(ctx context.Context, tx *gorm.DB, quizID string, studentIDs []string, assignedAt time.Time) ([]string, error) {
	added := make([]string, 0, len(studentIDs))
	for _, studentID := range studentIDs {
		assignment := models.QuizAssignment{
			QuizID:     quizID,
			StudentID:  studentID,
			AssignedAt: assignedAt,
		}
		result := q.helpers.GetDB(ctx, tx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Omit(clause.Associations).
			Create(&assignment)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to assign student %s: %w", studentID, result.Error)
		}
		if result.RowsAffected == 1 {
			added = append(added, studentID)
		}
	}
	return added, nil
}

func (q *QuizPostgreSQL) UnassignStudents(ctx context.Context, tx *gorm.DB, quizID string, studentIDs []string) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	result := q.helpers.GetDB(ctx, tx).
		Where("quiz_id = ? AND student_id IN ?", quizID, studentIDs).
		Delete(&models.QuizAssignment{})
	return result.RowsAffected, result.Error
}

func (q *QuizPostgreSQL) GetAssignedActiveQuizzes(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	assigned := q.helpers.GetDB(ctx, tx).Model(&models.QuizAssignment{}).Select("quiz_id").Where("student_id = ?", studentID)
	if err := q.helpers.GetDB(ctx, tx).
		Where("status = ? AND id IN (?)", models.QuizActive, assigned).
		Order("created_at DESC").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (q *QuizPostgreSQL) CountByCreator(ctx context.Context, tx *gorm.DB, creatorID string) (int64, error) {
	var count int64
	err := q.helpers.GetDB(ctx, tx).Model(&models.Quiz{}).Where("created_by = ?", creatorID).Count(&count).Error
	return count, err
}

func (q *QuizPostgreSQL) CountStudentsByCreator(ctx context.Context, tx *gorm.DB, creatorID string) (int64, error) {
	var count int64
	err := q.helpers.GetDB(ctx, tx).Model(&models.QuizAssignment{}).
		Where("quiz_id IN (?)", q.creatorQuizIDs(ctx, tx, creatorID)).
		Distinct("student_id").
		Count(&count).Error
	return count, err
}

func (q *QuizPostgreSQL) GetStudentsByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var students []*models.User
	var total int64

	studentIDs := q.helpers.GetDB(ctx, tx).Model(&models.QuizAssignment{}).
		Select("student_id").
		Where("quiz_id IN (?)", q.creatorQuizIDs(ctx, tx, creatorID))

	query := q.helpers.GetDB(ctx, tx).Model(&models.User{}).
		Where("role = ? AND id IN (?)", models.RoleStudent, studentIDs)
	if strings.TrimSpace(filters.Search) != "" {
		pattern := containsPattern(filters.Search)
		query = query.Where("(email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?)", pattern, pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset,
		map[string]string{"created_at": "created_at", "email": "email", "last_name": "last_name"}, "last_name")
	if err := query.Find(&students).Error; err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// creatorQuizIDs selects every quiz id the creator owns, archived ones included.
func (q *QuizPostgreSQL) creatorQuizIDs(ctx context.Context, tx *gorm.DB, creatorID string) *gorm.DB {
	return q.helpers.GetDB(ctx, tx).Unscoped().Model(&models.Quiz{}).Select("id").Where("created_by = ?", creatorID)
}

func (q *QuizPostgreSQL) applyFilters(query *gorm.DB, filters repositories.QuizFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
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
	if strings.TrimSpace(filters.Search) != "" {
		query = query.Where("title ILIKE ?", containsPattern(filters.Search))
	}
	return query
}

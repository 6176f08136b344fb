package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// unscoped lets preloads reach soft-deleted parents, so history stays readable after archiving.
func unscoped(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

var attemptSortColumns = map[string]string{
	"started_at":   "started_at",
	"completed_at": "completed_at",
	"percentage":   "percentage",
	"score":        "score",
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) error {
	return a.helpers.GetDB(ctx, tx).Omit(clause.Associations).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.helpers.GetDB(ctx, tx).First(&attempt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetWithQuiz(ctx context.Context, tx *gorm.DB, id string) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.helpers.GetDB(ctx, tx).
		Preload("Quiz", unscoped).
		Preload("Quiz.Questions", orderByPosition).
		Preload("Quiz.Questions.Question").
		First(&attempt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetActiveAttempt(ctx context.Context, tx *gorm.DB, studentID, quizID string) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	if err := a.helpers.GetDB(ctx, tx).
		Where("student_id = ? AND quiz_id = ? AND status = ?", studentID, quizID, models.AttemptInProgress).
		First(&attempt).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

// Complete is a compare-and-swap on status: graded fields and the status flip land in one statement.
func (a *AttemptPostgreSQL) Complete(ctx context.Context, tx *gorm.DB, attempt *models.QuizAttempt) (bool, error) {
	result := a.helpers.GetDB(ctx, tx).Model(&models.QuizAttempt{}).
		Where("id = ? AND status = ?", attempt.ID, models.AttemptInProgress).
		Updates(map[string]interface{}{
			"answers":            attempt.Answers,
			"score":              attempt.Score,
			"percentage":         attempt.Percentage,
			"is_passed":          attempt.IsPassed,
			"is_late_submission": attempt.IsLateSubmission,
			"completed_at":       attempt.CompletedAt,
			"time_spent":         attempt.TimeSpent,
			"status":             models.AttemptCompleted,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to complete attempt: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (a *AttemptPostgreSQL) ListByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	var attempts []*models.QuizAttempt
	var total int64

	query := a.helpers.GetDB(ctx, tx).Model(&models.QuizAttempt{}).Where("student_id = ?", studentID)
	query = a.applyFilters(ctx, tx, query, filters)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset,
		attemptSortColumns, "started_at")
	if err := query.Preload("Quiz", unscoped).Find(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

func (a *AttemptPostgreSQL) ListByQuiz(ctx context.Context, tx *gorm.DB, quizID string, filters repositories.AttemptFilters) ([]*models.QuizAttempt, int64, error) {
	var attempts []*models.QuizAttempt
	var total int64

	query := a.helpers.GetDB(ctx, tx).Model(&models.QuizAttempt{}).Where("quiz_id = ?", quizID)
	query = a.applyFilters(ctx, tx, query, filters)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = a.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset,
		attemptSortColumns, "completed_at")
	if err := query.Preload("Student", unscoped).Find(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

func (a *AttemptPostgreSQL) GetCompletedByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.AttemptFilters) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt

	filters.Status = models.AttemptCompleted
	query := a.helpers.GetDB(ctx, tx).Model(&models.QuizAttempt{}).Where("student_id = ?", studentID)
	query = a.applyFilters(ctx, tx, query, filters)
	if err := query.
		Preload("Quiz", unscoped).
		Order("completed_at ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) HasAttempts(ctx context.Context, tx *gorm.DB, quizID string) (bool, error) {
	var count int64
	if err := a.helpers.GetDB(ctx, tx).Model(&models.QuizAttempt{}).
		Where("quiz_id = ?", quizID).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *AttemptPostgreSQL) GetStudentQuizStats(ctx context.Context, tx *gorm.DB, studentID string, quizIDs []string) (map[string]*repositories.StudentQuizStats, error) {
	stats := make(map[string]*repositories.StudentQuizStats, len(quizIDs))
	if len(quizIDs) == 0 {
		return stats, nil
	}

	var attempts []*models.QuizAttempt
	if err := a.helpers.GetDB(ctx, tx).
		Where("student_id = ? AND quiz_id IN ?", studentID, quizIDs).
		Order("started_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}

	for _, attempt := range attempts {
		entry, ok := stats[attempt.QuizID]
		if !ok {
			// Newest first, so the first attempt seen per quiz is the latest.
			entry = &repositories.StudentQuizStats{QuizID: attempt.QuizID, LastAttempt: attempt}
			stats[attempt.QuizID] = entry
		}
		entry.AttemptCount++
	}
	return stats, nil
}

func (a *AttemptPostgreSQL) GetCreatorStats(ctx context.Context, tx *gorm.DB, creatorID string) (*repositories.SubmissionStats, error) {
	var stats repositories.SubmissionStats

	quizIDs := a.helpers.GetDB(ctx, tx).Unscoped().Model(&models.Quiz{}).Select("id").Where("created_by = ?", creatorID)
	row := a.helpers.GetDB(ctx, tx).Model(&models.QuizAttempt{}).
		Select("COUNT(*), COALESCE(AVG(percentage), 0)").
		Where("status = ? AND quiz_id IN (?)", models.AttemptCompleted, quizIDs).
		Row()
	if err := row.Scan(&stats.TotalSubmissions, &stats.AveragePercentage); err != nil {
		return nil, fmt.Errorf("failed to scan submission stats: %w", err)
	}
	return &stats, nil
}

func (a *AttemptPostgreSQL) applyFilters(ctx context.Context, tx *gorm.DB, query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.QuizID != nil {
		query = query.Where("quiz_id = ?", *filters.QuizID)
	}
	if filters.Subject != "" {
		subjectQuizzes := a.helpers.GetDB(ctx, tx).Unscoped().Model(&models.Quiz{}).Select("id").Where("subject = ?", filters.Subject)
		query = query.Where("quiz_id IN (?)", subjectQuizzes)
	}
	if filters.DateFrom != nil {
		query = query.Where("completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("completed_at <= ?", *filters.DateTo)
	}
	return query
}

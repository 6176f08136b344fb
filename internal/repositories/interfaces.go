package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// Repository groups the per-entity repositories behind one injected persistence client.
// Every method that accepts tx runs inside that transaction when tx is non-nil.
type Repository interface {
	User() UserRepository
	Question() QuestionRepository
	Quiz() QuizRepository
	Attempt() AttemptRepository
	Audit() AuditRepository

	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	Ping(ctx context.Context) error
	Close() error
}

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Role      *models.Role `json:"role"`
	IsActive  *bool        `json:"is_active"`
	Search    string       `json:"search"`
	Limit     int          `json:"limit"`
	Offset    int          `json:"offset"`
	SortBy    string       `json:"sort_by"`    // "created_at", "email", "last_name"
	SortOrder string       `json:"sort_order"` // "asc", "desc"
}

type QuestionFilters struct {
	Type       *models.QuestionType    `json:"type"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Subject    string                  `json:"subject"`
	Grade      string                  `json:"grade"`
	CreatedBy  *string                 `json:"created_by"`
	IsActive   *bool                   `json:"is_active"`
	Search     string                  `json:"search"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`
	SortOrder  string                  `json:"sort_order"`
}

type QuizFilters struct {
	Status    *models.QuizStatus `json:"status"`
	Subject   string             `json:"subject"`
	Grade     string             `json:"grade"`
	CreatedBy *string            `json:"created_by"`
	Search    string             `json:"search"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`
	SortOrder string             `json:"sort_order"`
}

type AttemptFilters struct {
	Status    models.AttemptStatus `json:"status"`
	QuizID    *string              `json:"quiz_id"`
	Subject   string               `json:"subject"`
	DateFrom  *time.Time           `json:"date_from"`
	DateTo    *time.Time           `json:"date_to"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "started_at", "completed_at", "percentage"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

type AuditFilters struct {
	UserID     *string             `json:"user_id"`
	Action     *models.AuditAction `json:"action"`
	EntityType *models.AuditEntity `json:"entity_type"`
	DateFrom   *time.Time          `json:"date_from"`
	DateTo     *time.Time          `json:"date_to"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

// StudentQuizStats summarises one student's attempts at one quiz.
type StudentQuizStats struct {
	QuizID       string              `json:"quiz_id"`
	AttemptCount int64               `json:"attempt_count"`
	LastAttempt  *models.QuizAttempt `json:"last_attempt,omitempty"`
}

// SubmissionStats aggregates completed attempts across a creator's quizzes.
type SubmissionStats struct {
	TotalSubmissions  int64   `json:"total_submissions"`
	AveragePercentage float64 `json:"average_percentage"`
}

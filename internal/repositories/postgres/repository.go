package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db       *gorm.DB
	user     repositories.UserRepository
	question repositories.QuestionRepository
	quiz     repositories.QuizRepository
	attempt  repositories.AttemptRepository
	audit    repositories.AuditRepository
}

// NewRepository wires every PostgreSQL repository onto one connection pool.
// The caller owns db until Close is called on the returned repository.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:       db,
		user:     NewUserPostgreSQL(db),
		question: NewQuestionPostgreSQL(db),
		quiz:     NewQuizPostgreSQL(db),
		attempt:  NewAttemptPostgreSQL(db),
		audit:    NewAuditPostgreSQL(db),
	}
}

func (r *repository) User() repositories.UserRepository         { return r.user }
func (r *repository) Question() repositories.QuestionRepository { return r.question }
func (r *repository) Quiz() repositories.QuizRepository         { return r.quiz }
func (r *repository) Attempt() repositories.AttemptRepository   { return r.attempt }
func (r *repository) Audit() repositories.AuditRepository       { return r.audit }

func (r *repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

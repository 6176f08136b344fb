// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// Repository is a manager whose transactions run fn with a nil tx against the per-entity mocks.
type Repository struct {
	Users     *UserRepository
	Questions *QuestionRepository
	Quizzes   *QuizRepository
	Attempts  *AttemptRepository
	Audits    *AuditRepository
}

func NewRepository() *Repository {
	return &Repository{
		Users:     &UserRepository{},
		Questions: &QuestionRepository{},
		Quizzes:   &QuizRepository{},
		Attempts:  &AttemptRepository{},
		Audits:    &AuditRepository{},
	}
}

func (r *Repository) User() repositories.UserRepository         { return r.Users }
func (r *Repository) Question() repositories.QuestionRepository { return r.Questions }
func (r *Repository) Quiz() repositories.QuizRepository         { return r.Quizzes }
func (r *Repository) Attempt() repositories.AttemptRepository   { return r.Attempts }
func (r *Repository) Audit() repositories.AuditRepository       { return r.Audits }

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (r *Repository) Ping(ctx context.Context) error { return nil }
func (r *Repository) Close() error                   { return nil }

// AssertExpectations checks every per-entity mock.
func (r *Repository) AssertExpectations(t mock.TestingT) {
	r.Users.AssertExpectations(t)
	r.Questions.AssertExpectations(t)
	r.Quizzes.AssertExpectations(t)
	r.Attempts.AssertExpectations(t)
	r.Audits.AssertExpectations(t)
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type questionService struct {
	repo      repositories.Repository
	bank      *cache.QuizBankCache
	audit     AuditService
	validator *validator.Validator
	logger    *slog.Logger
}

func NewQuestionService(
	repo repositories.Repository,
	bank *cache.QuizBankCache,
	audit AuditService,
	validator *validator.Validator,
	logger *slog.Logger,
) QuestionService {
	return &questionService{
		repo:      repo,
		bank:      bank,
		audit:     audit,
		validator: validator,
		logger:    logger,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, caller auth.Identity) (*models.Question, error) {
	s.logger.Info("Creating question", "creator_id", caller.SubjectID, "type", req.Type)

	if err := requireAuthor(caller, "question", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question := &models.Question{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(req.Title),
		Type:          req.Type,
		Difficulty:    req.Difficulty,
		Subject:       req.Subject,
		Grade:         req.Grade,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		Points:        req.Points,
		IsActive:      true,
		CreatedBy:     caller.SubjectID,
	}
	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return nil, err
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{UserID: caller.SubjectID, Action: models.AuditCreated, EntityType: models.AuditEntityQuestion, EntityID: question.ID})
	s.logger.Info("Question created successfully", "question_id", question.ID)
	return question, nil
}

func (s *questionService) GetByID(ctx context.Context, id string, caller auth.Identity) (*models.Question, error) {
	if err := requireAuthor(caller, "question", "read"); err != nil {
		return nil, err
	}
	return s.getQuestion(ctx, id)
}

func (s *questionService) Update(ctx context.Context, id string, req *UpdateQuestionRequest, caller auth.Identity) (*models.Question, error) {
	s.logger.Info("Updating question", "question_id", id, "user_id", caller.SubjectID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckOwnership(caller, question.CreatedBy, "question", id, "update"); err != nil {
		return nil, err
	}

	applyQuestionPatch(question, req)
	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return nil, err
	}

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	// Any quiz may embed this question in its cached bank.
	s.bank.InvalidateAll(ctx)

	s.audit.Record(ctx, AuditEntry{UserID: caller.SubjectID, Action: models.AuditUpdated, EntityType: models.AuditEntityQuestion, EntityID: id})
	s.logger.Info("Question updated successfully", "question_id", id)
	return question, nil
}

// applyQuestionPatch merges the non-nil fields of req into q. Switching between choice and
// short answer types clears the representation the new type does not use.
func applyQuestionPatch(q *models.Question, req *UpdateQuestionRequest) {
	if req.Title != nil {
		q.Title = strings.TrimSpace(*req.Title)
	}
	if req.Type != nil && *req.Type != q.Type {
		q.Type = *req.Type
		if q.IsChoice() {
			q.CorrectAnswer = nil
		} else {
			q.Options = nil
		}
	}
	if req.Difficulty != nil {
		q.Difficulty = *req.Difficulty
	}
	if req.Subject != nil {
		q.Subject = *req.Subject
	}
	if req.Grade != nil {
		q.Grade = *req.Grade
	}
	if req.Options != nil {
		q.Options = *req.Options
	}
	if req.CorrectAnswer != nil {
		q.CorrectAnswer = req.CorrectAnswer
	}
	if req.Explanation != nil {
		q.Explanation = req.Explanation
	}
	if req.Points != nil {
		q.Points = *req.Points
	}
	if req.IsActive != nil {
		q.IsActive = *req.IsActive
	}
}

// Delete hard-deletes unreferenced questions. A question used by any quiz is deactivated instead
// so existing quizzes and attempts keep resolving it.
func (s *questionService) Delete(ctx context.Context, id string, caller auth.Identity) (*DeleteOutcome, error) {
	s.logger.Info("Deleting question", "question_id", id, "user_id", caller.SubjectID)

	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckOwnership(caller, question.CreatedBy, "question", id, "delete"); err != nil {
		return nil, err
	}

	outcome := &DeleteOutcome{}
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		referenced, err := s.repo.Question().IsReferencedByQuiz(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to check question usage: %w", err)
		}
		if referenced {
			outcome.SoftDeleted = true
			outcome.Message = "Question is used by existing quizzes and has been deactivated"
			return s.repo.Question().Deactivate(ctx, tx, id)
		}
		outcome.Message = "Question deleted successfully"
		return s.repo.Question().Delete(ctx, tx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete question: %w", err)
	}
	if outcome.SoftDeleted {
		s.bank.InvalidateAll(ctx)
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:     caller.SubjectID,
		Action:     models.AuditDeleted,
		EntityType: models.AuditEntityQuestion,
		EntityID:   id,
		Details:    map[string]interface{}{"soft_deleted": outcome.SoftDeleted},
	})
	s.logger.Info("Question deleted successfully", "question_id", id, "soft_deleted", outcome.SoftDeleted)
	return outcome, nil
}

// List returns every question for admins; teachers only see their own.
func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters, caller auth.Identity) (*QuestionListResponse, error) {
	if err := requireAuthor(caller, "question", "list"); err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		owner := caller.SubjectID
		filters.CreatedBy = &owner
	}
	filters.Limit, filters.Offset = NormalizePage(filters.Limit, filters.Offset)

	questions, total, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return &QuestionListResponse{
		Questions:  questions,
		Pagination: NewPagination(total, filters.Limit, filters.Offset),
	}, nil
}

func (s *questionService) getQuestion(ctx context.Context, id string) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

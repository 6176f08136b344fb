package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type quizService struct {
	repo      repositories.Repository
	bank      *cache.QuizBankCache
	notifier  NotificationEventService
	audit     AuditService
	validator *validator.Validator
	logger    *slog.Logger
	ops       *ServiceLogger
	now       func() time.Time
}

func NewQuizService(
	repo repositories.Repository,
	bank *cache.QuizBankCache,
	notifier NotificationEventService,
	audit AuditService,
	validator *validator.Validator,
	logger *slog.Logger,
) QuizService {
	return &quizService{
		repo:      repo,
		bank:      bank,
		notifier:  notifier,
		audit:     audit,
		validator: validator,
		logger:    logger,
		ops:       NewServiceLogger(logger, "quiz"),
		now:       time.Now,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest, caller auth.Identity) (*QuizResponse, error) {
	s.logger.Info("Creating quiz", "creator_id", caller.SubjectID, "title", req.Title)

	if err := requireAuthor(caller, "quiz", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateSchedule(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	status := models.QuizDraft
	if req.Status != "" {
		if !status.CanTransitionTo(req.Status) {
			return nil, fmt.Errorf("%w: cannot create a quiz as %s", ErrQuizInvalidStatus, req.Status)
		}
		status = req.Status
	}

	entries, totalPoints, err := s.resolveQuestions(ctx, req.QuestionIDs)
	if err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		ID:                  uuid.NewString(),
		Title:               strings.TrimSpace(req.Title),
		Description:         req.Description,
		Instructions:        req.Instructions,
		Subject:             req.Subject,
		Grade:               req.Grade,
		TimeLimit:           req.TimeLimit,
		TotalPoints:         totalPoints,
		PassingScore:        req.PassingScore,
		Status:              status,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		IsRandomized:        req.IsRandomized,
		QuestionsPerAttempt: req.QuestionsPerAttempt,
		CreatedBy:           caller.SubjectID,
		Questions:           entries,
	}
	if err := s.repo.Quiz().Create(ctx, nil, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:     caller.SubjectID,
		Action:     models.AuditCreated,
		EntityType: models.AuditEntityQuiz,
		EntityID:   quiz.ID,
		Details:    map[string]interface{}{"question_count": len(entries), "status": string(status)},
	})
	s.logger.Info("Quiz created successfully", "quiz_id", quiz.ID, "question_count", len(entries))
	return buildQuizResponse(quiz), nil
}

func (s *quizService) GetByID(ctx context.Context, id string, caller auth.Identity) (*QuizResponse, error) {
	quiz, err := s.repo.Quiz().GetWithDetails(ctx, nil, id)
	if err != nil {
		return nil, quizLookupError(err)
	}
	if err := CheckOwnership(caller, quiz.CreatedBy, "quiz", id, "read"); err != nil {
		return nil, err
	}
	return buildQuizResponse(quiz), nil
}

func (s *quizService) Update(ctx context.Context, id string, req *UpdateQuizRequest, caller auth.Identity) (*QuizResponse, error) {
	s.logger.Info("Updating quiz", "quiz_id", id, "user_id", caller.SubjectID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetWithQuestions(ctx, nil, id)
	if err != nil {
		return nil, quizLookupError(err)
	}
	if err := CheckOwnership(caller, quiz.CreatedBy, "quiz", id, "update"); err != nil {
		return nil, err
	}

	if req.Status != nil && !quiz.Status.CanTransitionTo(*req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrQuizInvalidStatus, quiz.Status, *req.Status)
	}
	applyQuizPatch(quiz, req)
	if err := validateSchedule(quiz.StartDate, quiz.EndDate); err != nil {
		return nil, err
	}

	var entries []models.QuizQuestion
	if req.QuestionIDs != nil {
		var total int
		entries, total, err = s.resolveQuestions(ctx, *req.QuestionIDs)
		if err != nil {
			return nil, err
		}
		quiz.TotalPoints = total
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if req.QuestionIDs != nil {
			if err := s.repo.Quiz().ReplaceQuestions(ctx, tx, id, entries); err != nil {
				return err
			}
		}
		return s.repo.Quiz().Update(ctx, tx, quiz)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}
	s.bank.Invalidate(ctx, id)

	if req.QuestionIDs != nil {
		quiz.Questions = entries
	}

	s.audit.Record(ctx, AuditEntry{UserID: caller.SubjectID, Action: models.AuditUpdated, EntityType: models.AuditEntityQuiz, EntityID: id})
	s.logger.Info("Quiz updated successfully", "quiz_id", id)
	return buildQuizResponse(quiz), nil
}

func applyQuizPatch(quiz *models.Quiz, req *UpdateQuizRequest) {
	if req.Title != nil {
		quiz.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		quiz.Description = req.Description
	}
	if req.Instructions != nil {
		quiz.Instructions = req.Instructions
	}
	if req.Subject != nil {
		quiz.Subject = *req.Subject
	}
	if req.Grade != nil {
		quiz.Grade = *req.Grade
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = req.TimeLimit
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.IsRandomized != nil {
		quiz.IsRandomized = *req.IsRandomized
	}
	if req.QuestionsPerAttempt != nil {
		quiz.QuestionsPerAttempt = req.QuestionsPerAttempt
	}
	if req.StartDate != nil {
		quiz.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		quiz.EndDate = req.EndDate
	}
	if req.Status != nil {
		quiz.Status = *req.Status
	}
}

// Delete hard-deletes quizzes nobody has attempted. Quizzes with attempts are archived and
// soft-deleted so their results stay readable.
func (s *quizService) Delete(ctx context.Context, id string, caller auth.Identity) (*DeleteOutcome, error) {
	s.logger.Info("Deleting quiz", "quiz_id", id, "user_id", caller.SubjectID)

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, id)
	if err != nil {
		return nil, quizLookupError(err)
	}
	if err := CheckOwnership(caller, quiz.CreatedBy, "quiz", id, "delete"); err != nil {
		return nil, err
	}

	outcome := &DeleteOutcome{}
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		hasAttempts, err := s.repo.Attempt().HasAttempts(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to check quiz attempts: %w", err)
		}
		if hasAttempts {
			outcome.SoftDeleted = true
			outcome.Message = "Quiz has attempts and has been archived"
			return s.repo.Quiz().Archive(ctx, tx, id)
		}
		outcome.Message = "Quiz deleted successfully"
		return s.repo.Quiz().Delete(ctx, tx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete quiz: %w", err)
	}
	s.bank.Invalidate(ctx, id)

	s.audit.Record(ctx, AuditEntry{
		UserID:     caller.SubjectID,
		Action:     models.AuditDeleted,
		EntityType: models.AuditEntityQuiz,
		EntityID:   id,
		Details:    map[string]interface{}{"soft_deleted": outcome.SoftDeleted},
	})
	s.logger.Info("Quiz deleted successfully", "quiz_id", id, "soft_deleted", outcome.SoftDeleted)
	return outcome, nil
}

func (s *quizService) List(ctx context.Context, filters repositories.QuizFilters, caller auth.Identity) (*QuizListResponse, error) {
	if err := requireAuthor(caller, "quiz", "list"); err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		owner := caller.SubjectID
		filters.CreatedBy = &owner
	}
	filters.Limit, filters.Offset = NormalizePage(filters.Limit, filters.Offset)

	quizzes, total, err := s.repo.Quiz().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return &QuizListResponse{
		Quizzes:    quizzes,
		Pagination: NewPagination(total, filters.Limit, filters.Offset),
	}, nil
}

// ===== ASSIGNMENT =====

// Assign adds the active students among studentIDs who are not yet assigned. Repeating a call
// changes nothing and reports zero new assignments.
func (s *quizService) Assign(ctx context.Context, quizID string, studentIDs []string, caller auth.Identity) (*AssignResult, error) {
	op := s.ops.WithOperation(ctx, "assign_quiz", caller.SubjectID)
	result, err := s.assign(ctx, quizID, studentIDs, caller)
	op.LogResult(quizID, "quiz", err)
	return result, err
}

func (s *quizService) assign(ctx context.Context, quizID string, studentIDs []string, caller auth.Identity) (*AssignResult, error) {
	s.logger.Info("Starting quiz assignment", "quiz_id", quizID, "requested", len(studentIDs))

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, quizLookupError(err)
	}
	if err := CheckOwnership(caller, quiz.CreatedBy, "quiz", quizID, "assign"); err != nil {
		return nil, err
	}

	students, err := s.repo.User().GetActiveStudentsByIDs(ctx, nil, dedupe(studentIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve students: %w", err)
	}
	if len(students) == 0 {
		return &AssignResult{Message: "No valid students to assign"}, nil
	}

	existing, err := s.repo.Quiz().GetAssignedStudentIDs(ctx, nil, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	assigned := make(map[string]bool, len(existing))
	for _, id := range existing {
		assigned[id] = true
	}

	candidates := make([]string, 0, len(students))
	for _, student := range students {
		if !assigned[student.ID] {
			candidates = append(candidates, student.ID)
		}
	}
	if len(candidates) == 0 {
		return &AssignResult{Message: "All students are already assigned"}, nil
	}

	added, err := s.repo.Quiz().AssignStudents(ctx, nil, quizID, candidates, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to assign quiz: %w", err)
	}

	if len(added) > 0 {
		addedSet := make(map[string]bool, len(added))
		for _, id := range added {
			addedSet[id] = true
		}
		recipients := make([]*models.User, 0, len(added))
		for _, student := range students {
			if addedSet[student.ID] {
				recipients = append(recipients, student)
			}
		}
		if err := s.notifier.NotifyQuizAssigned(ctx, quiz, recipients); err != nil {
			s.logger.Warn("Failed to send some assignment notifications", "quiz_id", quizID, "error", err)
		}

		s.audit.Record(ctx, AuditEntry{
			UserID:     caller.SubjectID,
			Action:     models.AuditAssigned,
			EntityType: models.AuditEntityQuiz,
			EntityID:   quizID,
			Details:    map[string]interface{}{"student_ids": added, "count": len(added)},
		})
	}

	s.logger.Info("Quiz assigned successfully", "quiz_id", quizID, "assigned", len(added))
	return &AssignResult{
		AssignedCount: len(added),
		Message:       fmt.Sprintf("Quiz assigned to %d student(s)", len(added)),
	}, nil
}

func (s *quizService) Unassign(ctx context.Context, quizID string, studentIDs []string, caller auth.Identity) (*UnassignResult, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, quizLookupError(err)
	}
	if err := CheckOwnership(caller, quiz.CreatedBy, "quiz", quizID, "unassign"); err != nil {
		return nil, err
	}

	removed, err := s.repo.Quiz().UnassignStudents(ctx, nil, quizID, dedupe(studentIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to unassign students: %w", err)
	}

	if removed > 0 {
		s.audit.Record(ctx, AuditEntry{
			UserID:     caller.SubjectID,
			Action:     models.AuditUpdated,
			EntityType: models.AuditEntityQuiz,
			EntityID:   quizID,
			Details:    map[string]interface{}{"unassigned": removed},
		})
	}
	return &UnassignResult{RemovedCount: removed}, nil
}

// GetResults lists attempts at a quiz for its owner. Completed attempts are returned unless
// filters ask for another status.
func (s *quizService) GetResults(ctx context.Context, quizID string, filters repositories.AttemptFilters, caller auth.Identity) (*QuizResultsResponse, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, quizLookupError(err)
	}
	if err := CheckOwnership(caller, quiz.CreatedBy, "quiz", quizID, "view_results"); err != nil {
		return nil, err
	}

	if filters.Status == "" {
		filters.Status = models.AttemptCompleted
	}
	filters.Limit, filters.Offset = NormalizePage(filters.Limit, filters.Offset)

	attempts, total, err := s.repo.Attempt().ListByQuiz(ctx, nil, quizID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz results: %w", err)
	}
	return &QuizResultsResponse{
		Quiz:       summarizeQuiz(quiz),
		Results:    attempts,
		Pagination: NewPagination(total, filters.Limit, filters.Offset),
	}, nil
}

// ===== HELPERS =====

// resolveQuestions dedupes ids, keeps the ones that exist in request order and sums their points.
// Unknown ids are dropped.
func (s *quizService) resolveQuestions(ctx context.Context, ids []string) ([]models.QuizQuestion, int, error) {
	unique := dedupe(ids)
	if len(unique) == 0 {
		return nil, 0, nil
	}

	questions, err := s.repo.Question().GetByIDs(ctx, nil, unique)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve questions: %w", err)
	}
	byID := make(map[string]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	entries := make([]models.QuizQuestion, 0, len(questions))
	total := 0
	for _, id := range unique {
		q, ok := byID[id]
		if !ok {
			s.logger.Warn("Skipping unknown question", "question_id", id)
			continue
		}
		entries = append(entries, models.QuizQuestion{QuestionID: id, Position: len(entries), Question: q})
		total += q.Points
	}
	return entries, total, nil
}

func validateSchedule(start, end *time.Time) error {
	if start != nil && end != nil && !end.After(*start) {
		return ValidationErrors{*NewValidationError("end_date", "must be after start_date", *end)}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func quizLookupError(err error) error {
	if repositories.IsNotFoundError(err) {
		return ErrQuizNotFound
	}
	return fmt.Errorf("failed to get quiz: %w", err)
}

func buildQuizResponse(quiz *models.Quiz) *QuizResponse {
	resp := &QuizResponse{
		Quiz:          quiz,
		QuestionCount: len(quiz.Questions),
	}
	for _, a := range quiz.Assignments {
		resp.AssignedStudents = append(resp.AssignedStudents, a.StudentID)
	}
	return resp
}

func summarizeQuiz(quiz *models.Quiz) QuizSummary {
	return QuizSummary{
		ID:           quiz.ID,
		Title:        quiz.Title,
		Subject:      quiz.Subject,
		Grade:        quiz.Grade,
		TotalPoints:  quiz.TotalPoints,
		PassingScore: quiz.PassingScore,
	}
}

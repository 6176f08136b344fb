package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/google/uuid"
)

type attemptService struct {
	repo      repositories.Repository
	bank      *cache.QuizBankCache
	notifier  NotificationEventService
	audit     AuditService
	validator *validator.Validator
	logger    *slog.Logger
	ops       *ServiceLogger

	now   func() time.Time
	rngMu sync.Mutex
	rng   *rand.Rand
}

type AttemptServiceOption func(*attemptService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AttemptServiceOption {
	return func(s *attemptService) { s.now = now }
}

// WithRandom sets the source used to sample questions for randomized quizzes.
func WithRandom(rng *rand.Rand) AttemptServiceOption {
	return func(s *attemptService) { s.rng = rng }
}

func NewAttemptService(
	repo repositories.Repository,
	bank *cache.QuizBankCache,
	notifier NotificationEventService,
	audit AuditService,
	validator *validator.Validator,
	logger *slog.Logger,
	opts ...AttemptServiceOption,
) AttemptService {
	s := &attemptService{
		repo:      repo,
		bank:      bank,
		notifier:  notifier,
		audit:     audit,
		validator: validator,
		logger:    logger,
		ops:       NewServiceLogger(logger, "attempt"),
		now:       time.Now,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===== CORE ATTEMPT OPERATIONS =====

// Start opens an attempt, or returns the student's open attempt at the quiz unchanged.
func (s *attemptService) Start(ctx context.Context, quizID, studentID string) (*StartAttemptResponse, error) {
	op := s.ops.WithOperation(ctx, "start_attempt", studentID)
	resp, err := s.start(ctx, quizID, studentID)
	op.LogResult(quizID, "quiz", err)
	return resp, err
}

func (s *attemptService) start(ctx context.Context, quizID, studentID string) (*StartAttemptResponse, error) {
	s.logger.Info("Starting quiz attempt", "quiz_id", quizID, "student_id", studentID)

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, quizLookupError(err)
	}

	assigned, err := s.repo.Quiz().IsAssigned(ctx, nil, quizID, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}
	if !assigned {
		return nil, ErrQuizNotAssigned
	}
	if quiz.Status != models.QuizActive {
		return nil, ErrQuizNotActive
	}
	now := s.now()
	if !quiz.IsOpenAt(now) {
		return nil, ErrQuizNotOpen
	}

	open, err := s.repo.Attempt().GetActiveAttempt(ctx, nil, studentID, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open attempt: %w", err)
	}
	if open != nil {
		s.logger.Info("Resuming open attempt", "attempt_id", open.ID)
		return s.resume(ctx, open)
	}

	full, err := s.loadQuizBank(ctx, quizID)
	if err != nil {
		return nil, err
	}
	presented := s.selectQuestions(full)

	attempt := &models.QuizAttempt{
		ID:          uuid.NewString(),
		QuizID:      quizID,
		StudentID:   studentID,
		QuestionIDs: questionIDs(presented),
		Answers:     []models.AttemptAnswer{},
		TotalPoints: quiz.TotalPoints,
		Status:      models.AttemptInProgress,
		StartedAt:   now,
	}
	if err := s.repo.Attempt().Create(ctx, nil, attempt); err != nil {
		if !repositories.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to create attempt: %w", err)
		}
		// A concurrent start won the open-attempt slot.
		winner, err := s.repo.Attempt().GetActiveAttempt(ctx, nil, studentID, quizID)
		if err != nil {
			return nil, fmt.Errorf("failed to load concurrent attempt: %w", err)
		}
		if winner == nil {
			return nil, fmt.Errorf("%w: open attempt changed while starting", ErrConflict)
		}
		return s.resume(ctx, winner)
	}

	s.logger.Info("Attempt started successfully", "attempt_id", attempt.ID, "questions", len(presented))
	return newStartResponse(attempt, full, presented, false), nil
}

func (s *attemptService) resume(ctx context.Context, attempt *models.QuizAttempt) (*StartAttemptResponse, error) {
	quiz, err := s.loadQuizBank(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}
	return newStartResponse(attempt, quiz, quiz.OrderedQuestions(), true), nil
}

// Submit grades and completes an open attempt. Only the first submission is accepted.
func (s *attemptService) Submit(ctx context.Context, attemptID, studentID string, answers []SubmittedAnswer) (*AttemptResult, error) {
	op := s.ops.WithOperation(ctx, "submit_attempt", studentID)
	result, err := s.submit(ctx, attemptID, studentID, answers)
	op.LogResult(attemptID, "attempt", err)
	return result, err
}

func (s *attemptService) submit(ctx context.Context, attemptID, studentID string, answers []SubmittedAnswer) (*AttemptResult, error) {
	s.logger.Info("Submitting attempt", "attempt_id", attemptID, "student_id", studentID, "answers", len(answers))

	if err := s.validator.Validate(&SubmitAttemptRequest{Answers: answers}); err != nil {
		return nil, err
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		return nil, attemptLookupError(err)
	}
	if attempt.StudentID != studentID {
		return nil, ErrAttemptAccessDenied
	}
	if attempt.Status != models.AttemptInProgress {
		return nil, ErrAttemptAlreadySubmitted
	}

	// The bank comes from the attempt's quiz even if that quiz was archived meanwhile.
	quiz, err := s.bank.Get(ctx, attempt.QuizID, func(ctx context.Context, _ string) (*models.Quiz, error) {
		withQuiz, err := s.repo.Attempt().GetWithQuiz(ctx, nil, attemptID)
		if err != nil {
			return nil, attemptLookupError(err)
		}
		if withQuiz.Quiz == nil {
			return nil, ErrQuizNotFound
		}
		return withQuiz.Quiz, nil
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	verdict := EvaluateTimePolicy(quiz.TimeLimit, attempt.StartedAt, now)
	if verdict == TimeExceeded {
		s.logger.Warn("Submission rejected after hard deadline", "attempt_id", attemptID)
		return nil, ErrAttemptTimeExceeded
	}

	graded, score := GradeAnswers(questionBank(quiz), answers)
	percentage := ComputePercentage(score, quiz.TotalPoints)

	attempt.Answers = graded
	attempt.Score = score
	attempt.TotalPoints = quiz.TotalPoints
	attempt.Percentage = percentage
	attempt.IsPassed = IsPassing(score, quiz.TotalPoints, quiz.PassingScore)
	attempt.IsLateSubmission = verdict == Late
	attempt.Status = models.AttemptCompleted
	attempt.CompletedAt = &now
	attempt.TimeSpent = int(now.Sub(attempt.StartedAt).Seconds())

	completed, err := s.repo.Attempt().Complete(ctx, nil, attempt)
	if err != nil {
		return nil, fmt.Errorf("failed to complete attempt: %w", err)
	}
	if !completed {
		return nil, ErrAttemptAlreadySubmitted
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:     studentID,
		Action:     models.AuditUpdated,
		EntityType: models.AuditEntityAttempt,
		EntityID:   attemptID,
		Details: map[string]interface{}{
			"event":      "submitted",
			"score":      score,
			"percentage": percentage,
			"late":       attempt.IsLateSubmission,
		},
	})
	if err := s.notifier.NotifyAttemptSubmitted(ctx, attempt, quiz.Title); err != nil {
		s.logger.Warn("Failed to publish attempt submitted event", "attempt_id", attemptID, "error", err)
	}

	s.logger.Info("Attempt submitted successfully",
		"attempt_id", attemptID,
		"score", score,
		"percentage", percentage,
		"late", attempt.IsLateSubmission)
	return buildAttemptResult(attempt, quiz), nil
}

func (s *attemptService) GetResult(ctx context.Context, attemptID, studentID string) (*AttemptResult, error) {
	attempt, err := s.repo.Attempt().GetWithQuiz(ctx, nil, attemptID)
	if err != nil {
		return nil, attemptLookupError(err)
	}
	if attempt.StudentID != studentID {
		return nil, ErrAttemptAccessDenied
	}
	if attempt.Quiz == nil {
		return nil, ErrQuizNotFound
	}
	return buildAttemptResult(attempt, attempt.Quiz), nil
}

func (s *attemptService) ListByStudent(ctx context.Context, studentID string, filters repositories.AttemptFilters) (*AttemptListResponse, error) {
	filters.Limit, filters.Offset = NormalizePage(filters.Limit, filters.Offset)
	if filters.SortBy == "" {
		filters.SortBy, filters.SortOrder = "started_at", "desc"
	}

	attempts, total, err := s.repo.Attempt().ListByStudent(ctx, nil, studentID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return &AttemptListResponse{
		Attempts:   attempts,
		Pagination: NewPagination(total, filters.Limit, filters.Offset),
	}, nil
}

// GetStudentQuizzes lists the active quizzes assigned to a student with their attempt history.
func (s *attemptService) GetStudentQuizzes(ctx context.Context, studentID string) ([]*StudentQuizItem, error) {
	quizzes, err := s.repo.Quiz().GetAssignedActiveQuizzes(ctx, nil, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned quizzes: %w", err)
	}
	if len(quizzes) == 0 {
		return []*StudentQuizItem{}, nil
	}

	ids := make([]string, 0, len(quizzes))
	for _, q := range quizzes {
		ids = append(ids, q.ID)
	}
	stats, err := s.repo.Attempt().GetStudentQuizStats(ctx, nil, studentID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt stats: %w", err)
	}

	items := make([]*StudentQuizItem, 0, len(quizzes))
	for _, q := range quizzes {
		item := &StudentQuizItem{
			ID:           q.ID,
			Title:        q.Title,
			Description:  q.Description,
			Subject:      q.Subject,
			Grade:        q.Grade,
			TimeLimit:    q.TimeLimit,
			TotalPoints:  q.TotalPoints,
			PassingScore: q.PassingScore,
			StartDate:    q.StartDate,
			EndDate:      q.EndDate,
		}
		if st, ok := stats[q.ID]; ok && st != nil {
			item.AttemptCount = st.AttemptCount
			if st.LastAttempt != nil {
				summary := summarizeAttempt(st.LastAttempt)
				item.LastAttempt = &summary
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// loadQuizBank reads a live quiz with its questions through the cache.
func (s *attemptService) loadQuizBank(ctx context.Context, quizID string) (*models.Quiz, error) {
	return s.bank.Get(ctx, quizID, func(ctx context.Context, id string) (*models.Quiz, error) {
		quiz, err := s.repo.Quiz().GetWithQuestions(ctx, nil, id)
		if err != nil {
			return nil, quizLookupError(err)
		}
		return quiz, nil
	})
}

func (s *attemptService) selectQuestions(quiz *models.Quiz) []*models.Question {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return SelectQuestions(quiz.OrderedQuestions(), quiz.SampleSize(), s.rng)
}

func attemptLookupError(err error) error {
	if repositories.IsNotFoundError(err) {
		return ErrAttemptNotFound
	}
	return fmt.Errorf("failed to get attempt: %w", err)
}

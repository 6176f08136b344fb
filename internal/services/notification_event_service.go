package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// NotificationEventService hands notifications to the event bus. Email delivery happens downstream.
type NotificationEventService interface {
	NotifyVerificationCode(ctx context.Context, user *models.User, code string) error
	NotifyPasswordReset(ctx context.Context, user *models.User, code string) error
	NotifyTeacherInvite(ctx context.Context, user *models.User, temporaryPassword string) error
	// NotifyQuizAssigned publishes one event per student and keeps going past individual failures.
	NotifyQuizAssigned(ctx context.Context, quiz *models.Quiz, students []*models.User) error
	NotifyAttemptSubmitted(ctx context.Context, attempt *models.QuizAttempt, quizTitle string) error
}

type notificationEventService struct {
	eventPublisher events.EventPublisher
	logger         *slog.Logger
}

func NewNotificationEventService(eventPublisher events.EventPublisher, logger *slog.Logger) NotificationEventService {
	return &notificationEventService{
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *notificationEventService) NotifyVerificationCode(ctx context.Context, user *models.User, code string) error {
	s.logger.Info("Publishing verification code event", "user_id", user.ID)

	event := events.NewEmailNotificationEvent(events.TemplateVerificationCode, user.Email, map[string]string{
		"firstName": user.FirstName,
		"code":      code,
	})
	return s.publish(ctx, event)
}

func (s *notificationEventService) NotifyPasswordReset(ctx context.Context, user *models.User, code string) error {
	s.logger.Info("Publishing password reset event", "user_id", user.ID)

	event := events.NewEmailNotificationEvent(events.TemplatePasswordReset, user.Email, map[string]string{
		"firstName": user.FirstName,
		"code":      code,
	})
	return s.publish(ctx, event)
}

func (s *notificationEventService) NotifyTeacherInvite(ctx context.Context, user *models.User, temporaryPassword string) error {
	s.logger.Info("Publishing teacher invite event", "user_id", user.ID)

	event := events.NewEmailNotificationEvent(events.TemplateTeacherInvite, user.Email, map[string]string{
		"firstName":         user.FirstName,
		"temporaryPassword": temporaryPassword,
	})
	return s.publish(ctx, event)
}

func (s *notificationEventService) NotifyQuizAssigned(ctx context.Context, quiz *models.Quiz, students []*models.User) error {
	s.logger.Info("Publishing quiz assignment events", "quiz_id", quiz.ID, "student_count", len(students))

	var errs []error
	for _, student := range students {
		event := events.NewEmailNotificationEvent(events.TemplateQuizAssignment, student.Email, map[string]string{
			"firstName": student.FirstName,
			"quizTitle": quiz.Title,
			"quizId":    quiz.ID,
		})
		if err := s.publish(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("student %s: %w", student.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *notificationEventService) NotifyAttemptSubmitted(ctx context.Context, attempt *models.QuizAttempt, quizTitle string) error {
	s.logger.Info("Publishing attempt submitted event", "attempt_id", attempt.ID)

	payload := events.AttemptSubmittedEvent{
		AttemptID:        attempt.ID,
		QuizID:           attempt.QuizID,
		QuizTitle:        quizTitle,
		StudentID:        attempt.StudentID,
		Score:            attempt.Score,
		TotalPoints:      attempt.TotalPoints,
		Percentage:       attempt.Percentage,
		IsPassed:         attempt.IsPassed,
		IsLateSubmission: attempt.IsLateSubmission,
	}
	if attempt.CompletedAt != nil {
		payload.CompletedAt = *attempt.CompletedAt
	}
	return s.publish(ctx, events.NewAttemptSubmittedEvent(payload))
}

func (s *notificationEventService) publish(ctx context.Context, event *events.NotificationEvent) error {
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

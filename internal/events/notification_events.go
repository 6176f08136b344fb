package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of notification events
type EventType string

const (
	// Email events, one per template the mailer renders
	EventTeacherInvite    EventType = "notification.teacher_invite"
	EventVerificationCode EventType = "notification.verification_code"
	EventPasswordReset    EventType = "notification.password_reset"
	EventQuizAssignment   EventType = "notification.quiz_assignment"

	// Attempt events
	EventAttemptSubmitted EventType = "attempt.submitted"
)

// TemplateKind names the email template a consumer renders.
type TemplateKind string

const (
	TemplateTeacherInvite    TemplateKind = "teacher_invite"
	TemplateVerificationCode TemplateKind = "verification_code"
	TemplatePasswordReset    TemplateKind = "password_reset"
	TemplateQuizAssignment   TemplateKind = "quiz_assignment"
)

const (
	eventSource  = "quiz-service"
	eventVersion = "1.0"
)

// NotificationEvent is the base event structure for all notification events
type NotificationEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// EmailNotificationEvent asks the mail consumer to render template for one recipient.
type EmailNotificationEvent struct {
	RecipientEmail string            `json:"recipient_email"`
	Template       TemplateKind      `json:"template"`
	Data           map[string]string `json:"data"`
}

type AttemptSubmittedEvent struct {
	AttemptID        string    `json:"attempt_id"`
	QuizID           string    `json:"quiz_id"`
	QuizTitle        string    `json:"quiz_title"`
	StudentID        string    `json:"student_id"`
	Score            int       `json:"score"`
	TotalPoints      int       `json:"total_points"`
	Percentage       float64   `json:"percentage"`
	IsPassed         bool      `json:"is_passed"`
	IsLateSubmission bool      `json:"is_late_submission"`
	CompletedAt      time.Time `json:"completed_at"`
}

var templateEvents = map[TemplateKind]EventType{
	TemplateTeacherInvite:    EventTeacherInvite,
	TemplateVerificationCode: EventVerificationCode,
	TemplatePasswordReset:    EventPasswordReset,
	TemplateQuizAssignment:   EventQuizAssignment,
}

func NewEmailNotificationEvent(template TemplateKind, recipientEmail string, data map[string]string) *NotificationEvent {
	return &NotificationEvent{
		ID:        generateEventID(),
		Type:      templateEvents[template],
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data: EmailNotificationEvent{
			RecipientEmail: recipientEmail,
			Template:       template,
			Data:           data,
		},
	}
}

func NewAttemptSubmittedEvent(payload AttemptSubmittedEvent) *NotificationEvent {
	return &NotificationEvent{
		ID:        generateEventID(),
		Type:      EventAttemptSubmitted,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      payload,
	}
}

func generateEventID() string {
	return uuid.NewString()
}

// PartitionKey groups events that must be consumed in order: mail by recipient, attempts by quiz.
func (e *NotificationEvent) PartitionKey() string {
	switch data := e.Data.(type) {
	case EmailNotificationEvent:
		return data.RecipientEmail
	case AttemptSubmittedEvent:
		return data.QuizID
	}
	return e.ID
}

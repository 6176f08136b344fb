package models

import (
	"sort"
	"time"

	"gorm.io/gorm"
)

type QuizStatus string

const (
	QuizDraft    QuizStatus = "draft"
	QuizActive   QuizStatus = "active"
	QuizArchived QuizStatus = "archived"
)

// CanTransitionTo reports whether a quiz may move from s to next.
// Quizzes only move forward: draft -> active -> archived, with draft -> archived allowed.
func (s QuizStatus) CanTransitionTo(next QuizStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case QuizDraft:
		return next == QuizActive || next == QuizArchived
	case QuizActive:
		return next == QuizArchived
	case QuizArchived:
		return false
	}
	return false
}

type Quiz struct {
	ID           string     `json:"id" gorm:"primaryKey;size:36"`
	Title        string     `json:"title" gorm:"not null;size:200;index"`
	Description  *string    `json:"description,omitempty" gorm:"type:text"`
	Instructions *string    `json:"instructions,omitempty" gorm:"type:text"`
	Subject      string     `json:"subject" gorm:"not null;size:100;index"`
	Grade        string     `json:"grade" gorm:"not null;size:20;index"`
	TimeLimit    *int       `json:"time_limit,omitempty"` // minutes
	TotalPoints  int        `json:"total_points" gorm:"not null"`
	PassingScore float64    `json:"passing_score" gorm:"not null"`
	Status       QuizStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`

	// Randomization
	IsRandomized        bool `json:"is_randomized" gorm:"not null"`
	QuestionsPerAttempt *int `json:"questions_per_attempt,omitempty"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:36;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions   []QuizQuestion   `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	Assignments []QuizAssignment `json:"assignments,omitempty" gorm:"foreignKey:QuizID"`
	Creator     *User            `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizQuestion is one ordered entry of a quiz's question list.
type QuizQuestion struct {
	QuizID     string    `json:"quiz_id" gorm:"primaryKey;size:36"`
	QuestionID string    `json:"question_id" gorm:"primaryKey;size:36;index"`
	Position   int       `json:"position" gorm:"not null"`
	Question   *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

type QuizAssignment struct {
	QuizID     string    `json:"quiz_id" gorm:"primaryKey;size:36"`
	StudentID  string    `json:"student_id" gorm:"primaryKey;size:36;index"`
	AssignedAt time.Time `json:"assigned_at" gorm:"not null"`
	Student    *User     `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (QuizAssignment) TableName() string {
	return "quiz_assignments"
}

// HasTimeLimit reports whether submissions are subject to the time policy.
func (q *Quiz) HasTimeLimit() bool {
	return q.TimeLimit != nil && *q.TimeLimit > 0
}

// SampleSize returns the per-attempt question count for randomized quizzes, or 0 when every question is used.
func (q *Quiz) SampleSize() int {
	if !q.IsRandomized || q.QuestionsPerAttempt == nil || *q.QuestionsPerAttempt <= 0 {
		return 0
	}
	return *q.QuestionsPerAttempt
}

// OrderedQuestions returns the resolved questions in position order. Entries whose question
// was not loaded are skipped.
func (q *Quiz) OrderedQuestions() []*Question {
	entries := make([]QuizQuestion, len(q.Questions))
	copy(entries, q.Questions)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Position < entries[j].Position
	})

	questions := make([]*Question, 0, len(entries))
	for _, entry := range entries {
		if entry.Question != nil {
			questions = append(questions, entry.Question)
		}
	}
	return questions
}

func (q *Quiz) QuestionIDs() []string {
	questions := q.OrderedQuestions()
	ids := make([]string, 0, len(questions))
	for _, question := range questions {
		ids = append(ids, question.ID)
	}
	return ids
}

// IsOpenAt reports whether t falls inside the quiz's optional start/end window.
func (q *Quiz) IsOpenAt(t time.Time) bool {
	if q.StartDate != nil && t.Before(*q.StartDate) {
		return false
	}
	if q.EndDate != nil && t.After(*q.EndDate) {
		return false
	}
	return true
}

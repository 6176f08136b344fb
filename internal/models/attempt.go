package models

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

type AttemptAnswer struct {
	QuestionID     string `json:"question_id"`
	SelectedAnswer string `json:"selected_answer"`
	IsCorrect      bool   `json:"is_correct"`
	PointsEarned   int    `json:"points_earned"`
}

type QuizAttempt struct {
	ID        string `json:"id" gorm:"primaryKey;size:36"`
	QuizID    string `json:"quiz_id" gorm:"not null;size:36;index"`
	StudentID string `json:"student_id" gorm:"not null;size:36;index"`

	// Questions presented to the student, in presentation order.
	QuestionIDs datatypes.JSONSlice[string]        `json:"question_ids" gorm:"type:jsonb;not null"`
	Answers     datatypes.JSONSlice[AttemptAnswer] `json:"answers" gorm:"type:jsonb;not null"`

	Score       int           `json:"score" gorm:"not null"`
	TotalPoints int           `json:"total_points" gorm:"not null"`
	Percentage  float64       `json:"percentage" gorm:"not null"`
	Status      AttemptStatus `json:"status" gorm:"type:varchar(16);not null;index"`

	StartedAt        time.Time  `json:"started_at" gorm:"not null"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" gorm:"index"`
	TimeSpent        int        `json:"time_spent"` // seconds
	IsPassed         bool       `json:"is_passed" gorm:"not null"`
	IsLateSubmission bool       `json:"is_late_submission" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Quiz    *Quiz `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	Student *User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

func (a *QuizAttempt) IsCompleted() bool {
	return a.Status == AttemptCompleted
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

type QuestionOption struct {
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"is_correct" yaml:"is_correct"`
}

type Question struct {
	ID         string          `json:"id" gorm:"primaryKey;size:36"`
	Title      string          `json:"title" gorm:"not null;size:500"`
	Type       QuestionType    `json:"type" gorm:"type:varchar(32);not null;index"`
	Difficulty DifficultyLevel `json:"difficulty" gorm:"type:varchar(16);not null;index"`
	Subject    string          `json:"subject" gorm:"not null;size:100;index"`
	Grade      string          `json:"grade" gorm:"not null;size:20;index"`

	// Exactly one of Options or CorrectAnswer is populated, depending on Type.
	Options       datatypes.JSONSlice[QuestionOption] `json:"options,omitempty" gorm:"type:jsonb"`
	CorrectAnswer *string                             `json:"correct_answer,omitempty" gorm:"type:text"`
	Explanation   *string                             `json:"explanation,omitempty" gorm:"type:text"`

	Points   int  `json:"points" gorm:"not null"`
	IsActive bool `json:"is_active" gorm:"not null;index"`

	CreatedBy string    `json:"created_by" gorm:"not null;size:36;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Creator *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (Question) TableName() string {
	return "questions"
}

// IsChoice reports whether the question is graded against its option list.
func (q *Question) IsChoice() bool {
	return q.Type == MultipleChoice || q.Type == TrueFalse
}

// CorrectOption returns the first option flagged correct.
func (q *Question) CorrectOption() (QuestionOption, bool) {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt, true
		}
	}
	return QuestionOption{}, false
}

// OptionTexts returns the display text of every option, in order.
func (q *Question) OptionTexts() []string {
	texts := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		texts = append(texts, opt.Text)
	}
	return texts
}

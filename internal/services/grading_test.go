package services

import (
	"math/rand"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateTimePolicy(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		limit   *int
		elapsed time.Duration
		want    TimeVerdict
	}{
		{"within limit", intPtr(30), 29 * time.Minute, OnTime},
		{"exactly at limit", intPtr(30), 30 * time.Minute, OnTime},
		{"late but accepted", intPtr(30), 35 * time.Minute, Late},
		{"exactly at hard deadline", intPtr(30), 45 * time.Minute, Late},
		{"past hard deadline", intPtr(30), 46 * time.Minute, TimeExceeded},
		{"untimed quiz", nil, 10 * time.Hour, OnTime},
		{"zero limit is untimed", intPtr(0), 10 * time.Hour, OnTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateTimePolicy(tt.limit, start, start.Add(tt.elapsed)))
		})
	}
}

func TestIsPassing(t *testing.T) {
	tests := []struct {
		name    string
		score   int
		total   int
		passing float64
		want    bool
	}{
		{"rounding does not lift a fail", 2, 3, 66.67, false},
		{"exact threshold passes", 3, 5, 60, true},
		{"just below threshold", 59, 100, 60, false},
		{"empty total never passes a positive threshold", 0, 0, 50, false},
		{"zero threshold always passes", 0, 10, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPassing(tt.score, tt.total, tt.passing))
		})
	}
	assert.Equal(t, 66.67, ComputePercentage(2, 3))
}

func TestGradeAnswers(t *testing.T) {
	q1 := choiceQuestion("q1", 5, "4", "3", "5")
	q2 := shortAnswerQuestion("q2", 10, "Paris")
	bank := map[string]*models.Question{"q1": q1, "q2": q2}

	t.Run("mixed answers", func(t *testing.T) {
		graded, score := GradeAnswers(bank, []SubmittedAnswer{
			{QuestionID: "q1", SelectedAnswer: "3"},
			{QuestionID: "q2", SelectedAnswer: "  paris "},
		})

		require.Len(t, graded, 2)
		assert.False(t, graded[0].IsCorrect)
		assert.Equal(t, 0, graded[0].PointsEarned)
		assert.True(t, graded[1].IsCorrect)
		assert.Equal(t, 10, graded[1].PointsEarned)
		assert.Equal(t, 10, score)

		percentage := ComputePercentage(score, 15)
		assert.Equal(t, 66.67, percentage)
		assert.True(t, percentage >= 60)
	})

	t.Run("unknown question earns nothing", func(t *testing.T) {
		graded, score := GradeAnswers(bank, []SubmittedAnswer{{QuestionID: "missing", SelectedAnswer: "4"}})
		require.Len(t, graded, 1)
		assert.False(t, graded[0].IsCorrect)
		assert.Equal(t, 0, score)
	})

	t.Run("each answer graded on its own", func(t *testing.T) {
		graded, score := GradeAnswers(bank, []SubmittedAnswer{
			{QuestionID: "q1", SelectedAnswer: "4"},
			{QuestionID: "q1", SelectedAnswer: "4"},
		})
		require.Len(t, graded, 2)
		assert.True(t, graded[0].IsCorrect)
		assert.True(t, graded[1].IsCorrect)
		assert.Equal(t, 10, score)
	})

	t.Run("choice match is exact", func(t *testing.T) {
		_, score := GradeAnswers(bank, []SubmittedAnswer{{QuestionID: "q1", SelectedAnswer: " 4"}})
		assert.Equal(t, 0, score)
	})

	t.Run("same input same output", func(t *testing.T) {
		answers := []SubmittedAnswer{{QuestionID: "q1", SelectedAnswer: "4"}, {QuestionID: "q2", SelectedAnswer: "Rome"}}
		first, firstScore := GradeAnswers(bank, answers)
		second, secondScore := GradeAnswers(bank, answers)
		assert.Equal(t, first, second)
		assert.Equal(t, firstScore, secondScore)
	})
}

func TestComputePercentage(t *testing.T) {
	assert.Equal(t, 0.0, ComputePercentage(0, 0))
	assert.Equal(t, 0.0, ComputePercentage(5, 0))
	assert.Equal(t, 100.0, ComputePercentage(20, 20))
	assert.Equal(t, 33.33, ComputePercentage(1, 3))
}

func TestSelectQuestions(t *testing.T) {
	var questions []*models.Question
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		questions = append(questions, choiceQuestion(id, 1, "x", "y"))
	}

	t.Run("no sample keeps order", func(t *testing.T) {
		got := SelectQuestions(questions, 0, rand.New(rand.NewSource(1)))
		assert.Equal(t, questions, got)
	})

	t.Run("sample without replacement", func(t *testing.T) {
		got := SelectQuestions(questions, 4, rand.New(rand.NewSource(42)))
		require.Len(t, got, 4)
		seen := map[string]bool{}
		for _, q := range got {
			assert.False(t, seen[q.ID], "duplicate %s", q.ID)
			seen[q.ID] = true
		}
	})

	t.Run("sample capped at bank size", func(t *testing.T) {
		got := SelectQuestions(questions, 50, rand.New(rand.NewSource(7)))
		assert.Len(t, got, len(questions))
	})

	t.Run("input untouched", func(t *testing.T) {
		before := questionIDs(questions)
		SelectQuestions(questions, 3, rand.New(rand.NewSource(3)))
		assert.Equal(t, before, questionIDs(questions))
	})
}

func TestToStudentQuestion(t *testing.T) {
	sq := ToStudentQuestion(choiceQuestion("q1", 5, "4", "3"))
	assert.Equal(t, []string{"4", "3"}, sq.Options)

	short := ToStudentQuestion(shortAnswerQuestion("q2", 2, "Paris"))
	assert.Empty(t, short.Options)
	assert.Equal(t, 2, short.Points)
}

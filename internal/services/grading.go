package services

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// Submission window, as multiples of the quiz time limit.
const (
	LateSubmissionFactor = 1.0
	HardDeadlineFactor   = 1.5
)

type TimeVerdict int

const (
	OnTime TimeVerdict = iota
	Late
	TimeExceeded
)

// EvaluateTimePolicy judges a submission made at now for an attempt started at startedAt.
// A nil or non-positive limit means the quiz is untimed.
func EvaluateTimePolicy(limitMinutes *int, startedAt, now time.Time) TimeVerdict {
	if limitMinutes == nil || *limitMinutes <= 0 {
		return OnTime
	}
	elapsed := now.Sub(startedAt).Minutes()
	limit := float64(*limitMinutes)

	switch {
	case elapsed > limit*HardDeadlineFactor:
		return TimeExceeded
	case elapsed > limit*LateSubmissionFactor:
		return Late
	default:
		return OnTime
	}
}

// IsAnswerCorrect compares a selected answer with the question's correct representation.
func IsAnswerCorrect(q *models.Question, selected string) bool {
	switch q.Type {
	case models.MultipleChoice, models.TrueFalse:
		correct, ok := q.CorrectOption()
		return ok && selected == correct.Text
	case models.ShortAnswer:
		if q.CorrectAnswer == nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(selected), strings.TrimSpace(*q.CorrectAnswer))
	}
	return false
}

// GradeAnswers grades each answer against bank on its own. Unknown question ids earn nothing.
// Callers reject repeated question ids before grading.
func GradeAnswers(bank map[string]*models.Question, answers []SubmittedAnswer) ([]models.AttemptAnswer, int) {
	graded := make([]models.AttemptAnswer, 0, len(answers))
	score := 0

	for _, answer := range answers {
		result := models.AttemptAnswer{
			QuestionID:     answer.QuestionID,
			SelectedAnswer: answer.SelectedAnswer,
		}

		if question, known := bank[answer.QuestionID]; known && IsAnswerCorrect(question, answer.SelectedAnswer) {
			result.IsCorrect = true
			result.PointsEarned = question.Points
			score += question.Points
		}
		graded = append(graded, result)
	}
	return graded, score
}

func rawPercentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// ComputePercentage returns score/total as a percentage rounded to two decimals, or 0 for an empty total.
// The rounded value is for display only; use IsPassing for the pass decision.
func ComputePercentage(score, total int) float64 {
	return round2(rawPercentage(score, total))
}

// IsPassing compares the unrounded percentage with the passing score.
func IsPassing(score, total int, passingScore float64) bool {
	return rawPercentage(score, total) >= passingScore
}

// SelectQuestions returns the full ordered list, or a uniform sample without replacement
// when sampleSize is positive. The sample is capped at the bank size.
func SelectQuestions(questions []*models.Question, sampleSize int, rng *rand.Rand) []*models.Question {
	if sampleSize <= 0 {
		return questions
	}
	if sampleSize > len(questions) {
		sampleSize = len(questions)
	}

	pool := make([]*models.Question, len(questions))
	copy(pool, questions)
	// Partial Fisher-Yates: the first sampleSize slots end up uniformly chosen.
	for i := 0; i < sampleSize; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:sampleSize]
}

// ToStudentQuestion strips correctness data from a question.
func ToStudentQuestion(q *models.Question) StudentQuestion {
	sq := StudentQuestion{
		ID:         q.ID,
		Title:      q.Title,
		Type:       q.Type,
		Difficulty: q.Difficulty,
		Points:     q.Points,
	}
	if q.IsChoice() {
		sq.Options = q.OptionTexts()
	}
	return sq
}

// CorrectAnswerText returns the display form of the correct answer.
func CorrectAnswerText(q *models.Question) string {
	if q.IsChoice() {
		if opt, ok := q.CorrectOption(); ok {
			return opt.Text
		}
		return ""
	}
	if q.CorrectAnswer != nil {
		return *q.CorrectAnswer
	}
	return ""
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

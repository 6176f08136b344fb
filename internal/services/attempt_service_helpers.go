package services

import (
	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// ===== ATTEMPT HELPERS =====

func questionIDs(questions []*models.Question) []string {
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return ids
}

// questionBank indexes every question of the quiz by id.
func questionBank(quiz *models.Quiz) map[string]*models.Question {
	questions := quiz.OrderedQuestions()
	bank := make(map[string]*models.Question, len(questions))
	for _, q := range questions {
		bank[q.ID] = q
	}
	return bank
}

func newStartResponse(attempt *models.QuizAttempt, quiz *models.Quiz, presented []*models.Question, resumed bool) *StartAttemptResponse {
	questions := make([]StudentQuestion, 0, len(presented))
	for _, q := range presented {
		questions = append(questions, ToStudentQuestion(q))
	}
	return &StartAttemptResponse{
		AttemptID:   attempt.ID,
		QuizID:      attempt.QuizID,
		QuizTitle:   quiz.Title,
		TimeLimit:   quiz.TimeLimit,
		StartedAt:   attempt.StartedAt,
		TotalPoints: attempt.TotalPoints,
		Questions:   questions,
		Resumed:     resumed,
	}
}

// buildAttemptResult joins an attempt with its quiz. Correct answers are only revealed once
// the attempt is completed.
func buildAttemptResult(attempt *models.QuizAttempt, quiz *models.Quiz) *AttemptResult {
	result := &AttemptResult{
		AttemptID:        attempt.ID,
		QuizID:           attempt.QuizID,
		QuizTitle:        quiz.Title,
		Status:           attempt.Status,
		Score:            attempt.Score,
		TotalPoints:      attempt.TotalPoints,
		Percentage:       attempt.Percentage,
		PassingScore:     quiz.PassingScore,
		IsPassed:         attempt.IsPassed,
		IsLateSubmission: attempt.IsLateSubmission,
		StartedAt:        attempt.StartedAt,
		CompletedAt:      attempt.CompletedAt,
		TimeSpent:        attempt.TimeSpent,
		Answers:          []AnswerReview{},
	}
	if !attempt.IsCompleted() {
		return result
	}

	bank := questionBank(quiz)
	answered := make(map[string]bool, len(attempt.Answers))
	for _, answer := range attempt.Answers {
		review := AnswerReview{
			QuestionID:     answer.QuestionID,
			SelectedAnswer: answer.SelectedAnswer,
			IsCorrect:      answer.IsCorrect,
			PointsEarned:   answer.PointsEarned,
		}
		if q, ok := bank[answer.QuestionID]; ok {
			fillReview(&review, q)
		}
		answered[answer.QuestionID] = true
		result.Answers = append(result.Answers, review)
	}

	// Presented but unanswered questions are shown as wrong.
	for _, id := range attempt.QuestionIDs {
		if answered[id] {
			continue
		}
		if q, ok := bank[id]; ok {
			review := AnswerReview{QuestionID: id}
			fillReview(&review, q)
			result.Answers = append(result.Answers, review)
		}
	}
	return result
}

func fillReview(review *AnswerReview, q *models.Question) {
	review.Title = q.Title
	review.Type = q.Type
	review.Options = q.Options
	review.CorrectAnswer = CorrectAnswerText(q)
	review.Explanation = q.Explanation
	review.Points = q.Points
}

func summarizeAttempt(attempt *models.QuizAttempt) AttemptSummary {
	return AttemptSummary{
		ID:          attempt.ID,
		Status:      attempt.Status,
		Score:       attempt.Score,
		Percentage:  attempt.Percentage,
		IsPassed:    attempt.IsPassed,
		StartedAt:   attempt.StartedAt,
		CompletedAt: attempt.CompletedAt,
	}
}

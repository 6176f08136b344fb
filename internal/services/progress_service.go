package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

const (
	recentAttemptsLimit = 10
	trendWindow         = 5
	trendThreshold      = 5.0

	easyBucketFrom  = 80.0
	hardBucketBelow = 60.0
)

type progressService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewProgressService(repo repositories.Repository, logger *slog.Logger) ProgressService {
	return &progressService{
		repo:   repo,
		logger: logger,
	}
}

func (s *progressService) GetOverview(ctx context.Context, studentID string) (*ProgressOverview, error) {
	attempts, err := s.completed(ctx, studentID, repositories.AttemptFilters{})
	if err != nil {
		return nil, err
	}

	overview := &ProgressOverview{
		TotalQuizzes: len(attempts),
		BySubject:    []SubjectBreakdown{},
	}
	if len(attempts) == 0 {
		return overview, nil
	}

	type subjectTotals struct {
		attempts int
		score    int
		passed   int
	}
	var order []string
	bySubject := make(map[string]*subjectTotals)

	totalScore := 0
	for _, a := range attempts {
		totalScore += a.Score
		if a.IsPassed {
			overview.PassedCount++
		}

		subject := attemptSubject(a)
		st, ok := bySubject[subject]
		if !ok {
			st = &subjectTotals{}
			bySubject[subject] = st
			order = append(order, subject)
		}
		st.attempts++
		st.score += a.Score
		if a.IsPassed {
			st.passed++
		}
	}

	overview.FailedCount = overview.TotalQuizzes - overview.PassedCount
	overview.AverageScore = round2(float64(totalScore) / float64(overview.TotalQuizzes))
	overview.PassRate = rate(overview.PassedCount, overview.TotalQuizzes)

	for _, subject := range order {
		st := bySubject[subject]
		overview.BySubject = append(overview.BySubject, SubjectBreakdown{
			Subject:      subject,
			Attempts:     st.attempts,
			AverageScore: round2(float64(st.score) / float64(st.attempts)),
			PassRate:     rate(st.passed, st.attempts),
		})
	}
	return overview, nil
}

// GetStatistics buckets attempts by how well they went: at least 80% is easy, under 60% is hard.
func (s *progressService) GetStatistics(ctx context.Context, studentID string) (*ProgressStatistics, error) {
	attempts, err := s.completed(ctx, studentID, repositories.AttemptFilters{})
	if err != nil {
		return nil, err
	}

	type bucketTotals struct {
		total, passed int
		percentage    float64
	}
	totals := map[models.DifficultyLevel]*bucketTotals{
		models.DifficultyEasy:   {},
		models.DifficultyMedium: {},
		models.DifficultyHard:   {},
	}
	for _, a := range attempts {
		b := totals[bucketFor(a.Percentage)]
		b.total++
		b.percentage += a.Percentage
		if a.IsPassed {
			b.passed++
		}
	}

	stats := &ProgressStatistics{
		ByDifficulty:   make(map[models.DifficultyLevel]PerformanceBucket, len(totals)),
		RecentAttempts: []*AttemptSummaryWithQuiz{},
	}
	for level, b := range totals {
		bucket := PerformanceBucket{Total: b.total, Passed: b.passed}
		if b.total > 0 {
			bucket.AveragePercentage = round2(b.percentage / float64(b.total))
			bucket.PassRate = rate(b.passed, b.total)
		}
		stats.ByDifficulty[level] = bucket
	}

	// attempts are oldest first
	for i := len(attempts) - 1; i >= 0 && len(stats.RecentAttempts) < recentAttemptsLimit; i-- {
		a := attempts[i]
		item := &AttemptSummaryWithQuiz{AttemptSummary: summarizeAttempt(a), QuizID: a.QuizID}
		if a.Quiz != nil {
			item.QuizTitle = a.Quiz.Title
			item.Subject = a.Quiz.Subject
		}
		stats.RecentAttempts = append(stats.RecentAttempts, item)
	}
	return stats, nil
}

func (s *progressService) GetChart(ctx context.Context, studentID string, filters ChartFilters) (*ProgressChart, error) {
	attempts, err := s.completed(ctx, studentID, repositories.AttemptFilters{
		Subject:  filters.Subject,
		DateFrom: filters.From,
		DateTo:   filters.To,
	})
	if err != nil {
		return nil, err
	}

	chart := &ProgressChart{
		Points:  make([]ChartPoint, 0, len(attempts)),
		Summary: ChartSummary{Trend: TrendStable},
	}
	percentages := make([]float64, 0, len(attempts))
	sum := 0.0
	for _, a := range attempts {
		point := ChartPoint{
			Score:      a.Score,
			Percentage: a.Percentage,
			IsPassed:   a.IsPassed,
		}
		if a.CompletedAt != nil {
			point.Date = *a.CompletedAt
		}
		if a.Quiz != nil {
			point.QuizTitle = a.Quiz.Title
			point.Subject = a.Quiz.Subject
		}
		chart.Points = append(chart.Points, point)
		percentages = append(percentages, a.Percentage)
		sum += a.Percentage
	}

	chart.Summary.TotalAttempts = len(chart.Points)
	if len(chart.Points) > 0 {
		chart.Summary.AveragePercentage = round2(sum / float64(len(chart.Points)))
	}
	chart.Summary.Trend = computeTrend(percentages)
	return chart, nil
}

func (s *progressService) completed(ctx context.Context, studentID string, filters repositories.AttemptFilters) ([]*models.QuizAttempt, error) {
	attempts, err := s.repo.Attempt().GetCompletedByStudent(ctx, nil, studentID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed attempts: %w", err)
	}
	return attempts, nil
}

// computeTrend compares the mean of the last five percentages with the mean of the oldest
// points, up to five, that are not among those last five.
func computeTrend(percentages []float64) Trend {
	n := len(percentages)
	if n < trendWindow {
		return TrendStable
	}
	recent := percentages[n-trendWindow:]
	earlier := percentages[:min(trendWindow, n-trendWindow)]
	if len(earlier) == 0 {
		return TrendStable
	}

	diff := mean(recent) - mean(earlier)
	switch {
	case diff > trendThreshold:
		return TrendImproving
	case diff < -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func bucketFor(percentage float64) models.DifficultyLevel {
	switch {
	case percentage >= easyBucketFrom:
		return models.DifficultyEasy
	case percentage < hardBucketBelow:
		return models.DifficultyHard
	default:
		return models.DifficultyMedium
	}
}

func attemptSubject(a *models.QuizAttempt) string {
	if a.Quiz == nil {
		return "Unknown"
	}
	return a.Quiz.Subject
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

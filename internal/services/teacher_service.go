package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type teacherService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewTeacherService(repo repositories.Repository, logger *slog.Logger) TeacherService {
	return &teacherService{
		repo:   repo,
		logger: logger,
	}
}

func (s *teacherService) GetDashboard(ctx context.Context, teacherID string) (*TeacherDashboard, error) {
	questions, err := s.repo.Question().CountByCreator(ctx, nil, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	quizzes, err := s.repo.Quiz().CountByCreator(ctx, nil, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to count quizzes: %w", err)
	}
	students, err := s.repo.Quiz().CountStudentsByCreator(ctx, nil, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	submissions, err := s.repo.Attempt().GetCreatorStats(ctx, nil, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission stats: %w", err)
	}

	return &TeacherDashboard{
		QuestionsCreated:  questions,
		QuizzesCreated:    quizzes,
		TotalStudents:     students,
		TotalSubmissions:  submissions.TotalSubmissions,
		AveragePercentage: round2(submissions.AveragePercentage),
	}, nil
}

// ListStudents lists the students assigned to any of the teacher's quizzes.
func (s *teacherService) ListStudents(ctx context.Context, teacherID string, filters repositories.UserFilters) (*UserListResponse, error) {
	filters.Limit, filters.Offset = NormalizePage(filters.Limit, filters.Offset)
	student := models.RoleStudent
	filters.Role = &student

	users, total, err := s.repo.Quiz().GetStudentsByCreator(ctx, nil, teacherID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return &UserListResponse{
		Users:      toUserResponses(users),
		Pagination: NewPagination(total, filters.Limit, filters.Offset),
	}, nil
}

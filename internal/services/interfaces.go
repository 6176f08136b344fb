package services

import (
	"context"
	"io"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
)

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error)
	VerifyEmail(ctx context.Context, req *VerifyEmailRequest) error
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *ResetPasswordRequest) error

	// ResolveIdentity authenticates a bearer credential and confirms the account is still usable.
	ResolveIdentity(ctx context.Context, credential string) (*auth.Identity, error)

	GetProfile(ctx context.Context, userID string) (*UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error
}

type UserService interface {
	List(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	InviteTeacher(ctx context.Context, req *InviteTeacherRequest, caller auth.Identity) (*InviteTeacherResponse, error)
	SetStatus(ctx context.Context, userID string, active bool, caller auth.Identity) (*UserResponse, error)
	Delete(ctx context.Context, userID string, caller auth.Identity) error
}

type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, caller auth.Identity) (*models.Question, error)
	GetByID(ctx context.Context, id string, caller auth.Identity) (*models.Question, error)
	Update(ctx context.Context, id string, req *UpdateQuestionRequest, caller auth.Identity) (*models.Question, error)
	Delete(ctx context.Context, id string, caller auth.Identity) (*DeleteOutcome, error)
	List(ctx context.Context, filters repositories.QuestionFilters, caller auth.Identity) (*QuestionListResponse, error)
}

type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest, caller auth.Identity) (*QuizResponse, error)
	GetByID(ctx context.Context, id string, caller auth.Identity) (*QuizResponse, error)
	Update(ctx context.Context, id string, req *UpdateQuizRequest, caller auth.Identity) (*QuizResponse, error)
	Delete(ctx context.Context, id string, caller auth.Identity) (*DeleteOutcome, error)
	List(ctx context.Context, filters repositories.QuizFilters, caller auth.Identity) (*QuizListResponse, error)

	Assign(ctx context.Context, quizID string, studentIDs []string, caller auth.Identity) (*AssignResult, error)
	Unassign(ctx context.Context, quizID string, studentIDs []string, caller auth.Identity) (*UnassignResult, error)
	GetResults(ctx context.Context, quizID string, filters repositories.AttemptFilters, caller auth.Identity) (*QuizResultsResponse, error)
}

type AttemptService interface {
	Start(ctx context.Context, quizID, studentID string) (*StartAttemptResponse, error)
	Submit(ctx context.Context, attemptID, studentID string, answers []SubmittedAnswer) (*AttemptResult, error)
	GetResult(ctx context.Context, attemptID, studentID string) (*AttemptResult, error)
	ListByStudent(ctx context.Context, studentID string, filters repositories.AttemptFilters) (*AttemptListResponse, error)
	GetStudentQuizzes(ctx context.Context, studentID string) ([]*StudentQuizItem, error)
}

type ProgressService interface {
	GetOverview(ctx context.Context, studentID string) (*ProgressOverview, error)
	GetStatistics(ctx context.Context, studentID string) (*ProgressStatistics, error)
	GetChart(ctx context.Context, studentID string, filters ChartFilters) (*ProgressChart, error)
}

type TeacherService interface {
	GetDashboard(ctx context.Context, teacherID string) (*TeacherDashboard, error)
	ListStudents(ctx context.Context, teacherID string, filters repositories.UserFilters) (*UserListResponse, error)
}

type ImportExportService interface {
	// ImportStudents accepts .csv and .xlsx files.
	ImportStudents(ctx context.Context, filename string, reader io.Reader, caller auth.Identity) (*ImportResult, error)
	ExportQuizResults(ctx context.Context, quizID string, caller auth.Identity) ([]byte, error)
}

type AuditService interface {
	// Record is best-effort: failures are logged and dropped.
	Record(ctx context.Context, entry AuditEntry)
	List(ctx context.Context, filters repositories.AuditFilters) ([]*models.AuditLog, Pagination, error)
}

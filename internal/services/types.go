package services

import (
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// ===== PAGINATION =====

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
	Limit int   `json:"limit"`
}

// NewPagination derives page numbers from a normalized limit/offset pair.
func NewPagination(total int64, limit, offset int) Pagination {
	if limit <= 0 {
		limit = models.DefaultPageSize
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Total: total,
		Page:  offset/limit + 1,
		Pages: pages,
		Limit: limit,
	}
}

// NormalizePage clamps limit to [1, MaxPageSize] with DefaultPageSize for unset values.
func NormalizePage(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = models.DefaultPageSize
	case limit > models.MaxPageSize:
		limit = models.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ===== AUTH =====

type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email,max=255"`
	Username  string  `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password  string  `json:"password" validate:"required,strong_password"`
	FirstName string  `json:"first_name" validate:"required,max=50"`
	LastName  string  `json:"last_name" validate:"required,max=50"`
	Grade     *string `json:"grade,omitempty" validate:"omitempty,max=20"`
	School    *string `json:"school,omitempty" validate:"omitempty,max=200"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,strong_password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password,nefield=CurrentPassword"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=50"`
	Grade     *string `json:"grade,omitempty" validate:"omitempty,max=20"`
	School    *string `json:"school,omitempty" validate:"omitempty,max=200"`
}

type UserResponse struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Username    string      `json:"username"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	FullName    string      `json:"full_name"`
	Role        models.Role `json:"role"`
	Grade       *string     `json:"grade,omitempty"`
	School      *string     `json:"school,omitempty"`
	IsActive    bool        `json:"is_active"`
	IsVerified  bool        `json:"is_verified"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

type AuthResponse struct {
	User         *UserResponse `json:"user"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresAt    time.Time     `json:"expires_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ===== ADMIN USERS =====

type InviteTeacherRequest struct {
	Email     string  `json:"email" validate:"required,email,max=255"`
	Username  string  `json:"username" validate:"required,min=3,max=30,alphanum"`
	FirstName string  `json:"first_name" validate:"required,max=50"`
	LastName  string  `json:"last_name" validate:"required,max=50"`
	School    *string `json:"school,omitempty" validate:"omitempty,max=200"`
}

type InviteTeacherResponse struct {
	User              *UserResponse `json:"user"`
	TemporaryPassword string        `json:"temporary_password"`
}

type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type UserListResponse struct {
	Users      []*UserResponse `json:"users"`
	Pagination Pagination      `json:"pagination"`
}

// ===== QUESTIONS =====

type CreateQuestionRequest struct {
	Title         string                  `json:"title" validate:"required,max=500"`
	Type          models.QuestionType     `json:"type" validate:"required,question_type"`
	Difficulty    models.DifficultyLevel  `json:"difficulty" validate:"required,difficulty_level"`
	Subject       string                  `json:"subject" validate:"required,max=100"`
	Grade         string                  `json:"grade" validate:"required,max=20"`
	Options       []models.QuestionOption `json:"options,omitempty" validate:"omitempty,max=10,dive"`
	CorrectAnswer *string                 `json:"correct_answer,omitempty"`
	Explanation   *string                 `json:"explanation,omitempty"`
	Points        int                     `json:"points" validate:"min=0,max=100"`
}

// UpdateQuestionRequest is a partial update; nil fields are left unchanged.
type UpdateQuestionRequest struct {
	Title         *string                  `json:"title,omitempty" validate:"omitempty,min=1,max=500"`
	Type          *models.QuestionType     `json:"type,omitempty" validate:"omitempty,question_type"`
	Difficulty    *models.DifficultyLevel  `json:"difficulty,omitempty" validate:"omitempty,difficulty_level"`
	Subject       *string                  `json:"subject,omitempty" validate:"omitempty,max=100"`
	Grade         *string                  `json:"grade,omitempty" validate:"omitempty,max=20"`
	Options       *[]models.QuestionOption `json:"options,omitempty"`
	CorrectAnswer *string                  `json:"correct_answer,omitempty"`
	Explanation   *string                  `json:"explanation,omitempty"`
	Points        *int                     `json:"points,omitempty" validate:"omitempty,min=0,max=100"`
	IsActive      *bool                    `json:"is_active,omitempty"`
}

type QuestionListResponse struct {
	Questions  []*models.Question `json:"questions"`
	Pagination Pagination         `json:"pagination"`
}

// DeleteOutcome tells the caller whether a delete was downgraded to a soft delete.
type DeleteOutcome struct {
	SoftDeleted bool   `json:"soft_deleted"`
	Message     string `json:"message"`
}

// ===== QUIZZES =====

type CreateQuizRequest struct {
	Title               string            `json:"title" validate:"required,max=200"`
	Description         *string           `json:"description,omitempty"`
	Instructions        *string           `json:"instructions,omitempty"`
	Subject             string            `json:"subject" validate:"required,max=100"`
	Grade               string            `json:"grade" validate:"required,max=20"`
	QuestionIDs         []string          `json:"question_ids" validate:"required,min=1,dive,required"`
	TimeLimit           *int              `json:"time_limit,omitempty" validate:"omitempty,min=1,max=600"`
	PassingScore        float64           `json:"passing_score" validate:"min=0,max=100"`
	IsRandomized        bool              `json:"is_randomized"`
	QuestionsPerAttempt *int              `json:"questions_per_attempt,omitempty" validate:"omitempty,min=1"`
	StartDate           *time.Time        `json:"start_date,omitempty"`
	EndDate             *time.Time        `json:"end_date,omitempty"`
	Status              models.QuizStatus `json:"status,omitempty" validate:"omitempty,quiz_status"`
}

type UpdateQuizRequest struct {
	Title               *string            `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description         *string            `json:"description,omitempty"`
	Instructions        *string            `json:"instructions,omitempty"`
	Subject             *string            `json:"subject,omitempty" validate:"omitempty,max=100"`
	Grade               *string            `json:"grade,omitempty" validate:"omitempty,max=20"`
	QuestionIDs         *[]string          `json:"question_ids,omitempty"`
	TimeLimit           *int               `json:"time_limit,omitempty" validate:"omitempty,min=1,max=600"`
	PassingScore        *float64           `json:"passing_score,omitempty" validate:"omitempty,min=0,max=100"`
	IsRandomized        *bool              `json:"is_randomized,omitempty"`
	QuestionsPerAttempt *int               `json:"questions_per_attempt,omitempty" validate:"omitempty,min=1"`
	StartDate           *time.Time         `json:"start_date,omitempty"`
	EndDate             *time.Time         `json:"end_date,omitempty"`
	Status              *models.QuizStatus `json:"status,omitempty" validate:"omitempty,quiz_status"`
}

type AssignQuizRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
}

type AssignResult struct {
	AssignedCount int    `json:"assigned_count"`
	Message       string `json:"message"`
}

type UnassignResult struct {
	RemovedCount int64 `json:"removed_count"`
}

type QuizResponse struct {
	*models.Quiz
	QuestionCount    int      `json:"question_count"`
	AssignedStudents []string `json:"assigned_students,omitempty"`
}

type QuizListResponse struct {
	Quizzes    []*models.Quiz `json:"quizzes"`
	Pagination Pagination     `json:"pagination"`
}

type QuizResultsResponse struct {
	Quiz       QuizSummary           `json:"quiz"`
	Results    []*models.QuizAttempt `json:"results"`
	Pagination Pagination            `json:"pagination"`
}

type QuizSummary struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Subject      string  `json:"subject"`
	Grade        string  `json:"grade"`
	TotalPoints  int     `json:"total_points"`
	PassingScore float64 `json:"passing_score"`
}

// ===== ATTEMPTS =====

// StudentQuestion is a question as shown to a student, without correctness data.
type StudentQuestion struct {
	ID         string                 `json:"id"`
	Title      string                 `json:"title"`
	Type       models.QuestionType    `json:"type"`
	Difficulty models.DifficultyLevel `json:"difficulty"`
	Points     int                    `json:"points"`
	Options    []string               `json:"options,omitempty"`
}

type StartAttemptResponse struct {
	AttemptID   string            `json:"attempt_id"`
	QuizID      string            `json:"quiz_id"`
	QuizTitle   string            `json:"quiz_title"`
	TimeLimit   *int              `json:"time_limit,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	TotalPoints int               `json:"total_points"`
	Questions   []StudentQuestion `json:"questions"`
	Resumed     bool              `json:"resumed"`
}

type SubmittedAnswer struct {
	QuestionID     string `json:"question_id" validate:"required"`
	SelectedAnswer string `json:"selected_answer"`
}

type SubmitAttemptRequest struct {
	Answers []SubmittedAnswer `json:"answers" validate:"unique=QuestionID,dive"`
}

type AnswerReview struct {
	QuestionID     string                  `json:"question_id"`
	Title          string                  `json:"title"`
	Type           models.QuestionType     `json:"type"`
	Options        []models.QuestionOption `json:"options,omitempty"`
	CorrectAnswer  string                  `json:"correct_answer"`
	Explanation    *string                 `json:"explanation,omitempty"`
	SelectedAnswer string                  `json:"selected_answer"`
	IsCorrect      bool                    `json:"is_correct"`
	PointsEarned   int                     `json:"points_earned"`
	Points         int                     `json:"points"`
}

type AttemptResult struct {
	AttemptID        string               `json:"attempt_id"`
	QuizID           string               `json:"quiz_id"`
	QuizTitle        string               `json:"quiz_title"`
	Status           models.AttemptStatus `json:"status"`
	Score            int                  `json:"score"`
	TotalPoints      int                  `json:"total_points"`
	Percentage       float64              `json:"percentage"`
	PassingScore     float64              `json:"passing_score"`
	IsPassed         bool                 `json:"is_passed"`
	IsLateSubmission bool                 `json:"is_late_submission"`
	StartedAt        time.Time            `json:"started_at"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
	TimeSpent        int                  `json:"time_spent"`
	Answers          []AnswerReview       `json:"answers"`
}

type AttemptListResponse struct {
	Attempts   []*models.QuizAttempt `json:"attempts"`
	Pagination Pagination            `json:"pagination"`
}

type StudentQuizItem struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  *string         `json:"description,omitempty"`
	Subject      string          `json:"subject"`
	Grade        string          `json:"grade"`
	TimeLimit    *int            `json:"time_limit,omitempty"`
	TotalPoints  int             `json:"total_points"`
	PassingScore float64         `json:"passing_score"`
	StartDate    *time.Time      `json:"start_date,omitempty"`
	EndDate      *time.Time      `json:"end_date,omitempty"`
	AttemptCount int64           `json:"attempt_count"`
	LastAttempt  *AttemptSummary `json:"last_attempt,omitempty"`
}

type AttemptSummary struct {
	ID          string               `json:"id"`
	Status      models.AttemptStatus `json:"status"`
	Score       int                  `json:"score"`
	Percentage  float64              `json:"percentage"`
	IsPassed    bool                 `json:"is_passed"`
	StartedAt   time.Time            `json:"started_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
}

// ===== PROGRESS =====

type SubjectBreakdown struct {
	Subject      string  `json:"subject"`
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"average_score"`
	PassRate     float64 `json:"pass_rate"`
}

type ProgressOverview struct {
	TotalQuizzes int                `json:"total_quizzes"`
	AverageScore float64            `json:"average_score"`
	PassRate     float64            `json:"pass_rate"`
	PassedCount  int                `json:"passed_count"`
	FailedCount  int                `json:"failed_count"`
	BySubject    []SubjectBreakdown `json:"by_subject"`
}

type PerformanceBucket struct {
	Total             int     `json:"total"`
	Passed            int     `json:"passed"`
	AveragePercentage float64 `json:"average_percentage"`
	PassRate          float64 `json:"pass_rate"`
}

type ProgressStatistics struct {
	ByDifficulty   map[models.DifficultyLevel]PerformanceBucket `json:"by_difficulty"`
	RecentAttempts []*AttemptSummaryWithQuiz                    `json:"recent_attempts"`
}

type AttemptSummaryWithQuiz struct {
	AttemptSummary
	QuizID    string `json:"quiz_id"`
	QuizTitle string `json:"quiz_title"`
	Subject   string `json:"subject"`
}

type ChartFilters struct {
	From    *time.Time `json:"from,omitempty"`
	To      *time.Time `json:"to,omitempty"`
	Subject string     `json:"subject,omitempty"`
}

type ChartPoint struct {
	Date       time.Time `json:"date"`
	Score      int       `json:"score"`
	Percentage float64   `json:"percentage"`
	QuizTitle  string    `json:"quiz_title"`
	Subject    string    `json:"subject"`
	IsPassed   bool      `json:"is_passed"`
}

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

type ChartSummary struct {
	TotalAttempts     int     `json:"total_attempts"`
	AveragePercentage float64 `json:"average_percentage"`
	Trend             Trend   `json:"trend"`
}

type ProgressChart struct {
	Points  []ChartPoint `json:"points"`
	Summary ChartSummary `json:"summary"`
}

// ===== TEACHER =====

type TeacherDashboard struct {
	QuestionsCreated  int64   `json:"questions_created"`
	QuizzesCreated    int64   `json:"quizzes_created"`
	TotalStudents     int64   `json:"total_students"`
	TotalSubmissions  int64   `json:"total_submissions"`
	AveragePercentage float64 `json:"average_percentage"`
}

// ===== IMPORT =====

type ImportRowError struct {
	Row     int    `json:"row"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

type ImportResult struct {
	Total      int              `json:"total"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors"`
}

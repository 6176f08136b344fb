package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// PingFunc reports whether a backing dependency is reachable.
type PingFunc func(ctx context.Context) error

type HandlerManager struct {
	authHandler     *AuthHandler
	questionHandler *QuestionHandler
	quizHandler     *QuizHandler
	studentHandler  *StudentHandler
	progressHandler *ProgressHandler
	teacherHandler  *TeacherHandler
	adminHandler    *AdminHandler

	resolver IdentityResolver
	checks   map[string]PingFunc
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	checks map[string]PingFunc,
) *HandlerManager {
	return &HandlerManager{
		authHandler:     NewAuthHandler(serviceManager.Auth(), logger),
		questionHandler: NewQuestionHandler(serviceManager.Question(), logger),
		quizHandler:     NewQuizHandler(serviceManager.Quiz(), serviceManager.ImportExport(), logger),
		studentHandler:  NewStudentHandler(serviceManager.Attempt(), logger),
		progressHandler: NewProgressHandler(serviceManager.Progress(), logger),
		teacherHandler:  NewTeacherHandler(serviceManager.Teacher(), logger),
		adminHandler:    NewAdminHandler(serviceManager.User(), serviceManager.ImportExport(), serviceManager.Audit(), logger),
		resolver:        serviceManager.Auth(),
		checks:          checks,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")

	// Public auth routes
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", hm.authHandler.Register)
		authGroup.POST("/login", hm.authHandler.Login)
		authGroup.POST("/refresh", hm.authHandler.Refresh)
		authGroup.POST("/verify-email", hm.authHandler.VerifyEmail)
		authGroup.POST("/resend-verification", hm.authHandler.ResendVerification)
		authGroup.POST("/forgot-password", hm.authHandler.ForgotPassword)
		authGroup.POST("/reset-password", hm.authHandler.ResetPassword)
	}

	protected := v1.Group("", Authenticate(hm.resolver))

	me := protected.Group("/auth/me")
	{
		me.GET("", hm.authHandler.GetProfile)
		me.PUT("", hm.authHandler.UpdateProfile)
		me.PUT("/password", hm.authHandler.ChangePassword)
	}

	authors := protected.Group("", RequireRoles(models.RoleTeacher, models.RoleAdmin))

	questions := authors.Group("/questions")
	{
		questions.POST("", hm.questionHandler.CreateQuestion)
		questions.GET("", hm.questionHandler.ListQuestions)
		questions.GET("/:id", hm.questionHandler.GetQuestion)
		questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
		questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
	}

	quizzes := authors.Group("/quizzes")
	{
		quizzes.POST("", hm.quizHandler.CreateQuiz)
		quizzes.GET("", hm.quizHandler.ListQuizzes)
		quizzes.GET("/:id", hm.quizHandler.GetQuiz)
		quizzes.PUT("/:id", hm.quizHandler.UpdateQuiz)
		quizzes.DELETE("/:id", hm.quizHandler.DeleteQuiz)
		quizzes.POST("/:id/assign", hm.quizHandler.AssignQuiz)
		quizzes.POST("/:id/unassign", hm.quizHandler.UnassignQuiz)
		quizzes.GET("/:id/results", hm.quizHandler.GetQuizResults)
		quizzes.GET("/:id/results/export", hm.quizHandler.ExportQuizResults)
	}

	teacher := protected.Group("/teacher", RequireRoles(models.RoleTeacher))
	{
		teacher.GET("/dashboard", hm.teacherHandler.GetDashboard)
		teacher.GET("/students", hm.teacherHandler.ListStudents)
	}

	student := protected.Group("/student", RequireRoles(models.RoleStudent))
	{
		student.GET("/quizzes", hm.studentHandler.ListQuizzes)
		student.POST("/quizzes/:id/start", hm.studentHandler.StartQuiz)
		student.POST("/attempts/:id/submit", hm.studentHandler.SubmitAttempt)
		student.GET("/attempts", hm.studentHandler.ListAttempts)
		student.GET("/attempts/:id", hm.studentHandler.GetAttempt)
	}

	progress := protected.Group("/progress", RequireRoles(models.RoleStudent))
	{
		progress.GET("/overview", hm.progressHandler.GetOverview)
		progress.GET("/statistics", hm.progressHandler.GetStatistics)
		progress.GET("/chart", hm.progressHandler.GetChart)
	}

	admin := protected.Group("/admin", RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users", hm.adminHandler.ListUsers)
		admin.POST("/teachers", hm.adminHandler.InviteTeacher)
		admin.PATCH("/users/:id/status", hm.adminHandler.UpdateUserStatus)
		admin.DELETE("/users/:id", hm.adminHandler.DeleteUser)
		admin.POST("/students/import", hm.adminHandler.ImportStudents)
		admin.GET("/audit-logs", hm.adminHandler.ListAuditLogs)
	}
}

// HealthCheck pings every registered dependency and answers 503 when any is down.
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(hm.checks))
	for name := range hm.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	components := make(map[string]string, len(names))
	for _, name := range names {
		if err := hm.checks[name](ctx); err != nil {
			components[name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "healthy"
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":     overall,
		"service":    "quiz-service",
		"components": components,
	})
}

package services

import (
	"log/slog"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
)

// ServiceManager exposes every domain service to the transport layer.
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Question() QuestionService
	Quiz() QuizService
	Attempt() AttemptService
	Progress() ProgressService
	Teacher() TeacherService
	ImportExport() ImportExportService
	Audit() AuditService
}

// Dependencies are the shared collaborators every service is built from.
type Dependencies struct {
	Repo      repositories.Repository
	Bank      *cache.QuizBankCache
	Publisher events.EventPublisher
	Tokens    *auth.JWTManager
	Resolver  auth.TokenResolver
	Validator *validator.Validator
	Logger    *slog.Logger
}

type serviceManager struct {
	auth         AuthService
	user         UserService
	question     QuestionService
	quiz         QuizService
	attempt      AttemptService
	progress     ProgressService
	teacher      TeacherService
	importExport ImportExportService
	audit        AuditService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	if deps.Resolver == nil {
		deps.Resolver = deps.Tokens
	}

	audit := NewAuditService(deps.Repo, deps.Logger)
	notifier := NewNotificationEventService(deps.Publisher, deps.Logger)

	return &serviceManager{
		auth:         NewAuthService(deps.Repo, deps.Tokens, deps.Resolver, notifier, audit, deps.Validator, deps.Logger),
		user:         NewUserService(deps.Repo, notifier, audit, deps.Validator, deps.Logger),
		question:     NewQuestionService(deps.Repo, deps.Bank, audit, deps.Validator, deps.Logger),
		quiz:         NewQuizService(deps.Repo, deps.Bank, notifier, audit, deps.Validator, deps.Logger),
		attempt:      NewAttemptService(deps.Repo, deps.Bank, notifier, audit, deps.Validator, deps.Logger),
		progress:     NewProgressService(deps.Repo, deps.Logger),
		teacher:      NewTeacherService(deps.Repo, deps.Logger),
		importExport: NewImportExportService(deps.Repo, audit, deps.Logger),
		audit:        audit,
	}
}

func (m *serviceManager) Auth() AuthService                 { return m.auth }
func (m *serviceManager) User() UserService                 { return m.user }
func (m *serviceManager) Question() QuestionService         { return m.question }
func (m *serviceManager) Quiz() QuizService                 { return m.quiz }
func (m *serviceManager) Attempt() AttemptService           { return m.attempt }
func (m *serviceManager) Progress() ProgressService         { return m.progress }
func (m *serviceManager) Teacher() TeacherService           { return m.teacher }
func (m *serviceManager) ImportExport() ImportExportService { return m.importExport }
func (m *serviceManager) Audit() AuditService               { return m.audit }

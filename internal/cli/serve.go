package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/cache"
	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/SAP-F-2025/quiz-service/internal/handlers"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/SAP-F-2025/quiz-service/pkg"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// NewServeCmd builds the CLI subcommand that starts the HTTP API.
func NewServeCmd(port *string) *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *port, skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on startup")
	return cmd
}

func runServer(ctx context.Context, portFlag string, skipMigrations bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if portFlag != "" {
		cfg.Port = portFlag
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := logger.Slog()

	if !skipMigrations {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	db, err := pkg.InitDatabase(cfg, logger.Slog())
	if err != nil {
		return err
	}
	repo := postgres.NewRepository(db)
	defer repo.Close()

	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	bank := cache.NewQuizBankCache(cache.NewRedisCache(redisClient, slogger), cfg.QuizCacheTTL, slogger)

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.LogError(err, "Failed to close event publisher")
		}
	}()

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	resolver, err := newResolver(cfg, tokens, repo, logger)
	if err != nil {
		return err
	}

	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      repo,
		Bank:      bank,
		Publisher: publisher,
		Tokens:    tokens,
		Resolver:  resolver,
		Validator: validator.New(),
		Logger:    slogger,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(handlers.RequestID(), handlers.RequestMeta(), utils.LoggerMiddleware(logger))

	handlers.NewHandlerManager(serviceManager, logger, map[string]handlers.PingFunc{
		"database": repo.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}).SetupRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting quiz service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("Shutting down server")
	case <-ctx.Done():
		logger.Info("Context canceled, shutting down server")
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newResolver(cfg *config.Config, tokens *auth.JWTManager, repo repositories.Repository, logger utils.Logger) (auth.TokenResolver, error) {
	switch cfg.IdentityProvider {
	case "", "jwt":
		return tokens, nil
	case "casdoor":
		client := auth.NewCasdoorClient(auth.CasdoorConfig{
			Endpoint:         cfg.Casdoor.Endpoint,
			ClientID:         cfg.Casdoor.ClientID,
			ClientSecret:     cfg.Casdoor.ClientSecret,
			Certificate:      cfg.Casdoor.Certificate,
			OrganizationName: cfg.Casdoor.OrganizationName,
			ApplicationName:  cfg.Casdoor.ApplicationName,
		})
		logger.Info("Using Casdoor identity provider", "endpoint", cfg.Casdoor.Endpoint)
		return auth.NewCasdoorResolver(client, repo.User(), logger.Slog()), nil
	default:
		return nil, fmt.Errorf("unknown identity provider %q", cfg.IdentityProvider)
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/config"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/SAP-F-2025/quiz-service/pkg"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML document accepted by the seed command.
type SeedFile struct {
	Users     []SeedUser     `yaml:"users"`
	Questions []SeedQuestion `yaml:"questions"`
}

type SeedUser struct {
	Email     string `yaml:"email"`
	Username  string `yaml:"username"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Role      string `yaml:"role"`
	Password  string `yaml:"password"`
}

type SeedQuestion struct {
	Title         string                  `yaml:"title"`
	Type          models.QuestionType     `yaml:"type"`
	Difficulty    models.DifficultyLevel  `yaml:"difficulty"`
	Subject       string                  `yaml:"subject"`
	Grade         string                  `yaml:"grade"`
	Points        int                     `yaml:"points"`
	Options       []models.QuestionOption `yaml:"options"`
	CorrectAnswer *string                 `yaml:"correct_answer"`
	Explanation   *string                 `yaml:"explanation"`
	// CreatedBy is the author's email; the author must be seeded or already exist.
	CreatedBy string `yaml:"created_by"`
}

type seedReport struct {
	UsersCreated     int
	UsersSkipped     int
	QuestionsCreated int
	QuestionsSkipped int
}

// NewSeedCmd loads users and questions from a YAML file. Running it twice creates nothing new.
func NewSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed accounts and questions from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "path to the seed file")
	return cmd
}

func runSeed(ctx context.Context, path string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := utils.NewLogger(cfg.Environment)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	seed, err := loadSeedFile(f)
	if err != nil {
		return err
	}

	db, err := pkg.InitDatabase(cfg, logger.Slog())
	if err != nil {
		return err
	}
	repo := postgres.NewRepository(db)
	defer repo.Close()

	report, err := applySeed(ctx, repo, validator.New(), seed)
	if err != nil {
		return err
	}
	logger.Info("Seed complete",
		"users_created", report.UsersCreated,
		"users_skipped", report.UsersSkipped,
		"questions_created", report.QuestionsCreated,
		"questions_skipped", report.QuestionsSkipped,
	)
	return nil
}

func loadSeedFile(r io.Reader) (*SeedFile, error) {
	var seed SeedFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

func applySeed(ctx context.Context, repo repositories.Repository, v *validator.Validator, seed *SeedFile) (*seedReport, error) {
	report := &seedReport{}
	authors := make(map[string]string)

	for i, su := range seed.Users {
		email := strings.ToLower(strings.TrimSpace(su.Email))
		existing, err := repo.User().GetByEmail(ctx, nil, email)
		switch {
		case err == nil:
			authors[email] = existing.ID
			report.UsersSkipped++
			continue
		case !repositories.IsNotFoundError(err):
			return nil, fmt.Errorf("user %d: failed to look up %s: %w", i+1, email, err)
		}

		role, err := models.ParseRole(su.Role)
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", i+1, err)
		}
		hash, err := auth.HashPassword(su.Password)
		if err != nil {
			return nil, fmt.Errorf("user %d: failed to hash password: %w", i+1, err)
		}

		user := &models.User{
			ID:           uuid.NewString(),
			Email:        email,
			Username:     su.Username,
			FirstName:    su.FirstName,
			LastName:     su.LastName,
			Role:         role,
			PasswordHash: hash,
			IsActive:     true,
			IsVerified:   true,
		}
		if err := repo.User().Create(ctx, nil, user); err != nil {
			return nil, fmt.Errorf("user %d: failed to create %s: %w", i+1, email, err)
		}
		authors[email] = user.ID
		report.UsersCreated++
	}

	for i, sq := range seed.Questions {
		authorEmail := strings.ToLower(strings.TrimSpace(sq.CreatedBy))
		authorID, ok := authors[authorEmail]
		if !ok {
			author, err := repo.User().GetByEmail(ctx, nil, authorEmail)
			if err != nil {
				return nil, fmt.Errorf("question %d: unknown author %q: %w", i+1, sq.CreatedBy, err)
			}
			authorID = author.ID
			authors[authorEmail] = authorID
		}

		exists, err := questionExists(ctx, repo, authorID, sq.Title)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		if exists {
			report.QuestionsSkipped++
			continue
		}

		question := &models.Question{
			ID:            uuid.NewString(),
			Title:         sq.Title,
			Type:          sq.Type,
			Difficulty:    sq.Difficulty,
			Subject:       sq.Subject,
			Grade:         sq.Grade,
			Options:       sq.Options,
			CorrectAnswer: sq.CorrectAnswer,
			Explanation:   sq.Explanation,
			Points:        sq.Points,
			IsActive:      true,
			CreatedBy:     authorID,
		}
		if question.Difficulty == "" {
			question.Difficulty = models.DifficultyMedium
		}
		if err := v.Question().ValidateQuestion(question); err != nil {
			return nil, fmt.Errorf("question %d (%s): %w", i+1, sq.Title, err)
		}
		if err := repo.Question().Create(ctx, nil, question); err != nil {
			return nil, fmt.Errorf("question %d: failed to create: %w", i+1, err)
		}
		report.QuestionsCreated++
	}

	return report, nil
}

func questionExists(ctx context.Context, repo repositories.Repository, authorID, title string) (bool, error) {
	questions, _, err := repo.Question().List(ctx, nil, repositories.QuestionFilters{
		CreatedBy: &authorID,
		Search:    title,
		Limit:     models.MaxPageSize,
	})
	if err != nil {
		return false, fmt.Errorf("failed to look up existing questions: %w", err)
	}
	for _, q := range questions {
		if q.Title == title {
			return true, nil
		}
	}
	return false, nil
}

package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet    = "Results"
	exportTimestamp = "2006-01-02 15:04:05"
	minUsernameLen  = 3
	maxUsernameBase = 20
)

var studentImportColumns = []string{"email", "firstname", "lastname", "password"}

type importExportService struct {
	repo   repositories.Repository
	audit  AuditService
	logger *slog.Logger
}

func NewImportExportService(repo repositories.Repository, audit AuditService, logger *slog.Logger) ImportExportService {
	return &importExportService{
		repo:   repo,
		audit:  audit,
		logger: logger,
	}
}

// ===== IMPORT OPERATIONS =====

// ImportStudents creates one verified student per data row. Rows fail independently; the
// result reports each failure with its spreadsheet row number.
func (s *importExportService) ImportStudents(ctx context.Context, filename string, reader io.Reader, caller auth.Identity) (*ImportResult, error) {
	s.logger.Info("Starting student import", "filename", filename, "admin_id", caller.SubjectID)

	if !caller.IsAdmin() {
		return nil, NewPermissionError(caller.SubjectID, "", "user", "import", "admin only")
	}

	rows, err := readSheet(filename, reader)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, NewValidationError("file", "file must have a header row and at least one data row", len(rows))
	}

	header := indexHeader(rows[0])
	for _, col := range studentImportColumns {
		if _, ok := header[col]; !ok {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	result := &ImportResult{Total: len(rows) - 1, Errors: []ImportRowError{}}
	for i, record := range rows[1:] {
		rowNum := i + 2
		email, err := s.importStudentRow(ctx, header, record)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Row: rowNum, Email: email, Message: err.Error()})
			continue
		}
		result.Successful++
	}

	if result.Successful > 0 {
		s.audit.Record(ctx, AuditEntry{
			UserID:     caller.SubjectID,
			Action:     models.AuditCreated,
			EntityType: models.AuditEntityUser,
			Details:    map[string]interface{}{"import": filename, "successful": result.Successful, "failed": result.Failed},
		})
	}

	s.logger.Info("Student import completed",
		"total_rows", result.Total,
		"success_count", result.Successful,
		"error_count", result.Failed)
	return result, nil
}

func (s *importExportService) importStudentRow(ctx context.Context, header map[string]int, record []string) (string, error) {
	field := func(name string) string {
		idx, ok := header[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	email := normalizeEmail(field("email"))
	firstName, lastName, password := field("firstname"), field("lastname"), field("password")
	if email == "" || firstName == "" || lastName == "" || password == "" {
		return email, fmt.Errorf("missing required fields")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return email, fmt.Errorf("invalid email address")
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, nil, email)
	if err != nil {
		return email, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return email, fmt.Errorf("student already exists")
	}

	username, err := s.deriveUsername(ctx, email)
	if err != nil {
		return email, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return email, err
	}

	student := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         models.RoleStudent,
		PasswordHash: hash,
		IsActive:     true,
		IsVerified:   true,
	}
	if grade := field("grade"); grade != "" {
		student.Grade = &grade
	}

	if err := s.repo.User().Create(ctx, nil, student); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return email, fmt.Errorf("student already exists")
		}
		return email, fmt.Errorf("failed to create student: %w", err)
	}
	return email, nil
}

// deriveUsername builds a username from the email's local part, suffixing a counter on collision.
func (s *importExportService) deriveUsername(ctx context.Context, email string) (string, error) {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	base := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToLower(r)
		}
		return -1
	}, local)
	if len(base) > maxUsernameBase {
		base = base[:maxUsernameBase]
	}
	for len(base) < minUsernameLen {
		base += "0"
	}

	candidate := base
	for n := 1; n <= 1000; n++ {
		taken, err := s.repo.User().ExistsByUsername(ctx, nil, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, n)
	}
	return "", fmt.Errorf("could not derive a free username")
}

// readSheet returns every row of a CSV file or of the first sheet of an XLSX workbook.
func readSheet(filename string, reader io.Reader) ([][]string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		csvReader := csv.NewReader(reader)
		csvReader.TrimLeadingSpace = true
		csvReader.FieldsPerRecord = -1
		records, err := csvReader.ReadAll()
		if err != nil {
			return nil, NewValidationError("file", fmt.Sprintf("failed to read CSV: %v", err), filename)
		}
		return records, nil
	case ".xlsx":
		f, err := excelize.OpenReader(reader)
		if err != nil {
			return nil, NewValidationError("file", fmt.Sprintf("failed to open Excel file: %v", err), filename)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, NewValidationError("file", "Excel file has no sheets", filename)
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read Excel rows: %w", err)
		}
		return rows, nil
	default:
		return nil, NewValidationError("file", "unsupported file format, use .csv or .xlsx", ext)
	}
}

// indexHeader maps normalized column names to their index. "First Name", "first_name" and
// "firstName" all normalize to "firstname".
func indexHeader(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.Map(func(r rune) rune {
			if r == '_' || r == '-' || unicode.IsSpace(r) || r == '\uFEFF' {
				return -1
			}
			return unicode.ToLower(r)
		}, name)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	return index
}

// ===== EXPORT OPERATIONS =====

// ExportQuizResults renders every completed attempt at a quiz into an XLSX workbook.
func (s *importExportService) ExportQuizResults(ctx context.Context, quizID string, caller auth.Identity) ([]byte, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, quizLookupError(err)
	}
	if err := CheckOwnership(caller, quiz.CreatedBy, "quiz", quizID, "export_results"); err != nil {
		return nil, err
	}

	attempts, err := s.allCompletedAttempts(ctx, quizID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(resultsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []interface{}{
		"Student ID", "Student Name", "Email", "Status", "Started At", "Submitted At",
		"Score", "Total Points", "Percentage", "Result", "Late", "Time Spent (minutes)",
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, attempt := range attempts {
		row := []interface{}{attempt.StudentID, "", "", string(attempt.Status), attempt.StartedAt.Format(exportTimestamp), ""}
		if attempt.Student != nil {
			row[1] = attempt.Student.FullName()
			row[2] = attempt.Student.Email
		}
		if attempt.CompletedAt != nil {
			row[5] = attempt.CompletedAt.Format(exportTimestamp)
		}
		result := "Fail"
		if attempt.IsPassed {
			result = "Pass"
		}
		row = append(row, attempt.Score, attempt.TotalPoints, attempt.Percentage, result, attempt.IsLateSubmission, attempt.TimeSpent/60)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Quiz results exported", "quiz_id", quizID, "rows", len(attempts))
	return buf.Bytes(), nil
}

func (s *importExportService) allCompletedAttempts(ctx context.Context, quizID string) ([]*models.QuizAttempt, error) {
	filters := repositories.AttemptFilters{
		Status:    models.AttemptCompleted,
		Limit:     models.MaxPageSize,
		SortBy:    "completed_at",
		SortOrder: "asc",
	}

	var all []*models.QuizAttempt
	for {
		page, total, err := s.repo.Attempt().ListByQuiz(ctx, nil, quizID, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list quiz attempts: %w", err)
		}
		all = append(all, page...)
		filters.Offset += len(page)
		if len(page) == 0 || int64(filters.Offset) >= total {
			return all, nil
		}
	}
}

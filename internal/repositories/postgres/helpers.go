package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"gorm.io/gorm"
)

// SharedHelpers holds query plumbing common to every repository.
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// GetDB returns tx bound to ctx when a transaction is in flight, otherwise the base handle.
func (h *SharedHelpers) GetDB(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return h.db.WithContext(ctx)
}

// ApplyPaginationAndSort orders by an allow-listed column and clamps the page size.
// allowed maps public sort keys to column expressions.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int, allowed map[string]string, defaultSort string) *gorm.DB {
	column, ok := allowed[sortBy]
	if !ok {
		column = defaultSort
	}

	order := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		order = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", column, order))

	query = query.Limit(NormalizeLimit(limit))
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// NormalizeLimit applies the default and maximum page size.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return models.DefaultPageSize
	}
	if limit > models.MaxPageSize {
		return models.MaxPageSize
	}
	return limit
}

// containsPattern builds an ILIKE pattern matching s anywhere, with LIKE metacharacters escaped.
func containsPattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(s)) + "%"
}

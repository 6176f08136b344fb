package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type UserPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return u.helpers.GetDB(ctx, tx).Create(user).Error
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := u.helpers.GetDB(ctx, tx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := u.helpers.GetDB(ctx, tx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*models.User, error) {
	var user models.User
	if err := u.helpers.GetDB(ctx, tx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return u.helpers.GetDB(ctx, tx).Save(user).Error
}

// Delete soft-deletes the account; its attempts keep referencing it.
func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	result := u.helpers.GetDB(ctx, tx).Delete(&models.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (u *UserPostgreSQL) GetActiveStudentsByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error) {
	var users []*models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := u.helpers.GetDB(ctx, tx).
		Where("id IN ? AND role = ? AND is_active = ?", ids, models.RoleStudent, true).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := u.applyFilters(u.helpers.GetDB(ctx, tx).Model(&models.User{}), filters)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = u.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset,
		map[string]string{"created_at": "created_at", "email": "email", "last_name": "last_name"}, "created_at")
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	if err := u.helpers.GetDB(ctx, tx).Unscoped().Model(&models.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (u *UserPostgreSQL) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	var count int64
	if err := u.helpers.GetDB(ctx, tx).Unscoped().Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (u *UserPostgreSQL) SetActive(ctx context.Context, tx *gorm.DB, id string, active bool) error {
	result := u.helpers.GetDB(ctx, tx).Model(&models.User{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (u *UserPostgreSQL) UpdateLastLogin(ctx context.Context, tx *gorm.DB, id string, loginTime time.Time) error {
	return u.helpers.GetDB(ctx, tx).Model(&models.User{}).Where("id = ?", id).Update("last_login_at", loginTime).Error
}

func (u *UserPostgreSQL) applyFilters(query *gorm.DB, filters repositories.UserFilters) *gorm.DB {
	if filters.Role != nil {
		query = query.Where("role = ?", *filters.Role)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if strings.TrimSpace(filters.Search) != "" {
		pattern := containsPattern(filters.Search)
		query = query.Where("(email ILIKE ? OR username ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?)",
			pattern, pattern, pattern, pattern)
	}
	return query
}

// isNotFound keeps callers that treat a missing row as "no result" short.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

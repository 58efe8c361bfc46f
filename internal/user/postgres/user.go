package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/quickmark/qr-management/internal"
	qrdatamodel "github.com/quickmark/qr-management/internal/core/datamodel/qrcode"
	datamodel "github.com/quickmark/qr-management/internal/core/datamodel/user"
	"github.com/quickmark/qr-management/internal/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetAllUsers(offset, limit int, filters user.Filters) ([]*user.User, int64, error) {
	query := r.db.Model(&datamodel.Profile{})
	query = applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []datamodel.Profile
	err := query.Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	users := make([]*user.User, 0, len(rows))
	for i := range rows {
		users = append(users, user.FromDataModel(&rows[i]))
	}
	if err := r.fillQRCodeCounts(users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// fillQRCodeCounts attaches the derived per-owner QR code count to each row.
// One grouped query covers the whole page.
func (r *Repository) fillQRCodeCounts(users []*user.User) error {
	if len(users) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	type bucket struct {
		OwnerID int64
		Count   int64
	}
	var buckets []bucket
	err := r.db.Model(&qrdatamodel.QRCode{}).
		Select("owner_id, COUNT(*) AS count").
		Where("owner_id IN ?", ids).
		Group("owner_id").
		Scan(&buckets).Error
	if err != nil {
		return err
	}

	counts := make(map[int64]int64, len(buckets))
	for _, b := range buckets {
		counts[b.OwnerID] = b.Count
	}
	for _, u := range users {
		u.QRCodeCount = counts[u.ID]
	}
	return nil
}

func applyFilters(query *gorm.DB, filters user.Filters) *gorm.DB {
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if filters.Role != "" {
		query = query.Where("role = ?", filters.Role)
	}
	if filters.Status == "active" {
		query = query.Where("is_active = ?", true)
	} else if filters.Status == "inactive" {
		query = query.Where("is_active = ?", false)
	}
	if filters.Plan != "" {
		query = query.Where("plan = ?", filters.Plan)
	}
	return query
}

func (r *Repository) GetUserByID(userID int64) (*user.User, error) {
	var p datamodel.Profile
	err := r.db.First(&p, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	u := user.FromDataModel(&p)
	if err := r.fillQRCodeCounts([]*user.User{u}); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Repository) UpdateRole(userID int64, role string) error {
	return r.updateProfile(userID, map[string]interface{}{"role": role})
}

func (r *Repository) UpdateStatus(userID int64, isActive bool) error {
	return r.updateProfile(userID, map[string]interface{}{"is_active": isActive})
}

// SoftDelete keeps the row but strips identifying fields and deactivates the
// account. Role and id stay intact for audit continuity.
func (r *Repository) SoftDelete(userID int64, anonymizedEmail, anonymizedName string) error {
	return r.updateProfile(userID, map[string]interface{}{
		"email":      anonymizedEmail,
		"name":       anonymizedName,
		"avatar_url": "",
		"is_active":  false,
	})
}

func (r *Repository) updateProfile(userID int64, changes map[string]interface{}) error {
	result := r.db.Model(&datamodel.Profile{}).
		Where("id = ?", userID).
		Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *Repository) BulkUpdateRole(userIDs []int64, role string) (int64, error) {
	result := r.db.Model(&datamodel.Profile{}).
		Where("id IN ?", userIDs).
		Update("role", role)
	return result.RowsAffected, result.Error
}

func (r *Repository) BulkUpdateStatus(userIDs []int64, isActive bool) (int64, error) {
	result := r.db.Model(&datamodel.Profile{}).
		Where("id IN ?", userIDs).
		Update("is_active", isActive)
	return result.RowsAffected, result.Error
}

func (r *Repository) GetStats(recentSince time.Time) (*user.UserStats, error) {
	stats := &user.UserStats{
		ByRole: make(map[string]int64),
		ByPlan: make(map[string]int64),
	}

	model := func() *gorm.DB { return r.db.Model(&datamodel.Profile{}) }

	if err := model().Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := model().Where("is_active = ?", true).Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}
	stats.InactiveUsers = stats.TotalUsers - stats.ActiveUsers

	type bucket struct {
		Key   string
		Count int64
	}

	var roleBuckets []bucket
	if err := model().Select("role AS key, COUNT(*) AS count").Group("role").Scan(&roleBuckets).Error; err != nil {
		return nil, err
	}
	for _, b := range roleBuckets {
		stats.ByRole[b.Key] = b.Count
	}

	var planBuckets []bucket
	if err := model().Select("plan AS key, COUNT(*) AS count").Group("plan").Scan(&planBuckets).Error; err != nil {
		return nil, err
	}
	for _, b := range planBuckets {
		stats.ByPlan[b.Key] = b.Count
	}

	if err := model().Where("created_at > ?", recentSince).Count(&stats.RecentSignups).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *Repository) RecordActivity(userID *int64, action, details string) error {
	entry := datamodel.ActivityLog{
		UserID:  userID,
		Action:  action,
		Details: details,
	}
	return r.db.Create(&entry).Error
}

func (r *Repository) GetActivity(userID int64, limit int) ([]*user.ActivityEntry, error) {
	var rows []datamodel.ActivityLog
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]*user.ActivityEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, user.ActivityFromDataModel(&rows[i]))
	}
	return entries, nil
}

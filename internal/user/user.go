package user

import (
	"time"

	datamodel "github.com/quickmark/qr-management/internal/core/datamodel/user"
)

// User is the directory view of an account. Password hashes never leave the
// repository layer. QRCodeCount is derived at read time from the qr_codes
// table, never stored on the profile.
type User struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Plan        string     `json:"plan"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	IsActive    bool       `json:"is_active"`
	QRCodeCount int64      `json:"qr_code_count"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// UserStats is the admin dashboard summary.
type UserStats struct {
	TotalUsers    int64            `json:"total_users"`
	ActiveUsers   int64            `json:"active_users"`
	InactiveUsers int64            `json:"inactive_users"`
	ByRole        map[string]int64 `json:"by_role"`
	ByPlan        map[string]int64 `json:"by_plan"`
	RecentSignups int64            `json:"recent_signups"`
}

// ActivityEntry is one row of the audit trail. UserID is null when the action
// spans many accounts.
type ActivityEntry struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// Audit action names, recorded as written.
const (
	ActionRoleUpdated     = "role_updated"
	ActionUserActivated   = "user_activated"
	ActionUserDeactivated = "user_deactivated"
	ActionUserDeleted     = "user_deleted"
	ActionBulkUserUpdate  = "bulk_user_update"
)

func FromDataModel(p *datamodel.Profile) *User {
	return &User{
		ID:          p.ID,
		Email:       p.Email,
		Name:        p.Name,
		Role:        p.Role,
		Plan:        p.Plan,
		AvatarURL:   p.AvatarURL,
		IsActive:    p.IsActive,
		LastLoginAt: p.LastLoginAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ActivityFromDataModel(a *datamodel.ActivityLog) *ActivityEntry {
	return &ActivityEntry{
		ID:        a.ID,
		UserID:    a.UserID,
		Action:    a.Action,
		Details:   a.Details,
		CreatedAt: a.CreatedAt,
	}
}

package user

import "time"

type Profile struct {
	ID           int64      `gorm:"primaryKey"`
	Email        string     `gorm:"column:email;uniqueIndex;not null"`
	Name         string     `gorm:"column:name;not null"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         string     `gorm:"column:role;not null;default:viewer"`
	Plan         string     `gorm:"column:plan;not null;default:free"`
	AvatarURL    string     `gorm:"column:avatar_url"`
	IsActive     bool       `gorm:"column:is_active;default:true"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ActivityLog is append-only; UserID is null for bulk actions that touch many
// accounts at once.
type ActivityLog struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    *int64    `gorm:"column:user_id"`
	Action    string    `gorm:"column:action;not null"`
	Details   string    `gorm:"column:details;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ActivityLog) TableName() string {
	return "user_activity_logs"
}

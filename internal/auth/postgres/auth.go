package postgres

import (
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/quickmark/qr-management/internal"
	"github.com/quickmark/qr-management/internal/auth"
	usermodel "github.com/quickmark/qr-management/internal/core/datamodel/user"
)

// Repository implements auth.UserRepository on top of the profiles table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetPasswordForEmail(email string) (string, string, error) {
	var p usermodel.Profile
	err := r.db.Select("id", "password_hash", "is_active").
		Where("email = ?", email).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", internal.ErrInvalidCredentials
		}
		return "", "", err
	}
	if !p.IsActive {
		return "", "", internal.ErrUserInactive
	}
	return p.PasswordHash, strconv.FormatInt(p.ID, 10), nil
}

func (r *Repository) GetUserByID(userID int64) (*auth.User, error) {
	var p usermodel.Profile
	err := r.db.First(&p, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return toAuthUser(&p), nil
}

func (r *Repository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&usermodel.Profile{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) CreateUser(email, name, passwordHash, role string) (*auth.User, error) {
	p := usermodel.Profile{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
		Plan:         "free",
		IsActive:     true,
	}
	if err := r.db.Create(&p).Error; err != nil {
		return nil, err
	}
	return toAuthUser(&p), nil
}

func (r *Repository) TouchLastLogin(userID int64) error {
	now := time.Now()
	return r.db.Model(&usermodel.Profile{}).
		Where("id = ?", userID).
		Update("last_login_at", &now).Error
}

func toAuthUser(p *usermodel.Profile) *auth.User {
	return &auth.User{
		ID:       p.ID,
		Email:    p.Email,
		Name:     p.Name,
		Role:     p.Role,
		Plan:     p.Plan,
		IsActive: p.IsActive,
	}
}

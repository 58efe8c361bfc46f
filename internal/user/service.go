package user

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/quickmark/qr-management/internal"
	"github.com/quickmark/qr-management/internal/rbac"
	"github.com/quickmark/qr-management/pkg/logger"
)

// Repository is the persistence contract for the user directory.
type Repository interface {
	GetAllUsers(offset, limit int, filters Filters) ([]*User, int64, error)
	GetUserByID(userID int64) (*User, error)
	UpdateRole(userID int64, role string) error
	UpdateStatus(userID int64, isActive bool) error
	SoftDelete(userID int64, anonymizedEmail, anonymizedName string) error
	BulkUpdateRole(userIDs []int64, role string) (int64, error)
	BulkUpdateStatus(userIDs []int64, isActive bool) (int64, error)
	GetStats(recentSince time.Time) (*UserStats, error)
	RecordActivity(userID *int64, action, details string) error
	GetActivity(userID int64, limit int) ([]*ActivityEntry, error)
}

// CacheInvalidator drops cached auth profiles after directory mutations so
// permission changes take effect without waiting for the TTL.
type CacheInvalidator interface {
	InvalidateUser(userID int64)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateUser(int64) {}

type Service struct {
	repo        Repository
	invalidator CacheInvalidator
	logger      *slog.Logger
}

func NewService(repo Repository, invalidator CacheInvalidator) *Service {
	if invalidator == nil {
		invalidator = noopInvalidator{}
	}
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Service{
		repo:        repo,
		invalidator: invalidator,
		logger:      lg,
	}
}

const (
	defaultPageLimit  = 20
	maxPageLimit      = 100
	defaultAuditLimit = 50
)

// GetAllUsers returns one page of the directory plus the total matching count.
// Page numbering starts at 1.
func (s *Service) GetAllUsers(page, limit int, filters Filters) (*UserListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	offset := (page - 1) * limit
	users, total, err := s.repo.GetAllUsers(offset, limit, filters)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &UserListResult{
		Users:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) GetUserByID(userID int64) (*User, error) {
	return s.repo.GetUserByID(userID)
}

// UpdateUserRole changes a target's role on behalf of an actor. Unknown roles
// are rejected before anything is touched, so a failed call leaves no audit
// entry behind.
func (s *Service) UpdateUserRole(actorID int64, actorRole string, targetID int64, newRole string) (*User, error) {
	if !rbac.IsValidRole(newRole) {
		return nil, internal.ErrInvalidRole
	}

	target, err := s.repo.GetUserByID(targetID)
	if err != nil {
		return nil, err
	}

	if !rbac.CanManageUser(actorID, targetID, actorRole, target.Role) {
		return nil, internal.ErrPermissionDenied
	}

	oldRole := target.Role
	if err := s.repo.UpdateRole(targetID, newRole); err != nil {
		return nil, err
	}
	s.invalidator.InvalidateUser(targetID)

	s.audit(&targetID, ActionRoleUpdated, map[string]interface{}{
		"actor_id": actorID,
		"old_role": oldRole,
		"new_role": newRole,
	})

	target.Role = newRole
	s.logger.Info("user role updated",
		"actor_id", actorID, "target_id", targetID,
		"old_role", oldRole, "new_role", newRole)
	return target, nil
}

// UpdateUserStatus activates or deactivates an account.
func (s *Service) UpdateUserStatus(actorID int64, actorRole string, targetID int64, isActive bool) (*User, error) {
	target, err := s.repo.GetUserByID(targetID)
	if err != nil {
		return nil, err
	}

	if !rbac.CanManageUser(actorID, targetID, actorRole, target.Role) {
		return nil, internal.ErrPermissionDenied
	}

	if err := s.repo.UpdateStatus(targetID, isActive); err != nil {
		return nil, err
	}
	s.invalidator.InvalidateUser(targetID)

	action := ActionUserDeactivated
	if isActive {
		action = ActionUserActivated
	}
	s.audit(&targetID, action, map[string]interface{}{
		"actor_id": actorID,
	})

	target.IsActive = isActive
	return target, nil
}

// DeleteUser soft-deletes an account: the row stays for audit continuity but
// the email and name are anonymized and the account goes inactive. Super
// admins cannot be deleted through this path.
func (s *Service) DeleteUser(actorID int64, actorRole string, targetID int64) error {
	target, err := s.repo.GetUserByID(targetID)
	if err != nil {
		return err
	}

	if target.Role == rbac.RoleSuperAdmin {
		return internal.ErrProtectedRole
	}
	if !rbac.CanManageUser(actorID, targetID, actorRole, target.Role) {
		return internal.ErrPermissionDenied
	}

	anonymizedEmail := fmt.Sprintf("deleted_%d@example.com", targetID)
	if err := s.repo.SoftDelete(targetID, anonymizedEmail, "Deleted User"); err != nil {
		return err
	}
	s.invalidator.InvalidateUser(targetID)

	s.audit(&targetID, ActionUserDeleted, map[string]interface{}{
		"actor_id": actorID,
	})

	s.logger.Info("user soft-deleted", "actor_id", actorID, "target_id", targetID)
	return nil
}

// BulkUpdateUsers applies one role or status change to many accounts and
// records a single audit entry listing every affected id.
func (s *Service) BulkUpdateUsers(actorID int64, dto BulkUpdateDTO) (int64, error) {
	if err := dto.Validate(); err != nil {
		return 0, err
	}

	var (
		affected int64
		err      error
		details  = map[string]interface{}{
			"actor_id": actorID,
			"user_ids": dto.UserIDs,
		}
	)

	switch {
	case dto.Role != "":
		if !rbac.IsValidRole(dto.Role) {
			return 0, internal.ErrInvalidRole
		}
		affected, err = s.repo.BulkUpdateRole(dto.UserIDs, dto.Role)
		details["role"] = dto.Role
	default:
		affected, err = s.repo.BulkUpdateStatus(dto.UserIDs, *dto.IsActive)
		details["is_active"] = *dto.IsActive
	}
	if err != nil {
		return 0, err
	}

	for _, id := range dto.UserIDs {
		s.invalidator.InvalidateUser(id)
	}

	s.audit(nil, ActionBulkUserUpdate, details)
	s.logger.Info("bulk user update", "actor_id", actorID, "affected", affected)
	return affected, nil
}

// GetUserStats summarizes the directory; recent signups cover the last 7 days.
func (s *Service) GetUserStats() (*UserStats, error) {
	return s.repo.GetStats(time.Now().AddDate(0, 0, -7))
}

// GetUserActivity returns a user's audit trail newest first.
func (s *Service) GetUserActivity(userID int64, limit int) ([]*ActivityEntry, error) {
	if limit < 1 {
		limit = defaultAuditLimit
	}
	return s.repo.GetActivity(userID, limit)
}

// audit records an entry best-effort; a failed write is logged, not returned,
// since the primary mutation already committed.
func (s *Service) audit(userID *int64, action string, details map[string]interface{}) {
	payload, err := json.Marshal(details)
	if err != nil {
		s.logger.Error("failed to marshal audit details", "action", action, "error", err)
		payload = []byte("{}")
	}
	if err := s.repo.RecordActivity(userID, action, string(payload)); err != nil {
		s.logger.Error("failed to record audit entry", "action", action, "error", err)
	}
}

package user_test

import (
	"encoding/json"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quickmark/qr-management/internal"
	"github.com/quickmark/qr-management/internal/rbac"
	"github.com/quickmark/qr-management/internal/user"
)

type auditRecord struct {
	UserID  *int64
	Action  string
	Details string
}

type mockRepo struct {
	users       map[int64]*user.User
	audits      []auditRecord
	invalidated []int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[int64]*user.User)}
}

func (m *mockRepo) seed(id int64, role string, active bool) *user.User {
	u := &user.User{
		ID:       id,
		Email:    fmt.Sprintf("user%d@example.com", id),
		Name:     fmt.Sprintf("User %d", id),
		Role:     role,
		Plan:     "free",
		IsActive: active,
	}
	m.users[id] = u
	return u
}

func (m *mockRepo) GetAllUsers(offset, limit int, filters user.Filters) ([]*user.User, int64, error) {
	// Deterministic ordering by id so pagination is checkable.
	total := int64(len(m.users))
	var page []*user.User
	for id := int64(1); id <= total; id++ {
		idx := int(id - 1)
		if idx < offset || idx >= offset+limit {
			continue
		}
		page = append(page, m.users[id])
	}
	return page, total, nil
}

func (m *mockRepo) GetUserByID(userID int64) (*user.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepo) UpdateRole(userID int64, role string) error {
	m.users[userID].Role = role
	return nil
}

func (m *mockRepo) UpdateStatus(userID int64, isActive bool) error {
	m.users[userID].IsActive = isActive
	return nil
}

func (m *mockRepo) SoftDelete(userID int64, anonymizedEmail, anonymizedName string) error {
	u := m.users[userID]
	u.Email = anonymizedEmail
	u.Name = anonymizedName
	u.AvatarURL = ""
	u.IsActive = false
	return nil
}

func (m *mockRepo) BulkUpdateRole(userIDs []int64, role string) (int64, error) {
	var n int64
	for _, id := range userIDs {
		if u, ok := m.users[id]; ok {
			u.Role = role
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) BulkUpdateStatus(userIDs []int64, isActive bool) (int64, error) {
	var n int64
	for _, id := range userIDs {
		if u, ok := m.users[id]; ok {
			u.IsActive = isActive
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) GetStats(recentSince time.Time) (*user.UserStats, error) {
	return &user.UserStats{TotalUsers: int64(len(m.users))}, nil
}

func (m *mockRepo) RecordActivity(userID *int64, action, details string) error {
	m.audits = append(m.audits, auditRecord{UserID: userID, Action: action, Details: details})
	return nil
}

func (m *mockRepo) GetActivity(userID int64, limit int) ([]*user.ActivityEntry, error) {
	var out []*user.ActivityEntry
	for i := len(m.audits) - 1; i >= 0 && len(out) < limit; i-- {
		a := m.audits[i]
		if a.UserID == nil || *a.UserID != userID {
			continue
		}
		out = append(out, &user.ActivityEntry{UserID: a.UserID, Action: a.Action, Details: a.Details})
	}
	return out, nil
}

func (m *mockRepo) InvalidateUser(userID int64) {
	m.invalidated = append(m.invalidated, userID)
}

var _ = Describe("User Service", func() {
	var (
		repo    *mockRepo
		service *user.Service
	)

	BeforeEach(func() {
		repo = newMockRepo()
		service = user.NewService(repo, repo)
	})

	Describe("GetAllUsers", func() {
		BeforeEach(func() {
			for i := int64(1); i <= 45; i++ {
				repo.seed(i, rbac.RoleViewer, true)
			}
		})

		It("returns the second page as rows 21 through 40", func() {
			result, err := service.GetAllUsers(2, 20, user.Filters{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Users).To(HaveLen(20))
			Expect(result.Users[0].ID).To(Equal(int64(21)))
			Expect(result.Users[19].ID).To(Equal(int64(40)))
			Expect(result.Total).To(Equal(int64(45)))
			Expect(result.TotalPages).To(Equal(3))
		})

		It("defaults page and limit when out of range", func() {
			result, err := service.GetAllUsers(0, 0, user.Filters{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Page).To(Equal(1))
			Expect(result.Limit).To(Equal(20))
			Expect(result.Users[0].ID).To(Equal(int64(1)))
		})
	})

	Describe("UpdateUserRole", func() {
		var admin, editor *user.User

		BeforeEach(func() {
			admin = repo.seed(1, rbac.RoleAdmin, true)
			editor = repo.seed(2, rbac.RoleEditor, true)
		})

		It("lets a higher-level actor change a lower-level target's role", func() {
			updated, err := service.UpdateUserRole(admin.ID, admin.Role, editor.ID, rbac.RoleViewer)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Role).To(Equal(rbac.RoleViewer))
			Expect(repo.users[editor.ID].Role).To(Equal(rbac.RoleViewer))
		})

		It("rejects an unknown role without touching the target or the audit log", func() {
			_, err := service.UpdateUserRole(admin.ID, admin.Role, editor.ID, "warlord")
			Expect(err).To(Equal(internal.ErrInvalidRole))
			Expect(repo.users[editor.ID].Role).To(Equal(rbac.RoleEditor))
			Expect(repo.audits).To(BeEmpty())
		})

		It("refuses self-management even for admins", func() {
			_, err := service.UpdateUserRole(admin.ID, admin.Role, admin.ID, rbac.RoleViewer)
			Expect(err).To(Equal(internal.ErrPermissionDenied))
		})

		It("refuses managing a peer of equal level", func() {
			other := repo.seed(3, rbac.RoleAdmin, true)
			_, err := service.UpdateUserRole(admin.ID, admin.Role, other.ID, rbac.RoleViewer)
			Expect(err).To(Equal(internal.ErrPermissionDenied))
		})

		It("records a role_updated audit entry and invalidates the cache", func() {
			_, err := service.UpdateUserRole(admin.ID, admin.Role, editor.ID, rbac.RoleViewer)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.audits).To(HaveLen(1))
			Expect(repo.audits[0].Action).To(Equal(user.ActionRoleUpdated))
			Expect(*repo.audits[0].UserID).To(Equal(editor.ID))

			var details map[string]interface{}
			Expect(json.Unmarshal([]byte(repo.audits[0].Details), &details)).To(Succeed())
			Expect(details["old_role"]).To(Equal(rbac.RoleEditor))
			Expect(details["new_role"]).To(Equal(rbac.RoleViewer))

			Expect(repo.invalidated).To(ContainElement(editor.ID))
		})
	})

	Describe("UpdateUserStatus", func() {
		It("writes distinct audit actions for activation and deactivation", func() {
			admin := repo.seed(1, rbac.RoleAdmin, true)
			target := repo.seed(2, rbac.RoleViewer, true)

			_, err := service.UpdateUserStatus(admin.ID, admin.Role, target.ID, false)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.UpdateUserStatus(admin.ID, admin.Role, target.ID, true)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.audits).To(HaveLen(2))
			Expect(repo.audits[0].Action).To(Equal(user.ActionUserDeactivated))
			Expect(repo.audits[1].Action).To(Equal(user.ActionUserActivated))
		})
	})

	Describe("DeleteUser", func() {
		var superAdmin, admin, viewer *user.User

		BeforeEach(func() {
			superAdmin = repo.seed(1, rbac.RoleSuperAdmin, true)
			admin = repo.seed(2, rbac.RoleAdmin, true)
			viewer = repo.seed(3, rbac.RoleViewer, true)
		})

		It("anonymizes the row instead of removing it", func() {
			err := service.DeleteUser(admin.ID, admin.Role, viewer.ID)
			Expect(err).NotTo(HaveOccurred())

			deleted := repo.users[viewer.ID]
			Expect(deleted.Email).To(Equal("deleted_3@example.com"))
			Expect(deleted.Name).To(Equal("Deleted User"))
			Expect(deleted.IsActive).To(BeFalse())
			Expect(deleted.ID).To(Equal(int64(3)))
			Expect(deleted.Role).To(Equal(rbac.RoleViewer))
		})

		It("protects super admin accounts", func() {
			err := service.DeleteUser(admin.ID, admin.Role, superAdmin.ID)
			Expect(err).To(Equal(internal.ErrProtectedRole))
			Expect(repo.users[superAdmin.ID].Email).To(Equal("user1@example.com"))
		})
	})

	Describe("BulkUpdateUsers", func() {
		BeforeEach(func() {
			repo.seed(1, rbac.RoleSuperAdmin, true)
			for i := int64(2); i <= 5; i++ {
				repo.seed(i, rbac.RoleViewer, true)
			}
		})

		It("applies a role to every listed user with a single audit entry", func() {
			affected, err := service.BulkUpdateUsers(1, user.BulkUpdateDTO{
				UserIDs: []int64{2, 3, 4},
				Role:    rbac.RoleEditor,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(affected).To(Equal(int64(3)))

			Expect(repo.audits).To(HaveLen(1))
			Expect(repo.audits[0].Action).To(Equal(user.ActionBulkUserUpdate))
			Expect(repo.audits[0].UserID).To(BeNil())

			var details map[string]interface{}
			Expect(json.Unmarshal([]byte(repo.audits[0].Details), &details)).To(Succeed())
			Expect(details["user_ids"]).To(HaveLen(3))
			Expect(details["role"]).To(Equal(rbac.RoleEditor))
		})

		It("rejects an empty id list", func() {
			_, err := service.BulkUpdateUsers(1, user.BulkUpdateDTO{Role: rbac.RoleEditor})
			Expect(err).To(BeAssignableToTypeOf(user.ValidationError{}))
		})

		It("rejects requests that set both role and status", func() {
			active := true
			_, err := service.BulkUpdateUsers(1, user.BulkUpdateDTO{
				UserIDs:  []int64{2},
				Role:     rbac.RoleEditor,
				IsActive: &active,
			})
			Expect(err).To(BeAssignableToTypeOf(user.ValidationError{}))
		})

		It("rejects unknown roles before touching anyone", func() {
			_, err := service.BulkUpdateUsers(1, user.BulkUpdateDTO{
				UserIDs: []int64{2, 3},
				Role:    "warlord",
			})
			Expect(err).To(Equal(internal.ErrInvalidRole))
			Expect(repo.users[2].Role).To(Equal(rbac.RoleViewer))
			Expect(repo.audits).To(BeEmpty())
		})
	})

	Describe("GetUserActivity", func() {
		It("defaults the limit and returns newest entries first", func() {
			admin := repo.seed(1, rbac.RoleAdmin, true)
			target := repo.seed(2, rbac.RoleViewer, true)

			_, err := service.UpdateUserStatus(admin.ID, admin.Role, target.ID, false)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.UpdateUserStatus(admin.ID, admin.Role, target.ID, true)
			Expect(err).NotTo(HaveOccurred())

			entries, err := service.GetUserActivity(target.ID, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Action).To(Equal(user.ActionUserActivated))
			Expect(entries[1].Action).To(Equal(user.ActionUserDeactivated))
		})
	})
})

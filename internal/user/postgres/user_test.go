package postgres_test

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quickmark/qr-management/internal"
	qrdatamodel "github.com/quickmark/qr-management/internal/core/datamodel/qrcode"
	datamodel "github.com/quickmark/qr-management/internal/core/datamodel/user"
	"github.com/quickmark/qr-management/internal/rbac"
	"github.com/quickmark/qr-management/internal/user"
	"github.com/quickmark/qr-management/internal/user/postgres"
)

var _ = Describe("User Repository", func() {
	var (
		db     *gorm.DB
		repo   *postgres.Repository
		seeded int
	)

	BeforeEach(func() {
		seeded = 0
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&datamodel.Profile{}, &datamodel.ActivityLog{}, &qrdatamodel.QRCode{})).To(Succeed())
		repo = postgres.NewRepository(db)
	})

	seed := func(n int, role string) {
		for i := 1; i <= n; i++ {
			seeded++
			p := datamodel.Profile{
				Email:        fmt.Sprintf("user%d@example.com", seeded),
				Name:         fmt.Sprintf("User %d", seeded),
				PasswordHash: "x",
				Role:         role,
				Plan:         "free",
				IsActive:     true,
			}
			Expect(db.Create(&p).Error).To(Succeed())
		}
	}

	Describe("GetAllUsers", func() {
		It("pages with offset and reports the full count", func() {
			seed(30, rbac.RoleViewer)

			users, total, err := repo.GetAllUsers(20, 20, user.Filters{})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(30)))
			Expect(users).To(HaveLen(10))
		})

		It("derives per-user qr code counts", func() {
			seed(3, rbac.RoleEditor)
			for i, owner := range []int64{1, 1, 3} {
				code := qrdatamodel.QRCode{
					OwnerID:   owner,
					ShortCode: fmt.Sprintf("code%d", i),
					Name:      "Code",
					Type:      "url",
					Content:   `{"url":"https://example.com"}`,
					IsActive:  true,
				}
				Expect(db.Create(&code).Error).To(Succeed())
			}

			users, _, err := repo.GetAllUsers(0, 50, user.Filters{})
			Expect(err).NotTo(HaveOccurred())

			counts := make(map[int64]int64, len(users))
			for _, u := range users {
				counts[u.ID] = u.QRCodeCount
			}
			Expect(counts).To(Equal(map[int64]int64{1: 2, 2: 0, 3: 1}))

			got, err := repo.GetUserByID(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.QRCodeCount).To(Equal(int64(2)))
		})

		It("filters by role and status", func() {
			seed(3, rbac.RoleViewer)
			seed(2, rbac.RoleEditor)
			Expect(db.Model(&datamodel.Profile{}).
				Where("email = ?", "user1@example.com").
				Update("is_active", false).Error).To(Succeed())

			_, total, err := repo.GetAllUsers(0, 50, user.Filters{Role: rbac.RoleEditor})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))

			_, total, err = repo.GetAllUsers(0, 50, user.Filters{Status: "inactive"})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
		})
	})

	Describe("SoftDelete", func() {
		It("anonymizes in place and keeps the row", func() {
			seed(1, rbac.RoleEditor)

			var p datamodel.Profile
			Expect(db.First(&p).Error).To(Succeed())

			Expect(repo.SoftDelete(p.ID, fmt.Sprintf("deleted_%d@example.com", p.ID), "Deleted User")).To(Succeed())

			got, err := repo.GetUserByID(p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Email).To(Equal(fmt.Sprintf("deleted_%d@example.com", p.ID)))
			Expect(got.Name).To(Equal("Deleted User"))
			Expect(got.IsActive).To(BeFalse())
			Expect(got.Role).To(Equal(rbac.RoleEditor))
		})

		It("reports a missing user", func() {
			Expect(repo.SoftDelete(99, "deleted_99@example.com", "Deleted User")).To(Equal(internal.ErrUserNotFound))
		})
	})

	Describe("BulkUpdateRole", func() {
		It("returns the number of rows touched", func() {
			seed(4, rbac.RoleViewer)

			affected, err := repo.BulkUpdateRole([]int64{1, 2, 99}, rbac.RoleEditor)
			Expect(err).NotTo(HaveOccurred())
			Expect(affected).To(Equal(int64(2)))

			got, err := repo.GetUserByID(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Role).To(Equal(rbac.RoleEditor))
		})
	})

	Describe("GetStats", func() {
		It("aggregates totals and groupings", func() {
			seed(3, rbac.RoleViewer)
			seed(1, rbac.RoleAdmin)

			stats, err := repo.GetStats(time.Now().AddDate(0, 0, -7))
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalUsers).To(Equal(int64(4)))
			Expect(stats.ActiveUsers).To(Equal(int64(4)))
			Expect(stats.ByRole[rbac.RoleViewer]).To(Equal(int64(3)))
			Expect(stats.ByRole[rbac.RoleAdmin]).To(Equal(int64(1)))
			Expect(stats.RecentSignups).To(Equal(int64(4)))
		})
	})

	Describe("activity log", func() {
		It("records and returns entries newest first", func() {
			seed(1, rbac.RoleViewer)
			uid := int64(1)

			Expect(repo.RecordActivity(&uid, "user_deactivated", `{"actor_id":2}`)).To(Succeed())
			Expect(repo.RecordActivity(&uid, "user_activated", `{"actor_id":2}`)).To(Succeed())
			Expect(repo.RecordActivity(nil, "bulk_user_update", `{}`)).To(Succeed())

			entries, err := repo.GetActivity(uid, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Action).To(Equal("user_activated"))
			Expect(entries[1].Action).To(Equal("user_deactivated"))
		})
	})
})

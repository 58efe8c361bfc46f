package postgres_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quickmark/qr-management/internal"
	datamodel "github.com/quickmark/qr-management/internal/core/datamodel/qrcode"
	"github.com/quickmark/qr-management/internal/qrcode"
	"github.com/quickmark/qr-management/internal/qrcode/postgres"
)

var _ = Describe("QRCode Repository", func() {
	var (
		db   *gorm.DB
		repo *postgres.Repository
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&datamodel.QRCode{}, &datamodel.ScanEvent{})).To(Succeed())
		repo = postgres.NewRepository(db)
	})

	newCode := func(shortCode string) *qrcode.QRCode {
		return &qrcode.QRCode{
			OwnerID:   7,
			ShortCode: shortCode,
			Name:      "Landing page",
			Type:      qrcode.TypeURL,
			Content:   qrcode.Content{URL: "https://example.com"},
			IsDynamic: true,
			IsActive:  true,
			Design:    qrcode.DefaultDesign(),
		}
	}

	Describe("Create and lookup", func() {
		It("round-trips the content through storage", func() {
			created, err := repo.Create(newCode("abc123defg"))
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).NotTo(BeZero())

			got, err := repo.GetByShortCode("abc123defg")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(created.ID))
			Expect(got.Content.URL).To(Equal("https://example.com"))
			Expect(got.IsDynamic).To(BeTrue())
		})

		It("reports unknown short codes", func() {
			_, err := repo.GetByShortCode("nope")
			Expect(err).To(Equal(internal.ErrQRCodeNotFound))
		})
	})

	Describe("Update", func() {
		It("persists changed fields", func() {
			created, err := repo.Create(newCode("abc123defg"))
			Expect(err).NotTo(HaveOccurred())

			created.Name = "Renamed"
			created.IsActive = false
			Expect(repo.Update(created)).To(Succeed())

			got, err := repo.GetByID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Renamed"))
			Expect(got.IsActive).To(BeFalse())
		})

		It("reports a missing row", func() {
			ghost := newCode("abc123defg")
			ghost.ID = 404
			Expect(repo.Update(ghost)).To(Equal(internal.ErrQRCodeNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes the code together with its scan events", func() {
			created, err := repo.Create(newCode("abc123defg"))
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.RegisterScan(created.ID, "v1", "mobile", "ID")).To(Succeed())

			Expect(repo.Delete(created.ID)).To(Succeed())

			_, err = repo.GetByID(created.ID)
			Expect(err).To(Equal(internal.ErrQRCodeNotFound))

			var remaining int64
			Expect(db.Model(&datamodel.ScanEvent{}).Count(&remaining).Error).To(Succeed())
			Expect(remaining).To(BeZero())
		})
	})

	Describe("RegisterScan", func() {
		It("counts repeat visitors once for unique scans", func() {
			created, err := repo.Create(newCode("abc123defg"))
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.RegisterScan(created.ID, "visitor-a", "mobile", "ID")).To(Succeed())
			Expect(repo.RegisterScan(created.ID, "visitor-a", "mobile", "ID")).To(Succeed())
			Expect(repo.RegisterScan(created.ID, "visitor-b", "desktop", "SG")).To(Succeed())

			got, err := repo.GetByID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ScanCount).To(Equal(int64(3)))
			Expect(got.UniqueScans).To(Equal(int64(2)))
		})

		It("never bumps unique scans for anonymous visitors", func() {
			created, err := repo.Create(newCode("abc123defg"))
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.RegisterScan(created.ID, "", "unknown", "")).To(Succeed())
			Expect(repo.RegisterScan(created.ID, "", "unknown", "")).To(Succeed())

			got, err := repo.GetByID(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ScanCount).To(Equal(int64(2)))
			Expect(got.UniqueScans).To(BeZero())
		})
	})

	Describe("analytics queries", func() {
		It("aggregates daily scans and breakdowns", func() {
			created, err := repo.Create(newCode("abc123defg"))
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.RegisterScan(created.ID, "visitor-a", "mobile", "ID")).To(Succeed())
			Expect(repo.RegisterScan(created.ID, "visitor-b", "mobile", "SG")).To(Succeed())
			Expect(repo.RegisterScan(created.ID, "visitor-a", "desktop", "ID")).To(Succeed())

			points, err := repo.DailyScans(created.ID, time.Now().AddDate(0, 0, -1))
			Expect(err).NotTo(HaveOccurred())
			Expect(points).To(HaveLen(1))
			Expect(points[0].Scans).To(Equal(int64(3)))
			Expect(points[0].UniqueScans).To(Equal(int64(2)))

			devices, err := repo.DeviceBreakdown(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(devices[0]).To(Equal(qrcode.BreakdownEntry{Label: "mobile", Count: 2}))

			countries, err := repo.CountryBreakdown(created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(countries[0]).To(Equal(qrcode.BreakdownEntry{Label: "ID", Count: 2}))
		})
	})
})

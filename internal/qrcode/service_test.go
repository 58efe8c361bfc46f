package qrcode_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/quickmark/qr-management/internal"
	"github.com/quickmark/qr-management/internal/auth"
	"github.com/quickmark/qr-management/internal/qrcode"
	"github.com/quickmark/qr-management/internal/rbac"
)

type scanRecord struct {
	QRCodeID  int64
	VisitorID string
}

type mockRepo struct {
	codes  map[int64]*qrcode.QRCode
	nextID int64
	scans  []scanRecord
}

func newMockRepo() *mockRepo {
	return &mockRepo{codes: make(map[int64]*qrcode.QRCode), nextID: 1}
}

func (m *mockRepo) Create(q *qrcode.QRCode) (*qrcode.QRCode, error) {
	cp := *q
	cp.ID = m.nextID
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.nextID++
	m.codes[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockRepo) GetByID(id int64) (*qrcode.QRCode, error) {
	q, ok := m.codes[id]
	if !ok {
		return nil, internal.ErrQRCodeNotFound
	}
	cp := *q
	return &cp, nil
}

func (m *mockRepo) GetByShortCode(shortCode string) (*qrcode.QRCode, error) {
	for _, q := range m.codes {
		if q.ShortCode == shortCode {
			cp := *q
			return &cp, nil
		}
	}
	return nil, internal.ErrQRCodeNotFound
}

func (m *mockRepo) GetAllForOwner(ownerID int64, offset, limit int, filters qrcode.ListFilters) ([]*qrcode.QRCode, int64, error) {
	var all []*qrcode.QRCode
	for id := int64(1); id < m.nextID; id++ {
		if q, ok := m.codes[id]; ok && q.OwnerID == ownerID {
			all = append(all, q)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) Update(q *qrcode.QRCode) error {
	if _, ok := m.codes[q.ID]; !ok {
		return internal.ErrQRCodeNotFound
	}
	cp := *q
	m.codes[q.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(id int64) error {
	if _, ok := m.codes[id]; !ok {
		return internal.ErrQRCodeNotFound
	}
	delete(m.codes, id)
	return nil
}

func (m *mockRepo) RegisterScan(qrCodeID int64, visitorID, device, country string) error {
	m.scans = append(m.scans, scanRecord{QRCodeID: qrCodeID, VisitorID: visitorID})
	if q, ok := m.codes[qrCodeID]; ok {
		q.ScanCount++
	}
	return nil
}

func (m *mockRepo) DailyScans(qrCodeID int64, since time.Time) ([]qrcode.TimeSeriesPoint, error) {
	return []qrcode.TimeSeriesPoint{}, nil
}

func (m *mockRepo) DeviceBreakdown(qrCodeID int64) ([]qrcode.BreakdownEntry, error) {
	return []qrcode.BreakdownEntry{}, nil
}

func (m *mockRepo) CountryBreakdown(qrCodeID int64) ([]qrcode.BreakdownEntry, error) {
	return []qrcode.BreakdownEntry{}, nil
}

var _ = Describe("QR Code Service", func() {
	var (
		repo    *mockRepo
		service *qrcode.Service
		owner   *auth.User
		other   *auth.User
		admin   *auth.User
	)

	BeforeEach(func() {
		repo = newMockRepo()
		service = qrcode.NewService(repo, repo, nil)
		owner = &auth.User{ID: 1, Role: rbac.RoleEditor, IsActive: true}
		other = &auth.User{ID: 2, Role: rbac.RoleEditor, IsActive: true}
		admin = &auth.User{ID: 3, Role: rbac.RoleAdmin, IsActive: true}
	})

	urlCreate := func(name, url string) qrcode.CreateDTO {
		return qrcode.CreateDTO{
			Name:    name,
			Type:    qrcode.TypeURL,
			Content: qrcode.Content{URL: url},
		}
	}

	Describe("Create", func() {
		It("creates an active code with a short code and default design", func() {
			created, err := service.Create(owner, urlCreate("Site", "https://example.com"))
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).NotTo(BeZero())
			Expect(created.ShortCode).To(HaveLen(10))
			Expect(created.IsActive).To(BeTrue())
			Expect(created.Design.ForegroundColor).To(Equal("#000000"))
			Expect(created.OwnerID).To(Equal(owner.ID))
		})

		It("rejects an unknown type", func() {
			_, err := service.Create(owner, qrcode.CreateDTO{Name: "X", Type: "hologram"})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidQRType))
		})

		It("rejects content missing the variant for the declared type", func() {
			_, err := service.Create(owner, qrcode.CreateDTO{
				Name:    "WiFi",
				Type:    qrcode.TypeWiFi,
				Content: qrcode.Content{URL: "https://wrong-variant.example.com"},
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ownership", func() {
		It("denies another editor access to the owner's code", func() {
			created, err := service.Create(owner, urlCreate("Mine", "https://example.com"))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Get(other, created.ID)
			Expect(err).To(Equal(internal.ErrUnauthorizedAccess))
		})

		It("allows a user manager to access any code", func() {
			created, err := service.Create(owner, urlCreate("Mine", "https://example.com"))
			Expect(err).NotTo(HaveOccurred())

			got, err := service.Get(admin, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(created.ID))
		})
	})

	Describe("Update", func() {
		It("freezes content on static codes", func() {
			created, err := service.Create(owner, urlCreate("Static", "https://example.com"))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Update(owner, created.ID, qrcode.UpdateDTO{
				Content: &qrcode.Content{URL: "https://elsewhere.example.com"},
			})
			Expect(err).To(Equal(internal.ErrContentFrozen))
		})

		It("allows content edits on dynamic codes", func() {
			dto := urlCreate("Dynamic", "https://example.com")
			dto.IsDynamic = true
			created, err := service.Create(owner, dto)
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.Update(owner, created.ID, qrcode.UpdateDTO{
				Content: &qrcode.Content{URL: "https://elsewhere.example.com"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Content.URL).To(Equal("https://elsewhere.example.com"))
		})

		It("renames without touching content", func() {
			created, err := service.Create(owner, urlCreate("Old", "https://example.com"))
			Expect(err).NotTo(HaveOccurred())

			name := "New"
			updated, err := service.Update(owner, created.ID, qrcode.UpdateDTO{Name: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("New"))
			Expect(updated.Content.URL).To(Equal("https://example.com"))
		})
	})

	Describe("Duplicate", func() {
		It("clones everything except id, short code, counters and timestamps", func() {
			dto := urlCreate("Original", "https://example.com")
			dto.IsDynamic = true
			created, err := service.Create(owner, dto)
			Expect(err).NotTo(HaveOccurred())

			// Simulate scan history on the original.
			stored := repo.codes[created.ID]
			stored.ScanCount = 12
			stored.UniqueScans = 7

			dup, err := service.Duplicate(owner, created.ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(dup.ID).NotTo(Equal(created.ID))
			Expect(dup.ShortCode).NotTo(Equal(created.ShortCode))
			Expect(dup.Name).To(Equal("Original (Copy)"))
			Expect(dup.ScanCount).To(BeZero())
			Expect(dup.UniqueScans).To(BeZero())
			Expect(dup.Type).To(Equal(created.Type))
			Expect(dup.Content).To(Equal(created.Content))
			Expect(dup.IsDynamic).To(Equal(created.IsDynamic))
			Expect(dup.OwnerID).To(Equal(created.OwnerID))
		})
	})

	Describe("Resolve", func() {
		createCode := func(mutate func(*qrcode.CreateDTO)) *qrcode.QRCode {
			dto := urlCreate("Scannable", "https://example.com/landing")
			if mutate != nil {
				mutate(&dto)
			}
			created, err := service.Create(owner, dto)
			Expect(err).NotTo(HaveOccurred())
			return created
		}

		It("returns the payload and records the scan", func() {
			created := createCode(nil)

			result, err := service.Resolve(context.Background(), qrcode.ScanRequest{
				ShortCode: created.ShortCode,
				VisitorID: "v1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Type).To(Equal(qrcode.TypeURL))
			Expect(result.Payload).To(Equal("https://example.com/landing"))
			Expect(repo.scans).To(HaveLen(1))
		})

		It("rejects unknown short codes", func() {
			_, err := service.Resolve(context.Background(), qrcode.ScanRequest{ShortCode: "nope"})
			Expect(err).To(Equal(internal.ErrQRCodeNotFound))
		})

		It("rejects paused codes without recording a scan", func() {
			created := createCode(nil)
			paused := false
			_, err := service.Update(owner, created.ID, qrcode.UpdateDTO{IsActive: &paused})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Resolve(context.Background(), qrcode.ScanRequest{ShortCode: created.ShortCode})
			Expect(err).To(Equal(internal.ErrQRCodeInactive))
			Expect(repo.scans).To(BeEmpty())
		})

		It("rejects expired codes", func() {
			past := time.Now().Add(-time.Hour)
			created := createCode(func(dto *qrcode.CreateDTO) {
				dto.ExpiresAt = &past
			})

			_, err := service.Resolve(context.Background(), qrcode.ScanRequest{ShortCode: created.ShortCode})
			Expect(err).To(Equal(internal.ErrQRCodeExpired))
		})

		It("enforces the scan limit", func() {
			limit := int64(1)
			created := createCode(func(dto *qrcode.CreateDTO) {
				dto.ScanLimit = &limit
			})

			_, err := service.Resolve(context.Background(), qrcode.ScanRequest{ShortCode: created.ShortCode, VisitorID: "v1"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Resolve(context.Background(), qrcode.ScanRequest{ShortCode: created.ShortCode, VisitorID: "v2"})
			Expect(err).To(Equal(internal.ErrScanLimitReached))
		})

		It("requires the password when one is set", func() {
			created := createCode(func(dto *qrcode.CreateDTO) {
				dto.Password = "open-sesame"
			})

			_, err := service.Resolve(context.Background(), qrcode.ScanRequest{ShortCode: created.ShortCode})
			Expect(err).To(Equal(internal.ErrPasswordRequired))

			result, err := service.Resolve(context.Background(), qrcode.ScanRequest{
				ShortCode: created.ShortCode,
				Password:  "open-sesame",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Payload).To(Equal("https://example.com/landing"))
		})
	})
})

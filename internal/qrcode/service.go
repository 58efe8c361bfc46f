package qrcode

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quickmark/qr-management/internal"
	"github.com/quickmark/qr-management/internal/auth"
	"github.com/quickmark/qr-management/internal/core/events"
	"github.com/quickmark/qr-management/pkg/logger"
)

// Repository is the persistence contract for QR codes.
type Repository interface {
	Create(q *QRCode) (*QRCode, error)
	GetByID(id int64) (*QRCode, error)
	GetByShortCode(shortCode string) (*QRCode, error)
	GetAllForOwner(ownerID int64, offset, limit int, filters ListFilters) ([]*QRCode, int64, error)
	Update(q *QRCode) error
	Delete(id int64) error

	// RegisterScan bumps the scan counter, bumps unique scans when the
	// visitor has not been seen for this code, and appends the scan event.
	RegisterScan(qrCodeID int64, visitorID, device, country string) error
}

type Service struct {
	repo      Repository
	analytics AnalyticsRepository
	eventBus  *events.EventBus
	logger    *slog.Logger
}

func NewService(repo Repository, analytics AnalyticsRepository, bus *events.EventBus) *Service {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Service{
		repo:      repo,
		analytics: analytics,
		eventBus:  bus,
		logger:    lg,
	}
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

func newShortCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

// wrapStoreErr keeps domain errors intact and marks everything else as an
// opaque persistence failure.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	return internal.NewRemoteStoreError(err)
}

func (s *Service) Create(actor *auth.User, dto CreateDTO) (*QRCode, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	design := DefaultDesign()
	if dto.Design != nil {
		design = *dto.Design
	}

	q := &QRCode{
		OwnerID:   actor.ID,
		ShortCode: newShortCode(),
		Name:      dto.Name,
		Type:      dto.Type,
		Content:   dto.Content,
		IsDynamic: dto.IsDynamic,
		IsActive:  true,
		ExpiresAt: dto.ExpiresAt,
		ScanLimit: dto.ScanLimit,
		Design:    design,
	}
	q.SetPassword(dto.Password)

	created, err := s.repo.Create(q)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	s.logger.Info("qr code created",
		"qr_code_id", created.ID, "owner_id", actor.ID,
		"type", created.Type, "dynamic", created.IsDynamic)
	return created, nil
}

func (s *Service) Get(actor *auth.User, id int64) (*QRCode, error) {
	q, err := s.repo.GetByID(id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if !actor.CanAccessQRCode(q.OwnerID) {
		return nil, internal.ErrUnauthorizedAccess
	}
	return q, nil
}

func (s *Service) List(actor *auth.User, page, limit int, filters ListFilters) (*ListResult, error) {
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
	codes, total, err := s.repo.GetAllForOwner(actor.ID, offset, limit, filters)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ListResult{
		QRCodes:    codes,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Update applies a partial update. Content edits require a dynamic code;
// static codes are frozen at creation because the printed image encodes the
// payload directly.
func (s *Service) Update(actor *auth.User, id int64, dto UpdateDTO) (*QRCode, error) {
	q, err := s.repo.GetByID(id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if !actor.CanAccessQRCode(q.OwnerID) {
		return nil, internal.ErrUnauthorizedAccess
	}

	if dto.Content != nil {
		if !q.IsDynamic {
			return nil, internal.ErrContentFrozen
		}
		if err := dto.Content.Validate(q.Type); err != nil {
			return nil, err
		}
		q.Content = *dto.Content
	}
	if dto.Name != nil {
		if *dto.Name == "" {
			return nil, internal.NewValidationFieldError("name", "name is required", internal.ErrCodeInvalidName)
		}
		q.Name = *dto.Name
	}
	if dto.IsActive != nil {
		q.IsActive = *dto.IsActive
	}
	if dto.Password != nil {
		q.SetPassword(*dto.Password)
	}
	if dto.ExpiresAt != nil {
		q.ExpiresAt = dto.ExpiresAt
	}
	if dto.ScanLimit != nil {
		q.ScanLimit = dto.ScanLimit
	}
	if dto.Design != nil {
		q.Design = *dto.Design
	}

	if err := s.repo.Update(q); err != nil {
		return nil, wrapStoreErr(err)
	}
	return q, nil
}

func (s *Service) Delete(actor *auth.User, id int64) error {
	q, err := s.repo.GetByID(id)
	if err != nil {
		return wrapStoreErr(err)
	}
	if !actor.CanAccessQRCode(q.OwnerID) {
		return internal.ErrUnauthorizedAccess
	}

	if err := s.repo.Delete(id); err != nil {
		return wrapStoreErr(err)
	}
	s.logger.Info("qr code deleted", "qr_code_id", id, "owner_id", q.OwnerID)
	return nil
}

// Duplicate clones a code under the same owner with a fresh short code and a
// "(Copy)" name suffix. Scan history does not carry over.
func (s *Service) Duplicate(actor *auth.User, id int64) (*QRCode, error) {
	q, err := s.repo.GetByID(id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if !actor.CanAccessQRCode(q.OwnerID) {
		return nil, internal.ErrUnauthorizedAccess
	}

	cp := q.Duplicate()
	cp.ShortCode = newShortCode()

	created, err := s.repo.Create(cp)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return created, nil
}

// Resolve is the scanner-facing path: look up by short code, enforce the
// access gates in a fixed order, record the scan, return the payload.
func (s *Service) Resolve(ctx context.Context, req ScanRequest) (*ResolveResult, error) {
	q, err := s.repo.GetByShortCode(req.ShortCode)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	if !q.IsActive {
		return nil, internal.ErrQRCodeInactive
	}
	if q.ExpiresAt != nil && time.Now().After(*q.ExpiresAt) {
		return nil, internal.ErrQRCodeExpired
	}
	if q.ScanLimit != nil && q.ScanCount >= *q.ScanLimit {
		return nil, internal.ErrScanLimitReached
	}
	if q.Password() != "" && req.Password != q.Password() {
		return nil, internal.ErrPasswordRequired
	}

	if err := s.repo.RegisterScan(q.ID, req.VisitorID, req.Device, req.Country); err != nil {
		// The visitor still gets the content; losing one counter tick is
		// preferable to a failed scan.
		s.logger.Error("failed to register scan", "qr_code_id", q.ID, "error", err)
	}

	if s.eventBus != nil {
		_ = s.eventBus.Publish(ctx, events.NewQRScannedEvent(q.ID, req.VisitorID, req.Device, req.Country))
	}

	return &ResolveResult{
		Type:    q.Type,
		Payload: q.Content.Payload(q.Type),
	}, nil
}

package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/quickmark/qr-management/internal"
	datamodel "github.com/quickmark/qr-management/internal/core/datamodel/qrcode"
	"github.com/quickmark/qr-management/internal/qrcode"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(q *qrcode.QRCode) (*qrcode.QRCode, error) {
	m, err := q.ToDataModel()
	if err != nil {
		return nil, err
	}
	if err := r.db.Create(m).Error; err != nil {
		return nil, err
	}
	return qrcode.FromDataModel(m)
}

func (r *Repository) GetByID(id int64) (*qrcode.QRCode, error) {
	var m datamodel.QRCode
	err := r.db.First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrQRCodeNotFound
		}
		return nil, err
	}
	return qrcode.FromDataModel(&m)
}

func (r *Repository) GetByShortCode(shortCode string) (*qrcode.QRCode, error) {
	var m datamodel.QRCode
	err := r.db.First(&m, "short_code = ?", shortCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrQRCodeNotFound
		}
		return nil, err
	}
	return qrcode.FromDataModel(&m)
}

func (r *Repository) GetAllForOwner(ownerID int64, offset, limit int, filters qrcode.ListFilters) ([]*qrcode.QRCode, int64, error) {
	query := r.db.Model(&datamodel.QRCode{}).Where("owner_id = ?", ownerID)

	if filters.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filters.Search+"%")
	}
	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}
	if filters.Status == "active" {
		query = query.Where("is_active = ?", true)
	} else if filters.Status == "paused" {
		query = query.Where("is_active = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []datamodel.QRCode
	err := query.Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	codes := make([]*qrcode.QRCode, 0, len(rows))
	for i := range rows {
		q, convErr := qrcode.FromDataModel(&rows[i])
		if convErr != nil {
			return nil, 0, convErr
		}
		codes = append(codes, q)
	}
	return codes, total, nil
}

func (r *Repository) Update(q *qrcode.QRCode) error {
	m, err := q.ToDataModel()
	if err != nil {
		return err
	}
	result := r.db.Model(&datamodel.QRCode{}).
		Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"name":       m.Name,
			"content":    m.Content,
			"is_active":  m.IsActive,
			"password":   m.Password,
			"expires_at": m.ExpiresAt,
			"scan_limit": m.ScanLimit,
			"design":     m.Design,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrQRCodeNotFound
	}
	return nil
}

func (r *Repository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("qr_code_id = ?", id).Delete(&datamodel.ScanEvent{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&datamodel.QRCode{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrQRCodeNotFound
		}
		return nil
	})
}

// RegisterScan appends the scan event and bumps the counters in one
// transaction so the scan-limit check reads a consistent count.
func (r *Repository) RegisterScan(qrCodeID int64, visitorID, device, country string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var seen int64
		if visitorID != "" {
			err := tx.Model(&datamodel.ScanEvent{}).
				Where("qr_code_id = ? AND visitor_id = ?", qrCodeID, visitorID).
				Count(&seen).Error
			if err != nil {
				return err
			}
		}

		event := datamodel.ScanEvent{
			QRCodeID:  qrCodeID,
			VisitorID: visitorID,
			Device:    device,
			Country:   country,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{
			"scan_count": gorm.Expr("scan_count + 1"),
		}
		if visitorID != "" && seen == 0 {
			changes["unique_scans"] = gorm.Expr("unique_scans + 1")
		}
		return tx.Model(&datamodel.QRCode{}).
			Where("id = ?", qrCodeID).
			Updates(changes).Error
	})
}

func (r *Repository) DailyScans(qrCodeID int64, since time.Time) ([]qrcode.TimeSeriesPoint, error) {
	var points []qrcode.TimeSeriesPoint
	err := r.db.Model(&datamodel.ScanEvent{}).
		Select("date(scanned_at) AS date, COUNT(*) AS scans, COUNT(DISTINCT visitor_id) AS unique_scans").
		Where("qr_code_id = ? AND scanned_at >= ?", qrCodeID, since).
		Group("date(scanned_at)").
		Order("date(scanned_at) ASC").
		Scan(&points).Error
	return points, err
}

func (r *Repository) DeviceBreakdown(qrCodeID int64) ([]qrcode.BreakdownEntry, error) {
	return r.breakdown(qrCodeID, "device")
}

func (r *Repository) CountryBreakdown(qrCodeID int64) ([]qrcode.BreakdownEntry, error) {
	return r.breakdown(qrCodeID, "country")
}

func (r *Repository) breakdown(qrCodeID int64, column string) ([]qrcode.BreakdownEntry, error) {
	var entries []qrcode.BreakdownEntry
	err := r.db.Model(&datamodel.ScanEvent{}).
		Select(column + " AS label, COUNT(*) AS count").
		Where("qr_code_id = ?", qrCodeID).
		Group(column).
		Order("count DESC").
		Scan(&entries).Error
	return entries, err
}

package qrcode

import "time"

type QRCode struct {
	ID          int64      `gorm:"primaryKey"`
	OwnerID     int64      `gorm:"column:owner_id;not null;index"`
	ShortCode   string     `gorm:"column:short_code;uniqueIndex;not null"`
	Name        string     `gorm:"column:name;not null"`
	Type        string     `gorm:"column:type;not null"`
	Content     string     `gorm:"column:content;type:jsonb;not null"`
	IsDynamic   bool       `gorm:"column:is_dynamic;default:false"`
	IsActive    bool       `gorm:"column:is_active;default:true"`
	Password    string     `gorm:"column:password"`
	ExpiresAt   *time.Time `gorm:"column:expires_at"`
	ScanLimit   *int64     `gorm:"column:scan_limit"`
	Design      string     `gorm:"column:design;type:jsonb"`
	ScanCount   int64      `gorm:"column:scan_count;default:0"`
	UniqueScans int64      `gorm:"column:unique_scans;default:0"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (QRCode) TableName() string {
	return "qr_codes"
}

// ScanEvent records a single resolution of a QR code; analytics aggregates
// are computed from these rows.
type ScanEvent struct {
	ID        int64     `gorm:"primaryKey"`
	QRCodeID  int64     `gorm:"column:qr_code_id;not null;index"`
	VisitorID string    `gorm:"column:visitor_id"`
	Device    string    `gorm:"column:device"`
	Country   string    `gorm:"column:country"`
	ScannedAt time.Time `gorm:"column:scanned_at;autoCreateTime"`
}

func (ScanEvent) TableName() string {
	return "scan_events"
}

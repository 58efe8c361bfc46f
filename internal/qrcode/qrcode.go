package qrcode

import (
	"encoding/json"
	"time"

	"github.com/quickmark/qr-management/internal"
	datamodel "github.com/quickmark/qr-management/internal/core/datamodel/qrcode"
)

// QR code types. Content is a tagged union keyed by this value.
const (
	TypeURL   = "url"
	TypeText  = "text"
	TypeWiFi  = "wifi"
	TypeVCard = "vcard"
	TypeEmail = "email"
	TypePhone = "phone"
	TypeSMS   = "sms"
)

var validTypes = map[string]bool{
	TypeURL:   true,
	TypeText:  true,
	TypeWiFi:  true,
	TypeVCard: true,
	TypeEmail: true,
	TypePhone: true,
	TypeSMS:   true,
}

func IsValidType(t string) bool {
	return validTypes[t]
}

// Content holds exactly one variant, matching the entity's Type. The JSON
// shape is the persisted form in the qr_codes.content column.
type Content struct {
	URL   string        `json:"url,omitempty"`
	Text  string        `json:"text,omitempty"`
	WiFi  *WiFiContent  `json:"wifi,omitempty"`
	VCard *VCardContent `json:"vcard,omitempty"`
	Email *EmailContent `json:"email,omitempty"`
	Phone string        `json:"phone,omitempty"`
	SMS   *SMSContent   `json:"sms,omitempty"`
}

type WiFiContent struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
	Security string `json:"security"` // WPA, WEP or nopass
	Hidden   bool   `json:"hidden"`
}

type VCardContent struct {
	FullName     string `json:"full_name"`
	Organization string `json:"organization"`
	Title        string `json:"title"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Website      string `json:"website"`
}

type EmailContent struct {
	Address string `json:"address"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type SMSContent struct {
	Number  string `json:"number"`
	Message string `json:"message"`
}

// Validate checks that the variant matching qrType is present and non-empty.
func (c Content) Validate(qrType string) error {
	switch qrType {
	case TypeURL:
		if c.URL == "" {
			return internal.NewValidationFieldError("content.url", "url is required", internal.ErrCodeInvalidContent)
		}
	case TypeText:
		if c.Text == "" {
			return internal.NewValidationFieldError("content.text", "text is required", internal.ErrCodeInvalidContent)
		}
	case TypeWiFi:
		if c.WiFi == nil || c.WiFi.SSID == "" {
			return internal.NewValidationFieldError("content.wifi", "wifi network name is required", internal.ErrCodeInvalidContent)
		}
	case TypeVCard:
		if c.VCard == nil || c.VCard.FullName == "" {
			return internal.NewValidationFieldError("content.vcard", "contact name is required", internal.ErrCodeInvalidContent)
		}
	case TypeEmail:
		if c.Email == nil || c.Email.Address == "" {
			return internal.NewValidationFieldError("content.email", "email address is required", internal.ErrCodeInvalidContent)
		}
	case TypePhone:
		if c.Phone == "" {
			return internal.NewValidationFieldError("content.phone", "phone number is required", internal.ErrCodeInvalidContent)
		}
	case TypeSMS:
		if c.SMS == nil || c.SMS.Number == "" {
			return internal.NewValidationFieldError("content.sms", "sms number is required", internal.ErrCodeInvalidContent)
		}
	default:
		return internal.NewValidationError("unknown QR code type", internal.ErrCodeInvalidQRType)
	}
	return nil
}

// Design holds the rendering options stored alongside the code.
type Design struct {
	ForegroundColor string `json:"foreground_color"`
	BackgroundColor string `json:"background_color"`
	Shape           string `json:"shape"`
	LogoURL         string `json:"logo_url,omitempty"`
}

func DefaultDesign() Design {
	return Design{
		ForegroundColor: "#000000",
		BackgroundColor: "#FFFFFF",
		Shape:           "square",
	}
}

// QRCode is the domain entity as handlers and services see it.
type QRCode struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	ShortCode   string     `json:"short_code"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Content     Content    `json:"content"`
	IsDynamic   bool       `json:"is_dynamic"`
	IsActive    bool       `json:"is_active"`
	HasPassword bool       `json:"has_password"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ScanLimit   *int64     `json:"scan_limit,omitempty"`
	Design      Design     `json:"design"`
	ScanCount   int64      `json:"scan_count"`
	UniqueScans int64      `json:"unique_scans"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	password string
}

// Password returns the access password; it never serializes.
func (q *QRCode) Password() string { return q.password }

func (q *QRCode) SetPassword(p string) {
	q.password = p
	q.HasPassword = p != ""
}

// Duplicate returns a copy ready for insertion: no id or short code yet, name
// suffixed, counters and timestamps reset. Everything else carries over.
func (q *QRCode) Duplicate() *QRCode {
	cp := *q
	cp.ID = 0
	cp.ShortCode = ""
	cp.Name = q.Name + " (Copy)"
	cp.ScanCount = 0
	cp.UniqueScans = 0
	cp.CreatedAt = time.Time{}
	cp.UpdatedAt = time.Time{}
	return &cp
}

func FromDataModel(m *datamodel.QRCode) (*QRCode, error) {
	var content Content
	if m.Content != "" {
		if err := json.Unmarshal([]byte(m.Content), &content); err != nil {
			return nil, err
		}
	}

	design := DefaultDesign()
	if m.Design != "" {
		if err := json.Unmarshal([]byte(m.Design), &design); err != nil {
			return nil, err
		}
	}

	q := &QRCode{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		ShortCode:   m.ShortCode,
		Name:        m.Name,
		Type:        m.Type,
		Content:     content,
		IsDynamic:   m.IsDynamic,
		IsActive:    m.IsActive,
		ExpiresAt:   m.ExpiresAt,
		ScanLimit:   m.ScanLimit,
		Design:      design,
		ScanCount:   m.ScanCount,
		UniqueScans: m.UniqueScans,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	q.SetPassword(m.Password)
	return q, nil
}

func (q *QRCode) ToDataModel() (*datamodel.QRCode, error) {
	contentJSON, err := json.Marshal(q.Content)
	if err != nil {
		return nil, err
	}
	designJSON, err := json.Marshal(q.Design)
	if err != nil {
		return nil, err
	}

	return &datamodel.QRCode{
		ID:          q.ID,
		OwnerID:     q.OwnerID,
		ShortCode:   q.ShortCode,
		Name:        q.Name,
		Type:        q.Type,
		Content:     string(contentJSON),
		IsDynamic:   q.IsDynamic,
		IsActive:    q.IsActive,
		Password:    q.password,
		ExpiresAt:   q.ExpiresAt,
		ScanLimit:   q.ScanLimit,
		Design:      string(designJSON),
		ScanCount:   q.ScanCount,
		UniqueScans: q.UniqueScans,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}, nil
}

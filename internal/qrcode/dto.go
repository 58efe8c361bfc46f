package qrcode

import (
	"time"

	"github.com/quickmark/qr-management/internal"
)

type CreateDTO struct {
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Content   Content    `json:"content"`
	IsDynamic bool       `json:"is_dynamic"`
	Password  string     `json:"password,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	ScanLimit *int64     `json:"scan_limit,omitempty"`
	Design    *Design    `json:"design,omitempty"`
}

func (d CreateDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeInvalidName)
	}
	if !IsValidType(d.Type) {
		return internal.NewValidationError("unknown QR code type", internal.ErrCodeInvalidQRType)
	}
	return d.Content.Validate(d.Type)
}

// UpdateDTO carries partial updates; nil fields stay untouched. Content
// changes on a static code are rejected by the service.
type UpdateDTO struct {
	Name      *string    `json:"name,omitempty"`
	Content   *Content   `json:"content,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
	Password  *string    `json:"password,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	ScanLimit *int64     `json:"scan_limit,omitempty"`
	Design    *Design    `json:"design,omitempty"`
}

// ListFilters narrows owner listings.
type ListFilters struct {
	Search string `json:"search"`
	Type   string `json:"type"`
	Status string `json:"status"` // "active" or "paused"
}

type ListResult struct {
	QRCodes    []*QRCode `json:"qr_codes"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

// ScanRequest carries what the resolve endpoint knows about the visitor.
type ScanRequest struct {
	ShortCode string
	Password  string
	VisitorID string
	Device    string
	Country   string
}

// ResolveResult is what a scanner-facing redirect needs: the payload plus the
// type so the edge can choose between a redirect and a content page.
type ResolveResult struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

package importer

import (
	"strings"

	"github.com/quickmark/qr-management/internal"
	"github.com/quickmark/qr-management/internal/qrcode"
)

// Row is one parsed record keyed by header text. Ordering of rows follows the
// source file; ordering of columns lives in ParsedFile.Headers.
type Row map[string]string

type ParsedFile struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Mapping binds parsed columns to QR fields for generation. Only the simple
// scalar QR types can be bulk-generated.
type Mapping struct {
	Type          string `json:"type"`
	NameColumn    string `json:"name_column"`
	ContentColumn string `json:"content_column"`
}

var bulkTypes = map[string]bool{
	qrcode.TypeURL:   true,
	qrcode.TypeText:  true,
	qrcode.TypeEmail: true,
	qrcode.TypePhone: true,
}

// Validate checks the mapping against the parsed headers. Both the name and
// content bindings are required before generation can start.
func (m Mapping) Validate(headers []string) error {
	if !bulkTypes[m.Type] {
		return internal.NewValidationError("bulk import supports url, text, email and phone types", internal.ErrCodeInvalidQRType)
	}
	if m.NameColumn == "" {
		return internal.NewValidationFieldError("name_column", "name column mapping is required", internal.ErrCodeInvalidMapping)
	}
	if m.ContentColumn == "" {
		return internal.NewValidationFieldError("content_column", "content column mapping is required", internal.ErrCodeInvalidMapping)
	}

	known := make(map[string]bool, len(headers))
	for _, h := range headers {
		known[h] = true
	}
	if !known[m.NameColumn] {
		return internal.NewValidationFieldError("name_column", "column not present in the uploaded file", internal.ErrCodeInvalidMapping)
	}
	if !known[m.ContentColumn] {
		return internal.NewValidationFieldError("content_column", "column not present in the uploaded file", internal.ErrCodeInvalidMapping)
	}
	return nil
}

// content builds the typed payload for one mapped value.
func (m Mapping) content(value string) qrcode.Content {
	switch m.Type {
	case qrcode.TypeURL:
		return qrcode.Content{URL: value}
	case qrcode.TypeText:
		return qrcode.Content{Text: value}
	case qrcode.TypeEmail:
		return qrcode.Content{Email: &qrcode.EmailContent{Address: value}}
	case qrcode.TypePhone:
		return qrcode.Content{Phone: value}
	}
	return qrcode.Content{}
}

// isEmptyRow reports whether every cell is blank after trimming.
func isEmptyRow(row Row) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

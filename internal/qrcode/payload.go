package qrcode

import (
	"fmt"
	"strings"
)

// FormatWiFiData renders the WiFi network join string understood by phone
// camera apps. The grammar is fixed; changing any separator breaks scanners.
func FormatWiFiData(ssid, password, security string, hidden bool) string {
	return fmt.Sprintf("WIFI:T:%s;S:%s;P:%s;H:%t;;", security, ssid, password, hidden)
}

// FormatVCardData emits a minimal vCard 3.0 block. Missing fields render as
// empty values rather than omitted lines.
func FormatVCardData(c VCardContent) string {
	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:" + c.FullName,
		"ORG:" + c.Organization,
		"TITLE:" + c.Title,
		"TEL:" + c.Phone,
		"EMAIL:" + c.Email,
		"URL:" + c.Website,
		"END:VCARD",
	}
	return strings.Join(lines, "\n")
}

// Payload returns the string a scanner should receive for this content and
// type pairing.
func (c Content) Payload(qrType string) string {
	switch qrType {
	case TypeURL:
		return c.URL
	case TypeText:
		return c.Text
	case TypeWiFi:
		if c.WiFi == nil {
			return ""
		}
		return FormatWiFiData(c.WiFi.SSID, c.WiFi.Password, c.WiFi.Security, c.WiFi.Hidden)
	case TypeVCard:
		if c.VCard == nil {
			return ""
		}
		return FormatVCardData(*c.VCard)
	case TypeEmail:
		if c.Email == nil {
			return ""
		}
		payload := "mailto:" + c.Email.Address
		params := make([]string, 0, 2)
		if c.Email.Subject != "" {
			params = append(params, "subject="+c.Email.Subject)
		}
		if c.Email.Body != "" {
			params = append(params, "body="+c.Email.Body)
		}
		if len(params) > 0 {
			payload += "?" + strings.Join(params, "&")
		}
		return payload
	case TypePhone:
		return "tel:" + c.Phone
	case TypeSMS:
		if c.SMS == nil {
			return ""
		}
		return fmt.Sprintf("SMSTO:%s:%s", c.SMS.Number, c.SMS.Message)
	}
	return ""
}

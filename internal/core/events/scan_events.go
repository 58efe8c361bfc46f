package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeQRScanned = "qr.scanned"

// QRScannedEvent is published after a resolve has already persisted the scan
// row and counters; subscribers only observe (logging, future fan-out).
type QRScannedEvent struct {
	BaseEvent
	QRCodeID  int64
	VisitorID string
	Device    string
	Country   string
}

func NewQRScannedEvent(qrCodeID int64, visitorID, device, country string) QRScannedEvent {
	return QRScannedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeQRScanned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"qr_code_id": qrCodeID,
				"visitor_id": visitorID,
				"device":     device,
				"country":    country,
			},
		},
		QRCodeID:  qrCodeID,
		VisitorID: visitorID,
		Device:    device,
		Country:   country,
	}
}

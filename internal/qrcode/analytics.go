package qrcode

import (
	"time"

	"github.com/quickmark/qr-management/internal"
	"github.com/quickmark/qr-management/internal/auth"
)

// Analytics shapes consumed by the dashboard charts.

type TimeSeriesPoint struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Scans       int64  `json:"scans"`
	UniqueScans int64  `json:"unique_scans"`
}

type BreakdownEntry struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type FunnelStage struct {
	Stage string `json:"stage"`
	Count int64  `json:"count"`
}

type Analytics struct {
	QRCodeID    int64             `json:"qr_code_id"`
	TotalScans  int64             `json:"total_scans"`
	UniqueScans int64             `json:"unique_scans"`
	Daily       []TimeSeriesPoint `json:"daily"`
	Devices     []BreakdownEntry  `json:"devices"`
	Countries   []BreakdownEntry  `json:"countries"`
	Funnel      []FunnelStage     `json:"funnel"`
}

// AnalyticsRepository aggregates scan events for one QR code.
type AnalyticsRepository interface {
	DailyScans(qrCodeID int64, since time.Time) ([]TimeSeriesPoint, error)
	DeviceBreakdown(qrCodeID int64) ([]BreakdownEntry, error)
	CountryBreakdown(qrCodeID int64) ([]BreakdownEntry, error)
}

const defaultAnalyticsDays = 30

// GetAnalytics aggregates scans over the trailing window (default 30 days).
// The funnel is derived from the counters: every scan reached the code, the
// unique subset represents distinct visitors.
func (s *Service) GetAnalytics(actor *auth.User, id int64, days int) (*Analytics, error) {
	q, err := s.repo.GetByID(id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if !actor.CanAccessQRCode(q.OwnerID) {
		return nil, internal.ErrUnauthorizedAccess
	}

	if days < 1 {
		days = defaultAnalyticsDays
	}
	since := time.Now().AddDate(0, 0, -days)

	daily, err := s.analytics.DailyScans(id, since)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	devices, err := s.analytics.DeviceBreakdown(id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	countries, err := s.analytics.CountryBreakdown(id)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	return &Analytics{
		QRCodeID:    q.ID,
		TotalScans:  q.ScanCount,
		UniqueScans: q.UniqueScans,
		Daily:       daily,
		Devices:     devices,
		Countries:   countries,
		Funnel: []FunnelStage{
			{Stage: "scanned", Count: q.ScanCount},
			{Stage: "unique_visitors", Count: q.UniqueScans},
		},
	}, nil
}

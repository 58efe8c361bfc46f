package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/quickmark/qr-management/internal/qrcode"
)

// ReportTitle is the first preamble line of every analytics export.
const ReportTitle = "QR Code Analytics Report"

// BuildAnalyticsCSV renders one QR code's analytics as CSV: a fixed preamble
// block, a metrics table, then the daily time series. Field quoting follows
// RFC 4180 via encoding/csv so spreadsheet tools import it cleanly.
func BuildAnalyticsCSV(entityName string, days int, generatedAt time.Time, analytics *qrcode.Analytics) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	preamble := [][]string{
		{ReportTitle},
		{"QR Code", entityName},
		{"Time Range", fmt.Sprintf("Last %d days", days)},
		{"Generated", generatedAt.UTC().Format(time.RFC3339)},
		{},
	}
	for _, record := range preamble {
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	metrics := [][]string{
		{"Metric", "Value"},
		{"Total Scans", strconv.FormatInt(analytics.TotalScans, 10)},
		{"Unique Scans", strconv.FormatInt(analytics.UniqueScans, 10)},
		{},
	}
	for _, record := range metrics {
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	if err := w.Write([]string{"Date", "Scans", "Unique Scans"}); err != nil {
		return nil, err
	}
	for _, point := range analytics.Daily {
		record := []string{
			point.Date,
			strconv.FormatInt(point.Scans, 10),
			strconv.FormatInt(point.UniqueScans, 10),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

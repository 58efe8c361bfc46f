package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/quickmark/qr-management/internal/auth"
	"github.com/quickmark/qr-management/internal/qrcode"
	"github.com/quickmark/qr-management/internal/transport"
	"github.com/quickmark/qr-management/pkg/logger"
)

// AnalyticsProvider is the slice of the QR code service exports read from.
type AnalyticsProvider interface {
	Get(actor *auth.User, id int64) (*qrcode.QRCode, error)
	GetAnalytics(actor *auth.User, id int64, days int) (*qrcode.Analytics, error)
}

type Handler struct {
	*transport.BaseHandler
	Provider AnalyticsProvider
}

func NewHandler(provider AnalyticsProvider) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Provider:    provider,
	}
}

const defaultExportDays = 30

// ExportAnalytics streams the CSV report as a file download.
func (h *Handler) ExportAnalytics(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		h.WriteError(w, http.StatusBadRequest, "invalid qr code id")
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days < 1 {
		days = defaultExportDays
	}

	q, err := h.Provider.Get(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	analytics, err := h.Provider.GetAnalytics(actor, id, days)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	report, err := BuildAnalyticsCSV(q.Name, days, time.Now(), analytics)
	if err != nil {
		h.Logger.Error("failed to build analytics export", "qr_code_id", id, "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	filename := fmt.Sprintf("qr-analytics-%d.csv", id)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report); err != nil {
		h.Logger.Error("failed to write export response", "error", err)
	}
}

package qrcode

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

	"github.com/quickmark/qr-management/internal/auth"
	"github.com/quickmark/qr-management/internal/transport"
	"github.com/quickmark/qr-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(actor, dto)
	if err != nil {
		h.Logger.Error("qr code creation failed", "owner_id", actor.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	filters := ListFilters{
		Search: q.Get("search"),
		Type:   q.Get("type"),
		Status: q.Get("status"),
	}

	result, err := h.Service.List(actor, page, limit, filters)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	qr, err := h.Service.Get(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, qr)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	var dto UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(actor, id, dto)
	if err != nil {
		h.Logger.Error("qr code update failed", "qr_code_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Duplicate(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	created, err := h.Service.Duplicate(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	analytics, err := h.Service.GetAnalytics(actor, id, days)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, analytics)
}

// Resolve is the public scanner endpoint; no session required.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	req := ScanRequest{
		ShortCode: chi.URLParam(r, "shortCode"),
		Password:  r.URL.Query().Get("password"),
		VisitorID: visitorID(r),
		Device:    deviceFromUserAgent(r.UserAgent()),
		Country:   r.Header.Get("X-Country-Code"),
	}

	result, err := h.Service.Resolve(r.Context(), req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	// URL codes redirect straight to the destination; everything else gets
	// the payload back for the landing page to render.
	if result.Type == TypeURL {
		http.Redirect(w, r, result.Payload, http.StatusFound)
		return
	}
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (*auth.User, int64, bool) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return nil, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		h.WriteError(w, http.StatusBadRequest, "invalid qr code id")
		return nil, 0, false
	}
	return actor, id, true
}

func visitorID(r *http.Request) string {
	if vid := r.Header.Get("X-Visitor-ID"); vid != "" {
		return vid
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func deviceFromUserAgent(ua string) string {
	lower := strings.ToLower(ua)
	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		return "tablet"
	case strings.Contains(lower, "mobile") || strings.Contains(lower, "android") || strings.Contains(lower, "iphone"):
		return "mobile"
	case ua == "":
		return "unknown"
	default:
		return "desktop"
	}
}

package importer

import (
	"encoding/json"
	"log/slog"
	"net/http"

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

// Parse handles the upload stage: multipart form with a "file" field.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "file upload is required")
		return
	}
	defer file.Close()

	parsed, err := h.Service.Parse(file, header.Filename)
	if err != nil {
		h.Logger.Error("import parse failed", "filename", header.Filename, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, parsed)
}

type previewRequest struct {
	File    ParsedFile `json:"file"`
	Mapping Mapping    `json:"mapping"`
}

// Preview handles the mapping stage: validates the column bindings and
// returns the first rows as the generator would see them.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	preview, err := h.Service.Preview(&req.File, req.Mapping)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"preview": preview,
	})
}

// Generate handles the final stage and returns the per-row outcome report.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Generate(actor, &req.File, req.Mapping)
	if err != nil {
		h.Logger.Error("bulk generation failed", "owner_id", actor.ID, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

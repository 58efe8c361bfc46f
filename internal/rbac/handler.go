package rbac

import (
	"log/slog"
	"net/http"

	"github.com/quickmark/qr-management/internal/transport"
	"github.com/quickmark/qr-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
}

func NewHandler() *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
	}
}

// GetRoles handles GET /roles and returns the role hierarchy for display.
func (h *Handler) GetRoles(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"roles": RoleHierarchy(),
	})
}

// GetPermissions handles GET /permissions and returns the permission catalog
// grouped by category.
func (h *Handler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"permissions": PermissionCatalog(),
	})
}

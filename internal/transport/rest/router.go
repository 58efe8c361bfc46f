package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/quickmark/qr-management/internal"
	"github.com/quickmark/qr-management/internal/auth"
	"github.com/quickmark/qr-management/internal/export"
	"github.com/quickmark/qr-management/internal/importer"
	"github.com/quickmark/qr-management/internal/qrcode"
	"github.com/quickmark/qr-management/internal/rbac"
	"github.com/quickmark/qr-management/internal/transport/middleware"
	"github.com/quickmark/qr-management/internal/transport/swagger"
	"github.com/quickmark/qr-management/internal/user"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth     *auth.Handler
	RBAC     *rbac.Handler
	User     *user.Handler
	QRCode   *qrcode.Handler
	Importer *importer.Handler
	Export   *export.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, cfg internal.ServerConfig, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerSec, cfg.RateLimitBurst, logger)

	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(rateLimiter.Middleware)

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	// Public scanner endpoint, outside the API prefix so short links stay short.
	if h.QRCode != nil {
		router.Get("/r/{shortCode}", h.QRCode.Resolve)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/register", h.Auth.Register)
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.RBAC != nil {
				pr.Get("/roles", h.RBAC.GetRoles)
				pr.Get("/permissions", h.RBAC.GetPermissions)
			}

			if h.User != nil {
				pr.Route("/users", func(ur chi.Router) {
					// Own profile; needs a session but no directory permission.
					ur.Get("/me", h.Auth.Me)

					ur.Group(func(vr chi.Router) {
						vr.Use(middleware.RequirePermission("users.view"))
						vr.Get("/", h.User.GetAllUsers)
						vr.Get("/stats", h.User.GetUserStats)
						vr.Get("/{id}", h.User.GetUser)
						vr.Get("/{id}/activity", h.User.GetUserActivity)
					})

					ur.Group(func(mr chi.Router) {
						mr.Use(middleware.RequirePermission("users.manage"))
						mr.Patch("/{id}/role", h.User.UpdateUserRole)
						mr.Patch("/{id}/status", h.User.UpdateUserStatus)
					})

					// Bulk mutations touch many accounts at once, so the
					// permission check is backed by an admin level floor.
					ur.Group(func(br chi.Router) {
						br.Use(middleware.RequirePermission("users.manage"))
						br.Use(middleware.RequireMinLevel(rbac.LevelAdmin))
						br.Post("/bulk", h.User.BulkUpdateUsers)
					})

					ur.Group(func(dr chi.Router) {
						dr.Use(middleware.RequirePermission("users.delete"))
						dr.Delete("/{id}", h.User.DeleteUser)
					})
				})
			}

			if h.QRCode != nil {
				pr.Route("/qr-codes", func(qr chi.Router) {
					qr.Group(func(cr chi.Router) {
						cr.Use(middleware.RequirePermission("qr.create"))
						cr.Post("/", h.QRCode.Create)
						cr.Post("/{id}/duplicate", h.QRCode.Duplicate)
					})

					qr.Group(func(vr chi.Router) {
						vr.Use(middleware.RequirePermission("qr.view"))
						vr.Get("/", h.QRCode.List)
						vr.Get("/{id}", h.QRCode.Get)
					})

					qr.Group(func(er chi.Router) {
						er.Use(middleware.RequirePermission("qr.edit"))
						er.Patch("/{id}", h.QRCode.Update)
					})

					qr.Group(func(dr chi.Router) {
						dr.Use(middleware.RequirePermission("qr.delete"))
						dr.Delete("/{id}", h.QRCode.Delete)
					})

					qr.Group(func(ar chi.Router) {
						ar.Use(middleware.RequirePermission("analytics.view"))
						ar.Get("/{id}/analytics", h.QRCode.GetAnalytics)
					})

					if h.Export != nil {
						qr.Group(func(xr chi.Router) {
							xr.Use(middleware.RequirePermission("analytics.export"))
							xr.Get("/{id}/export", h.Export.ExportAnalytics)
						})
					}
				})
			}

			if h.Importer != nil {
				pr.Route("/import", func(ir chi.Router) {
					ir.Use(middleware.RequirePermission("qr.create"))
					ir.Post("/parse", h.Importer.Parse)
					ir.Post("/preview", h.Importer.Preview)
					ir.Post("/generate", h.Importer.Generate)
				})
			}
		})
	})
}

// internal/app/features/users/routes.go
package users

import (
	"github.com/go-chi/chi/v5"

	sysauth "github.com/campushub/campushub/internal/app/system/auth"
)

// Routes returns the admin user-management routes.
func Routes(h *Handler, sm *sysauth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.List)
	r.Put("/{id}/role", h.SetRole)
	r.Put("/{id}/status", h.SetStatus)

	return r
}

// internal/app/features/placements/routes.go
package placements

import (
	"github.com/go-chi/chi/v5"

	sysauth "github.com/campushub/campushub/internal/app/system/auth"
)

// Routes returns the router for the placement endpoints, mounted under
// /placements. All routes require a signed-in user; the detail view is
// year-gated for students inside the handler.
func Routes(h *Handler, sm *sysauth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)

	return r
}

// internal/app/features/profile/routes.go
package profile

import (
	"github.com/go-chi/chi/v5"

	sysauth "github.com/campushub/campushub/internal/app/system/auth"
)

// Routes returns the router for the profile endpoints, mounted under
// /profile.
func Routes(h *Handler, sm *sysauth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.Get)
	r.Put("/", h.Update)

	return r
}

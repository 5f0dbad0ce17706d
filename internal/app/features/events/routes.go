// internal/app/features/events/routes.go
package events

import (
	"github.com/go-chi/chi/v5"

	sysauth "github.com/campushub/campushub/internal/app/system/auth"
)

// Routes returns the router for the event endpoints, mounted under
// /events. Listing is open to any signed-in user; create, update, and
// delete are limited to admins and club reps inside the handlers.
func Routes(h *Handler, sm *sysauth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

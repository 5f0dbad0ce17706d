// internal/app/features/announcements/routes.go
package announcements

import (
	"github.com/go-chi/chi/v5"

	sysauth "github.com/campushub/campushub/internal/app/system/auth"
)

// Routes returns the router for the announcement endpoints, mounted
// under /announcements. All routes require a signed-in user: the list
// and detail views are filtered per-user, and creation is limited to
// admins and club reps inside the handler. Announcements are immutable,
// so there are no update or delete routes.
func Routes(h *Handler, sm *sysauth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)

	return r
}

// internal/app/features/clubs/routes.go
package clubs

import (
	"github.com/go-chi/chi/v5"

	sysauth "github.com/campushub/campushub/internal/app/system/auth"
)

// Routes returns the router for the club endpoints, mounted under
// /clubs. The list is public; everything else requires a signed-in
// user, with role checks inside the handlers.
func Routes(h *Handler, sm *sysauth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/", h.Create)
		pr.Put("/{id}", h.Update)
		pr.Delete("/{id}", h.Delete)
		pr.Post("/{id}/subscribe", h.Subscribe)
		pr.Post("/{id}/unsubscribe", h.Unsubscribe)
	})

	return r
}

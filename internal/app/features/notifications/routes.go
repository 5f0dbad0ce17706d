// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/go-chi/chi/v5"

	sysauth "github.com/campushub/campushub/internal/app/system/auth"
)

// Routes returns the router for the notification inbox, mounted under
// /notifications. Everything is scoped to the signed-in user.
func Routes(h *Handler, sm *sysauth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.List)
	r.Get("/unread_count", h.UnreadCount)
	r.Post("/{id}/read", h.MarkRead)
	r.Post("/read_all", h.MarkAllRead)

	return r
}

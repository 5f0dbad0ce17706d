// internal/app/features/auth/routes.go
package auth

import (
	"github.com/go-chi/chi/v5"

	sysauth "github.com/campushub/campushub/internal/app/system/auth"
)

// Routes returns the router for the authentication endpoints, mounted
// under /auth. Signup, login, and the Google flow are public; logout
// and /me require a signed-in user.
func Routes(h *Handler, sm *sysauth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.ServeSignup)
	r.Post("/login", h.ServeLogin)
	r.Get("/google", h.ServeGoogleLogin)
	r.Get("/google/callback", h.ServeGoogleCallback)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/logout", h.ServeLogout)
		pr.Get("/me", h.ServeMe)
	})

	return r
}

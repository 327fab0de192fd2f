// internal/app/features/auth/routes.go
package auth

import (
	"net/http"

	"github.com/dalemusser/spendhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the JSON auth endpoints, mounted under
// /api/auth. Register and login are public; profile and the Google
// session probe need an identity. googleSuccess is the authgoogle
// handler's probe, registered here so the whole /api/auth subtree has
// one mount point.
func Routes(h *Handler, googleSuccess http.HandlerFunc) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.ServeRegister)
	r.Post("/login", h.ServeLogin)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/profile", h.ServeProfile)
		pr.Get("/google/success", googleSuccess)
	})

	return r
}

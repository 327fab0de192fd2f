// internal/app/features/authgoogle/routes.go
package authgoogle

import "github.com/go-chi/chi/v5"

// Routes returns the router for the browser-facing Google OAuth
// endpoints. These are public (no authentication required).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeLogin)
	r.Get("/callback", h.ServeCallback)
	r.Get("/logout", h.ServeLogout)

	return r
}

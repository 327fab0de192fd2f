// internal/app/features/categories/routes.go
package categories

import "github.com/go-chi/chi/v5"

// Routes returns the category CRUD router. Mounted under
// /api/categories behind RequireSignedIn.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)
	r.Get("/{categoryID}", h.ServeGet)
	r.Put("/{categoryID}", h.ServeUpdate)
	r.Delete("/{categoryID}", h.ServeDelete)

	return r
}

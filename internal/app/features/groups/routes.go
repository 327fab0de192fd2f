// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// Routes returns the group router. Mounted under /api/groups behind
// RequireSignedIn.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeListMine)

	r.Route("/{groupID}", func(gr chi.Router) {
		gr.Get("/", h.ServeInfo)
		gr.Post("/join", h.ServeJoin)
		gr.Post("/leave", h.ServeLeave)
		gr.Post("/share-code", h.ServeShareCode)
		gr.Get("/expenses", h.ServeExpenses)
		gr.Get("/summary/total", h.ServeTotal)
		gr.Get("/summary/by-category", h.ServeByCategory)
	})

	return r
}

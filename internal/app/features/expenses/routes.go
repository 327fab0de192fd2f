// internal/app/features/expenses/routes.go
package expenses

import "github.com/go-chi/chi/v5"

// Routes returns the expense router. Mounted under /api/expenses
// behind RequireSignedIn. The summary routes are registered before
// the {expenseID} routes so "summary" is never parsed as an id.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)

	r.Get("/summary/totals", h.ServeTotals)
	r.Get("/summary/by-category", h.ServeByCategory)

	r.Get("/{expenseID}", h.ServeGet)
	r.Put("/{expenseID}", h.ServeUpdate)
	r.Delete("/{expenseID}", h.ServeDelete)

	return r
}

// internal/app/features/expenses/summary.go
package expenses

import (
	"context"
	"net/http"

	"github.com/dalemusser/spendhub/internal/app/store/queries/spending"
	"github.com/dalemusser/spendhub/internal/app/system/auth"
	"github.com/dalemusser/spendhub/internal/app/system/httperr"
	"github.com/dalemusser/spendhub/internal/app/system/jsonutil"
	"github.com/dalemusser/spendhub/internal/app/system/timeouts"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/expenses/summary/totals                                             |
| Credit and debit totals over the caller's personal ledger. An empty          |
| ledger yields zeros, not an error.                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeTotals(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	totals, err := spending.PersonalTotals(ctx, h.DB, userID)
	if err != nil {
		httperr.Internal(w, h.Log, "personal totals", err)
		return
	}

	jsonutil.Respond(w, http.StatusOK, totals)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/expenses/summary/by-category                                        |
| Debit spending grouped by category name; expenses without a category         |
| land in the "uncategorized" bucket.                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	buckets, err := spending.PersonalByCategory(ctx, h.DB, userID)
	if err != nil {
		httperr.Internal(w, h.Log, "personal by-category summary", err)
		return
	}

	jsonutil.Respond(w, http.StatusOK, buckets)
}

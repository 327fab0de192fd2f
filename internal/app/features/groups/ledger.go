// internal/app/features/groups/ledger.go
package groups

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
| GET /api/groups/{groupID}/expenses                                           |
| Every expense tagged with the group, annotated with creator and              |
| category names. Members only.                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.requireMember(ctx, w, id, userID) {
		return
	}

	rows, err := spending.ListByGroup(ctx, h.DB, id)
	if err != nil {
		httperr.Internal(w, h.Log, "list group expenses", err)
		return
	}

	jsonutil.Respond(w, http.StatusOK, rows)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/groups/{groupID}/summary/total                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeTotal(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.requireMember(ctx, w, id, userID) {
		return
	}

	total, err := spending.GroupTotal(ctx, h.DB, id)
	if err != nil {
		httperr.Internal(w, h.Log, "group total", err)
		return
	}

	jsonutil.Respond(w, http.StatusOK, map[string]float64{
		"total": total,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/groups/{groupID}/summary/by-category                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.requireMember(ctx, w, id, userID) {
		return
	}

	buckets, err := spending.GroupByCategory(ctx, h.DB, id)
	if err != nil {
		httperr.Internal(w, h.Log, "group by-category summary", err)
		return
	}

	jsonutil.Respond(w, http.StatusOK, buckets)
}

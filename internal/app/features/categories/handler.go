// internal/app/features/categories/handler.go
package categories

import (
	"context"
	"errors"
	"net/http"

	categorystore "github.com/dalemusser/spendhub/internal/app/store/categories"
	expensestore "github.com/dalemusser/spendhub/internal/app/store/expenses"
	"github.com/dalemusser/spendhub/internal/app/system/auth"
	"github.com/dalemusser/spendhub/internal/app/system/httperr"
	"github.com/dalemusser/spendhub/internal/app/system/jsonutil"
	"github.com/dalemusser/spendhub/internal/app/system/normalize"
	"github.com/dalemusser/spendhub/internal/app/system/timeouts"
	"github.com/dalemusser/spendhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles the category CRUD endpoints. Every operation is
// scoped to the signed-in owner; there is no cross-user visibility.
type Handler struct {
	Categories *categorystore.Store
	Expenses   *expensestore.Store
	Log        *zap.Logger
}

// NewHandler creates a new categories handler.
func NewHandler(categories *categorystore.Store, expenses *expensestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Categories: categories, Expenses: expenses, Log: logger}
}

// categoryRequest is the create/update body. Budget is a pointer so a
// missing budget is distinguishable from an explicit zero.
type categoryRequest struct {
	Name   string   `json:"name"`
	Budget *float64 `json:"budget"`
}

func (req *categoryRequest) validate() map[string]string {
	fields := map[string]string{}
	if normalize.Name(req.Name) == "" {
		fields["name"] = "is required"
	}
	if req.Budget == nil {
		fields["budget"] = "is required"
	} else if *req.Budget < 0 {
		fields["budget"] = "must not be negative"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/categories                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		httperr.Validation(w, "invalid request body", nil)
		return
	}
	if fields := req.validate(); fields != nil {
		httperr.Validation(w, "category failed validation", fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cat, err := h.Categories.Create(ctx, models.Category{
		Name:   normalize.Name(req.Name),
		Budget: *req.Budget,
		UserID: userID,
	})
	if err != nil {
		httperr.Internal(w, h.Log, "create category", err)
		return
	}

	jsonutil.Respond(w, http.StatusCreated, cat)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/categories                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cats, err := h.Categories.ListByUser(ctx, userID)
	if err != nil {
		httperr.Internal(w, h.Log, "list categories", err)
		return
	}

	jsonutil.Respond(w, http.StatusOK, cats)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/categories/{categoryID}                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}
	id, ok := categoryID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cat, err := h.Categories.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "category not found")
			return
		}
		httperr.Internal(w, h.Log, "get category", err)
		return
	}

	jsonutil.Respond(w, http.StatusOK, cat)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /api/categories/{categoryID}                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}
	id, ok := categoryID(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		httperr.Validation(w, "invalid request body", nil)
		return
	}
	if fields := req.validate(); fields != nil {
		httperr.Validation(w, "category failed validation", fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Categories.Update(ctx, id, userID, normalize.Name(req.Name), *req.Budget); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "category not found")
			return
		}
		httperr.Internal(w, h.Log, "update category", err)
		return
	}

	cat, err := h.Categories.GetByID(ctx, id, userID)
	if err != nil {
		httperr.Internal(w, h.Log, "reload category", err)
		return
	}
	jsonutil.Respond(w, http.StatusOK, cat)
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /api/categories/{categoryID}                                          |
| Deleting a bucket leaves its expenses in place but uncategorized.            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}
	id, ok := categoryID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Categories.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "category not found")
			return
		}
		httperr.Internal(w, h.Log, "delete category", err)
		return
	}

	cleared, err := h.Expenses.ClearCategoryRefs(ctx, userID, id)
	if err != nil {
		// The category is gone; the dangling refs still resolve to
		// "uncategorized" in every aggregation, so report success.
		h.Log.Error("failed to clear category refs",
			zap.Error(err),
			zap.String("category_id", id.Hex()))
	} else if cleared > 0 {
		h.Log.Info("category deleted",
			zap.String("category_id", id.Hex()),
			zap.Int64("expenses_uncategorized", cleared))
	}

	jsonutil.Respond(w, http.StatusOK, map[string]string{
		"message": "category deleted",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func categoryID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "categoryID"))
	if err != nil {
		httperr.NotFound(w, "category not found")
		return primitive.NilObjectID, false
	}
	return id, true
}

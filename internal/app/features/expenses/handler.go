// internal/app/features/expenses/handler.go
package expenses

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/spendhub/internal/app/policy/expensepolicy"
	"github.com/dalemusser/spendhub/internal/app/policy/grouppolicy"
	categorystore "github.com/dalemusser/spendhub/internal/app/store/categories"
	expensestore "github.com/dalemusser/spendhub/internal/app/store/expenses"
	"github.com/dalemusser/spendhub/internal/app/store/queries/spending"
	"github.com/dalemusser/spendhub/internal/app/system/auth"
	"github.com/dalemusser/spendhub/internal/app/system/httperr"
	"github.com/dalemusser/spendhub/internal/app/system/jsonutil"
	"github.com/dalemusser/spendhub/internal/app/system/normalize"
	"github.com/dalemusser/spendhub/internal/app/system/sanitize"
	"github.com/dalemusser/spendhub/internal/app/system/timeouts"
	"github.com/dalemusser/spendhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles the expense CRUD and personal summary endpoints.
// It takes the raw database next to the stores because access checks
// and aggregations read collections the stores do not own.
type Handler struct {
	DB         *mongo.Database
	Expenses   *expensestore.Store
	Categories *categorystore.Store
	Log        *zap.Logger
}

// NewHandler creates a new expenses handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Expenses:   expensestore.New(db),
		Categories: categorystore.New(db),
		Log:        logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/expenses                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

type createRequest struct {
	Name       string   `json:"name"`
	Note       string   `json:"note"`
	Type       string   `json:"type"`
	Amount     *float64 `json:"amount"`
	CategoryID string   `json:"category_id"`
	GroupID    string   `json:"group_id"`
}

func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		httperr.Validation(w, "invalid request body", nil)
		return
	}

	name := normalize.Name(req.Name)
	fields := map[string]string{}
	if name == "" {
		fields["name"] = "is required"
	}
	if !models.ValidExpenseType(req.Type) {
		fields["type"] = "must be credit or debit"
	}
	if req.Amount == nil {
		fields["amount"] = "is required"
	} else if *req.Amount < 0 {
		fields["amount"] = "must not be negative"
	}
	// Personal expenses always sit in a category; group expenses may
	// be left uncategorized.
	if req.CategoryID == "" && req.GroupID == "" {
		fields["category_id"] = "is required for personal expenses"
	}
	if len(fields) > 0 {
		httperr.Validation(w, "expense failed validation", fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var categoryID *primitive.ObjectID
	if req.CategoryID != "" {
		id, err := primitive.ObjectIDFromHex(req.CategoryID)
		if err != nil {
			httperr.Validation(w, "expense failed validation",
				map[string]string{"category_id": "is not a valid id"})
			return
		}
		if _, err := h.Categories.GetByID(ctx, id, userID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				httperr.Validation(w, "expense failed validation",
					map[string]string{"category_id": "is not one of your categories"})
				return
			}
			httperr.Internal(w, h.Log, "check category", err)
			return
		}
		categoryID = &id
	}

	var groupID *primitive.ObjectID
	if req.GroupID != "" {
		id, err := primitive.ObjectIDFromHex(req.GroupID)
		if err != nil {
			httperr.NotFound(w, "group not found")
			return
		}
		exists, err := grouppolicy.Exists(ctx, h.DB, id)
		if err != nil {
			httperr.Internal(w, h.Log, "check group", err)
			return
		}
		if !exists {
			httperr.NotFound(w, "group not found")
			return
		}
		member, err := grouppolicy.IsMember(ctx, h.DB, id, userID)
		if err != nil {
			httperr.Internal(w, h.Log, "check membership", err)
			return
		}
		if !member {
			httperr.Forbidden(w, "you are not a member of this group")
			return
		}
		groupID = &id
	}

	exp, err := h.Expenses.Create(ctx, models.Expense{
		Name:       name,
		Note:       sanitize.Note(req.Note),
		Type:       req.Type,
		Amount:     *req.Amount,
		CategoryID: categoryID,
		UserID:     userID,
		GroupID:    groupID,
	})
	if err != nil {
		httperr.Internal(w, h.Log, "create expense", err)
		return
	}

	jsonutil.Respond(w, http.StatusCreated, exp)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/expenses                                                            |
| The caller's personal ledger, annotated with category names.                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := spending.ListPersonal(ctx, h.DB, userID)
	if err != nil {
		httperr.Internal(w, h.Log, "list expenses", err)
		return
	}

	jsonutil.Respond(w, http.StatusOK, rows)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/expenses/{expenseID}                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	exp, ok := h.loadVisible(ctx, w, r, userID)
	if !ok {
		return
	}

	jsonutil.Respond(w, http.StatusOK, exp)
}

/*─────────────────────────────────────────────────────────────────────────────*
| PUT /api/expenses/{expenseID}                                                |
| Partial update. Omitted fields are untouched; an explicit zero value         |
| (amount 0, note "") is applied.                                              |
*─────────────────────────────────────────────────────────────────────────────*/

type updateRequest struct {
	Name       *string  `json:"name"`
	Note       *string  `json:"note"`
	Type       *string  `json:"type"`
	Amount     *float64 `json:"amount"`
	CategoryID *string  `json:"category_id"`
}

func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		httperr.Validation(w, "invalid request body", nil)
		return
	}

	fields := map[string]string{}
	if req.Name != nil && normalize.Name(*req.Name) == "" {
		fields["name"] = "must not be blank"
	}
	if req.Type != nil && !models.ValidExpenseType(*req.Type) {
		fields["type"] = "must be credit or debit"
	}
	if req.Amount != nil && *req.Amount < 0 {
		fields["amount"] = "must not be negative"
	}
	if len(fields) > 0 {
		httperr.Validation(w, "expense failed validation", fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	exp, ok := h.loadMutable(ctx, w, r, userID)
	if !ok {
		return
	}

	patch := expensestore.Patch{
		Type:   req.Type,
		Amount: req.Amount,
	}
	if req.Name != nil {
		name := normalize.Name(*req.Name)
		patch.Name = &name
	}
	if req.Note != nil {
		note := sanitize.Note(*req.Note)
		patch.Note = &note
	}
	if req.CategoryID != nil {
		id, err := primitive.ObjectIDFromHex(*req.CategoryID)
		if err != nil {
			httperr.Validation(w, "expense failed validation",
				map[string]string{"category_id": "is not a valid id"})
			return
		}
		// Categories belong to the expense creator, not whoever is
		// editing a shared group expense.
		if _, err := h.Categories.GetByID(ctx, id, exp.UserID); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				httperr.Validation(w, "expense failed validation",
					map[string]string{"category_id": "is not one of the creator's categories"})
				return
			}
			httperr.Internal(w, h.Log, "check category", err)
			return
		}
		patch.CategoryID = &id
	}

	if patch.IsEmpty() {
		httperr.Validation(w, "nothing to update", nil)
		return
	}

	if err := h.Expenses.Update(ctx, exp.ID, patch); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "expense not found")
			return
		}
		httperr.Internal(w, h.Log, "update expense", err)
		return
	}

	updated, err := h.Expenses.GetByID(ctx, exp.ID)
	if err != nil {
		httperr.Internal(w, h.Log, "reload expense", err)
		return
	}
	jsonutil.Respond(w, http.StatusOK, updated)
}

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /api/expenses/{expenseID}                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	exp, ok := h.loadMutable(ctx, w, r, userID)
	if !ok {
		return
	}

	if err := h.Expenses.Delete(ctx, exp.ID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "expense not found")
			return
		}
		httperr.Internal(w, h.Log, "delete expense", err)
		return
	}

	jsonutil.Respond(w, http.StatusOK, map[string]string{
		"message": "expense deleted",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Load helpers                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func expenseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "expenseID"))
	if err != nil {
		httperr.NotFound(w, "expense not found")
		return primitive.NilObjectID, false
	}
	return id, true
}

// loadVisible fetches the routed expense and enforces read access.
func (h *Handler) loadVisible(ctx context.Context, w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) (models.Expense, bool) {
	return h.load(ctx, w, r, userID, expensepolicy.CanView)
}

// loadMutable fetches the routed expense and enforces write access.
func (h *Handler) loadMutable(ctx context.Context, w http.ResponseWriter, r *http.Request, userID primitive.ObjectID) (models.Expense, bool) {
	return h.load(ctx, w, r, userID, expensepolicy.CanMutate)
}

func (h *Handler) load(ctx context.Context, w http.ResponseWriter, r *http.Request, userID primitive.ObjectID,
	allowed func(context.Context, *mongo.Database, models.Expense, primitive.ObjectID) (bool, error)) (models.Expense, bool) {

	id, ok := expenseID(w, r)
	if !ok {
		return models.Expense{}, false
	}

	exp, err := h.Expenses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "expense not found")
			return models.Expense{}, false
		}
		httperr.Internal(w, h.Log, "load expense", err)
		return models.Expense{}, false
	}

	allow, err := allowed(ctx, h.DB, exp, userID)
	if err != nil {
		httperr.Internal(w, h.Log, "check expense access", err)
		return models.Expense{}, false
	}
	if !allow {
		httperr.Forbidden(w, "you do not have access to this expense")
		return models.Expense{}, false
	}
	return exp, true
}

// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/spendhub/internal/app/policy/grouppolicy"
	groupstore "github.com/dalemusser/spendhub/internal/app/store/groups"
	"github.com/dalemusser/spendhub/internal/app/system/auth"
	"github.com/dalemusser/spendhub/internal/app/system/httperr"
	"github.com/dalemusser/spendhub/internal/app/system/jsonutil"
	"github.com/dalemusser/spendhub/internal/app/system/normalize"
	"github.com/dalemusser/spendhub/internal/app/system/timeouts"
	"github.com/dalemusser/spendhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles group membership and group ledger endpoints.
type Handler struct {
	DB     *mongo.Database
	Groups *groupstore.Store
	Log    *zap.Logger
}

// NewHandler creates a new groups handler.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Groups: groupstore.New(db),
		Log:    logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/groups                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

type createRequest struct {
	Name string `json:"name"`
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
	if name == "" {
		httperr.Validation(w, "group failed validation",
			map[string]string{"name": "is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Groups.Create(ctx, models.Group{
		Name:      name,
		OwnerID:   userID,
		ShareCode: uuid.NewString(),
	})
	if err != nil {
		httperr.Internal(w, h.Log, "create group", err)
		return
	}

	h.Log.Info("group created",
		zap.String("group_id", g.ID.Hex()),
		zap.String("owner_id", userID.Hex()))

	// The invite code goes only to the owner, here and on rotation.
	jsonutil.Respond(w, http.StatusCreated, map[string]any{
		"group":      g,
		"share_code": g.ShareCode,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/groups                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	gs, err := h.Groups.ListByMember(ctx, userID)
	if err != nil {
		httperr.Internal(w, h.Log, "list groups", err)
		return
	}

	jsonutil.Respond(w, http.StatusOK, gs)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/groups/{groupID}                                                    |
| Members see the roster with names and emails resolved.                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeInfo(w http.ResponseWriter, r *http.Request) {
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

	detail, err := h.Groups.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "group not found")
			return
		}
		httperr.Internal(w, h.Log, "load group detail", err)
		return
	}

	jsonutil.Respond(w, http.StatusOK, map[string]any{
		"id":         detail.ID.Hex(),
		"name":       detail.Name,
		"owner":      detail.Owner(),
		"members":    detail.Members,
		"created_at": detail.CreatedAt,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/groups/{groupID}/join                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeJoin(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Groups.AddMember(ctx, id, userID); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			httperr.NotFound(w, "group not found")
		case errors.Is(err, groupstore.ErrAlreadyMember):
			httperr.Conflict(w, "you are already a member of this group")
		default:
			httperr.Internal(w, h.Log, "join group", err)
		}
		return
	}

	h.Log.Info("user joined group",
		zap.String("group_id", id.Hex()),
		zap.String("user_id", userID.Hex()))

	jsonutil.Respond(w, http.StatusOK, map[string]string{
		"message": "joined group",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/groups/{groupID}/leave                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLeave(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Groups.RemoveMember(ctx, id, userID); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			httperr.NotFound(w, "group not found")
		case errors.Is(err, groupstore.ErrOwnerCannotLeave):
			httperr.Forbidden(w, "the owner cannot leave the group")
		case errors.Is(err, groupstore.ErrNotMember):
			httperr.Validation(w, "you are not a member of this group", nil)
		default:
			httperr.Internal(w, h.Log, "leave group", err)
		}
		return
	}

	h.Log.Info("user left group",
		zap.String("group_id", id.Hex()),
		zap.String("user_id", userID.Hex()))

	jsonutil.Respond(w, http.StatusOK, map[string]string{
		"message": "left group",
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/groups/{groupID}/share-code                                        |
| Owner-only rotation of the invite code.                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeShareCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequesterID(w, r)
	if !ok {
		return
	}
	id, ok := groupID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	code := uuid.NewString()
	if err := h.Groups.SetShareCode(ctx, id, userID, code); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Absent group and non-owner caller both match nothing;
			// tell them apart before answering.
			exists, exErr := grouppolicy.Exists(ctx, h.DB, id)
			if exErr == nil && !exists {
				httperr.NotFound(w, "group not found")
				return
			}
			httperr.Forbidden(w, "only the owner can rotate the share code")
			return
		}
		httperr.Internal(w, h.Log, "rotate share code", err)
		return
	}

	jsonutil.Respond(w, http.StatusOK, map[string]string{
		"share_code": code,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func groupID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "groupID"))
	if err != nil {
		httperr.NotFound(w, "group not found")
		return primitive.NilObjectID, false
	}
	return id, true
}

// requireMember gates a group read. Absent groups answer 404; existing
// groups the caller is not in answer 403.
func (h *Handler) requireMember(ctx context.Context, w http.ResponseWriter, groupID, userID primitive.ObjectID) bool {
	member, err := grouppolicy.IsMember(ctx, h.DB, groupID, userID)
	if err != nil {
		httperr.Internal(w, h.Log, "check membership", err)
		return false
	}
	if member {
		return true
	}
	exists, err := grouppolicy.Exists(ctx, h.DB, groupID)
	if err != nil {
		httperr.Internal(w, h.Log, "check group", err)
		return false
	}
	if !exists {
		httperr.NotFound(w, "group not found")
		return false
	}
	httperr.Forbidden(w, "you are not a member of this group")
	return false
}

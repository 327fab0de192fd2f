// internal/app/features/auth/handler.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"time"

	userstore "github.com/dalemusser/spendhub/internal/app/store/users"
	"github.com/dalemusser/spendhub/internal/app/system/auth"
	"github.com/dalemusser/spendhub/internal/app/system/httperr"
	"github.com/dalemusser/spendhub/internal/app/system/jsonutil"
	"github.com/dalemusser/spendhub/internal/app/system/normalize"
	"github.com/dalemusser/spendhub/internal/app/system/timeouts"
	"github.com/dalemusser/spendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler handles password-based registration and login. Both hand
// back a bearer token; sessions are only used by the Google flow.
type Handler struct {
	Users  *userstore.Store
	Tokens *auth.TokenManager
	Log    *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(users *userstore.Store, tokens *auth.TokenManager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Tokens: tokens, Log: logger}
}

// UserView is the public JSON shape of a user. Credentials never
// appear here regardless of kind.
type UserView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

// ViewOf converts a user document to its public shape.
func ViewOf(u models.User) UserView {
	return UserView{
		ID:      u.ID.Hex(),
		Name:    u.Name,
		Email:   u.Email,
		Picture: u.Picture,
	}
}

type tokenResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/register                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		httperr.Validation(w, "invalid request body", nil)
		return
	}

	name := normalize.Name(req.Name)
	email := normalize.Email(req.Email)

	fields := map[string]string{}
	if len(name) < 3 {
		fields["name"] = "must be at least 3 characters"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "must be a valid email address"
	}
	if len(req.Password) < 6 {
		fields["password"] = "must be at least 6 characters"
	}
	if len(fields) > 0 {
		httperr.Validation(w, "registration failed validation", fields)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Internal(w, h.Log, "hash password", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Name:  name,
		Email: email,
		Credential: models.Credential{
			Kind:         models.CredentialLocal,
			PasswordHash: string(hash),
		},
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			httperr.Conflict(w, "a user with this email already exists")
			return
		}
		httperr.Internal(w, h.Log, "create user", err)
		return
	}

	token, err := h.Tokens.Issue(u.ID.Hex(), u.Name, u.Email)
	if err != nil {
		httperr.Internal(w, h.Log, "issue token", err)
		return
	}

	h.Log.Info("user registered",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email", u.Email))

	jsonutil.Respond(w, http.StatusCreated, tokenResponse{Token: token, User: ViewOf(u)})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/auth/login                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// invalidCredentials is deliberately the same message for every
// failure mode, so callers cannot probe which field was wrong or
// whether the account exists.
const invalidCredentials = "invalid email or password"

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := jsonutil.Decode(w, r, &req); err != nil {
		httperr.Validation(w, "invalid request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		httperr.Validation(w, "email and password are required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Burn a comparison so absent accounts take as long as
			// wrong passwords.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			httperr.Unauthenticated(w, invalidCredentials)
			return
		}
		httperr.Internal(w, h.Log, "load user by email", err)
		return
	}

	// Google-only accounts have no password to check.
	if !u.IsLocal() {
		httperr.Unauthenticated(w, invalidCredentials)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Credential.PasswordHash), []byte(req.Password)); err != nil {
		httperr.Unauthenticated(w, invalidCredentials)
		return
	}

	token, err := h.Tokens.Issue(u.ID.Hex(), u.Name, u.Email)
	if err != nil {
		httperr.Internal(w, h.Log, "issue token", err)
		return
	}

	h.Log.Info("user logged in",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email", u.Email))

	jsonutil.Respond(w, http.StatusOK, tokenResponse{Token: token, User: ViewOf(*u)})
}

// dummyHash is a bcrypt hash of a throwaway value, used to equalize
// timing when the account does not exist. Same cost as real hashes so
// the compare takes comparably long.
var dummyHash = func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte(time.Now().String()), bcrypt.DefaultCost)
	return h
}()

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/auth/profile                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httperr.Unauthenticated(w, "authentication required")
		return
	}

	id, err := su.ObjectID()
	if err != nil {
		httperr.Unauthenticated(w, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.NotFound(w, "user not found")
			return
		}
		httperr.Internal(w, h.Log, "load user", err)
		return
	}

	jsonutil.Respond(w, http.StatusOK, ViewOf(*u))
}

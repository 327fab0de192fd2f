// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	userstore "github.com/dalemusser/spendhub/internal/app/store/users"
	"github.com/dalemusser/spendhub/internal/app/system/auth"
	"github.com/dalemusser/spendhub/internal/app/system/httperr"
	"github.com/dalemusser/spendhub/internal/app/system/jsonutil"
	"github.com/dalemusser/spendhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// stateCookie carries the OAuth state (and post-login return path)
// across the redirect to Google and back. It replaces a server-side
// state store; the securecookie signature makes it tamper-evident.
const stateCookie = "spendhub_oauth_state"

// Handler handles Google OAuth authentication.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://spendhub.app/auth/google/callback"
	FrontendURL  string // SPA origin to land on after login

	stateCodec *securecookie.SecureCookie
}

// NewHandler creates a new Google OAuth handler. The session key also
// signs the short-lived state cookie.
func NewHandler(users *userstore.Store, clientID, clientSecret, baseURL, frontendURL, sessionKey string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:        users,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		FrontendURL:  frontendURL,
		stateCodec:   securecookie.New([]byte(sessionKey), nil),
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

type statePayload struct {
	State  string `json:"state"`
	Return string `json:"return"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		h.redirectToFrontend(w, r, "/login?error=google_not_configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		h.redirectToFrontend(w, r, "/login?error=internal")
		return
	}

	returnURL := query.Get(r, "return")

	encoded, err := h.stateCodec.Encode(stateCookie, statePayload{
		State:  state,
		Return: returnURL,
	})
	if err != nil {
		h.Log.Error("failed to encode OAuth state cookie", zap.Error(err))
		h.redirectToFrontend(w, r, "/login?error=internal")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    encoded,
		Path:     "/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	url := h.oauth2Config().AuthCodeURL(state)

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("redirect_url", url),
		zap.String("return_url", returnURL))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code for tokens, fetches user info, upserts the user record    |
| keyed by email, and establishes a cookie session.                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := query.Get(r, "error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", query.Get(r, "error_description")))
		h.redirectToFrontend(w, r, "/login?error=google_denied")
		return
	}

	state := query.Get(r, "state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		h.redirectToFrontend(w, r, "/login?error=invalid_state")
		return
	}

	payload, err := h.readStateCookie(r)
	clearStateCookie(w)
	if err != nil || payload.State != state {
		h.Log.Warn("invalid or expired OAuth state", zap.Error(err))
		h.redirectToFrontend(w, r, "/login?error=invalid_state")
		return
	}

	code := query.Get(r, "code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.redirectToFrontend(w, r, "/login?error=invalid_code")
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.redirectToFrontend(w, r, "/login?error=token_exchange")
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		h.redirectToFrontend(w, r, "/login?error=user_info")
		return
	}

	ctxDB, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := h.Users.UpsertGoogleUser(ctxDB, googleUser.Name, googleUser.Email, googleUser.ID, googleUser.Picture)
	if err != nil {
		h.Log.Error("failed to upsert Google user", zap.Error(err))
		h.redirectToFrontend(w, r, "/login?error=internal")
		return
	}

	if err := auth.EstablishSession(w, r, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
	}); err != nil {
		h.Log.Error("failed to save session", zap.Error(err),
			zap.String("user_id", u.ID.Hex()))
		h.redirectToFrontend(w, r, "/login?error=session")
		return
	}

	h.Log.Info("user logged in via Google OAuth",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email", u.Email))

	h.redirectToFrontend(w, r, urlutil.SafeReturn(payload.Return, "", "/"))
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/auth/google/success                                                 |
| Session probe for the SPA: returns the signed-in user, 401 otherwise.        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSuccess(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httperr.Unauthenticated(w, "not authenticated")
		return
	}

	id, err := su.ObjectID()
	if err != nil {
		httperr.Unauthenticated(w, "not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httperr.Unauthenticated(w, "not authenticated")
			return
		}
		httperr.Internal(w, h.Log, "load session user", err)
		return
	}

	jsonutil.Respond(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    u,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/logout                                                      |
| Clears the cookie session and sends the browser back to the SPA.             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if err := auth.ClearSession(w, r); err != nil {
		h.Log.Warn("failed to clear session", zap.Error(err))
	}
	h.redirectToFrontend(w, r, "/")
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// fetchGoogleUserInfo retrieves user information from Google's userinfo endpoint.
func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &info, nil
}

func (h *Handler) readStateCookie(r *http.Request) (statePayload, error) {
	var payload statePayload
	c, err := r.Cookie(stateCookie)
	if err != nil {
		return payload, err
	}
	err = h.stateCodec.Decode(stateCookie, c.Value, &payload)
	return payload, err
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/auth/google",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (h *Handler) redirectToFrontend(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, h.FrontendURL+path, http.StatusSeeOther)
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/spendhub/internal/app/system/httperr"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants & globals                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	userNameKey  = "user_name"
	userEmailKey = "user_email"
)

// SessionName is the cookie name; overridden by InitSessionStore.
var SessionName = "spendhub-session"

// Store is initialised once via InitSessionStore. Only Google-OAuth
// logins use sessions; password logins carry a bearer token instead.
var Store *sessions.CookieStore

/*─────────────────────────────────────────────────────────────────────────────*
| Current-user helper                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the request identity injected into r.Context(). Both
// authentication mechanisms (bearer token and session cookie) resolve
// to this one shape, so handlers never care how the caller signed in.
type SessionUser struct {
	ID    string
	Name  string
	Email string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the request identity and a "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects an identity directly into the request context,
// bypassing middleware. For handler tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadIdentity resolves the caller's identity and injects it into the
// request context. A Bearer token in the Authorization header wins;
// otherwise the session cookie is consulted. Requests without either
// pass through anonymous; RequireSignedIn does the gating.
func LoadIdentity(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" && tokens != nil {
				if claims, err := tokens.Validate(token); err == nil {
					r = withUser(r, &SessionUser{
						ID:    claims.UserID,
						Name:  claims.Name,
						Email: claims.Email,
					})
				}
				next.ServeHTTP(w, r)
				return
			}

			if Store != nil {
				sess, _ := Store.Get(r, SessionName)
				if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
					r = withUser(r, &SessionUser{
						ID:    getString(sess, userIDKey),
						Name:  getString(sess, userNameKey),
						Email: getString(sess, userEmailKey),
					})
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSignedIn rejects anonymous requests with a JSON 401.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			httperr.Unauthenticated(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session establishment                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// InitSessionStore initializes the global session Store. The secure
// flag controls whether cookies are marked Secure; in local dev over
// http://localhost it must be false so cookies are accepted.
func InitSessionStore(sessionKey, name, domain string, secure bool, logger *zap.Logger) error {
	if sessionKey == "" {
		return fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name != "" {
		SessionName = name
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		MaxAge:   7 * 24 * 60 * 60,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts
	Store = store

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))
	return nil
}

// EstablishSession writes the signed-in user into the session cookie.
func EstablishSession(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	if Store == nil {
		return fmt.Errorf("session store not initialized")
	}
	sess, _ := Store.Get(r, SessionName)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Name
	sess.Values[userEmailKey] = u.Email
	return sess.Save(r, w)
}

// ClearSession signs the caller out of the cookie session.
func ClearSession(w http.ResponseWriter, r *http.Request) error {
	if Store == nil {
		return nil
	}
	sess, _ := Store.Get(r, SessionName)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

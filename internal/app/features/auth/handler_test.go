package auth_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authfeature "github.com/dalemusser/spendhub/internal/app/features/auth"
	userstore "github.com/dalemusser/spendhub/internal/app/store/users"
	"github.com/dalemusser/spendhub/internal/app/system/auth"
	"github.com/dalemusser/spendhub/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*authfeature.Handler, *auth.TokenManager) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tokens := auth.NewTokenManager("test-secret-at-least-32-characters!!", time.Hour)
	return authfeature.NewHandler(userstore.New(db), tokens, zap.NewNop()), tokens
}

func register(t *testing.T, h *authfeature.Handler, name, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, "POST", "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	})
	rec := httptest.NewRecorder()
	h.ServeRegister(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	h, tokens := newHandler(t)

	rec := register(t, h, "Alice", "alice@example.com", "secret1")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	testutil.DecodeJSON(t, rec, &resp)

	if resp.User.Email != "alice@example.com" {
		t.Errorf("email: got %q", resp.User.Email)
	}
	claims, err := tokens.Validate(resp.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("token subject %q != user id %q", claims.UserID, resp.User.ID)
	}

	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response leaks password material")
	}
}

func TestRegister_Validation(t *testing.T) {
	h, _ := newHandler(t)

	cases := []struct {
		label                 string
		name, email, password string
		field                 string
	}{
		{"short name", "Al", "al@example.com", "secret1", "name"},
		{"bad email", "Alice", "not-an-email", "secret1", "email"},
		{"short password", "Alice", "alice@example.com", "12345", "password"},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			rec := register(t, h, tc.name, tc.email, tc.password)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rec.Code)
			}
			var resp struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}
			testutil.DecodeJSON(t, rec, &resp)
			if resp.Fields[tc.field] == "" {
				t.Errorf("expected field error for %q, got %v", tc.field, resp.Fields)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, _ := newHandler(t)

	if rec := register(t, h, "Alice", "alice@example.com", "secret1"); rec.Code != http.StatusCreated {
		t.Fatalf("first register: got %d", rec.Code)
	}
	// Same address, different case: still a conflict.
	rec := register(t, h, "Other Alice", "ALICE@Example.com", "secret2")
	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rec.Code)
	}
}

func login(t *testing.T, h *authfeature.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, "POST", "/api/auth/login", map[string]string{
		"email": email, "password": password,
	})
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	h, tokens := newHandler(t)
	register(t, h, "Alice", "alice@example.com", "secret1")

	rec := login(t, h, "alice@example.com", "secret1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if _, err := tokens.Validate(resp.Token); err != nil {
		t.Errorf("issued token does not validate: %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h, _ := newHandler(t)
	register(t, h, "Alice", "alice@example.com", "secret1")

	wrongPass := login(t, h, "alice@example.com", "wrong")
	noAccount := login(t, h, "nobody@example.com", "secret1")

	for label, rec := range map[string]*httptest.ResponseRecorder{
		"wrong password": wrongPass,
		"no account":     noAccount,
	} {
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status got %d, want 401", label, rec.Code)
		}
	}
	// Identical bodies so callers cannot tell the cases apart.
	if wrongPass.Body.String() != noAccount.Body.String() {
		t.Errorf("failure bodies differ: %q vs %q", wrongPass.Body.String(), noAccount.Body.String())
	}
}

func TestLogin_GoogleOnlyAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	tokens := auth.NewTokenManager("test-secret-at-least-32-characters!!", time.Hour)
	h := authfeature.NewHandler(store, tokens, zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := store.UpsertGoogleUser(ctx, "Gina", "gina@example.com", "google-123", ""); err != nil {
		t.Fatalf("upsert google user: %v", err)
	}

	rec := login(t, h, "gina@example.com", "anything")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestProfile(t *testing.T) {
	h, _ := newHandler(t)
	rec := register(t, h, "Alice", "alice@example.com", "secret1")
	var created struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	testutil.DecodeJSON(t, rec, &created)

	req := httptest.NewRequest("GET", "/api/auth/profile", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID: created.User.ID, Name: "Alice", Email: "alice@example.com",
	})
	rec2 := httptest.NewRecorder()
	h.ServeProfile(rec2, req)

	if rec2.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec2.Code, rec2.Body.String())
	}
	var u struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	testutil.DecodeJSON(t, rec2, &u)
	if u.ID != created.User.ID || u.Email != "alice@example.com" {
		t.Errorf("unexpected profile: %+v", u)
	}
}

package reports_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/spendhub/internal/app/features/reports"
	"github.com/dalemusser/spendhub/internal/app/system/llm"
	"github.com/dalemusser/spendhub/internal/domain/models"
	"github.com/dalemusser/spendhub/internal/testutil"
	"go.uber.org/zap"
)

func TestServeCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	cat := fixtures.CreateCategory(ctx, alice.ID, "Groceries", 500)
	fixtures.CreateExpense(ctx, alice.ID, "Milk", models.TypeDebit, 4.5, &cat.ID)
	fixtures.CreateExpense(ctx, alice.ID, "Mystery", models.TypeDebit, 10, nil)

	mock := &llm.Mock{Response: "You spend a lot on dairy."}
	h := reports.NewHandler(db, mock, time.Second, zap.NewNop())

	req := testutil.WithUser(httptest.NewRequest("POST", "/api/reports", nil), alice)
	rec := httptest.NewRecorder()
	h.ServeCreate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Analysis string `json:"analysis"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Analysis != "You spend a lot on dairy." {
		t.Errorf("analysis: got %q", resp.Analysis)
	}

	// The ledger handed to the model carries names, categories, and
	// the uncategorized fallback.
	if !strings.Contains(mock.LastLedger, "Name: Milk") ||
		!strings.Contains(mock.LastLedger, "Category: Groceries") {
		t.Errorf("ledger digest missing expense detail: %q", mock.LastLedger)
	}
	if !strings.Contains(mock.LastLedger, "Category: uncategorized") {
		t.Errorf("ledger digest missing uncategorized bucket: %q", mock.LastLedger)
	}
	if !strings.Contains(mock.LastLedger, "Note: No note") {
		t.Errorf("empty notes should render as placeholder: %q", mock.LastLedger)
	}
}

func TestServeCreate_EmptyLedger(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")

	h := reports.NewHandler(db, &llm.Mock{Response: "unused"}, time.Second, zap.NewNop())

	req := testutil.WithUser(httptest.NewRequest("POST", "/api/reports", nil), alice)
	rec := httptest.NewRecorder()
	h.ServeCreate(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestServeCreate_UpstreamFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	cat := fixtures.CreateCategory(ctx, alice.ID, "Groceries", 500)
	fixtures.CreateExpense(ctx, alice.ID, "Milk", models.TypeDebit, 4.5, &cat.ID)

	h := reports.NewHandler(db, &llm.Mock{Err: errors.New("quota exceeded")}, time.Second, zap.NewNop())

	req := testutil.WithUser(httptest.NewRequest("POST", "/api/reports", nil), alice)
	rec := httptest.NewRecorder()
	h.ServeCreate(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status: got %d, want 502", rec.Code)
	}
	var resp struct {
		Error string `json:"error"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Error != "upstream_failure" {
		t.Errorf("error code: got %q", resp.Error)
	}
}

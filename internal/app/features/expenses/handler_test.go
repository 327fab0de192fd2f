package expenses_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/spendhub/internal/app/features/expenses"
	"github.com/dalemusser/spendhub/internal/domain/models"
	"github.com/dalemusser/spendhub/internal/testutil"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*expenses.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return expenses.NewHandler(db, zap.NewNop()), testutil.NewFixtures(t, db)
}

func withExpenseID(r *http.Request, id string) *http.Request {
	return testutil.WithChiURLParam(r, "expenseID", id)
}

func TestServeCreate_Personal(t *testing.T) {
	h, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	cat := fixtures.CreateCategory(ctx, alice.ID, "Groceries", 500)

	req := testutil.NewJSONRequest(t, "POST", "/api/expenses", map[string]any{
		"name":        "Milk",
		"note":        "<script>alert(1)</script>weekly run",
		"type":        "debit",
		"amount":      4.5,
		"category_id": cat.ID.Hex(),
	})
	req = testutil.WithUser(req, alice)
	rec := httptest.NewRecorder()
	h.ServeCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body.String())
	}
	var exp models.Expense
	testutil.DecodeJSON(t, rec, &exp)
	if exp.Amount != 4.5 || exp.Type != models.TypeDebit {
		t.Errorf("unexpected expense: %+v", exp)
	}
	if exp.Note != "weekly run" {
		t.Errorf("note was not sanitized: %q", exp.Note)
	}
	if exp.GroupID != nil {
		t.Error("personal expense should have no group")
	}
}

func TestServeCreate_Validation(t *testing.T) {
	h, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	cat := fixtures.CreateCategory(ctx, alice.ID, "Groceries", 500)

	cases := []struct {
		label string
		body  map[string]any
		field string
	}{
		{"missing name", map[string]any{"type": "debit", "amount": 1.0, "category_id": cat.ID.Hex()}, "name"},
		{"bad type", map[string]any{"name": "Milk", "type": "transfer", "amount": 1.0, "category_id": cat.ID.Hex()}, "type"},
		{"missing amount", map[string]any{"name": "Milk", "type": "debit", "category_id": cat.ID.Hex()}, "amount"},
		{"negative amount", map[string]any{"name": "Milk", "type": "debit", "amount": -1.0, "category_id": cat.ID.Hex()}, "amount"},
		{"personal without category", map[string]any{"name": "Milk", "type": "debit", "amount": 1.0}, "category_id"},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "POST", "/api/expenses", tc.body)
			req = testutil.WithUser(req, alice)
			rec := httptest.NewRecorder()
			h.ServeCreate(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			var resp struct {
				Fields map[string]string `json:"fields"`
			}
			testutil.DecodeJSON(t, rec, &resp)
			if resp.Fields[tc.field] == "" {
				t.Errorf("expected field error for %q, got %v", tc.field, resp.Fields)
			}
		})
	}
}

func TestServeCreate_GroupExpense(t *testing.T) {
	h, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	outsider := fixtures.CreateUser(ctx, "Oscar", "oscar@example.com")
	group := fixtures.CreateGroup(ctx, alice.ID, "Trip")
	fixtures.AddGroupMember(ctx, group.ID, bob.ID)

	body := map[string]any{
		"name":     "Fuel",
		"type":     "debit",
		"amount":   60.0,
		"group_id": group.ID.Hex(),
	}

	// A member may file without a category.
	req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/expenses", body), bob)
	rec := httptest.NewRecorder()
	h.ServeCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("member create: got %d (body %s)", rec.Code, rec.Body.String())
	}
	var exp models.Expense
	testutil.DecodeJSON(t, rec, &exp)
	if exp.GroupID == nil || *exp.GroupID != group.ID {
		t.Errorf("expense not tagged with group: %+v", exp)
	}
	if exp.CategoryID != nil {
		t.Error("expected uncategorized group expense")
	}

	// A non-member is rejected.
	req = testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/expenses", body), outsider)
	rec = httptest.NewRecorder()
	h.ServeCreate(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider create: got %d, want 403", rec.Code)
	}

	// An unknown group is indistinguishable from no group.
	body["group_id"] = "ffffffffffffffffffffffff"
	req = testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/api/expenses", body), bob)
	rec = httptest.NewRecorder()
	h.ServeCreate(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown group: got %d, want 404", rec.Code)
	}
}

func TestServeGet_AccessControl(t *testing.T) {
	h, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	cat := fixtures.CreateCategory(ctx, alice.ID, "Groceries", 500)
	exp := fixtures.CreateExpense(ctx, alice.ID, "Milk", models.TypeDebit, 4, &cat.ID)

	get := func(as models.User, id string) *httptest.ResponseRecorder {
		req := testutil.WithUser(httptest.NewRequest("GET", "/api/expenses/"+id, nil), as)
		req = withExpenseID(req, id)
		rec := httptest.NewRecorder()
		h.ServeGet(rec, req)
		return rec
	}

	if rec := get(alice, exp.ID.Hex()); rec.Code != http.StatusOK {
		t.Errorf("creator get: got %d (body %s)", rec.Code, rec.Body.String())
	}
	if rec := get(bob, exp.ID.Hex()); rec.Code != http.StatusForbidden {
		t.Errorf("stranger get: got %d, want 403", rec.Code)
	}
	if rec := get(alice, "ffffffffffffffffffffffff"); rec.Code != http.StatusNotFound {
		t.Errorf("absent get: got %d, want 404", rec.Code)
	}
}

func TestServeUpdate_PresenceSemantics(t *testing.T) {
	h, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	cat := fixtures.CreateCategory(ctx, alice.ID, "Groceries", 500)
	exp := fixtures.CreateExpense(ctx, alice.ID, "Milk", models.TypeDebit, 4, &cat.ID)

	// Explicit zeros apply; omitted fields stay.
	req := testutil.NewJSONRequest(t, "PUT", "/api/expenses/"+exp.ID.Hex(), map[string]any{
		"amount": 0.0,
		"note":   "",
	})
	req = testutil.WithUser(req, alice)
	req = withExpenseID(req, exp.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body.String())
	}
	var updated models.Expense
	testutil.DecodeJSON(t, rec, &updated)
	if updated.Amount != 0 {
		t.Errorf("amount: got %v, want explicit 0", updated.Amount)
	}
	if updated.Note != "" {
		t.Errorf("note: got %q, want cleared", updated.Note)
	}
	if updated.Name != "Milk" {
		t.Errorf("name should be untouched, got %q", updated.Name)
	}
	if updated.CategoryID == nil || *updated.CategoryID != cat.ID {
		t.Error("category should be untouched")
	}
}

func TestServeUpdate_EmptyPatch(t *testing.T) {
	h, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	cat := fixtures.CreateCategory(ctx, alice.ID, "Groceries", 500)
	exp := fixtures.CreateExpense(ctx, alice.ID, "Milk", models.TypeDebit, 4, &cat.ID)

	req := testutil.NewJSONRequest(t, "PUT", "/api/expenses/"+exp.ID.Hex(), map[string]any{})
	req = testutil.WithUser(req, alice)
	req = withExpenseID(req, exp.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeUpdate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestServeUpdate_GroupMemberMayEdit(t *testing.T) {
	h, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	outsider := fixtures.CreateUser(ctx, "Oscar", "oscar@example.com")
	group := fixtures.CreateGroup(ctx, alice.ID, "Trip")
	fixtures.AddGroupMember(ctx, group.ID, bob.ID)
	exp := fixtures.CreateGroupExpense(ctx, alice.ID, group.ID, "Fuel", models.TypeDebit, 60, nil)

	update := func(as models.User) *httptest.ResponseRecorder {
		req := testutil.NewJSONRequest(t, "PUT", "/api/expenses/"+exp.ID.Hex(), map[string]any{
			"amount": 75.0,
		})
		req = testutil.WithUser(req, as)
		req = withExpenseID(req, exp.ID.Hex())
		rec := httptest.NewRecorder()
		h.ServeUpdate(rec, req)
		return rec
	}

	if rec := update(bob); rec.Code != http.StatusOK {
		t.Errorf("member update: got %d (body %s)", rec.Code, rec.Body.String())
	}
	if rec := update(outsider); rec.Code != http.StatusForbidden {
		t.Errorf("outsider update: got %d, want 403", rec.Code)
	}
}

func TestServeDelete(t *testing.T) {
	h, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	cat := fixtures.CreateCategory(ctx, alice.ID, "Groceries", 500)
	exp := fixtures.CreateExpense(ctx, alice.ID, "Milk", models.TypeDebit, 4, &cat.ID)

	del := func(as models.User) *httptest.ResponseRecorder {
		req := testutil.WithUser(httptest.NewRequest("DELETE", "/api/expenses/"+exp.ID.Hex(), nil), as)
		req = withExpenseID(req, exp.ID.Hex())
		rec := httptest.NewRecorder()
		h.ServeDelete(rec, req)
		return rec
	}

	if rec := del(bob); rec.Code != http.StatusForbidden {
		t.Errorf("stranger delete: got %d, want 403", rec.Code)
	}
	if rec := del(alice); rec.Code != http.StatusOK {
		t.Errorf("creator delete: got %d (body %s)", rec.Code, rec.Body.String())
	}
	if rec := del(alice); rec.Code != http.StatusNotFound {
		t.Errorf("repeat delete: got %d, want 404", rec.Code)
	}
}

func TestServeTotals(t *testing.T) {
	h, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	cat := fixtures.CreateCategory(ctx, alice.ID, "Groceries", 500)
	fixtures.CreateExpense(ctx, alice.ID, "Salary", models.TypeCredit, 3000, &cat.ID)
	fixtures.CreateExpense(ctx, alice.ID, "Milk", models.TypeDebit, 4, &cat.ID)
	fixtures.CreateExpense(ctx, alice.ID, "Bread", models.TypeDebit, 2, &cat.ID)

	req := testutil.WithUser(httptest.NewRequest("GET", "/api/expenses/summary/totals", nil), alice)
	rec := httptest.NewRecorder()
	h.ServeTotals(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body.String())
	}
	var totals struct {
		TotalCredit float64 `json:"total_credit"`
		TotalDebit  float64 `json:"total_debit"`
	}
	testutil.DecodeJSON(t, rec, &totals)
	if totals.TotalCredit != 3000 || totals.TotalDebit != 6 {
		t.Errorf("totals: got %+v", totals)
	}
}

func TestServeByCategory(t *testing.T) {
	h, fixtures := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	cat := fixtures.CreateCategory(ctx, alice.ID, "Groceries", 500)
	fixtures.CreateExpense(ctx, alice.ID, "Milk", models.TypeDebit, 4, &cat.ID)
	fixtures.CreateExpense(ctx, alice.ID, "Mystery", models.TypeDebit, 10, nil)

	req := testutil.WithUser(httptest.NewRequest("GET", "/api/expenses/summary/by-category", nil), alice)
	rec := httptest.NewRecorder()
	h.ServeByCategory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body.String())
	}
	var buckets []struct {
		Category   string  `json:"category"`
		TotalDebit float64 `json:"total_debit"`
	}
	testutil.DecodeJSON(t, rec, &buckets)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d (%s)", len(buckets), rec.Body.String())
	}
	found := map[string]float64{}
	for _, b := range buckets {
		found[b.Category] = b.TotalDebit
	}
	if found["Groceries"] != 4 || found["uncategorized"] != 10 {
		t.Errorf("buckets: got %v", found)
	}
}

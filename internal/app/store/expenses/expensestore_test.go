package expensestore_test

import (
	"errors"
	"testing"

	expensestore "github.com/dalemusser/spendhub/internal/app/store/expenses"
	"github.com/dalemusser/spendhub/internal/domain/models"
	"github.com/dalemusser/spendhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func strp(s string) *string     { return &s }
func f64p(f float64) *float64   { return &f }

func TestStore_Update_PresenceNotTruthiness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := expensestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	cat := fixtures.CreateCategory(ctx, alice.ID, "Food", 300)
	exp := fixtures.CreateExpense(ctx, alice.ID, "Lunch", models.TypeDebit, 12.5, &cat.ID)

	// Explicit zero amount and empty note must stick; name untouched.
	err := store.Update(ctx, exp.ID, expensestore.Patch{
		Amount: f64p(0),
		Note:   strp(""),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, exp.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Amount != 0 {
		t.Errorf("amount: got %v, want 0", got.Amount)
	}
	if got.Note != "" {
		t.Errorf("note: got %q, want empty", got.Note)
	}
	if got.Name != "Lunch" {
		t.Errorf("name changed unexpectedly: %q", got.Name)
	}
	if got.CategoryID == nil || *got.CategoryID != cat.ID {
		t.Errorf("category changed unexpectedly: %v", got.CategoryID)
	}
}

func TestStore_Update_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := expensestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Update(ctx, primitive.NewObjectID(), expensestore.Patch{Name: strp("x")})
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := expensestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	exp := fixtures.CreateExpense(ctx, alice.ID, "Lunch", models.TypeDebit, 12.5, nil)

	if err := store.Delete(ctx, exp.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, exp.ID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("second delete: expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_ClearCategoryRefs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := expensestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	cat := fixtures.CreateCategory(ctx, alice.ID, "Food", 300)

	mine := fixtures.CreateExpense(ctx, alice.ID, "Lunch", models.TypeDebit, 10, &cat.ID)
	other := fixtures.CreateExpense(ctx, bob.ID, "Dinner", models.TypeDebit, 20, &cat.ID)

	n, err := store.ClearCategoryRefs(ctx, alice.ID, cat.ID)
	if err != nil {
		t.Fatalf("ClearCategoryRefs failed: %v", err)
	}
	if n != 1 {
		t.Errorf("cleared %d refs, want 1", n)
	}

	got, err := store.GetByID(ctx, mine.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CategoryID != nil {
		t.Errorf("alice's expense still references category: %v", got.CategoryID)
	}

	// Another user's expense pointing at their own same-ID category
	// situation cannot happen, but the scan must stay user-scoped.
	untouched, err := store.GetByID(ctx, other.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if untouched.CategoryID == nil {
		t.Error("bob's expense was modified")
	}
}

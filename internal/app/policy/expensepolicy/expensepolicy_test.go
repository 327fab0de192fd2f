package expensepolicy_test

import (
	"testing"

	"github.com/dalemusser/spendhub/internal/app/policy/expensepolicy"
	"github.com/dalemusser/spendhub/internal/app/policy/grouppolicy"
	"github.com/dalemusser/spendhub/internal/domain/models"
	"github.com/dalemusser/spendhub/internal/testutil"
)

func TestCanMutate_PersonalExpense(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	exp := fixtures.CreateExpense(ctx, alice.ID, "Lunch", models.TypeDebit, 10, nil)

	ok, err := expensepolicy.CanMutate(ctx, db, exp, alice.ID)
	if err != nil || !ok {
		t.Errorf("creator: got (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = expensepolicy.CanMutate(ctx, db, exp, bob.ID)
	if err != nil || ok {
		t.Errorf("stranger: got (%v, %v), want (false, nil)", ok, err)
	}
}

func TestCanMutate_GroupExpenseSharedWrite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	carol := fixtures.CreateUser(ctx, "Carol", "carol@example.com")
	g := fixtures.CreateGroup(ctx, alice.ID, "Trip")
	fixtures.AddGroupMember(ctx, g.ID, bob.ID)

	exp := fixtures.CreateGroupExpense(ctx, alice.ID, g.ID, "Hotel", models.TypeDebit, 150, nil)

	// Any member may mutate, not just the author.
	ok, err := expensepolicy.CanMutate(ctx, db, exp, bob.ID)
	if err != nil || !ok {
		t.Errorf("member: got (%v, %v), want (true, nil)", ok, err)
	}

	// Non-members may not.
	ok, err = expensepolicy.CanMutate(ctx, db, exp, carol.ID)
	if err != nil || ok {
		t.Errorf("non-member: got (%v, %v), want (false, nil)", ok, err)
	}
}

func TestGroupPolicy_Predicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "alice@example.com")
	bob := fixtures.CreateUser(ctx, "Bob", "bob@example.com")
	g := fixtures.CreateGroup(ctx, alice.ID, "Trip")

	if ok, _ := grouppolicy.IsOwner(ctx, db, g.ID, alice.ID); !ok {
		t.Error("owner not recognized")
	}
	if ok, _ := grouppolicy.IsOwner(ctx, db, g.ID, bob.ID); ok {
		t.Error("non-owner recognized as owner")
	}
	if ok, _ := grouppolicy.IsMember(ctx, db, g.ID, alice.ID); !ok {
		t.Error("owner should be a member")
	}
	if ok, _ := grouppolicy.IsMember(ctx, db, g.ID, bob.ID); ok {
		t.Error("non-member recognized as member")
	}
	if ok, _ := grouppolicy.Exists(ctx, db, g.ID); !ok {
		t.Error("group should exist")
	}
}

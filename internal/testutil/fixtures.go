package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/spendhub/internal/app/system/normalize"
	"github.com/dalemusser/spendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a password-credential user.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:    primitive.NewObjectID(),
		Name:  normalize.Name(name),
		Email: normalize.Email(email),
		Credential: models.Credential{
			Kind:         models.CredentialLocal,
			PasswordHash: "$2a$10$fixture-hash-not-a-real-one",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateCategory inserts a category owned by userID.
func (f *Fixtures) CreateCategory(ctx context.Context, userID primitive.ObjectID, name string, budget float64) models.Category {
	f.t.Helper()

	now := time.Now().UTC()
	cat := models.Category{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Budget:    budget,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("categories").InsertOne(ctx, cat); err != nil {
		f.t.Fatalf("failed to create test category: %v", err)
	}
	return cat
}

// CreateExpense inserts a personal expense. categoryID may be nil.
func (f *Fixtures) CreateExpense(ctx context.Context, userID primitive.ObjectID, name, typ string, amount float64, categoryID *primitive.ObjectID) models.Expense {
	f.t.Helper()
	return f.insertExpense(ctx, userID, name, typ, amount, categoryID, nil)
}

// CreateGroupExpense inserts an expense tagged with a group.
func (f *Fixtures) CreateGroupExpense(ctx context.Context, userID, groupID primitive.ObjectID, name, typ string, amount float64, categoryID *primitive.ObjectID) models.Expense {
	f.t.Helper()
	return f.insertExpense(ctx, userID, name, typ, amount, categoryID, &groupID)
}

func (f *Fixtures) insertExpense(ctx context.Context, userID primitive.ObjectID, name, typ string, amount float64, categoryID, groupID *primitive.ObjectID) models.Expense {
	f.t.Helper()

	now := time.Now().UTC()
	exp := models.Expense{
		ID:         primitive.NewObjectID(),
		Name:       name,
		Type:       typ,
		Amount:     amount,
		CategoryID: categoryID,
		UserID:     userID,
		GroupID:    groupID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("expenses").InsertOne(ctx, exp); err != nil {
		f.t.Fatalf("failed to create test expense: %v", err)
	}
	return exp
}

// CreateGroup inserts a group with the owner as first member.
func (f *Fixtures) CreateGroup(ctx context.Context, ownerID primitive.ObjectID, name string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		OwnerID:   ownerID,
		Members:   []primitive.ObjectID{ownerID},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// AddGroupMember appends a member directly, bypassing the store.
func (f *Fixtures) AddGroupMember(ctx context.Context, groupID, userID primitive.ObjectID) {
	f.t.Helper()

	_, err := f.db.Collection("groups").UpdateByID(ctx, groupID,
		bson.M{"$addToSet": bson.M{"members": userID}})
	if err != nil {
		f.t.Fatalf("failed to add test group member: %v", err)
	}
}

// Package indexes reconciles the MongoDB indexes the application
// relies on. EnsureAll is called once at startup; each ensure* is
// idempotent, and errors are aggregated so any problem is visible and
// startup can fail fast.
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureAll creates every required index.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureCategories(ctx, db); err != nil {
		problems = append(problems, "categories: "+err.Error())
	}
	if err := ensureExpenses(ctx, db); err != nil {
		problems = append(problems, "expenses: "+err.Error())
	}
	if err := ensureGroups(ctx, db); err != nil {
		problems = append(problems, "groups: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Unique email is what makes duplicate registration a store-level
// Conflict rather than a racy read-then-insert check.
func ensureUsers(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			Keys: bson.D{{Key: "credential.google_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).
				SetName("uniq_google_id"),
		},
	})
	return err
}

func ensureCategories(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("categories").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("by_user"),
		},
	})
	return err
}

func ensureExpenses(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("expenses").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// Personal listings and aggregations filter on (user, group).
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "group_id", Value: 1}},
			Options: options.Index().SetName("by_user_group"),
		},
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}},
			Options: options.Index().SetName("by_group"),
		},
		{
			Keys:    bson.D{{Key: "category_id", Value: 1}},
			Options: options.Index().SetName("by_category"),
		},
	})
	return err
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("groups").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// Multikey index over the embedded member set; backs listMine
			// and every membership predicate.
			Keys:    bson.D{{Key: "members", Value: 1}},
			Options: options.Index().SetName("by_member"),
		},
	})
	return err
}

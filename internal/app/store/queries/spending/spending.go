// Package spending holds the read-side aggregation pipelines over the
// expenses collection: ledger totals, per-category debit breakdowns,
// and annotated listings. Membership/ownership gating happens in the
// handlers before these run; every function here answers for exactly
// one visibility scope (one user's personal ledger, or one group).
package spending

import (
	"context"
	"time"

	"github.com/dalemusser/spendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Uncategorized is the bucket name for debit expenses without a
// category reference (never assigned one, or the category was deleted).
const Uncategorized = "uncategorized"

// Totals is a credit/debit partition of one scope's ledger.
type Totals struct {
	TotalCredit float64 `bson:"total_credit" json:"total_credit"`
	TotalDebit  float64 `bson:"total_debit" json:"total_debit"`
}

// Row is an expense annotated with its category and creator names.
type Row struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`
	Type      string             `bson:"type" json:"type"`
	Amount    float64            `bson:"amount" json:"amount"`
	Category  string             `bson:"category" json:"category"`
	Creator   string             `bson:"creator" json:"creator"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// CategoryBucket is one entry of a per-category debit breakdown.
type CategoryBucket struct {
	Category   string  `bson:"_id" json:"category"`
	TotalDebit float64 `bson:"total_debit" json:"total_debit"`
	Expenses   []Row   `bson:"expenses" json:"expenses"`
}

// personalScope matches one user's expenses outside any group. A nil
// comparison matches both missing and explicitly-null group_id.
func personalScope(userID primitive.ObjectID) bson.M {
	return bson.M{"user_id": userID, "group_id": nil}
}

// PersonalTotals sums one user's personal ledger, partitioned by type.
// A user with no expenses gets zeroes, not an error.
func PersonalTotals(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (Totals, error) {
	cur, err := db.Collection("expenses").Aggregate(ctx, []bson.M{
		{"$match": personalScope(userID)},
		{"$group": bson.M{"_id": "$type", "total": bson.M{"$sum": "$amount"}}},
	})
	if err != nil {
		return Totals{}, err
	}
	defer cur.Close(ctx)

	var t Totals
	for cur.Next(ctx) {
		var row struct {
			Type  string  `bson:"_id"`
			Total float64 `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return Totals{}, err
		}
		switch row.Type {
		case models.TypeCredit:
			t.TotalCredit = row.Total
		case models.TypeDebit:
			t.TotalDebit = row.Total
		}
	}
	return t, cur.Err()
}

// GroupTotal sums every expense tagged with the group, regardless of
// author or type (the group aggregate has no credit/debit split).
func GroupTotal(ctx context.Context, db *mongo.Database, groupID primitive.ObjectID) (float64, error) {
	cur, err := db.Collection("expenses").Aggregate(ctx, []bson.M{
		{"$match": bson.M{"group_id": groupID}},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var total float64
	for cur.Next(ctx) {
		var row struct {
			Total float64 `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
		total = row.Total
	}
	return total, cur.Err()
}

// annotate joins category and creator names onto expense documents.
var annotate = []bson.M{
	{"$lookup": bson.M{
		"from":         "categories",
		"localField":   "category_id",
		"foreignField": "_id",
		"as":           "cat",
	}},
	{"$lookup": bson.M{
		"from":         "users",
		"localField":   "user_id",
		"foreignField": "_id",
		"as":           "creator_doc",
	}},
	{"$addFields": bson.M{
		"category": bson.M{"$ifNull": []interface{}{
			bson.M{"$arrayElemAt": []interface{}{"$cat.name", 0}},
			Uncategorized,
		}},
		"creator": bson.M{"$ifNull": []interface{}{
			bson.M{"$arrayElemAt": []interface{}{"$creator_doc.name", 0}},
			"",
		}},
	}},
	{"$project": bson.M{"cat": 0, "creator_doc": 0}},
}

func listRows(ctx context.Context, db *mongo.Database, match bson.M) ([]Row, error) {
	pipeline := append([]bson.M{{"$match": match}}, annotate...)
	pipeline = append(pipeline, bson.M{"$sort": bson.M{"created_at": -1}})

	cur, err := db.Collection("expenses").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	rows := []Row{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPersonal returns one user's personal expenses, annotated.
func ListPersonal(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) ([]Row, error) {
	return listRows(ctx, db, personalScope(userID))
}

// ListByGroup returns all expenses tagged with the group, annotated
// with creator and category names.
func ListByGroup(ctx context.Context, db *mongo.Database, groupID primitive.ObjectID) ([]Row, error) {
	return listRows(ctx, db, bson.M{"group_id": groupID})
}

// ListByCreator returns every expense the user authored, personal and
// group alike. Feeds the AI report.
func ListByCreator(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) ([]Row, error) {
	return listRows(ctx, db, bson.M{"user_id": userID})
}

func byCategory(ctx context.Context, db *mongo.Database, match bson.M) ([]CategoryBucket, error) {
	// Budgets track spend, not income: only debits count here.
	match["type"] = models.TypeDebit

	pipeline := append([]bson.M{{"$match": match}}, annotate...)
	pipeline = append(pipeline,
		bson.M{"$group": bson.M{
			"_id":         "$category",
			"total_debit": bson.M{"$sum": "$amount"},
			"expenses":    bson.M{"$push": "$$ROOT"},
		}},
		bson.M{"$sort": bson.M{"total_debit": -1}},
	)

	cur, err := db.Collection("expenses").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	buckets := []CategoryBucket{}
	if err := cur.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// PersonalByCategory groups one user's personal debit expenses by
// category name; expenses without a category land in the
// "uncategorized" bucket. Credits are excluded by design.
func PersonalByCategory(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) ([]CategoryBucket, error) {
	return byCategory(ctx, db, personalScope(userID))
}

// GroupByCategory is the same breakdown restricted to one group.
func GroupByCategory(ctx context.Context, db *mongo.Database, groupID primitive.ObjectID) ([]CategoryBucket, error) {
	return byCategory(ctx, db, bson.M{"group_id": groupID})
}

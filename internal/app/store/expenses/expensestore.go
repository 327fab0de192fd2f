// internal/app/store/expenses/expensestore.go
package expensestore

import (
	"context"
	"time"

	"github.com/dalemusser/spendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store persists ledger entries. Authorization is the caller's job
// (see policy/expensepolicy); the store only knows documents.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("expenses")}
}

func (s *Store) Create(ctx context.Context, e models.Expense) (models.Expense, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Expense, error) {
	var e models.Expense
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

// Patch holds a partial update. A nil field means "leave unchanged";
// a non-nil pointer to a zero value is an explicit set, so amount 0
// and note "" are expressible. Presence, not truthiness.
type Patch struct {
	Name       *string
	Note       *string
	Type       *string
	Amount     *float64
	CategoryID *primitive.ObjectID
}

// IsEmpty reports whether the patch sets nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Note == nil && p.Type == nil &&
		p.Amount == nil && p.CategoryID == nil
}

// Update applies a patch to one expense. Returns mongo.ErrNoDocuments
// when the expense is absent.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Note != nil {
		set["note"] = *p.Note
	}
	if p.Type != nil {
		set["type"] = *p.Type
	}
	if p.Amount != nil {
		set["amount"] = *p.Amount
	}
	if p.CategoryID != nil {
		set["category_id"] = *p.CategoryID
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes one expense. Returns mongo.ErrNoDocuments when absent.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ClearCategoryRefs nulls the category reference on all of one user's
// expenses pointing at a deleted category, so they read as
// uncategorized from then on. Returns the number of expenses touched.
func (s *Store) ClearCategoryRefs(ctx context.Context, userID, categoryID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"user_id": userID, "category_id": categoryID},
		bson.M{
			"$unset": bson.M{"category_id": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// internal/app/store/categories/categorystore.go
package categorystore

import (
	"context"
	"time"

	"github.com/dalemusser/spendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store persists categories. Every operation that names a category
// filters on both _id and user_id, so "not yours" and "does not exist"
// are indistinguishable to callers; both surface as ErrNoDocuments.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("categories")}
}

func (s *Store) Create(ctx context.Context, c models.Category) (models.Category, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// GetByID loads one category owned by userID.
func (s *Store) GetByID(ctx context.Context, id, userID primitive.ObjectID) (models.Category, error) {
	var c models.Category
	err := s.c.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&c)
	if err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// ListByUser returns all categories owned by userID, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Category, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	cats := []models.Category{}
	if err := cur.All(ctx, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// Update replaces name and budget on a category owned by userID.
// Returns mongo.ErrNoDocuments when no such category is visible.
func (s *Store) Update(ctx context.Context, id, userID primitive.ObjectID, name string, budget float64) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{
			"name":       name,
			"budget":     budget,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a category owned by userID. Returns
// mongo.ErrNoDocuments when no such category is visible.
func (s *Store) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

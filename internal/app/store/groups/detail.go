// internal/app/store/groups/detail.go
package groupstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MemberView is the public shape of a group member.
type MemberView struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

// Detail is a group with its member IDs resolved to user records.
type Detail struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	OwnerID   primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Members   []MemberView       `bson:"member_docs" json:"members"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Owner returns the owner's member record, zero-valued if the owner
// document has gone missing.
func (d Detail) Owner() MemberView {
	for _, m := range d.Members {
		if m.ID == d.OwnerID {
			return m
		}
	}
	return MemberView{}
}

// GetDetail loads a group with members joined from the users
// collection. Returns mongo.ErrNoDocuments when the group is absent.
func (s *Store) GetDetail(ctx context.Context, id primitive.ObjectID) (Detail, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"_id": id}},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "members",
			"foreignField": "_id",
			"as":           "member_docs",
		}},
	})
	if err != nil {
		return Detail{}, err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return Detail{}, err
		}
		return Detail{}, mongo.ErrNoDocuments
	}

	var d Detail
	if err := cur.Decode(&d); err != nil {
		return Detail{}, err
	}
	return d, nil
}

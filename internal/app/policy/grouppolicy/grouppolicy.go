// internal/app/policy/grouppolicy/grouppolicy.go
package grouppolicy

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IsMember reports whether userID is in the group's member set,
// according to the authoritative groups collection. Callers can
// distinguish "not a member" (false, nil) from a database error.
func IsMember(ctx context.Context, db *mongo.Database, groupID, userID primitive.ObjectID) (bool, error) {
	n, err := db.Collection("groups").CountDocuments(ctx, bson.M{
		"_id":     groupID,
		"members": userID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsOwner reports whether userID owns the group.
func IsOwner(ctx context.Context, db *mongo.Database, groupID, userID primitive.ObjectID) (bool, error) {
	n, err := db.Collection("groups").CountDocuments(ctx, bson.M{
		"_id":      groupID,
		"owner_id": userID,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Exists reports whether the group exists at all. Used to pick between
// NotFound and Forbidden when a membership check fails.
func Exists(ctx context.Context, db *mongo.Database, groupID primitive.ObjectID) (bool, error) {
	n, err := db.Collection("groups").CountDocuments(ctx, bson.M{"_id": groupID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

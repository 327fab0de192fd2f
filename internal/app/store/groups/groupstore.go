// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/spendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

var (
	// ErrAlreadyMember is returned when a join targets a group the user
	// is already in.
	ErrAlreadyMember = errors.New("user is already a member of this group")
	// ErrNotMember is returned when a leave targets a group the user is
	// not in.
	ErrNotMember = errors.New("user is not a member of this group")
	// ErrOwnerCannotLeave is returned when the owner tries to leave.
	ErrOwnerCannotLeave = errors.New("the group owner cannot leave the group")
)

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// Create inserts a group with the owner as its first member.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.Members = []primitive.ObjectID{g.OwnerID}
	g.CreatedAt = now
	g.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// AddMember joins userID to a group in one conditional update: the
// filter excludes documents already containing the member, so two
// concurrent joins can never append twice. When nothing matched, a
// follow-up read tells apart "group absent" (ErrNoDocuments) from
// "already joined" (ErrAlreadyMember).
func (s *Store) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": groupID, "members": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"members": userID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	g, err := s.GetByID(ctx, groupID)
	if err != nil {
		return err // mongo.ErrNoDocuments when the group is absent
	}
	if g.HasMember(userID) {
		return ErrAlreadyMember
	}
	return mongo.ErrNoDocuments
}

// RemoveMember leaves a group in one conditional update: the filter
// requires current membership and excludes the owner, so the member
// set can never lose its owner and concurrent leaves are idempotent
// at the document level. A follow-up read classifies the zero-match
// case into ErrNoDocuments, ErrOwnerCannotLeave, or ErrNotMember.
func (s *Store) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":      groupID,
			"owner_id": bson.M{"$ne": userID},
			"members":  userID,
		},
		bson.M{
			"$pull": bson.M{"members": userID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	g, err := s.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if g.OwnerID == userID {
		return ErrOwnerCannotLeave
	}
	return ErrNotMember
}

// ListByMember returns all groups userID belongs to, owner included
// (the owner is always also a member).
func (s *Store) ListByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{"members": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	groups := []models.Group{}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// SetShareCode stores a fresh invite code; only the owner may rotate
// it. Returns mongo.ErrNoDocuments when the group is absent or the
// caller is not its owner.
func (s *Store) SetShareCode(ctx context.Context, groupID, ownerID primitive.ObjectID, code string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": groupID, "owner_id": ownerID},
		bson.M{"$set": bson.M{
			"share_code": code,
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

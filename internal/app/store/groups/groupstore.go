// internal/app/store/groups/groupstore.go
package groups

import (
	"context"
	"time"

	"github.com/dalemusser/chathub/internal/app/lifecycle"
	"github.com/dalemusser/chathub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists group aggregates in the "groups" collection.
//
// Every membership mutation is a single FindOneAndUpdate/UpdateOne whose
// filter encodes the invariant the operation depends on, so the
// read-check-write sequence is atomic inside MongoDB. A filter that matches
// nothing surfaces as lifecycle.ErrConditionFailed and the engine reloads
// the document to work out why.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.NameCI = text.Fold(g.Name)
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, lifecycle.ErrNameTaken
		}
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// ListForUser returns the groups the user belongs to, newest first.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{"member_ids": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every group, name order, for the browse directory.
func (s *Store) List(ctx context.Context) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdmitMember adds userID to the member set only if they are not already in
// it and the group is under capacity. A nil max_members means unlimited;
// otherwise $expr compares the live member-array size against the cap, so
// two concurrent admissions racing for one slot cannot both match.
func (s *Store) AdmitMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	filter := bson.M{
		"_id":        groupID,
		"member_ids": bson.M{"$ne": userID},
		"$or": bson.A{
			bson.M{"max_members": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{
				bson.M{"$size": "$member_ids"},
				"$max_members",
			}}},
		},
	}
	update := bson.M{
		"$addToSet": bson.M{"member_ids": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	return s.conditional(ctx, filter, update)
}

// RemoveMember pulls userID from the member set only while they are a member
// and not the owner.
func (s *Store) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	filter := bson.M{
		"_id":        groupID,
		"member_ids": userID,
		"owner_id":   bson.M{"$ne": userID},
	}
	update := bson.M{
		"$pull": bson.M{"member_ids": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	return s.conditional(ctx, filter, update)
}

// BanishMember moves targetID from members to banned in one update, guarded
// by ownership and target membership. The $pull/$addToSet pair keeps the
// member and banned sets disjoint.
func (s *Store) BanishMember(ctx context.Context, groupID, ownerID, targetID primitive.ObjectID) error {
	filter := bson.M{
		"_id":        groupID,
		"owner_id":   ownerID,
		"member_ids": targetID,
	}
	update := bson.M{
		"$pull":     bson.M{"member_ids": targetID},
		"$addToSet": bson.M{"banned_user_ids": targetID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	return s.conditional(ctx, filter, update)
}

// TransferOwner reassigns owner_id, guarded by current ownership and the new
// owner's membership. Members are untouched: the new owner is already one,
// and the old owner stays one.
func (s *Store) TransferOwner(ctx context.Context, groupID, currentOwnerID, newOwnerID primitive.ObjectID) error {
	filter := bson.M{
		"_id":        groupID,
		"owner_id":   currentOwnerID,
		"member_ids": newOwnerID,
	}
	update := bson.M{
		"$set": bson.M{
			"owner_id":   newOwnerID,
			"updated_at": time.Now().UTC(),
		},
	}
	return s.conditional(ctx, filter, update)
}

// DeleteSoleOwned removes the group only while the caller owns it and is its
// sole member.
func (s *Store) DeleteSoleOwned(ctx context.Context, groupID, ownerID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"_id":        groupID,
		"owner_id":   ownerID,
		"member_ids": bson.M{"$size": 1},
	})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return lifecycle.ErrConditionFailed
	}
	return nil
}

func (s *Store) conditional(ctx context.Context, filter, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return lifecycle.ErrConditionFailed
	}
	return nil
}

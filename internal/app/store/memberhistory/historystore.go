// internal/app/store/memberhistory/historystore.go
package memberhistory

import (
	"context"
	"time"

	"github.com/dalemusser/chathub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the append-only membership history log in "member_history".
// Entries are inserted once and never updated or deleted; appends across
// users and groups are independent and need no coordination.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("member_history")}
}

func (s *Store) Append(ctx context.Context, entry models.MemberHistoryEntry) error {
	entry.ID = primitive.NewObjectID()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, entry)
	return err
}

// LastDeparture returns the timestamp of the most recent "left" or
// "banished" entry for the pair; the rejoin cooldown keys on this entry.
// Returns the zero time when the user never departed.
func (s *Store) LastDeparture(ctx context.Context, userID, groupID primitive.ObjectID) (time.Time, error) {
	var entry struct {
		Timestamp time.Time `bson:"timestamp"`
	}
	err := s.c.FindOne(ctx,
		bson.M{
			"user_id":  userID,
			"group_id": groupID,
			"action":   bson.M{"$in": bson.A{models.ActionLeft, models.ActionBanished}},
		},
		options.FindOne().
			SetSort(bson.D{{Key: "timestamp", Value: -1}}).
			SetProjection(bson.M{"timestamp": 1}),
	).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return entry.Timestamp, nil
}

// ListForGroup returns a group's history, newest first, for audit views.
func (s *Store) ListForGroup(ctx context.Context, groupID primitive.ObjectID, limit int64) ([]models.MemberHistoryEntry, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"group_id": groupID},
		options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.MemberHistoryEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

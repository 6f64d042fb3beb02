// internal/app/store/joinrequests/requeststore.go
package joinrequests

import (
	"context"
	"time"

	"github.com/dalemusser/chathub/internal/app/lifecycle"
	"github.com/dalemusser/chathub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists join requests in "join_requests".
//
// The at-most-one-pending invariant per (user, group) pair is enforced by a
// partial unique index (see system/indexes), so a duplicate Create loses the
// race at the database rather than in application code.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("join_requests")}
}

func (s *Store) Create(ctx context.Context, req models.JoinRequest) (models.JoinRequest, error) {
	req.ID = primitive.NewObjectID()
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, req); err != nil {
		if wafflemongo.IsDup(err) {
			return models.JoinRequest{}, lifecycle.ErrDuplicatePending
		}
		return models.JoinRequest{}, err
	}
	return req, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.JoinRequest, error) {
	var req models.JoinRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return models.JoinRequest{}, err
	}
	return req, nil
}

// ListPending returns a group's pending requests, oldest first.
func (s *Store) ListPending(ctx context.Context, groupID primitive.ObjectID) ([]models.JoinRequest, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"group_id": groupID, "status": models.RequestPending},
		options.Find().SetSort(bson.D{{Key: "requested_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.JoinRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkProcessed transitions the request to a terminal status, guarded by
// "status is still pending" so a request resolves exactly once. Terminal
// requests are never written again.
func (s *Store) MarkProcessed(ctx context.Context, id primitive.ObjectID, status string, by primitive.ObjectID, at time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.RequestPending},
		bson.M{"$set": bson.M{
			"status":          status,
			"processed_at":    at,
			"processed_by_id": by,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return lifecycle.ErrConditionFailed
	}
	return nil
}

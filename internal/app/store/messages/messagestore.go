// internal/app/store/messages/messagestore.go
package messages

import (
	"context"
	"time"

	"github.com/dalemusser/chathub/internal/app/system/msgcrypt"
	"github.com/dalemusser/chathub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Placeholder returned when a stored message cannot be decrypted (key
// rotation, corrupted document). The history call still succeeds.
const undecryptable = "[encrypted message - decryption failed]"

// Store persists chat messages in "messages", encrypting bodies on write
// and decrypting on read so callers only ever see plaintext.
type Store struct {
	c      *mongo.Collection
	cipher *msgcrypt.Cipher
	log    *zap.Logger
}

func New(db *mongo.Database, cipher *msgcrypt.Cipher, logger *zap.Logger) *Store {
	return &Store{c: db.Collection("messages"), cipher: cipher, log: logger}
}

// SendGroup stores a group message and returns it with the plaintext body.
func (s *Store) SendGroup(ctx context.Context, fromUserID, groupID primitive.ObjectID, body string) (models.Message, error) {
	encrypted, err := s.cipher.Encrypt(body)
	if err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		ID:         primitive.NewObjectID(),
		FromUserID: fromUserID,
		GroupID:    &groupID,
		Kind:       models.MessageGroup,
		Body:       encrypted,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, msg); err != nil {
		return models.Message{}, err
	}

	msg.Body = body
	return msg, nil
}

// SendDirect stores a direct message and returns it with the plaintext body.
func (s *Store) SendDirect(ctx context.Context, fromUserID, toUserID primitive.ObjectID, body string) (models.Message, error) {
	encrypted, err := s.cipher.Encrypt(body)
	if err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		ID:         primitive.NewObjectID(),
		FromUserID: fromUserID,
		ToUserID:   &toUserID,
		Kind:       models.MessageDirect,
		Body:       encrypted,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, msg); err != nil {
		return models.Message{}, err
	}

	msg.Body = body
	return msg, nil
}

// GroupHistory returns a group's messages oldest first, decrypted, with
// skip/limit pagination.
func (s *Store) GroupHistory(ctx context.Context, groupID primitive.ObjectID, limit, skip int64) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	cur, err := s.c.Find(ctx,
		bson.M{"group_id": groupID, "kind": models.MessageGroup},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: 1}}).
			SetSkip(skip).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []models.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}

	for i := range msgs {
		plain, err := s.cipher.Decrypt(msgs[i].Body)
		if err != nil {
			s.log.Error("message decrypt failed",
				zap.String("message_id", msgs[i].ID.Hex()),
				zap.Error(err))
			msgs[i].Body = undecryptable
			continue
		}
		msgs[i].Body = plain
	}
	return msgs, nil
}

// DirectHistory returns the conversation between two users, both directions
// merged, oldest first, decrypted, with skip/limit pagination.
func (s *Store) DirectHistory(ctx context.Context, userA, userB primitive.ObjectID, limit, skip int64) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	cur, err := s.c.Find(ctx,
		bson.M{
			"kind": models.MessageDirect,
			"$or": bson.A{
				bson.M{"from_user_id": userA, "to_user_id": userB},
				bson.M{"from_user_id": userB, "to_user_id": userA},
			},
		},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: 1}}).
			SetSkip(skip).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []models.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}

	for i := range msgs {
		plain, err := s.cipher.Decrypt(msgs[i].Body)
		if err != nil {
			s.log.Error("message decrypt failed",
				zap.String("message_id", msgs[i].ID.Hex()),
				zap.Error(err))
			msgs[i].Body = undecryptable
			continue
		}
		msgs[i].Body = plain
	}
	return msgs, nil
}

// PurgeGroup deletes all of a group's messages. Called by the lifecycle
// engine before the group aggregate itself is removed.
func (s *Store) PurgeGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID, "kind": models.MessageGroup})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

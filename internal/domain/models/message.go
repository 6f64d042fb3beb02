// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message kinds.
const (
	MessageDirect = "direct"
	MessageGroup  = "group"
)

// Message is one stored chat message. Body holds the encrypted form
// ("iv:ciphertext", both hex); the message store encrypts on write and
// decrypts on read so nothing above it sees ciphertext.
//
// Exactly one of ToUserID (direct) or GroupID (group) is set, per Kind.
type Message struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FromUserID primitive.ObjectID  `bson:"from_user_id" json:"from_user_id"`
	ToUserID   *primitive.ObjectID `bson:"to_user_id,omitempty" json:"to_user_id,omitempty"`
	GroupID    *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`
	Kind       string              `bson:"kind" json:"kind"` // "direct" | "group"
	Body       string              `bson:"body" json:"body"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
}

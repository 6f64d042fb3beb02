// internal/domain/models/joinrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Join request statuses. A request transitions from pending to exactly one
// terminal status (approved or declined) and is immutable afterward.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestDeclined = "declined"
)

// JoinRequest is a gated admission awaiting the group owner's decision.
// At most one pending request exists per (user_id, group_id) pair; a partial
// unique index on join_requests backs that invariant.
type JoinRequest struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID  `bson:"user_id" json:"user_id"`
	GroupID       primitive.ObjectID  `bson:"group_id" json:"group_id"`
	Status        string              `bson:"status" json:"status"` // "pending" | "approved" | "declined"
	RequestedAt   time.Time           `bson:"requested_at" json:"requested_at"`
	ProcessedAt   *time.Time          `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
	ProcessedByID *primitive.ObjectID `bson:"processed_by_id,omitempty" json:"processed_by_id,omitempty"`
}

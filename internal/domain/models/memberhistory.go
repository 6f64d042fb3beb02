// internal/domain/models/memberhistory.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership actions recorded in member_history.
const (
	ActionJoined   = "joined"
	ActionLeft     = "left"
	ActionBanished = "banished"
)

// MemberHistoryEntry is one immutable membership transition. Entries are
// append-only: nothing in the application updates or deletes them. The most
// recent "left"/"banished" entry for a (user, group) pair drives the
// rejoin cooldown.
//
// PerformedByID equals UserID for self-initiated joins and leaves, and the
// owner's ID for banishments.
type MemberHistoryEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	GroupID       primitive.ObjectID `bson:"group_id" json:"group_id"`
	Action        string             `bson:"action" json:"action"` // "joined" | "left" | "banished"
	Timestamp     time.Time          `bson:"timestamp" json:"timestamp"`
	PerformedByID primitive.ObjectID `bson:"performed_by_id" json:"performed_by_id"`
}

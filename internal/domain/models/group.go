// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group types. A private group admits members only through owner-approved
// join requests; an open group admits immediately unless the user is banned.
const (
	GroupTypePrivate = "private"
	GroupTypeOpen    = "open"
)

// Group name length bounds, enforced at create time.
const (
	GroupNameMinLen = 3
	GroupNameMaxLen = 50
)

// Group is the aggregate for one chat group: identity, owner, the member
// set, and the banned set live on a single document so membership mutations
// can be expressed as one conditional update.
//
// Invariants (maintained by the group store's conditional updates):
//   - OwnerID is always present in MemberIDs.
//   - len(MemberIDs) <= *MaxMembers whenever MaxMembers is set.
//
// BannedUserIDs persists across readmission: an approved rejoin does not
// clear the ban, so a banned user always comes back through owner approval.
type Group struct {
	ID            primitive.ObjectID   `bson:"_id" json:"id"`
	Name          string               `bson:"name" json:"name"`
	NameCI        string               `bson:"name_ci" json:"-"`
	Type          string               `bson:"type" json:"type"` // "private" | "open"
	OwnerID       primitive.ObjectID   `bson:"owner_id" json:"owner_id"`
	MemberIDs     []primitive.ObjectID `bson:"member_ids" json:"member_ids"`
	BannedUserIDs []primitive.ObjectID `bson:"banned_user_ids" json:"banned_user_ids"`

	// MaxMembers caps the member set; nil means unlimited.
	// When set it is always >= 2 (owner plus at least one member).
	MaxMembers *int32 `bson:"max_members" json:"max_members"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// internal/app/lifecycle/stores.go
package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/chathub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store contracts consumed by the engine. The Mongo implementations live in
// internal/app/store; tests run the engine against in-memory fakes with the
// same conditional-update semantics.
//
// Absent documents are reported as mongo.ErrNoDocuments by convention
// (GetByID), and conditional mutations return ErrConditionFailed when their
// filter matched nothing; the engine reloads the group to classify why.

// ErrConditionFailed is returned by conditional mutations whose filter
// matched no document: the target is absent or the guarded invariant
// (capacity, membership, ownership, sole-member) does not hold.
var ErrConditionFailed = errors.New("conditional update matched no document")

// ErrDuplicatePending is returned by JoinRequestStore.Create when a pending
// request already exists for the (user, group) pair.
var ErrDuplicatePending = errors.New("a pending join request already exists")

// GroupStore is the aggregate store. Every mutating call is a single
// conditional update: the read-check-write sequence happens inside the
// database, so concurrent operations on the same group are linearized
// without any application-level locking.
type GroupStore interface {
	Create(ctx context.Context, g models.Group) (models.Group, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error)

	// AdmitMember adds userID to the member set, guarded by "not already a
	// member AND under capacity". All admissions (immediate joins and
	// approvals) go through this one path.
	AdmitMember(ctx context.Context, groupID, userID primitive.ObjectID) error

	// RemoveMember pulls userID from the member set, guarded by "is a member
	// AND is not the owner".
	RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error

	// BanishMember moves targetID from the member set to the banned set,
	// guarded by "ownerID owns the group AND targetID is a member".
	BanishMember(ctx context.Context, groupID, ownerID, targetID primitive.ObjectID) error

	// TransferOwner reassigns ownership, guarded by "currentOwnerID owns the
	// group AND newOwnerID is a member". The member set is untouched.
	TransferOwner(ctx context.Context, groupID, currentOwnerID, newOwnerID primitive.ObjectID) error

	// DeleteSoleOwned removes the group, guarded by "ownerID owns the group
	// AND the owner is the sole member".
	DeleteSoleOwned(ctx context.Context, groupID, ownerID primitive.ObjectID) error
}

// HistoryStore is the append-only membership history log.
type HistoryStore interface {
	Append(ctx context.Context, entry models.MemberHistoryEntry) error

	// LastDeparture returns the timestamp of the most recent "left" or
	// "banished" entry for the pair, or the zero time when there is none.
	LastDeparture(ctx context.Context, userID, groupID primitive.ObjectID) (time.Time, error)
}

// JoinRequestStore persists gated admissions.
type JoinRequestStore interface {
	Create(ctx context.Context, req models.JoinRequest) (models.JoinRequest, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.JoinRequest, error)
	ListPending(ctx context.Context, groupID primitive.ObjectID) ([]models.JoinRequest, error)

	// MarkProcessed transitions a request from pending to the given terminal
	// status, guarded by "status is still pending". Returns
	// ErrConditionFailed when the request was already processed (or absent).
	MarkProcessed(ctx context.Context, id primitive.ObjectID, status string, by primitive.ObjectID, at time.Time) error
}

// MessagePurger erases a deleted group's message history.
type MessagePurger interface {
	PurgeGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error)
}

// Sessioner runs fn atomically when the deployment supports multi-document
// transactions, and sequentially otherwise. internal/app/system/txn provides
// the Mongo implementation.
type Sessioner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

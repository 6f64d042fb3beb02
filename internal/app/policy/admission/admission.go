// internal/app/policy/admission/admission.go
package admission

import (
	"time"

	"github.com/dalemusser/chathub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pure admission policy over a group snapshot. Nothing here touches storage;
// the group store re-encodes the same conditions in its conditional updates,
// and these functions are used for pre-checks and for classifying a
// conditional update that matched nothing.

// IsMember reports whether userID is in the group's member set.
func IsMember(g models.Group, userID primitive.ObjectID) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsOwner reports whether userID owns the group.
func IsOwner(g models.Group, userID primitive.ObjectID) bool {
	return g.OwnerID == userID
}

// IsBanned reports whether userID is in the group's banned set.
func IsBanned(g models.Group, userID primitive.ObjectID) bool {
	for _, id := range g.BannedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// HasCapacity reports whether a group with the given member count can admit
// one more member. A nil max means unlimited.
func HasCapacity(memberCount int, max *int32) bool {
	if max == nil {
		return true
	}
	return memberCount < int(*max)
}

// Cooldown reports whether a user whose most recent departure (left or
// banished) happened at last is still inside the rejoin window at now, and
// how long remains. A zero last means the user never departed and is always
// eligible; remaining is clamped to zero once the window has elapsed.
func Cooldown(last time.Time, now time.Time, window time.Duration) (active bool, remaining time.Duration) {
	if last.IsZero() {
		return false, 0
	}
	elapsed := now.Sub(last)
	if elapsed >= window {
		return false, 0
	}
	return true, window - elapsed
}

package admission

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chathub/internal/domain/models"
)

func TestMembershipChecks(t *testing.T) {
	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()
	banned := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	g := models.Group{
		OwnerID:       owner,
		MemberIDs:     []primitive.ObjectID{owner, member},
		BannedUserIDs: []primitive.ObjectID{banned},
	}

	if !IsMember(g, owner) || !IsMember(g, member) {
		t.Error("IsMember false for users in the member set")
	}
	if IsMember(g, stranger) || IsMember(g, banned) {
		t.Error("IsMember true for users outside the member set")
	}
	if !IsOwner(g, owner) {
		t.Error("IsOwner false for the owner")
	}
	if IsOwner(g, member) {
		t.Error("IsOwner true for a plain member")
	}
	if !IsBanned(g, banned) {
		t.Error("IsBanned false for a banned user")
	}
	if IsBanned(g, member) || IsBanned(g, stranger) {
		t.Error("IsBanned true for a non-banned user")
	}
}

func TestHasCapacity(t *testing.T) {
	max3 := int32(3)
	tests := []struct {
		name    string
		members int
		max     *int32
		want    bool
	}{
		{"unlimited", 1000, nil, true},
		{"under cap", 2, &max3, true},
		{"at cap", 3, &max3, false},
		{"over cap", 4, &max3, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasCapacity(tc.members, tc.max); got != tc.want {
				t.Fatalf("HasCapacity(%d, %v) = %v, want %v", tc.members, tc.max, got, tc.want)
			}
		})
	}
}

func TestCooldown(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	window := 48 * time.Hour

	tests := []struct {
		name          string
		last          time.Time
		wantActive    bool
		wantRemaining time.Duration
	}{
		{"never departed", time.Time{}, false, 0},
		{"just departed", now, true, window},
		{"one hour in", now.Add(-time.Hour), true, 47 * time.Hour},
		{"window exactly elapsed", now.Add(-window), false, 0},
		{"long past", now.Add(-30 * 24 * time.Hour), false, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			active, remaining := Cooldown(tc.last, now, window)
			if active != tc.wantActive || remaining != tc.wantRemaining {
				t.Fatalf("Cooldown = (%v, %v), want (%v, %v)", active, remaining, tc.wantActive, tc.wantRemaining)
			}
		})
	}
}

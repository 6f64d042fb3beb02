package groups

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chathub/internal/app/lifecycle"
	"github.com/dalemusser/chathub/internal/app/system/indexes"
	"github.com/dalemusser/chathub/internal/domain/models"
	"github.com/dalemusser/chathub/internal/testutil"
)

func int32p(v int32) *int32 { return &v }

func newGroup(name string, ownerID primitive.ObjectID, max *int32) models.Group {
	return models.Group{
		Name:          name,
		Type:          models.GroupTypeOpen,
		OwnerID:       ownerID,
		MemberIDs:     []primitive.ObjectID{ownerID},
		BannedUserIDs: []primitive.ObjectID{},
		MaxMembers:    max,
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := New(db)

	if _, err := store.Create(ctx, newGroup("Book Club", primitive.NewObjectID(), nil)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Uniqueness is case-insensitive via the folded name index.
	_, err := store.Create(ctx, newGroup("BOOK CLUB", primitive.NewObjectID(), nil))
	if !errors.Is(err, lifecycle.ErrNameTaken) {
		t.Fatalf("Create error = %v, want %v", err, lifecycle.ErrNameTaken)
	}
}

func TestAdmitMemberConditions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	owner := primitive.NewObjectID()
	g, err := store.Create(ctx, newGroup("capacity test", owner, int32p(2)))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	user := primitive.NewObjectID()
	if err := store.AdmitMember(ctx, g.ID, user); err != nil {
		t.Fatalf("AdmitMember: %v", err)
	}

	t.Run("already a member", func(t *testing.T) {
		if err := store.AdmitMember(ctx, g.ID, user); !errors.Is(err, lifecycle.ErrConditionFailed) {
			t.Fatalf("error = %v, want %v", err, lifecycle.ErrConditionFailed)
		}
	})

	t.Run("at capacity", func(t *testing.T) {
		err := store.AdmitMember(ctx, g.ID, primitive.NewObjectID())
		if !errors.Is(err, lifecycle.ErrConditionFailed) {
			t.Fatalf("error = %v, want %v", err, lifecycle.ErrConditionFailed)
		}
		got, err := store.GetByID(ctx, g.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if len(got.MemberIDs) != 2 {
			t.Fatalf("member count = %d, want 2", len(got.MemberIDs))
		}
	})

	t.Run("unlimited group", func(t *testing.T) {
		u, err := store.Create(ctx, newGroup("no cap", owner, nil))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		for i := 0; i < 5; i++ {
			if err := store.AdmitMember(ctx, u.ID, primitive.NewObjectID()); err != nil {
				t.Fatalf("AdmitMember %d: %v", i, err)
			}
		}
	})
}

func TestRemoveMemberConditions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()
	g, err := store.Create(ctx, newGroup("leave test", owner, nil))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.AdmitMember(ctx, g.ID, member); err != nil {
		t.Fatalf("AdmitMember: %v", err)
	}

	if err := store.RemoveMember(ctx, g.ID, owner); !errors.Is(err, lifecycle.ErrConditionFailed) {
		t.Fatalf("removing the owner: error = %v, want %v", err, lifecycle.ErrConditionFailed)
	}
	if err := store.RemoveMember(ctx, g.ID, primitive.NewObjectID()); !errors.Is(err, lifecycle.ErrConditionFailed) {
		t.Fatalf("removing a stranger: error = %v, want %v", err, lifecycle.ErrConditionFailed)
	}
	if err := store.RemoveMember(ctx, g.ID, member); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}

	got, err := store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.MemberIDs) != 1 || got.MemberIDs[0] != owner {
		t.Fatalf("MemberIDs = %v, want just the owner", got.MemberIDs)
	}
}

func TestBanishMemberConditions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()
	g, err := store.Create(ctx, newGroup("banish test", owner, nil))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.AdmitMember(ctx, g.ID, member); err != nil {
		t.Fatalf("AdmitMember: %v", err)
	}

	if err := store.BanishMember(ctx, g.ID, member, owner); !errors.Is(err, lifecycle.ErrConditionFailed) {
		t.Fatalf("non-owner banishing: error = %v, want %v", err, lifecycle.ErrConditionFailed)
	}
	if err := store.BanishMember(ctx, g.ID, owner, member); err != nil {
		t.Fatalf("BanishMember: %v", err)
	}

	got, err := store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	for _, id := range got.MemberIDs {
		if id == member {
			t.Error("banished user still in member set")
		}
	}
	found := false
	for _, id := range got.BannedUserIDs {
		if id == member {
			found = true
		}
	}
	if !found {
		t.Error("banished user missing from banned set")
	}
}

func TestTransferAndDeleteConditions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()
	g, err := store.Create(ctx, newGroup("transfer test", owner, nil))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.AdmitMember(ctx, g.ID, member); err != nil {
		t.Fatalf("AdmitMember: %v", err)
	}

	if err := store.TransferOwner(ctx, g.ID, owner, primitive.NewObjectID()); !errors.Is(err, lifecycle.ErrConditionFailed) {
		t.Fatalf("transfer to non-member: error = %v, want %v", err, lifecycle.ErrConditionFailed)
	}
	if err := store.DeleteSoleOwned(ctx, g.ID, owner); !errors.Is(err, lifecycle.ErrConditionFailed) {
		t.Fatalf("delete with two members: error = %v, want %v", err, lifecycle.ErrConditionFailed)
	}

	if err := store.TransferOwner(ctx, g.ID, owner, member); err != nil {
		t.Fatalf("TransferOwner: %v", err)
	}
	if err := store.RemoveMember(ctx, g.ID, owner); err != nil {
		t.Fatalf("RemoveMember(old owner): %v", err)
	}
	if err := store.DeleteSoleOwned(ctx, g.ID, member); err != nil {
		t.Fatalf("DeleteSoleOwned: %v", err)
	}
	if _, err := store.GetByID(ctx, g.ID); err == nil {
		t.Fatal("group still readable after delete")
	}
}

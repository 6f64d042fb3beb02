package joinrequests

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chathub/internal/app/lifecycle"
	"github.com/dalemusser/chathub/internal/app/system/indexes"
	"github.com/dalemusser/chathub/internal/domain/models"
	"github.com/dalemusser/chathub/internal/testutil"
)

func pendingRequest(userID, groupID primitive.ObjectID) models.JoinRequest {
	return models.JoinRequest{
		UserID:  userID,
		GroupID: groupID,
		Status:  models.RequestPending,
	}
}

func TestCreateEnforcesSinglePending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := New(db)

	user := primitive.NewObjectID()
	group := primitive.NewObjectID()

	first, err := store.Create(ctx, pendingRequest(user, group))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("duplicate pending rejected", func(t *testing.T) {
		_, err := store.Create(ctx, pendingRequest(user, group))
		if !errors.Is(err, lifecycle.ErrDuplicatePending) {
			t.Fatalf("error = %v, want %v", err, lifecycle.ErrDuplicatePending)
		}
	})

	t.Run("same user other group allowed", func(t *testing.T) {
		if _, err := store.Create(ctx, pendingRequest(user, primitive.NewObjectID())); err != nil {
			t.Fatalf("Create: %v", err)
		}
	})

	t.Run("pending again after processing", func(t *testing.T) {
		by := primitive.NewObjectID()
		if err := store.MarkProcessed(ctx, first.ID, models.RequestDeclined, by, time.Now().UTC()); err != nil {
			t.Fatalf("MarkProcessed: %v", err)
		}
		// The partial index only covers pending documents, so a processed
		// request does not block a fresh one.
		if _, err := store.Create(ctx, pendingRequest(user, group)); err != nil {
			t.Fatalf("Create after decline: %v", err)
		}
	})
}

func TestMarkProcessedIsTerminal(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	req, err := store.Create(ctx, pendingRequest(primitive.NewObjectID(), primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	by := primitive.NewObjectID()
	at := time.Now().UTC().Truncate(time.Millisecond)
	if err := store.MarkProcessed(ctx, req.ID, models.RequestApproved, by, at); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}

	got, err := store.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.RequestApproved {
		t.Errorf("Status = %q, want %q", got.Status, models.RequestApproved)
	}
	if got.ProcessedByID == nil || *got.ProcessedByID != by {
		t.Errorf("ProcessedByID = %v, want %v", got.ProcessedByID, by)
	}
	if got.ProcessedAt == nil || !got.ProcessedAt.Equal(at) {
		t.Errorf("ProcessedAt = %v, want %v", got.ProcessedAt, at)
	}

	// A second decision on the same request matches nothing.
	err = store.MarkProcessed(ctx, req.ID, models.RequestDeclined, by, time.Now().UTC())
	if !errors.Is(err, lifecycle.ErrConditionFailed) {
		t.Fatalf("second MarkProcessed error = %v, want %v", err, lifecycle.ErrConditionFailed)
	}
}

func TestListPendingOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	group := primitive.NewObjectID()
	base := time.Now().UTC().Truncate(time.Millisecond)

	newer := pendingRequest(primitive.NewObjectID(), group)
	newer.RequestedAt = base
	older := pendingRequest(primitive.NewObjectID(), group)
	older.RequestedAt = base.Add(-time.Hour)

	if _, err := store.Create(ctx, newer); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create(ctx, older); err != nil {
		t.Fatalf("Create: %v", err)
	}

	reqs, err := store.ListPending(ctx, group)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("len = %d, want 2", len(reqs))
	}
	if !reqs[0].RequestedAt.Before(reqs[1].RequestedAt) {
		t.Errorf("order = [%v %v], want oldest first", reqs[0].RequestedAt, reqs[1].RequestedAt)
	}
}

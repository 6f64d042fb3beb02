package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chathub/internal/domain/models"
)

func (f *engineFixture) mustSubmit(t *testing.T, userID, groupID primitive.ObjectID) models.JoinRequest {
	t.Helper()
	req, err := f.engine.Requests().Submit(context.Background(), userID, groupID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return req
}

func TestSubmitDuplicatePending(t *testing.T) {
	f := newEngineFixture(t)
	owner := primitive.NewObjectID()
	user := primitive.NewObjectID()
	g := f.mustCreate(t, "book club", models.GroupTypePrivate, owner, nil)
	f.mustSubmit(t, user, g.ID)

	_, err := f.engine.Requests().Submit(context.Background(), user, g.ID)
	if !errors.Is(err, ErrPendingRequestExists) {
		t.Fatalf("second Submit error = %v, want %v", err, ErrPendingRequestExists)
	}
}

func TestListPending(t *testing.T) {
	f := newEngineFixture(t)
	owner := primitive.NewObjectID()
	g := f.mustCreate(t, "book club", models.GroupTypePrivate, owner, nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	f.engine.now = func() time.Time { return base }
	f.mustSubmit(t, second, g.ID)
	f.engine.now = func() time.Time { return base.Add(-time.Minute) }
	f.mustSubmit(t, first, g.ID)

	t.Run("not owner", func(t *testing.T) {
		_, err := f.engine.Requests().ListPending(context.Background(), g.ID, first)
		if !errors.Is(err, ErrNotOwner) {
			t.Fatalf("error = %v, want %v", err, ErrNotOwner)
		}
	})

	t.Run("oldest first", func(t *testing.T) {
		reqs, err := f.engine.Requests().ListPending(context.Background(), g.ID, owner)
		if err != nil {
			t.Fatalf("ListPending: %v", err)
		}
		if len(reqs) != 2 {
			t.Fatalf("len = %d, want 2", len(reqs))
		}
		if reqs[0].UserID != first || reqs[1].UserID != second {
			t.Errorf("order = [%v %v], want oldest request first", reqs[0].UserID, reqs[1].UserID)
		}
	})
}

func TestApprove(t *testing.T) {
	f := newEngineFixture(t)
	owner := primitive.NewObjectID()
	user := primitive.NewObjectID()
	g := f.mustCreate(t, "book club", models.GroupTypePrivate, owner, nil)
	req := f.mustSubmit(t, user, g.ID)

	t.Run("not owner", func(t *testing.T) {
		_, err := f.engine.Requests().Approve(context.Background(), req.ID, user)
		if !errors.Is(err, ErrNotOwner) {
			t.Fatalf("error = %v, want %v", err, ErrNotOwner)
		}
	})

	t.Run("unknown request", func(t *testing.T) {
		_, err := f.engine.Requests().Approve(context.Background(), primitive.NewObjectID(), owner)
		if !errors.Is(err, ErrRequestNotFound) {
			t.Fatalf("error = %v, want %v", err, ErrRequestNotFound)
		}
	})

	t.Run("owner approves", func(t *testing.T) {
		got, err := f.engine.Requests().Approve(context.Background(), req.ID, owner)
		if err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if got.Status != models.RequestApproved {
			t.Errorf("Status = %q, want %q", got.Status, models.RequestApproved)
		}
		if got.ProcessedByID == nil || *got.ProcessedByID != owner {
			t.Errorf("ProcessedByID = %v, want owner", got.ProcessedByID)
		}

		grp, _ := f.groups.GetByID(context.Background(), g.ID)
		if !containsID(grp.MemberIDs, user) {
			t.Error("approved user not in member set")
		}

		entries := f.history.forPair(user, g.ID)
		if len(entries) != 1 || entries[0].Action != models.ActionJoined {
			t.Fatalf("history = %+v, want a single joined entry", entries)
		}

		events := f.events.all()
		if len(events) != 1 || events[0].Action != models.ActionJoined {
			t.Fatalf("events = %+v, want one joined event", events)
		}
	})

	t.Run("already processed", func(t *testing.T) {
		_, err := f.engine.Requests().Approve(context.Background(), req.ID, owner)
		if !errors.Is(err, ErrRequestProcessed) {
			t.Fatalf("error = %v, want %v", err, ErrRequestProcessed)
		}
	})
}

func TestApproveGroupFullLeavesRequestPending(t *testing.T) {
	f := newEngineFixture(t)
	owner := primitive.NewObjectID()
	user := primitive.NewObjectID()
	g := f.mustCreate(t, "book club", models.GroupTypePrivate, owner, int32p(2))
	req := f.mustSubmit(t, user, g.ID)

	// Fill the last slot through a second approved request before deciding
	// the first one.
	other := f.mustSubmit(t, primitive.NewObjectID(), g.ID)
	if _, err := f.engine.Requests().Approve(context.Background(), other.ID, owner); err != nil {
		t.Fatalf("Approve(other): %v", err)
	}

	_, err := f.engine.Requests().Approve(context.Background(), req.ID, owner)
	if !errors.Is(err, ErrGroupFull) {
		t.Fatalf("error = %v, want %v", err, ErrGroupFull)
	}

	got, getErr := f.requests.GetByID(context.Background(), req.ID)
	if getErr != nil {
		t.Fatalf("GetByID: %v", getErr)
	}
	if got.Status != models.RequestPending {
		t.Fatalf("Status = %q, want request left pending after failed admit", got.Status)
	}
}

func TestApproveDoesNotClearBan(t *testing.T) {
	f := newEngineFixture(t)
	owner := primitive.NewObjectID()
	user := primitive.NewObjectID()
	g := f.mustCreate(t, "book club", models.GroupTypeOpen, owner, nil)
	f.mustJoin(t, g.ID, user)
	if err := f.engine.Banish(context.Background(), g.ID, owner, user); err != nil {
		t.Fatalf("Banish: %v", err)
	}

	status, err := f.engine.Join(context.Background(), g.ID, user)
	if err != nil || status != RequestSubmitted {
		t.Fatalf("Join = (%q, %v), want request submitted", status, err)
	}
	pending, _ := f.requests.ListPending(context.Background(), g.ID)
	if _, err := f.engine.Requests().Approve(context.Background(), pending[0].ID, owner); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	grp, _ := f.groups.GetByID(context.Background(), g.ID)
	if !containsID(grp.MemberIDs, user) {
		t.Error("approved user not readmitted")
	}
	// Readmission through approval does not scrub the banned list; a later
	// departure routes the user back through owner approval.
	if !containsID(grp.BannedUserIDs, user) {
		t.Error("banned list unexpectedly cleared by approval")
	}
}

func TestDecline(t *testing.T) {
	f := newEngineFixture(t)
	owner := primitive.NewObjectID()
	user := primitive.NewObjectID()
	g := f.mustCreate(t, "book club", models.GroupTypePrivate, owner, nil)
	req := f.mustSubmit(t, user, g.ID)

	got, err := f.engine.Requests().Decline(context.Background(), req.ID, owner)
	if err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if got.Status != models.RequestDeclined {
		t.Errorf("Status = %q, want %q", got.Status, models.RequestDeclined)
	}

	grp, _ := f.groups.GetByID(context.Background(), g.ID)
	if containsID(grp.MemberIDs, user) {
		t.Error("declined user ended up in member set")
	}
	if len(f.history.forPair(user, g.ID)) != 0 {
		t.Error("decline must not write membership history")
	}

	t.Run("already processed", func(t *testing.T) {
		_, err := f.engine.Requests().Decline(context.Background(), req.ID, owner)
		if !errors.Is(err, ErrRequestProcessed) {
			t.Fatalf("error = %v, want %v", err, ErrRequestProcessed)
		}
	})

	t.Run("declined user may request again", func(t *testing.T) {
		if _, err := f.engine.Requests().Submit(context.Background(), user, g.ID); err != nil {
			t.Fatalf("Submit after decline: %v", err)
		}
	})
}

package lifecycle

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/chathub/internal/domain/models"
)

// In-memory stores with the same conditional-update semantics as the Mongo
// implementations: every mutation checks its guard and applies the write
// under one lock, so concurrent engine calls are linearized the same way
// the database linearizes conditional updates.

type fakeGroups struct {
	mu     sync.Mutex
	groups map[primitive.ObjectID]*models.Group
}

func newFakeGroups() *fakeGroups {
	return &fakeGroups{groups: make(map[primitive.ObjectID]*models.Group)}
}

func (f *fakeGroups) Create(ctx context.Context, g models.Group) (models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.groups {
		if existing.Name == g.Name {
			return models.Group{}, ErrNameTaken
		}
	}
	g.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	stored := g
	f.groups[g.ID] = &stored
	return g, nil
}

func (f *fakeGroups) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[id]
	if !ok {
		return models.Group{}, mongo.ErrNoDocuments
	}
	return cloneGroup(g), nil
}

func (f *fakeGroups) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Group
	for _, g := range f.groups {
		if containsID(g.MemberIDs, userID) {
			out = append(out, cloneGroup(g))
		}
	}
	return out, nil
}

func (f *fakeGroups) AdmitMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[groupID]
	if !ok || containsID(g.MemberIDs, userID) {
		return ErrConditionFailed
	}
	if g.MaxMembers != nil && int32(len(g.MemberIDs)) >= *g.MaxMembers {
		return ErrConditionFailed
	}
	g.MemberIDs = append(g.MemberIDs, userID)
	g.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeGroups) RemoveMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[groupID]
	if !ok || !containsID(g.MemberIDs, userID) || g.OwnerID == userID {
		return ErrConditionFailed
	}
	g.MemberIDs = removeID(g.MemberIDs, userID)
	g.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeGroups) BanishMember(ctx context.Context, groupID, ownerID, targetID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[groupID]
	if !ok || g.OwnerID != ownerID || !containsID(g.MemberIDs, targetID) {
		return ErrConditionFailed
	}
	g.MemberIDs = removeID(g.MemberIDs, targetID)
	if !containsID(g.BannedUserIDs, targetID) {
		g.BannedUserIDs = append(g.BannedUserIDs, targetID)
	}
	g.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeGroups) TransferOwner(ctx context.Context, groupID, currentOwnerID, newOwnerID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[groupID]
	if !ok || g.OwnerID != currentOwnerID || !containsID(g.MemberIDs, newOwnerID) {
		return ErrConditionFailed
	}
	g.OwnerID = newOwnerID
	g.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeGroups) DeleteSoleOwned(ctx context.Context, groupID, ownerID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[groupID]
	if !ok || g.OwnerID != ownerID || len(g.MemberIDs) != 1 {
		return ErrConditionFailed
	}
	delete(f.groups, groupID)
	return nil
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []models.MemberHistoryEntry
}

func (f *fakeHistory) Append(ctx context.Context, entry models.MemberHistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistory) LastDeparture(ctx context.Context, userID, groupID primitive.ObjectID) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last time.Time
	for _, e := range f.entries {
		if e.UserID != userID || e.GroupID != groupID {
			continue
		}
		if e.Action != models.ActionLeft && e.Action != models.ActionBanished {
			continue
		}
		if e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}
	return last, nil
}

func (f *fakeHistory) forPair(userID, groupID primitive.ObjectID) []models.MemberHistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MemberHistoryEntry
	for _, e := range f.entries {
		if e.UserID == userID && e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out
}

type fakeRequests struct {
	mu   sync.Mutex
	reqs map[primitive.ObjectID]*models.JoinRequest
}

func newFakeRequests() *fakeRequests {
	return &fakeRequests{reqs: make(map[primitive.ObjectID]*models.JoinRequest)}
}

func (f *fakeRequests) Create(ctx context.Context, req models.JoinRequest) (models.JoinRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reqs {
		if existing.UserID == req.UserID && existing.GroupID == req.GroupID && existing.Status == models.RequestPending {
			return models.JoinRequest{}, ErrDuplicatePending
		}
	}
	req.ID = primitive.NewObjectID()
	stored := req
	f.reqs[req.ID] = &stored
	return req, nil
}

func (f *fakeRequests) GetByID(ctx context.Context, id primitive.ObjectID) (models.JoinRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.reqs[id]
	if !ok {
		return models.JoinRequest{}, mongo.ErrNoDocuments
	}
	return *req, nil
}

func (f *fakeRequests) ListPending(ctx context.Context, groupID primitive.ObjectID) ([]models.JoinRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.JoinRequest
	for _, req := range f.reqs {
		if req.GroupID == groupID && req.Status == models.RequestPending {
			out = append(out, *req)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].RequestedAt.Before(out[j-1].RequestedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (f *fakeRequests) MarkProcessed(ctx context.Context, id primitive.ObjectID, status string, by primitive.ObjectID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.reqs[id]
	if !ok || req.Status != models.RequestPending {
		return ErrConditionFailed
	}
	req.Status = status
	req.ProcessedAt = &at
	req.ProcessedByID = &by
	return nil
}

type fakePurger struct {
	mu     sync.Mutex
	purged []primitive.ObjectID
	err    error
}

func (f *fakePurger) PurgeGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.purged = append(f.purged, groupID)
	return 1, nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingEvents) Publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingEvents) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func cloneGroup(g *models.Group) models.Group {
	c := *g
	c.MemberIDs = append([]primitive.ObjectID(nil), g.MemberIDs...)
	c.BannedUserIDs = append([]primitive.ObjectID(nil), g.BannedUserIDs...)
	return c
}

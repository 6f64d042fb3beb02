package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/chathub/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user and returns it with its generated ID.
func (f *Fixtures) CreateUser(ctx context.Context, username, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     username,
		Email:        email,
		PasswordHash: "not-a-real-hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("create test user: %v", err)
	}
	return u
}

// CreateGroup inserts a group owned by ownerID, with the owner as sole
// member, and returns it with its generated ID.
func (f *Fixtures) CreateGroup(ctx context.Context, name, groupType string, ownerID primitive.ObjectID, maxMembers *int32) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:            primitive.NewObjectID(),
		Name:          name,
		NameCI:        text.Fold(name),
		Type:          groupType,
		OwnerID:       ownerID,
		MemberIDs:     []primitive.ObjectID{ownerID},
		BannedUserIDs: []primitive.ObjectID{},
		MaxMembers:    maxMembers,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("create test group: %v", err)
	}
	return g
}

// AddMember pushes userID into the group's member set directly, bypassing
// the admission path.
func (f *Fixtures) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) {
	f.t.Helper()

	_, err := f.db.Collection("groups").UpdateByID(ctx, groupID,
		map[string]any{"$addToSet": map[string]any{"member_ids": userID}})
	if err != nil {
		f.t.Fatalf("add test member: %v", err)
	}
}

// CreateJoinRequest inserts a pending join request.
func (f *Fixtures) CreateJoinRequest(ctx context.Context, userID, groupID primitive.ObjectID) models.JoinRequest {
	f.t.Helper()

	req := models.JoinRequest{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		GroupID:     groupID,
		Status:      models.RequestPending,
		RequestedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("join_requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("create test join request: %v", err)
	}
	return req
}

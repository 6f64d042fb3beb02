// Package groups is the HTTP surface of the membership lifecycle:
// create/join/leave/banish/transfer/delete, the join-request queue, the
// membership audit log, and group chat history.
package groups

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/chathub/internal/app/lifecycle"
	groupstore "github.com/dalemusser/chathub/internal/app/store/groups"
	"github.com/dalemusser/chathub/internal/app/store/memberhistory"
	"github.com/dalemusser/chathub/internal/app/store/messages"
	userstore "github.com/dalemusser/chathub/internal/app/store/users"
	"github.com/dalemusser/chathub/internal/app/system/auth"
	"github.com/dalemusser/chathub/internal/app/system/broadcast"
	"github.com/dalemusser/chathub/internal/app/system/respond"
)

// Handler holds the dependencies shared by all group endpoints.
type Handler struct {
	Engine   *lifecycle.Engine
	Groups   *groupstore.Store
	History  *memberhistory.Store
	Messages *messages.Store
	Users    *userstore.Store
	Hub      *broadcast.Hub

	// DefaultMaxMembers is applied when a create request omits the cap.
	// Zero disables the default; an explicit 0 in the request always means
	// unlimited.
	DefaultMaxMembers int32

	// MaxMessageLen caps chat message bodies, from max_message_length.
	MaxMessageLen int

	Log *zap.Logger
}

// NewHandler constructs a groups Handler.
func NewHandler(engine *lifecycle.Engine, gs *groupstore.Store, hs *memberhistory.Store, ms *messages.Store, us *userstore.Store, hub *broadcast.Hub, defaultMax int32, maxMessageLen int, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:            engine,
		Groups:            gs,
		History:           hs,
		Messages:          ms,
		Users:             us,
		Hub:               hub,
		DefaultMaxMembers: defaultMax,
		MaxMessageLen:     maxMessageLen,
		Log:               logger,
	}
}

// caller returns the signed-in user. Routes are mounted behind
// auth.RequireSignedIn, so absence is a programming error, not a 401.
func caller(r *http.Request) *auth.SessionUser {
	u, _ := auth.CurrentUser(r)
	return u
}

// pathID parses an ObjectID URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "malformed id")
		return primitive.NilObjectID, false
	}
	return id, true
}

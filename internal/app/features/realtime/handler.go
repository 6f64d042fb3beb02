// Package realtime upgrades signed-in callers to a websocket connection
// subscribed to the rooms of every group they belong to.
package realtime

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	groupstore "github.com/dalemusser/chathub/internal/app/store/groups"
	"github.com/dalemusser/chathub/internal/app/system/auth"
	"github.com/dalemusser/chathub/internal/app/system/broadcast"
	"github.com/dalemusser/chathub/internal/app/system/timeouts"
)

// Handler holds the websocket endpoint's dependencies.
type Handler struct {
	Hub    *broadcast.Hub
	Groups *groupstore.Store
	Log    *zap.Logger
}

// NewHandler constructs a realtime Handler.
func NewHandler(hub *broadcast.Hub, gs *groupstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Hub: hub, Groups: gs, Log: logger}
}

// ServeWS handles GET /ws. The caller's current memberships decide the
// initial room set; later joins and departures adjust it through the hub.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	memberships, err := h.Groups.ListForUser(ctx, u.ID)
	if err != nil {
		h.Log.Error("list memberships for websocket", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	groupIDs := make([]primitive.ObjectID, 0, len(memberships))
	for _, g := range memberships {
		groupIDs = append(groupIDs, g.ID)
	}

	if err := h.Hub.ServeWS(w, r, u.ID, groupIDs); err != nil {
		// Upgrade failures write their own response.
		h.Log.Debug("websocket upgrade failed", zap.Error(err))
	}
}

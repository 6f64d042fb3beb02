package groups

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chathub/internal/app/lifecycle"
	"github.com/dalemusser/chathub/internal/app/system/respond"
	"github.com/dalemusser/chathub/internal/app/system/timeouts"
)

type joinResponse struct {
	Status lifecycle.JoinStatus `json:"status"`
}

// ServeJoin handles POST /api/groups/{groupID}/join. The response status
// tells the caller whether they were admitted immediately or their request
// now awaits the owner's decision.
func (h *Handler) ServeJoin(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	status, err := h.Engine.Join(ctx, groupID, caller(r).ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, joinResponse{Status: status})
}

// ServeLeave handles POST /api/groups/{groupID}/leave.
func (h *Handler) ServeLeave(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Engine.Leave(ctx, groupID, caller(r).ID); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.Message(w, http.StatusOK, "left group")
}

type banishRequest struct {
	UserID string `json:"user_id"`
}

// ServeBanish handles POST /api/groups/{groupID}/banish.
func (h *Handler) ServeBanish(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}

	var req banishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	targetID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "malformed user_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Engine.Banish(ctx, groupID, caller(r).ID, targetID); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.Message(w, http.StatusOK, "member banished")
}

type transferRequest struct {
	NewOwnerID string `json:"new_owner_id"`
}

// ServeTransfer handles POST /api/groups/{groupID}/transfer.
func (h *Handler) ServeTransfer(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	newOwnerID, err := primitive.ObjectIDFromHex(req.NewOwnerID)
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "malformed new_owner_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Engine.TransferOwnership(ctx, groupID, caller(r).ID, newOwnerID); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.Message(w, http.StatusOK, "ownership transferred")
}

// ServeDelete handles DELETE /api/groups/{groupID}. Deleting a group purges
// its message history, so it is only allowed once the owner is the sole
// remaining member.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Engine.Delete(ctx, groupID, caller(r).ID); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.Message(w, http.StatusOK, "group deleted")
}

package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/chathub/internal/app/system/respond"
	"github.com/dalemusser/chathub/internal/app/system/timeouts"
)

// ServeListRequests handles GET /api/groups/{groupID}/requests. Owner only;
// pending requests come back oldest first.
func (h *Handler) ServeListRequests(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reqs, err := h.Engine.Requests().ListPending(ctx, groupID, caller(r).ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, reqs)
}

// ServeApprove handles POST /api/groups/requests/{requestID}/approve. The
// admission re-checks capacity atomically; if the group filled up since the
// request was made, the request stays pending and the caller sees why.
func (h *Handler) ServeApprove(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(w, r, "requestID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	req, err := h.Engine.Requests().Approve(ctx, requestID, caller(r).ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, req)
}

// ServeDecline handles POST /api/groups/requests/{requestID}/decline.
func (h *Handler) ServeDecline(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(w, r, "requestID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	req, err := h.Engine.Requests().Decline(ctx, requestID, caller(r).ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, req)
}

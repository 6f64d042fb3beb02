package groups

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/chathub/internal/app/policy/admission"
	"github.com/dalemusser/chathub/internal/app/system/respond"
	"github.com/dalemusser/chathub/internal/app/system/timeouts"
)

const defaultHistoryLimit = 100

// ServeHistory handles GET /api/groups/{groupID}/history: the append-only
// membership audit log, newest first. Members only.
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Fail(w, http.StatusNotFound, "group not found")
			return
		}
		respond.Error(w, h.Log, err)
		return
	}
	if !admission.IsMember(g, caller(r).ID) {
		respond.Fail(w, http.StatusForbidden, "you must be a member to view this group's history")
		return
	}

	limit := int64(defaultHistoryLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	entries, err := h.History.ListForGroup(ctx, groupID, limit)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, entries)
}

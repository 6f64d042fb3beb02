package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/chathub/internal/app/system/respond"
	"github.com/dalemusser/chathub/internal/app/system/timeouts"
)

// ServeList handles GET /api/groups: the browse directory of every group.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Groups.List(ctx)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeMine handles GET /api/groups/mine: the caller's memberships.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Groups.ListForUser(ctx, caller(r).ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

package groups

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/chathub/internal/app/policy/admission"
	"github.com/dalemusser/chathub/internal/app/system/respond"
	"github.com/dalemusser/chathub/internal/app/system/timeouts"
	"github.com/dalemusser/chathub/internal/domain/models"
)

// ServeView handles GET /api/groups/{groupID}. Open groups are visible to
// any signed-in user; private groups only to their members.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
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

	if g.Type == models.GroupTypePrivate && !admission.IsMember(g, caller(r).ID) {
		respond.Fail(w, http.StatusForbidden, "you must be a member to access this private group")
		return
	}
	respond.JSON(w, http.StatusOK, g)
}

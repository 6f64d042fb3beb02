package groups

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/chathub/internal/app/policy/admission"
	"github.com/dalemusser/chathub/internal/app/system/respond"
	"github.com/dalemusser/chathub/internal/app/system/timeouts"
)

// ServeMembers handles GET /api/groups/{groupID}/members. The roster is
// visible to members only, regardless of group type.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
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

	if !admission.IsMember(g, caller(r).ID) {
		respond.Fail(w, http.StatusForbidden, "you must be a member to view the member list")
		return
	}

	members, err := h.Users.GetManyByID(ctx, g.MemberIDs)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, members)
}

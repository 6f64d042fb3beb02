package groups

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/chathub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/chathub/internal/app/system/respond"
	"github.com/dalemusser/chathub/internal/app/system/timeouts"
)

type createRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`

	// MaxMembers distinguishes three cases: absent (apply the configured
	// default), explicit 0 (unlimited), and a positive cap.
	MaxMembers *int32 `json:"max_members"`
}

// ServeCreate handles POST /api/groups.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	max := req.MaxMembers
	if max == nil && h.DefaultMaxMembers > 0 {
		d := h.DefaultMaxMembers
		max = &d
	}
	if max != nil && *max == 0 {
		max = nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Engine.Create(ctx, htmlsanitize.Strip(req.Name), req.Type, caller(r).ID, max)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, g)
}

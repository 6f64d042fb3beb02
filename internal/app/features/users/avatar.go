package users

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/chathub/internal/app/system/auth"
	"github.com/dalemusser/chathub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/chathub/internal/app/system/respond"
	"github.com/dalemusser/chathub/internal/app/system/timeouts"
)

type avatarRequest struct {
	ProfileImage string `json:"profile_image"`
}

type avatarResponse struct {
	ProfileImage string `json:"profile_image"`
}

// ServeSetAvatar handles POST /api/users/me/avatar, replacing the caller's
// profile image.
func (h *Handler) ServeSetAvatar(w http.ResponseWriter, r *http.Request) {
	var req avatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	image := strings.TrimSpace(htmlsanitize.Strip(req.ProfileImage))
	if image == "" {
		respond.Fail(w, http.StatusBadRequest, "profile_image is required")
		return
	}

	caller, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.SetAvatar(ctx, caller.ID, image); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, avatarResponse{ProfileImage: image})
}

// ServeAvatar handles GET /api/users/{userID}/avatar.
func (h *Handler) ServeAvatar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, ok := h.counterpart(ctx, w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, avatarResponse{ProfileImage: u.ProfileImage})
}

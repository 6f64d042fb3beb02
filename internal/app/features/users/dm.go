package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/chathub/internal/app/system/auth"
	"github.com/dalemusser/chathub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/chathub/internal/app/system/respond"
	"github.com/dalemusser/chathub/internal/app/system/timeouts"
	"github.com/dalemusser/chathub/internal/domain/models"
)

const (
	defaultMessagePage = 50
	maxMessagePage     = 200
)

// pathID parses an ObjectID URL parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "malformed id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// counterpart loads the other party of a conversation, writing a 404 when
// no such user exists.
func (h *Handler) counterpart(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return models.User{}, false
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		respond.Fail(w, http.StatusNotFound, "user not found")
		return models.User{}, false
	}
	return u, true
}

type sendDirectRequest struct {
	Body string `json:"body"`
}

// ServeSendDirect handles POST /api/users/{userID}/messages. The stored
// body is encrypted; the recipient's live connections receive the plaintext
// frame over the websocket.
func (h *Handler) ServeSendDirect(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	to, ok := h.counterpart(ctx, w, r)
	if !ok {
		return
	}

	sender, _ := auth.CurrentUser(r)
	if sender.ID == to.ID {
		respond.Fail(w, http.StatusBadRequest, "cannot message yourself")
		return
	}

	var req sendDirectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	body := htmlsanitize.Sanitize(req.Body)
	if strings.TrimSpace(body) == "" || len(body) > h.MaxMessageLen {
		respond.Fail(w, http.StatusBadRequest,
			fmt.Sprintf("message body must be 1-%d characters", h.MaxMessageLen))
		return
	}

	msg, err := h.Messages.SendDirect(ctx, sender.ID, to.ID, body)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	if h.Hub != nil {
		h.Hub.PublishDirect(to.ID, msg)
	}
	respond.JSON(w, http.StatusCreated, msg)
}

// ServeDirectHistory handles GET /api/users/{userID}/messages: the caller's
// conversation with that user, both directions, oldest first, decrypted.
func (h *Handler) ServeDirectHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	other, ok := h.counterpart(ctx, w, r)
	if !ok {
		return
	}
	caller, _ := auth.CurrentUser(r)

	limit := int64(defaultMessagePage)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 && n <= maxMessagePage {
			limit = n
		}
	}
	var skip int64
	if raw := r.URL.Query().Get("skip"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n >= 0 {
			skip = n
		}
	}

	msgs, err := h.Messages.DirectHistory(ctx, caller.ID, other.ID, limit, skip)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, msgs)
}

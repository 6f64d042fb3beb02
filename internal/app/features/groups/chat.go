package groups

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dalemusser/chathub/internal/app/policy/admission"
	"github.com/dalemusser/chathub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/chathub/internal/app/system/respond"
	"github.com/dalemusser/chathub/internal/app/system/timeouts"
	"github.com/dalemusser/chathub/internal/domain/models"
)

const (
	defaultMessagePage = 50
	maxMessagePage     = 200
)

// memberGate loads the group and verifies the caller belongs to it. Chat
// reads and writes are members only regardless of group type.
func (h *Handler) memberGate(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Group, bool) {
	groupID, ok := pathID(w, r, "groupID")
	if !ok {
		return models.Group{}, false
	}

	g, err := h.Groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Fail(w, http.StatusNotFound, "group not found")
			return models.Group{}, false
		}
		respond.Error(w, h.Log, err)
		return models.Group{}, false
	}
	if !admission.IsMember(g, caller(r).ID) {
		respond.Fail(w, http.StatusForbidden, "you must be a member to access this group's chat")
		return models.Group{}, false
	}
	return g, true
}

// ServeMessages handles GET /api/groups/{groupID}/messages. Bodies come
// back decrypted; pagination is limit/skip, oldest first.
func (h *Handler) ServeMessages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, ok := h.memberGate(ctx, w, r)
	if !ok {
		return
	}

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

	msgs, err := h.Messages.GroupHistory(ctx, g.ID, limit, skip)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, msgs)
}

type sendRequest struct {
	Body string `json:"body"`
}

// ServeSendMessage handles POST /api/groups/{groupID}/messages. The stored
// body is encrypted; connected members receive the plaintext frame over the
// websocket.
func (h *Handler) ServeSendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, ok := h.memberGate(ctx, w, r)
	if !ok {
		return
	}

	var req sendRequest
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

	msg, err := h.Messages.SendGroup(ctx, caller(r).ID, g.ID, body)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	if h.Hub != nil {
		h.Hub.PublishMessage(g.ID, msg)
	}
	respond.JSON(w, http.StatusCreated, msg)
}

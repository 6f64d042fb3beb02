package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/dalemusser/chathub/internal/app/store/messages"
	"github.com/dalemusser/chathub/internal/app/store/users"
	"github.com/dalemusser/chathub/internal/app/system/auth"
	"github.com/dalemusser/chathub/internal/app/system/broadcast"
	"github.com/dalemusser/chathub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/chathub/internal/app/system/respond"
	"github.com/dalemusser/chathub/internal/app/system/timeouts"
	"github.com/dalemusser/chathub/internal/domain/models"
)

// Handler serves account registration, login, user listings, avatars, and
// direct messaging.
type Handler struct {
	Users    *users.Store
	Messages *messages.Store
	Hub      *broadcast.Hub

	// MaxMessageLen caps direct message bodies, from max_message_length.
	MaxMessageLen int

	Log *zap.Logger
}

// NewHandler constructs a users Handler.
func NewHandler(store *users.Store, ms *messages.Store, hub *broadcast.Hub, maxMessageLen int, logger *zap.Logger) *Handler {
	return &Handler{
		Users:         store,
		Messages:      ms,
		Hub:           hub,
		MaxMessageLen: maxMessageLen,
		Log:           logger,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

const minPasswordLen = 8

// ServeRegister handles POST /api/users/register.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = htmlsanitize.Strip(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Username == "" {
		respond.Fail(w, http.StatusBadRequest, "username is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respond.Fail(w, http.StatusBadRequest, "a valid email address is required")
		return
	}
	if len(req.Password) < minPasswordLen {
		respond.Fail(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			respond.Fail(w, http.StatusConflict, err.Error())
			return
		}
		respond.Error(w, h.Log, err)
		return
	}

	token, err := auth.GenerateToken(u.ID, u.Username)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))
	respond.JSON(w, http.StatusCreated, authResponse{Token: token, User: u})
}

// ServeLogin handles POST /api/users/login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		if errors.Is(err, users.ErrBadCredentials) {
			respond.Fail(w, http.StatusUnauthorized, err.Error())
			return
		}
		respond.Error(w, h.Log, err)
		return
	}

	token, err := auth.GenerateToken(u.ID, u.Username)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	if err := h.Users.SetOnline(ctx, u.ID, true); err != nil {
		h.Log.Warn("set online flag", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}

	respond.JSON(w, http.StatusOK, authResponse{Token: token, User: u})
}

// ServeMe handles GET /api/users/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, caller.ID)
	if err != nil {
		respond.Fail(w, http.StatusNotFound, "user not found")
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

// ServeList handles GET /api/users.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Users.List(ctx)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeLogout handles POST /api/users/logout. Tokens are stateless, so this
// only flips the online flag; the client discards its token.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.SetOnline(ctx, caller.ID, false); err != nil {
		h.Log.Warn("clear online flag", zap.Error(err), zap.String("user_id", caller.ID.Hex()))
	}
	respond.Message(w, http.StatusOK, "logged out")
}

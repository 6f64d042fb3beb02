// internal/app/bootstrap/routes.go
package bootstrap

import (
	"encoding/hex"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	groupsfeature "github.com/dalemusser/chathub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/chathub/internal/app/features/health"
	realtimefeature "github.com/dalemusser/chathub/internal/app/features/realtime"
	usersfeature "github.com/dalemusser/chathub/internal/app/features/users"
	"github.com/dalemusser/chathub/internal/app/lifecycle"
	groupstore "github.com/dalemusser/chathub/internal/app/store/groups"
	"github.com/dalemusser/chathub/internal/app/store/joinrequests"
	"github.com/dalemusser/chathub/internal/app/store/memberhistory"
	"github.com/dalemusser/chathub/internal/app/store/messages"
	userstore "github.com/dalemusser/chathub/internal/app/store/users"
	"github.com/dalemusser/chathub/internal/app/system/auth"
	"github.com/dalemusser/chathub/internal/app/system/broadcast"
	"github.com/dalemusser/chathub/internal/app/system/msgcrypt"
	"github.com/dalemusser/chathub/internal/app/system/txn"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. ChatHub wires the stores, the message
// cipher, the websocket hub, and the lifecycle engine, then mounts the
// feature routers: health, accounts, groups, and the realtime endpoint.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.ChatHubMongoDatabase

	key, err := hex.DecodeString(appCfg.MessageKey)
	if err != nil {
		return nil, err
	}
	cipher, err := msgcrypt.New(key)
	if err != nil {
		logger.Error("message cipher init failed", zap.Error(err))
		return nil, err
	}

	groupStore := groupstore.New(db)
	historyStore := memberhistory.New(db)
	requestStore := joinrequests.New(db)
	messageStore := messages.New(db, cipher, logger)
	userStore := userstore.New(db)

	hub := broadcast.NewHub(logger)

	engine := lifecycle.NewEngine(
		groupStore,
		historyStore,
		requestStore,
		messageStore,
		hub,
		txn.NewSessioner(db, logger),
		lifecycle.Config{
			CooldownWindow: appCfg.CooldownWindow,
		},
		logger,
	)

	var defaultMax int32
	if appCfg.DefaultMaxMembers > 0 {
		defaultMax = int32(appCfg.DefaultMaxMembers)
	}

	r := chi.NewRouter()

	// Global auth middleware: loads the bearer-token user into context.
	// This makes the current user available via auth.CurrentUser(r).
	r.Use(auth.LoadBearerUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.ChatHubMongoClient, hub, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Accounts: registration and login are public, the rest requires a
	// signed-in caller.
	usersHandler := usersfeature.NewHandler(userStore, messageStore, hub, appCfg.MaxMessageLength, logger)
	r.Mount("/api/auth", usersfeature.PublicRoutes(usersHandler))

	groupsHandler := groupsfeature.NewHandler(engine, groupStore, historyStore, messageStore, userStore, hub, defaultMax, appCfg.MaxMessageLength, logger)
	realtimeHandler := realtimefeature.NewHandler(hub, groupStore, logger)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Mount("/api/users", usersfeature.Routes(usersHandler))
		r.Mount("/api/groups", groupsfeature.Routes(groupsHandler))
		r.Mount("/ws", realtimefeature.Routes(realtimeHandler))
	})

	logger.Info("handler built",
		zap.Duration("cooldown_window", appCfg.CooldownWindow),
		zap.Int("default_max_members", appCfg.DefaultMaxMembers),
		zap.String("env", coreCfg.Env))

	return r, nil
}

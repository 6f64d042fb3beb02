// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// PublicRoutes returns the unauthenticated account endpoints.
func PublicRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.ServeRegister)
	r.Post("/login", h.ServeLogin)
	return r
}

// Routes returns the endpoints that require a signed-in caller.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/me", h.ServeMe)
	r.Post("/me/avatar", h.ServeSetAvatar)
	r.Post("/logout", h.ServeLogout)
	r.Get("/{userID}/avatar", h.ServeAvatar)
	r.Get("/{userID}/messages", h.ServeDirectHistory)
	r.Post("/{userID}/messages", h.ServeSendDirect)
	return r
}

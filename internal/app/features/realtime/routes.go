// internal/app/features/realtime/routes.go
package realtime

import "github.com/go-chi/chi/v5"

// Routes returns the websocket endpoint.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeWS) // mounted under /ws
	return r
}

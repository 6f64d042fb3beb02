// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// Routes returns the group endpoints. The whole subtree requires a
// signed-in caller; per-operation authorization (owner, member) is decided
// inside the engine.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)
	r.Get("/mine", h.ServeMine)

	// Join-request decisions address the request, not the group; the group
	// is resolved from the request document.
	r.Post("/requests/{requestID}/approve", h.ServeApprove)
	r.Post("/requests/{requestID}/decline", h.ServeDecline)

	r.Route("/{groupID}", func(r chi.Router) {
		r.Get("/", h.ServeView)
		r.Get("/members", h.ServeMembers)
		r.Delete("/", h.ServeDelete)

		r.Post("/join", h.ServeJoin)
		r.Post("/leave", h.ServeLeave)
		r.Post("/banish", h.ServeBanish)
		r.Post("/transfer", h.ServeTransfer)

		r.Get("/requests", h.ServeListRequests)
		r.Get("/history", h.ServeHistory)

		r.Get("/messages", h.ServeMessages)
		r.Post("/messages", h.ServeSendMessage)
	})

	return r
}

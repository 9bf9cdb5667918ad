package http

import "net/http"

// NewRouter mounts the simulation endpoints. Only the POST routes are rate
// limited; reads are cheap.
func NewRouter(h *SimulationHandler, limiter Limiter) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle(
		"/simulations",
		RateLimitMiddleware(limiter, http.HandlerFunc(h.Simulate)),
	)
	mux.Handle(
		"/simulations/schedule",
		RateLimitMiddleware(limiter, http.HandlerFunc(h.Schedule)),
	)
	mux.HandleFunc("/simulations/history", h.History)
	mux.HandleFunc("/banks", h.Banks)

	return mux
}

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	if h.trustProxyHeaders {
		router.Use(middleware.RealIP)
	}
	router.Use(middleware.Recoverer)
	router.Use(h.withSentry)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(h.withMetrics)
	router.Use(middleware.Compress(5, "application/json"))

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/app-users/login", h.login)
		r.Post("/api/projects/{projectID}/app-users/login", h.loginScoped)
		r.Get("/api/version", h.getServerVersion)
		r.Method("GET", "/metrics", h.metrics.Handler())
	})

	// field actor routes
	router.Route("/api/projects/{projectID}/app-users", func(r chi.Router) {
		r.With(h.sessionAuth(true), h.sessionScope).Post("/telemetry", h.submitTelemetry)

		r.Group(func(r chi.Router) {
			r.Use(h.sessionAuth(false), h.sessionScope)
			r.Post("/{actorID}/password/change", h.changePassword)
			r.Post("/{actorID}/revoke", h.revokeCurrent)
			r.Post("/{actorID}/revoke-others", h.revokeOthers)
		})

		// administrator routes
		r.Group(func(r chi.Router) {
			r.Use(h.adminAuth)
			r.Post("/", h.createCredential)
			r.Post("/{actorID}/password/reset", h.resetPassword)
			r.Post("/{actorID}/revoke-admin", h.revokeAdmin)
			r.Post("/{actorID}/active", h.changeActive)
			r.Post("/{actorID}/sessions/revoke-all", h.revokeAllSessions)
			r.Put("/{actorID}/phone", h.updatePhone)
			r.Get("/{actorID}/sessions", h.listActorSessions)
		})
	})

	router.Route("/api/system/app-users", func(r chi.Router) {
		r.Use(h.adminAuth)
		r.Get("/sessions", h.listSessions)
		r.Get("/telemetry", h.listTelemetry)
		r.Post("/lockouts/clear", h.clearLockout)
		r.Get("/settings", h.getSettings)
		r.Put("/settings", h.updateSettings)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}

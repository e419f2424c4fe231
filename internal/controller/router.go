// Package controller exposes the core services over HTTP. It owns JSON
// binding, URL parsing and the mapping of domain errors to status codes;
// authentication and role checks live in front of this service.
package controller

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires every route to the handler.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/periods", func(r chi.Router) {
			r.Get("/", h.ListPeriods)
			r.Post("/", h.CreatePeriod)
			r.Put("/{id}", h.UpdatePeriod)
			r.Delete("/{id}", h.DeletePeriod)
		})

		r.Route("/livestreams", func(r chi.Router) {
			r.Post("/materialize", h.Materialize)
			r.Post("/synchronize", h.Synchronize)
			r.Get("/{id}", h.GetLivestream)
			r.Post("/{id}/fixed", h.SetFixed)
			r.Post("/{id}/snapshots", h.AddSnapshot)
			r.Patch("/{id}/snapshots/{snapshotID}", h.UpdateSnapshot)
			r.Delete("/{id}/snapshots/{snapshotID}", h.RemoveSnapshot)
		})

		r.Route("/alt-requests", func(r chi.Router) {
			r.Post("/", h.CreateAltRequest)
			r.Put("/{id}", h.UpdateAltRequestNote)
			r.Post("/{id}/accept", h.AcceptAltRequest)
			r.Post("/{id}/reject", h.RejectAltRequest)
			r.Delete("/{id}", h.DeleteAltRequest)
		})

		r.Post("/reconcile", h.Reconcile)

		r.Route("/tiers", func(r chi.Router) {
			r.Get("/", h.ListTiers)
			r.Post("/", h.CreateTier)
			r.Put("/{id}", h.UpdateTier)
			r.Delete("/{id}", h.DeleteTier)
		})

		r.Route("/salary-configs", func(r chi.Router) {
			r.Get("/", h.ListSalaryConfigs)
			r.Post("/", h.CreateSalaryConfig)
			r.Put("/{id}", h.UpdateSalaryConfig)
			r.Delete("/{id}", h.DeleteSalaryConfig)
		})

		r.Route("/compensation", func(r chi.Router) {
			r.Get("/daily", h.CalculateDaily)
			r.Get("/monthly", h.CalculateMonthly)
		})
	})

	return r
}

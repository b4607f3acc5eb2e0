package handler

import "github.com/go-chi/chi/v5"

// Routes mounts the lead and duplicate endpoints under /api/v1/leads
func Routes(r chi.Router, leads *LeadHandler, dedup *DedupHandler) {
	r.Route("/api/v1/leads", func(r chi.Router) {
		r.Get("/", leads.List)
		r.Post("/", leads.Create)

		r.Route("/duplicates", func(r chi.Router) {
			r.Post("/check", dedup.Check)
			r.Get("/{sessionId}", dedup.Get)
			r.Post("/{sessionId}/confirm", dedup.Confirm)
		})

		r.Get("/{id}", leads.Get)
	})
}

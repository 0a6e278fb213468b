// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/ocms-xliff/internal/middleware"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Language       string
	ImportRate     float64
	ImportBurst    int
	RequestTimeout time.Duration
}

// NewRouter mounts all endpoints.
func NewRouter(x *XLIFFHandler, p *PresetsHandler, e *EventsHandler, health *HealthHandler, opts RouterOptions) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 2 * time.Minute
	}
	if opts.ImportRate <= 0 {
		opts.ImportRate = 1
	}
	if opts.ImportBurst < 1 {
		opts.ImportBurst = 5
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", health.Health)
	r.Get("/health/live", health.Liveness)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(opts.RequestTimeout))
		r.Use(middleware.Language(opts.Language))

		r.Route("/export", func(r chi.Router) {
			r.Post("/", x.ExportBulk)
			r.Post("/tree", x.ExportTree)
			r.Get("/preset/{id}", x.ExportPreset)
			r.Get("/{id}", x.ExportSingle)
		})

		r.With(middleware.RateLimit(opts.ImportRate, opts.ImportBurst)).Post("/import", x.Import)

		r.Route("/presets", func(r chi.Router) {
			r.Get("/", p.List)
			r.Post("/", p.Create)
			r.Get("/{id}", p.Get)
			r.Delete("/{id}", p.Delete)
			r.Post("/{id}/run", p.Run)
		})

		r.Get("/events", e.List)
	})

	return r
}

// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
	"github.com/SilentBYOB/blacksoundfest-api/internal/auth"
	"github.com/SilentBYOB/blacksoundfest-api/internal/middleware"
	"github.com/SilentBYOB/blacksoundfest-api/internal/storage"
)

// Router wires handlers and middleware into a chi tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
	submitLimiter *middleware.IPRateLimiter
	files         http.Handler
}

// NewRouter creates a router.
//
// submitLimiter throttles band submissions per client IP; nil disables it.
// files serves uploaded objects under /files/; nil leaves the route out.
func NewRouter(handler *Handler, cm *ChiMiddleware, submitLimiter *middleware.IPRateLimiter, files http.Handler) *Router {
	if cm == nil {
		cm = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: cm,
		auth:          auth.NewMiddleware(handler.tokens, handler.adminUsername(), writeError),
		submitLimiter: submitLimiter,
		files:         files,
	}
}

// SetupChi builds the HTTP handler with every route.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflights
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, apperr.NotFound("Not Found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, errorResponse{Detail: "Method Not Allowed"})
	})

	r.Get("/", router.handler.Root)
	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())
	if router.files != nil {
		r.Handle(storage.FilesRoute+"*", router.files)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/data", router.handler.Data)
		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", router.handler.Login)

		submit := r.With()
		if router.submitLimiter != nil && !router.chiMiddleware.config.RateLimitDisabled {
			submit = r.With(router.submitLimiter.Middleware("submit-band", tooManyRequests))
		}
		submit.Post("/submit-band", router.handler.SubmitBand)

		// Administrator only
		r.Group(func(r chi.Router) {
			r.Use(router.auth.RequireAdmin)

			r.Patch("/data/content", router.handler.UpdateContent)
			r.Put("/data/bands", router.handler.ReplaceBands)
			r.Put("/data/bracket", router.handler.ReplaceBracket)
			r.Put("/data/news", router.handler.ReplaceNews)
			r.Put("/data/sponsors", router.handler.ReplaceSponsors)
			r.Post("/upload-file", router.handler.UploadFile)
		})
	})

	return r
}

// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package api

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 3 * time.Second

// Root answers liveness checks with a fixed message.
//
// Method: GET
// Path: /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: "Servidor base operativo"})
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status       string  `json:"status"`
	Store        string  `json:"store"`
	StoreBackend string  `json:"store_backend,omitempty"`
	Objects      string  `json:"objects"`
	Uptime       float64 `json:"uptime_seconds"`
}

// Health reports whether the document store and the object store are
// usable.
//
// Method: GET
// Path: /health
//
// Response:
//   - 200: both backends healthy
//   - 503: a backend is uninitialized or failing its check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	health := HealthStatus{
		Status:  "healthy",
		Store:   "uninitialized",
		Objects: "uninitialized",
		Uptime:  time.Since(h.startTime).Seconds(),
	}

	if h.store != nil {
		health.StoreBackend = h.store.Backend()
		health.Store = "ok"
		if err := h.store.Ping(ctx); err != nil {
			health.Store = "error"
		}
	}
	if h.objects != nil {
		health.Objects = "ok"
		if err := h.objects.Ready(ctx); err != nil {
			health.Objects = "error"
		}
	}

	status := http.StatusOK
	if health.Store != "ok" || health.Objects != "ok" {
		health.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, health)
}

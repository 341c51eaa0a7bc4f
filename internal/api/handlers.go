// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package api

import (
	"net/http"
	"time"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
	"github.com/SilentBYOB/blacksoundfest-api/internal/auth"
	"github.com/SilentBYOB/blacksoundfest-api/internal/config"
	"github.com/SilentBYOB/blacksoundfest-api/internal/festival"
	"github.com/SilentBYOB/blacksoundfest-api/internal/storage"
)

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct, constructor, availability guards
//   - handlers_helpers.go: request decoding and response writing
//   - handlers_health.go: root, health
//   - handlers_core.go: data read and login
//   - handlers_submission.go: public band submission
//   - handlers_content.go: admin content updates and file upload
type Handler struct {
	config    *config.Config
	store     festival.Store
	objects   storage.ObjectStore
	submitter *festival.Submitter
	tokens    *auth.TokenService
	admin     *auth.AdminCredentials
	startTime time.Time
}

// NewHandler creates the API handler.
//
// store and objects may be nil when the backing service failed to start;
// the endpoints that need them then answer 503 instead of the whole server
// refusing to boot.
//
// Example:
//
//	handler := api.NewHandler(cfg, store, objects, tokens, admin)
//	router := api.NewRouter(handler, api.NewChiMiddleware(mwCfg), submitLimiter, fileStore.Handler())
//	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router.SetupChi()}
func NewHandler(cfg *config.Config, store festival.Store, objects storage.ObjectStore, tokens *auth.TokenService, admin *auth.AdminCredentials) *Handler {
	h := &Handler{
		config:    cfg,
		store:     store,
		objects:   objects,
		tokens:    tokens,
		admin:     admin,
		startTime: time.Now(),
	}
	if store != nil && objects != nil {
		h.submitter = festival.NewSubmitter(store, objects, festival.DefaultLimits(), cfg.Festival.ExemptEmail)
	}
	return h
}

// requireStore writes 503 and returns false when the document store is not
// initialized.
func (h *Handler) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if h.store == nil {
		writeError(w, r, apperr.Unavailable("Database not available"))
		return false
	}
	return true
}

// requireObjects writes 503 and returns false when the object store is not
// initialized.
func (h *Handler) requireObjects(w http.ResponseWriter, r *http.Request) bool {
	if h.objects == nil {
		writeError(w, r, apperr.Unavailable("Storage bucket not available"))
		return false
	}
	return true
}

// maxBodyBytes caps request bodies, JSON and multipart alike.
func (h *Handler) maxBodyBytes() int64 {
	if h.config == nil || h.config.Server.MaxUploadMB <= 0 {
		return 16 << 20
	}
	return h.config.Server.MaxUploadBytes()
}

// adminUsername is the only subject the admin routes accept.
func (h *Handler) adminUsername() string {
	if h.admin == nil {
		return ""
	}
	return h.admin.Username()
}

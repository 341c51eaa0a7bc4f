// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package api

import (
	"mime"
	"net/http"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
	"github.com/SilentBYOB/blacksoundfest-api/internal/auth"
	"github.com/SilentBYOB/blacksoundfest-api/internal/festival"
	"github.com/SilentBYOB/blacksoundfest-api/internal/logging"
	"github.com/SilentBYOB/blacksoundfest-api/internal/validation"
)

// Data returns the whole festival document. A document stored without
// sponsors is returned with an empty sponsors list; storage is not touched.
//
// Method: GET
// Path: /api/v1/data
//
// Response:
//   - 200: the document (ETag set, 304 on If-None-Match)
//   - 404: no document stored
//   - 503: store not initialized
func (h *Handler) Data(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}

	doc, err := h.store.Get(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respondJSONWithETag(w, r, festival.WithSponsors(doc))
}

// Login exchanges the admin credentials for a bearer token.
//
// Method: POST
// Path: /api/v1/login
//
// The body is JSON {"username", "password"}; form-encoded bodies with the
// same fields are accepted too.
//
// Response:
//   - 200: {"access_token", "token_type": "bearer"}
//   - 400: missing fields or wrong credentials
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseLoginRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !h.admin.Verify(req.Username, req.Password) {
		logging.Ctx(r.Context()).Warn().Str("username", sanitizeLogValue(req.Username)).Msg("Failed admin login")
		writeError(w, r, apperr.Validation("Incorrect username or password"))
		return
	}

	token, err := h.tokens.Issue(h.admin.Username())
	if err != nil {
		writeError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("username", sanitizeLogValue(req.Username)).Msg("Admin logged in")
	respondJSON(w, http.StatusOK, LoginResponse{AccessToken: token, TokenType: auth.TokenType})
}

// parseLoginRequest reads the credentials from a JSON or form body.
func (h *Handler) parseLoginRequest(w http.ResponseWriter, r *http.Request) (*LoginRequest, error) {
	var req LoginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes())
		if err := r.ParseForm(); err != nil {
			return nil, classifyBodyError(err)
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	case "multipart/form-data":
		if err := h.parseMultipart(w, r); err != nil {
			return nil, err
		}
		defer r.MultipartForm.RemoveAll() //nolint:errcheck
		req.Username = formValue(r, "username")
		req.Password = formValue(r, "password")
	default:
		if err := h.decodeJSON(w, r, &req); err != nil {
			return nil, err
		}
	}

	if err := validation.ValidateStruct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

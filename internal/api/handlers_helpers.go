// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
	"github.com/SilentBYOB/blacksoundfest-api/internal/logging"
)

// multipartMemory is how much of a multipart body is kept in memory before
// parts spill to temporary files.
const multipartMemory = 8 << 20

// sanitizeLogValue replaces control characters so client-supplied strings
// cannot forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON writes v as JSON with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondJSONWithETag writes v with an ETag and answers 304 when the client
// already holds the same representation.
func respondJSONWithETag(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, r, fmt.Errorf("marshal response: %w", err))
		return
	}

	etag := `"` + generateETag(data) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates an ETag from data using FNV-1a.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// errorResponse is the body of every error.
type errorResponse struct {
	Detail string `json:"detail"`
}

// statusResponse is the body of successful mutations.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// writeError maps err to a status and writes {"detail": ...}. Server-side
// failures are logged with their cause; client errors only at debug level.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()
	detail := apperr.DetailOf(err)

	logger := logging.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("kind", kind.String()).Str("path", sanitizeLogValue(r.URL.Path)).Msg("Request failed")
	} else {
		logger.Debug().Str("kind", kind.String()).Str("detail", sanitizeLogValue(detail)).Str("path", sanitizeLogValue(r.URL.Path)).Msg("Request rejected")
	}

	respondJSON(w, status, errorResponse{Detail: detail})
}

// classifyBodyError turns body read failures into client errors.
func classifyBodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperr.Wrap(apperr.KindPayloadTooLarge, fmt.Sprintf("Request body exceeds %d MB", maxErr.Limit>>20), err)
	}
	if apperr.KindOf(err) != apperr.KindInternal {
		return err
	}
	return apperr.Wrap(apperr.KindValidation, "Invalid request body", err)
}

// readBody reads a size-capped request body.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes()))
	if err != nil {
		return nil, classifyBodyError(err)
	}
	return body, nil
}

// decodeJSON reads a size-capped body into v.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := h.readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.Wrap(apperr.KindValidation, "Invalid JSON body", err)
	}
	return nil
}

// parseMultipart parses a size-capped multipart body. The caller must
// call r.MultipartForm.RemoveAll when done.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return apperr.Wrap(apperr.KindValidation, "Expected a multipart/form-data body", err)
		}
		return classifyBodyError(err)
	}
	return nil
}

// formFile returns the first file of a multipart field, or nil.
func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

// formValue returns the first value of a multipart field.
func formValue(r *http.Request, field string) string {
	if r.MultipartForm == nil {
		return ""
	}
	values := r.MultipartForm.Value[field]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package api

import (
	"net/http"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
	"github.com/SilentBYOB/blacksoundfest-api/internal/festival"
	"github.com/SilentBYOB/blacksoundfest-api/internal/logging"
	"github.com/SilentBYOB/blacksoundfest-api/internal/storage"
	"github.com/SilentBYOB/blacksoundfest-api/internal/validation"
)

// UpdateContent replaces the value at a dotted path of the document. Keys
// under "bands" must leave a valid bands list behind.
//
// Method: PATCH
// Path: /api/v1/data/content
// Body: {"key": "info.title", "value": <any JSON>}
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}

	var req ContentUpdateRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		writeError(w, r, err)
		return
	}

	if !req.hasValue {
		writeError(w, r, apperr.Validation("value is required"))
		return
	}
	if err := festival.SetContent(r.Context(), h.store, req.Key, req.Value); err != nil {
		writeError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("key", sanitizeLogValue(req.Key)).Msg("Festival content updated")
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: "Content for '" + req.Key + "' updated"})
}

// ReplaceBands replaces the whole bands list. No uniqueness is enforced.
//
// Method: PUT
// Path: /api/v1/data/bands
// Body: JSON array of bands
func (h *Handler) ReplaceBands(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	bands, err := festival.ParseBands(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.store.UpdateBands(r.Context(), func([]festival.Band) ([]festival.Band, error) {
		return bands, nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int("bands", len(bands)).Msg("Bands replaced")
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: "Bands updated"})
}

// ReplaceBracket replaces the bracket object.
//
// Method: PUT
// Path: /api/v1/data/bracket
func (h *Handler) ReplaceBracket(w http.ResponseWriter, r *http.Request) {
	h.replaceField(w, r, festival.FieldBracket, func(body []byte) (any, error) {
		return festival.ParseObject(body, festival.FieldBracket)
	})
}

// ReplaceNews replaces the news list.
//
// Method: PUT
// Path: /api/v1/data/news
func (h *Handler) ReplaceNews(w http.ResponseWriter, r *http.Request) {
	h.replaceField(w, r, festival.FieldNews, func(body []byte) (any, error) {
		return festival.ParseObjectList(body, festival.FieldNews)
	})
}

// ReplaceSponsors replaces the sponsors list.
//
// Method: PUT
// Path: /api/v1/data/sponsors
func (h *Handler) ReplaceSponsors(w http.ResponseWriter, r *http.Request) {
	h.replaceField(w, r, festival.FieldSponsors, func(body []byte) (any, error) {
		return festival.ParseObjectList(body, festival.FieldSponsors)
	})
}

// replaceField decodes the body with parse and writes it to a top-level
// field.
func (h *Handler) replaceField(w http.ResponseWriter, r *http.Request, field string, parse func([]byte) (any, error)) {
	if !h.requireStore(w, r) {
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	value, err := parse(body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.SetField(r.Context(), field, value); err != nil {
		writeError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("field", field).Msg("Festival field replaced")
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: field + " updated"})
}

// UploadFile stores an admin-provided file under a folder of the object
// store and returns its public URL.
//
// Method: POST
// Path: /api/v1/upload-file
// Multipart fields: path (folder, e.g. "news/2026"), file
//
// Response:
//   - 200: {"file_url"}
//   - 400: missing path or file, path outside the store
//   - 500: upload failure
//   - 503: object store not initialized
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if !h.requireObjects(w, r) {
		return
	}

	if err := h.parseMultipart(w, r); err != nil {
		writeError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	req := UploadFileRequest{Path: formValue(r, "path")}
	if err := validation.ValidateStruct(&req); err != nil {
		writeError(w, r, err)
		return
	}
	header := formFile(r, "file")
	if header == nil {
		writeError(w, r, apperr.Validation("file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		writeError(w, r, classifyBodyError(err))
		return
	}
	defer file.Close()

	stored, err := h.objects.Put(r.Context(), storage.Object{
		Prefix:      req.Path,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			err = apperr.Wrap(apperr.KindUpload, "Error uploading file", err)
		}
		writeError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("key", stored.Key).Int64("size", stored.Size).Msg("Admin file uploaded")
	respondJSON(w, http.StatusOK, FileURLResponse{FileURL: stored.URL})
}

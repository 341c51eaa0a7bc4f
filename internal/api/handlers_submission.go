// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package api

import (
	"net/http"

	"github.com/SilentBYOB/blacksoundfest-api/internal/festival"
	"github.com/SilentBYOB/blacksoundfest-api/internal/logging"
)

// SubmitBand stores a public band inscription with its logo, photo and song.
//
// Method: POST
// Path: /api/v1/submit-band
//
// Multipart fields: band_name, band_email, band_province, band_bio,
// logo_file, photo_file, song_file.
//
// Response:
//   - 200: {"status": "ok", "message", "band_id"}
//   - 400: missing or blank field, missing file
//   - 409: email already registered
//   - 413: a file exceeds its ceiling (named in the detail), or the whole
//     body the request cap
//   - 500: upload failure
//   - 503: store or object store not initialized
func (h *Handler) SubmitBand(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) || !h.requireObjects(w, r) {
		return
	}

	form, err := h.readUploadForm(w, r, h.submitter.Limits(), submissionAssets)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Close()

	sub := festival.Submission{
		Name:     form.value("band_name"),
		Email:    form.value("band_email"),
		Province: form.value("band_province"),
		Bio:      form.value("band_bio"),
		Logo:     form.upload("logo_file"),
		Photo:    form.upload("photo_file"),
		Song:     form.upload("song_file"),
	}

	id, err := h.submitter.Submit(r.Context(), sub)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().Int("band_id", id).Msg("Band inscription accepted")
	respondJSON(w, http.StatusOK, SubmitBandResponse{
		Status:  "ok",
		Message: "Inscripción recibida correctamente",
		BandID:  id,
	})
}

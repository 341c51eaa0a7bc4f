// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
	"github.com/SilentBYOB/blacksoundfest-api/internal/festival"
	"github.com/SilentBYOB/blacksoundfest-api/internal/logging"
)

// maxFormValueBytes caps each text field of a streamed form.
const maxFormValueBytes = 1 << 20

// formAsset ties a file field to the asset name used in size errors.
type formAsset struct {
	field string
	asset string
}

// submissionAssets are the file fields of the band submission form.
var submissionAssets = []formAsset{
	{"logo_file", festival.AssetLogo},
	{"photo_file", festival.AssetPhoto},
	{"song_file", festival.AssetSong},
}

// spooledFile is a file part copied to a temporary file.
type spooledFile struct {
	filename    string
	contentType string
	size        int64
	file        *os.File
}

// uploadForm is a multipart body read part by part. Only the first part of
// each field is kept.
type uploadForm struct {
	values map[string]string
	files  map[string]*spooledFile
}

func (f *uploadForm) value(field string) string {
	return f.values[field]
}

// upload returns the spooled file of field, or nil.
func (f *uploadForm) upload(field string) *festival.Upload {
	sf := f.files[field]
	if sf == nil {
		return nil
	}
	return &festival.Upload{
		Filename:    sf.filename,
		ContentType: sf.contentType,
		Size:        sf.size,
		Body:        sf.file,
	}
}

// Close removes the temporary files.
func (f *uploadForm) Close() {
	for _, sf := range f.files {
		name := sf.file.Name()
		sf.file.Close()
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.Warn().Err(err).Str("file", name).Msg("Failed to remove spooled upload")
		}
	}
}

// readUploadForm streams the multipart body of r. Each file part listed in
// assets is copied to a temporary file and cut off one byte past its
// ceiling, so an oversized file is reported by asset name before the
// overall body cap is reached. File parts of other fields are discarded.
func (h *Handler) readUploadForm(w http.ResponseWriter, r *http.Request, limits festival.Limits, assets []formAsset) (*uploadForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes())
	reader, err := r.MultipartReader()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, apperr.Wrap(apperr.KindValidation, "Expected a multipart/form-data body", err)
		}
		return nil, classifyBodyError(err)
	}

	assetOf := make(map[string]string, len(assets))
	for _, a := range assets {
		assetOf[a.field] = a.asset
	}

	form := &uploadForm{values: map[string]string{}, files: map[string]*spooledFile{}}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			form.Close()
			return nil, classifyBodyError(err)
		}

		err = form.readPart(part.FormName(), part.FileName(), part.Header.Get("Content-Type"), part, assetOf, limits)
		part.Close()
		if err != nil {
			form.Close()
			return nil, err
		}
	}
}

func (f *uploadForm) readPart(field, filename, contentType string, body io.Reader, assetOf map[string]string, limits festival.Limits) error {
	_, seenValue := f.values[field]
	_, seenFile := f.files[field]
	if field == "" || seenValue || seenFile {
		return drain(body)
	}

	if filename == "" {
		data, err := io.ReadAll(io.LimitReader(body, maxFormValueBytes+1))
		if err != nil {
			return classifyBodyError(err)
		}
		if len(data) > maxFormValueBytes {
			return apperr.Newf(apperr.KindPayloadTooLarge, "Field %s exceeds %d MB", field, maxFormValueBytes>>20)
		}
		f.values[field] = string(data)
		return nil
	}

	asset, ok := assetOf[field]
	if !ok {
		return drain(body)
	}

	tmp, err := os.CreateTemp("", "blacksoundfest-upload-*")
	if err != nil {
		return fmt.Errorf("spool %s: %w", field, err)
	}
	sf := &spooledFile{filename: filename, contentType: contentType, file: tmp}
	f.files[field] = sf

	limit := limits.Of(asset)
	n, err := io.Copy(tmp, io.LimitReader(body, limit+1))
	if err != nil {
		return classifyBodyError(err)
	}
	if err := limits.Check(asset, n); err != nil {
		return err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind %s: %w", field, err)
	}
	sf.size = n
	return nil
}

func drain(body io.Reader) error {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return classifyBodyError(err)
	}
	return nil
}

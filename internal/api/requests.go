// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package api

import (
	"github.com/goccy/go-json"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
)

// LoginRequest is the body of POST /api/v1/login.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,notblank,max=256"`
	Password string `json:"password" form:"password" validate:"required,max=1024"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ContentUpdateRequest is the body of PATCH /api/v1/data/content. An
// explicit null value is stored as null; a missing value is rejected.
type ContentUpdateRequest struct {
	Key   string `json:"key" validate:"required,dotpath,max=512"`
	Value any    `json:"value"`

	hasValue bool
}

// UnmarshalJSON records whether "value" was present.
func (c *ContentUpdateRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return apperr.Validation("Invalid JSON body")
	}
	if key, ok := fields["key"]; ok {
		s, isString := key.(string)
		if !isString {
			return apperr.Validation("key must be a string")
		}
		c.Key = s
	}
	c.Value, c.hasValue = fields["value"]
	return nil
}

// UploadFileRequest is the text part of POST /api/v1/upload-file.
type UploadFileRequest struct {
	Path string `form:"path" validate:"required,notblank,max=512"`
}

// SubmitBandResponse is returned for a stored band submission.
type SubmitBandResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	BandID  int    `json:"band_id"`
}

// FileURLResponse is returned by the admin file upload.
type FileURLResponse struct {
	FileURL string `json:"file_url"`
}

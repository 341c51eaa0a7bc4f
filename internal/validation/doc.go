// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

// Package validation wraps go-playground/validator for request structs.
//
// Request types declare their constraints with validate tags and are checked
// with ValidateStruct, which returns an apperr validation error (HTTP 400)
// whose detail lists every failed field:
//
//	type LoginRequest struct {
//	    Username string `json:"username" validate:"required,notblank"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    return err
//	}
package validation

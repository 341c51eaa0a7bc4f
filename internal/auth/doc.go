// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

// Package auth authenticates the festival administrator.
//
// There is one principal. Login checks a username and password against
// AdminCredentials and, on success, TokenService issues an HS256 JWT whose
// sub claim is the admin username and which expires after the configured TTL
// (120 minutes by default). Protected routes are wrapped with
// Middleware.RequireAdmin, which accepts "Authorization: Bearer <token>".
//
// Tokens are stateless: there is no refresh and no revocation. A client
// logs in again after expiry.
package auth

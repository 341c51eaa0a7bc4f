// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

// Package middleware provides HTTP middleware shared by the API router:
// request ids wired into the logger, Prometheus instrumentation, and a
// per-IP token bucket for the public submission endpoint.
package middleware

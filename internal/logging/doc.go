// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

// Package logging provides the zerolog-based structured logger shared by every
// component of the festival backend.
//
// A single global logger is configured once from main:
//
//	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
//	logging.Info().Str("addr", addr).Msg("Server starting")
//
// Handlers log through Ctx so that the chi request id and the authenticated
// admin subject are attached to every entry:
//
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("Submission rejected")
//
// # Output
//
// The json format (default) writes one object per line with the fields time,
// level, message, error and caller. The console format is meant for local
// development.
//
// # slog bridge
//
// NewSlogLogger exposes the same logger as an *slog.Logger for libraries that
// require it, such as sutureslog in the supervisor tree.
package logging

// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

/*
Package api is the HTTP surface of the festival backend, routed with chi.

# Routes

Public:

	GET  /                      liveness message
	GET  /health                store and object store readiness
	GET  /metrics               Prometheus metrics
	GET  /files/*               blobs written by the filesystem object store
	GET  /api/v1/data           the whole festival document
	POST /api/v1/login          admin credentials -> bearer token
	POST /api/v1/submit-band    public band inscription (multipart)

Admin (Authorization: Bearer <token>):

	POST  /api/v1/upload-file   multipart path + file -> file_url
	PATCH /api/v1/data/content  {key, value} dotted-path replace
	PUT   /api/v1/data/bands    replace the bands list
	PUT   /api/v1/data/bracket  replace the bracket object
	PUT   /api/v1/data/news     replace the news list
	PUT   /api/v1/data/sponsors replace the sponsors list

# Errors

Every error body is {"detail": "<message>"}. Handlers return apperr values
and writeError maps the kind to the status code. Causes of 5xx errors are
logged with the request id and never sent to the client.

# Middleware

In order: request id, real IP, panic recovery, CORS, Prometheus metrics and
response compression. Login is rate limited with httprate and band
submission with a per-IP token bucket; both limiters are off unless
security.rate_limit_disabled is false.
*/
package api

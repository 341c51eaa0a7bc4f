// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

// Command server runs the Blacksoundfest festival API.
//
// Startup order:
//
//  1. Configuration: .env, defaults, config.yaml, environment (koanf)
//  2. Logging: zerolog with the configured level and format
//  3. Festival store: Badger (default) or MongoDB, then the optional seed
//  4. Object store: local directory behind a circuit breaker
//  5. Auth: token service and admin credentials
//  6. HTTP server under the suture supervisor tree
//
// A store or object store that fails to open does not stop the process:
// the affected endpoints answer 503 and /health reports the failure.
//
// Required environment:
//
//	JWT_SECRET=$(openssl rand -base64 32)
//	ADMIN_USERNAME=admin
//	ADMIN_PASSWORD=...            # or ADMIN_PASSWORD_HASH (bcrypt)
//
// Common settings:
//
//	HTTP_PORT=8000
//	STORE_BACKEND=badger|mongo
//	BADGER_PATH=./data/festival
//	MONGO_URI=mongodb://localhost:27017
//	OBJECTS_ROOT=./data/objects
//	PUBLIC_URL=https://api.example.com
//	SEED_FILE=./seed.json
//
// SIGINT or SIGTERM drains in-flight requests for up to 10 seconds before
// the store is closed.
package main

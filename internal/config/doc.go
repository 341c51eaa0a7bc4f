// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

/*
Package config loads and validates the festival backend configuration.

# Configuration Sources

Sources are layered with Koanf v2, later layers winning:
  - .env file (DOTENV_PATH or ./.env), loaded into the process environment
  - built-in defaults
  - YAML file (CONFIG_PATH, config.yaml, /etc/blacksoundfest/config.yaml)
  - environment variables

Only the environment variables listed in envMappings are read; anything else
in the environment is ignored.

# Required Settings

	JWT_SECRET      at least 32 characters
	ADMIN_USERNAME  the single administrator
	ADMIN_PASSWORD  or ADMIN_PASSWORD_HASH (bcrypt)

# Example config.yaml

	server:
	  port: 8000
	security:
	  cors_origins: ["https://blacksoundfest.example"]
	store:
	  backend: mongo
	  mongo_uri: mongodb://mongo:27017
	festival:
	  exempt_email: pruebas@blacksoundfest.example
*/
package config

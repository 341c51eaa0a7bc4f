// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order:
//  1. .env file (optional) is loaded into the process environment
//  2. Defaults: built-in values from defaultConfig
//  3. Config File: optional YAML file (config.yaml or CONFIG_PATH)
//  4. Environment Variables: override any setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
//	addr := cfg.Server.Addr()
//
// Config is immutable after Load and safe for concurrent reads. It is passed
// explicitly to every component; nothing reads the environment after startup.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Store    StoreConfig    `koanf:"store"`
	Objects  ObjectsConfig  `koanf:"objects"`
	Festival FestivalConfig `koanf:"festival"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: bind address (default: 0.0.0.0)
//   - HTTP_PORT: listen port (default: 8000)
//   - SERVER_TIMEOUT: read/write timeout (default: 60s, uploads can be 15 MB)
//   - MAX_UPLOAD_MB: cap on a whole multipart request body (default: 16)
//   - ENVIRONMENT: development or production (default: development)
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxUploadMB int64         `koanf:"max_upload_mb"`
	Environment string        `koanf:"environment"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MaxUploadBytes returns MaxUploadMB in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}

// SecurityConfig holds authentication and HTTP protection settings.
//
// The service has exactly one principal, the festival administrator. Login
// compares against AdminUsername and either AdminPasswordHash (bcrypt) when it
// is set, or AdminPassword by constant-time exact match.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	AdminPasswordHash string        `koanf:"admin_password_hash"`
	CORSOrigins       []string      `koanf:"cors_origins"`

	// Login and submission throttling. Disabled by default.
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	SubmitRateReqs    int           `koanf:"submit_rate_reqs"`
	SubmitRateWindow  time.Duration `koanf:"submit_rate_window"`
}

// StoreConfig selects and configures the festival document store.
//
// Backend "badger" (default) embeds the document in a local BadgerDB
// directory. Backend "mongo" keeps it in a MongoDB collection, one document
// whose _id is DocumentKey.
type StoreConfig struct {
	Backend         string        `koanf:"backend"`
	DocumentKey     string        `koanf:"document_key"`
	BadgerPath      string        `koanf:"badger_path"`
	BadgerInMemory  bool          `koanf:"badger_in_memory"`
	MongoURI        string        `koanf:"mongo_uri"`
	MongoDatabase   string        `koanf:"mongo_database"`
	MongoCollection string        `koanf:"mongo_collection"`
	MongoTimeout    time.Duration `koanf:"mongo_timeout"`
}

// ObjectsConfig configures the blob store for uploaded files.
//
// Files are written under RootDir and served back at PublicBaseURL + "/files/".
// When PublicBaseURL is empty the server derives it from HTTP_HOST/HTTP_PORT.
type ObjectsConfig struct {
	RootDir       string `koanf:"root_dir"`
	PublicBaseURL string `koanf:"public_base_url"`
}

// FestivalConfig holds domain settings.
type FestivalConfig struct {
	// ExemptEmail is never rejected as a duplicate on band submission.
	// Empty disables the exemption.
	ExemptEmail string `koanf:"exempt_email"`

	// SeedFile is a JSON document written to an empty store at startup.
	SeedFile string `koanf:"seed_file"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes file:line in entries.
	Caller bool `koanf:"caller"`
}

// Load reads configuration from .env, defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/blacksoundfest/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env file location.
const DotEnvPathEnvVar = "DOTENV_PATH"

// DefaultTokenTTL is the access token lifetime.
const DefaultTokenTTL = 120 * time.Minute

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			Timeout:     60 * time.Second,
			MaxUploadMB: 16,
			Environment: "development",
		},
		Security: SecurityConfig{
			TokenTTL:          DefaultTokenTTL,
			AdminUsername:     "",
			CORSOrigins:       []string{"*"},
			RateLimitDisabled: true,
			RateLimitReqs:     10,
			RateLimitWindow:   time.Minute,
			SubmitRateReqs:    5,
			SubmitRateWindow:  time.Minute,
		},
		Store: StoreConfig{
			Backend:         "badger",
			DocumentKey:     "festival",
			BadgerPath:      "./data/festival",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "blacksoundfest",
			MongoCollection: "festival",
			MongoTimeout:    10 * time.Second,
		},
		Objects: ObjectsConfig{
			RootDir: "./data/objects",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration with layered precedence
// ENV > config file > defaults. A .env file, when present, is read into the
// process environment first without overriding variables that are already set.
func LoadWithKoanf() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDotEnv reads DOTENV_PATH or ./.env. A missing file is not an error.
func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	"http_host":      "server.host",
	"http_port":      "server.port",
	"server_timeout": "server.timeout",
	"max_upload_mb":  "server.max_upload_mb",
	"environment":    "server.environment",

	"jwt_secret":           "security.jwt_secret",
	"token_ttl":            "security.token_ttl",
	"admin_username":       "security.admin_username",
	"admin_password":       "security.admin_password",
	"admin_password_hash":  "security.admin_password_hash",
	"cors_origins":         "security.cors_origins",
	"rate_limit_disabled":  "security.rate_limit_disabled",
	"rate_limit_requests":  "security.rate_limit_reqs",
	"rate_limit_window":    "security.rate_limit_window",
	"submit_rate_requests": "security.submit_rate_reqs",
	"submit_rate_window":   "security.submit_rate_window",

	"store_backend":    "store.backend",
	"document_key":     "store.document_key",
	"badger_path":      "store.badger_path",
	"badger_in_memory": "store.badger_in_memory",
	"mongo_uri":        "store.mongo_uri",
	"mongo_database":   "store.mongo_database",
	"mongo_collection": "store.mongo_collection",
	"mongo_timeout":    "store.mongo_timeout",

	"objects_root":       "objects.root_dir",
	"objects_public_url": "objects.public_base_url",
	"public_url":         "objects.public_base_url",

	"exempt_email": "festival.exempt_email",
	"seed_file":    "festival.seed_file",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - ADMIN_USERNAME -> security.admin_username
//   - EXEMPT_EMAIL -> festival.exempt_email
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/SilentBYOB/blacksoundfest-api/internal/config"
)

// AdminCredentials verifies login attempts for the single administrator.
//
// When a bcrypt hash is configured the password is checked against it;
// otherwise it must match the configured plain password exactly. The
// username is always compared in constant time.
type AdminCredentials struct {
	username string
	password []byte
	hash     []byte
}

// NewAdminCredentials builds the verifier from the security configuration.
func NewAdminCredentials(cfg *config.SecurityConfig) (*AdminCredentials, error) {
	if cfg.AdminUsername == "" {
		return nil, errors.New("admin username is required")
	}
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		return nil, errors.New("admin password or password hash is required")
	}

	c := &AdminCredentials{username: cfg.AdminUsername}
	if cfg.AdminPasswordHash != "" {
		c.hash = []byte(cfg.AdminPasswordHash)
	} else {
		c.password = []byte(cfg.AdminPassword)
	}
	return c, nil
}

// Username returns the administrator subject placed in issued tokens.
func (c *AdminCredentials) Username() string {
	return c.username
}

// Verify reports whether username and password belong to the administrator.
func (c *AdminCredentials) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1

	var passOK bool
	if c.hash != nil {
		passOK = bcrypt.CompareHashAndPassword(c.hash, []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), c.password) == 1
	}
	return userOK && passOK
}

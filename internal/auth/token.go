// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
	"github.com/SilentBYOB/blacksoundfest-api/internal/config"
)

// TokenType is returned alongside every access token.
const TokenType = "bearer"

// ErrSecretRequired is returned by NewTokenService when no signing secret is
// configured. It is a startup error, never a request error.
var ErrSecretRequired = errors.New("JWT_SECRET is required but was empty")

// TokenService issues and verifies HS256 access tokens for the administrator.
//
// A token carries only the subject (sub) and its issue, not-before and expiry
// times. Tokens are not stored anywhere; verification is a pure function of
// the token, the shared secret and the clock.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService from the security configuration.
//
// Parameters:
//   - cfg: security configuration providing JWTSecret and TokenTTL
//
// Returns ErrSecretRequired when the secret is empty. A zero TokenTTL falls
// back to config.DefaultTokenTTL (120 minutes).
func NewTokenService(cfg *config.SecurityConfig) (*TokenService, error) {
	if cfg.JWTSecret == "" {
		return nil, ErrSecretRequired
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subject that expires TTL from now.
//
// Example:
//
//	token, err := tokens.Issue("admin")
//	// Authorization: Bearer <token>
func (s *TokenService) Issue(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the subject.
//
// Every failure, including a valid token without a subject, is reported as an
// apperr.KindUnauthorized error.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperr.Wrap(apperr.KindUnauthorized, "Token has expired", err)
		}
		return "", apperr.Wrap(apperr.KindUnauthorized, "Could not validate credentials", err)
	}

	if claims.Subject == "" {
		return "", apperr.Unauthorized("Could not validate credentials")
	}
	return claims.Subject, nil
}

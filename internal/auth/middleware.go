// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
	"github.com/SilentBYOB/blacksoundfest-api/internal/logging"
)

type contextKey string

// SubjectContextKey holds the verified token subject in the request context.
const SubjectContextKey contextKey = "subject"

// ErrorWriter renders an error response. The HTTP layer supplies it so that
// auth failures use the same {"detail": ...} body as every other error.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware guards admin routes with bearer tokens.
type Middleware struct {
	tokens   *TokenService
	admin    string
	writeErr ErrorWriter
}

// NewMiddleware creates the bearer middleware. Only tokens whose subject is
// admin are accepted; a valid token for any other subject is forbidden.
func NewMiddleware(tokens *TokenService, admin string, writeErr ErrorWriter) *Middleware {
	return &Middleware{tokens: tokens, admin: admin, writeErr: writeErr}
}

// RequireAdmin is chi-compatible middleware for the protected routes.
//
//	r.With(authMW.RequireAdmin).Patch("/data/content", h.UpdateContent)
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			m.writeErr(w, r, apperr.Unauthorized("Not authenticated"))
			return
		}

		subject, err := m.tokens.Verify(token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			m.writeErr(w, r, err)
			return
		}

		if subject != m.admin {
			m.writeErr(w, r, apperr.New(apperr.KindForbidden, "Not enough permissions"))
			return
		}

		ctx := context.WithValue(r.Context(), SubjectContextKey, subject)
		ctx = logging.ContextWithSubject(ctx, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SubjectFromContext returns the authenticated subject, if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(SubjectContextKey).(string)
	return s, ok
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/SilentBYOB/blacksoundfest-api/internal/festival"
)

func TestRoot(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assertStatus(t, rr, http.StatusOK)

	body := decodeBody[statusResponse](t, rr.Body)
	if body.Status != "ok" || body.Message != "Servidor base operativo" {
		t.Errorf("body = %+v", body)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name        string
		opts        []envOption
		wantStatus  int
		wantStore   string
		wantObjects string
	}{
		{"healthy", nil, http.StatusOK, "ok", "ok"},
		{"no store", []envOption{withoutStore()}, http.StatusServiceUnavailable, "uninitialized", "ok"},
		{"no objects", []envOption{withoutObjects()}, http.StatusServiceUnavailable, "ok", "uninitialized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.opts...)
			rr := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
			assertStatus(t, rr, tt.wantStatus)

			body := decodeBody[HealthStatus](t, rr.Body)
			if body.Store != tt.wantStore {
				t.Errorf("store = %q, want %q", body.Store, tt.wantStore)
			}
			if body.Objects != tt.wantObjects {
				t.Errorf("objects = %q, want %q", body.Objects, tt.wantObjects)
			}
		})
	}
}

func TestData(t *testing.T) {
	t.Run("returns document", func(t *testing.T) {
		env := newTestEnv(t, withDocument(festival.Object{
			"info":     map[string]any{"title": "Blacksound Fest"},
			"bands":    []any{},
			"sponsors": []any{map[string]any{"name": "Acme"}},
		}))

		rr := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/data", nil))
		assertStatus(t, rr, http.StatusOK)

		doc := decodeBody[map[string]any](t, rr.Body)
		info, _ := doc["info"].(map[string]any)
		if info["title"] != "Blacksound Fest" {
			t.Errorf("info = %v", doc["info"])
		}
		if sponsors, _ := doc["sponsors"].([]any); len(sponsors) != 1 {
			t.Errorf("sponsors = %v", doc["sponsors"])
		}
	})

	t.Run("defaults missing sponsors", func(t *testing.T) {
		env := newTestEnv(t, withDocument(festival.Object{"info": map[string]any{}}))

		rr := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/data", nil))
		assertStatus(t, rr, http.StatusOK)

		doc := decodeBody[map[string]any](t, rr.Body)
		sponsors, ok := doc["sponsors"].([]any)
		if !ok || len(sponsors) != 0 {
			t.Errorf("sponsors = %#v, want empty list", doc["sponsors"])
		}
		if _, stored := env.document(t)["sponsors"]; stored {
			t.Error("reading the document must not write sponsors back")
		}
	})

	t.Run("etag revalidation", func(t *testing.T) {
		env := newTestEnv(t)

		rr := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/data", nil))
		assertStatus(t, rr, http.StatusOK)
		etag := rr.Header().Get("ETag")
		if etag == "" {
			t.Fatal("ETag not set")
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/data", nil)
		req.Header.Set("If-None-Match", etag)
		assertStatus(t, env.do(req), http.StatusNotModified)
	})

	t.Run("not found", func(t *testing.T) {
		env := newTestEnv(t, withoutSeed())
		rr := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/data", nil))
		assertStatus(t, rr, http.StatusNotFound)
		assertDetail(t, rr, "Festival data not found")
	})

	t.Run("store unavailable", func(t *testing.T) {
		env := newTestEnv(t, withoutStore())
		rr := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/data", nil))
		assertStatus(t, rr, http.StatusServiceUnavailable)
		assertDetail(t, rr, "Database not available")
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	jsonLogin := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}
	formLogin := func(username, password string) *http.Request {
		form := url.Values{"username": {username}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantDetail string
	}{
		{"json credentials", jsonLogin(`{"username":"admin","password":"festival-pass"}`), http.StatusOK, ""},
		{"form credentials", formLogin(testAdmin, testPassword), http.StatusOK, ""},
		{"wrong password", jsonLogin(`{"username":"admin","password":"nope"}`), http.StatusBadRequest, "Incorrect username or password"},
		{"wrong username", formLogin("root", testPassword), http.StatusBadRequest, "Incorrect username or password"},
		{"missing password", jsonLogin(`{"username":"admin"}`), http.StatusBadRequest, ""},
		{"malformed json", jsonLogin(`{"username":`), http.StatusBadRequest, "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(tt.req)
			assertStatus(t, rr, tt.wantStatus)

			if tt.wantStatus != http.StatusOK {
				if tt.wantDetail != "" {
					assertDetail(t, rr, tt.wantDetail)
				}
				return
			}

			body := decodeBody[LoginResponse](t, rr.Body)
			if body.TokenType != "bearer" {
				t.Errorf("token_type = %q, want bearer", body.TokenType)
			}
			subject, err := env.tokens.Verify(body.AccessToken)
			if err != nil {
				t.Fatalf("issued token does not verify: %v", err)
			}
			if subject != testAdmin {
				t.Errorf("subject = %q, want %q", subject, testAdmin)
			}
		})
	}
}

func TestLoginRateLimit(t *testing.T) {
	env := newTestEnv(t, withRateLimit())

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(`{"username":"admin","password":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		last = env.do(req).Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("third attempt status = %d, want 429", last)
	}
}

func TestUnknownRoutes(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/nothing", nil))
	assertStatus(t, rr, http.StatusNotFound)
	assertDetail(t, rr, "Not Found")

	rr = env.do(httptest.NewRequest(http.MethodDelete, "/api/v1/data", nil))
	assertStatus(t, rr, http.StatusMethodNotAllowed)
	assertDetail(t, rr, "Method Not Allowed")
}

// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/SilentBYOB/blacksoundfest-api/internal/auth"
	"github.com/SilentBYOB/blacksoundfest-api/internal/config"
	"github.com/SilentBYOB/blacksoundfest-api/internal/festival"
	"github.com/SilentBYOB/blacksoundfest-api/internal/festival/badgerstore"
	"github.com/SilentBYOB/blacksoundfest-api/internal/middleware"
	"github.com/SilentBYOB/blacksoundfest-api/internal/storage"
)

const (
	testAdmin    = "admin"
	testPassword = "festival-pass"
	testBaseURL  = "http://files.test"
)

// testEnv is a fully wired router over an in-memory store and a temp
// directory object store.
type testEnv struct {
	cfg     *config.Config
	store   festival.Store
	objects storage.ObjectStore
	tokens  *auth.TokenService
	router  http.Handler
}

type envOption func(*envSettings)

type envSettings struct {
	noStore   bool
	noObjects bool
	noSeed    bool
	rateLimit bool
	doc       festival.Object
}

func withoutStore() envOption   { return func(s *envSettings) { s.noStore = true } }
func withoutObjects() envOption { return func(s *envSettings) { s.noObjects = true } }
func withoutSeed() envOption    { return func(s *envSettings) { s.noSeed = true } }
func withRateLimit() envOption  { return func(s *envSettings) { s.rateLimit = true } }
func withDocument(doc festival.Object) envOption {
	return func(s *envSettings) { s.doc = doc }
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8000, MaxUploadMB: 16},
		Security: config.SecurityConfig{
			JWTSecret:         "test-secret-that-is-long-enough-for-hs256",
			TokenTTL:          time.Hour,
			AdminUsername:     testAdmin,
			AdminPassword:     testPassword,
			RateLimitDisabled: true,
			RateLimitReqs:     2,
			RateLimitWindow:   time.Minute,
			SubmitRateReqs:    1,
			SubmitRateWindow:  time.Minute,
		},
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	var s envSettings
	for _, opt := range opts {
		opt(&s)
	}

	cfg := testConfig()
	cfg.Security.RateLimitDisabled = !s.rateLimit

	env := &testEnv{cfg: cfg}

	if !s.noStore {
		store, err := badgerstore.Open(badgerstore.Options{InMemory: true})
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		if !s.noSeed {
			doc := s.doc
			if doc == nil {
				doc = festival.NewDocument()
			}
			if _, err := store.Create(context.Background(), doc); err != nil {
				t.Fatalf("seed store: %v", err)
			}
		}
		env.store = store
	}

	var files http.Handler
	if !s.noObjects {
		fs, err := storage.NewFileStore(t.TempDir(), testBaseURL)
		if err != nil {
			t.Fatalf("file store: %v", err)
		}
		env.objects = storage.NewBreakerStore(fs, storage.DefaultBreakerSettings())
		files = fs.Handler()
	}

	tokens, err := auth.NewTokenService(&cfg.Security)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	admin, err := auth.NewAdminCredentials(&cfg.Security)
	if err != nil {
		t.Fatalf("admin credentials: %v", err)
	}
	env.tokens = tokens

	handler := NewHandler(cfg, env.store, env.objects, tokens, admin)
	limiter := middleware.NewIPRateLimiter(cfg.Security.SubmitRateReqs, cfg.Security.SubmitRateWindow)
	router := NewRouter(handler, NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&cfg.Security)), limiter, files)
	env.router = router.SetupChi()
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := e.tokens.Issue(testAdmin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// adminRequest builds an authenticated JSON request.
func (e *testEnv) adminRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.adminToken(t))
	return req
}

func (e *testEnv) document(t *testing.T) festival.Object {
	t.Helper()
	doc, err := e.store.Get(context.Background())
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	return doc
}

// multipartBody is a form under construction.
type multipartBody struct {
	buf bytes.Buffer
	w   *multipart.Writer
}

func newMultipart() *multipartBody {
	m := &multipartBody{}
	m.w = multipart.NewWriter(&m.buf)
	return m
}

func (m *multipartBody) field(t *testing.T, name, value string) *multipartBody {
	t.Helper()
	if err := m.w.WriteField(name, value); err != nil {
		t.Fatal(err)
	}
	return m
}

func (m *multipartBody) file(t *testing.T, field, filename string, content []byte) *multipartBody {
	t.Helper()
	part, err := m.w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	return m
}

func (m *multipartBody) request(t *testing.T, target string) *http.Request {
	t.Helper()
	if err := m.w.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &m.buf)
	req.Header.Set("Content-Type", m.w.FormDataContentType())
	return req
}

// submission returns a complete band form.
func submission(t *testing.T, email string) *multipartBody {
	t.Helper()
	return newMultipart().
		field(t, "band_name", "Kraken").
		field(t, "band_email", email).
		field(t, "band_province", "Madrid").
		field(t, "band_bio", "Doom from the deep").
		file(t, "logo_file", "logo.png", []byte("png")).
		file(t, "photo_file", "photo.jpg", []byte("jpg")).
		file(t, "song_file", "demo.mp3", []byte("mp3"))
}

func decodeBody[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rr.Code, want, rr.Body.String())
	}
}

func assertDetail(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	body := decodeBody[errorResponse](t, rr.Body)
	if body.Detail != want {
		t.Errorf("detail = %q, want %q", body.Detail, want)
	}
}

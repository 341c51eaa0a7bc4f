// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SilentBYOB/blacksoundfest-api/internal/festival"
)

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	otherToken, err := env.tokens.Issue("someone-else")
	if err != nil {
		t.Fatal(err)
	}

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPatch, "/api/v1/data/content"},
		{http.MethodPut, "/api/v1/data/bands"},
		{http.MethodPut, "/api/v1/data/bracket"},
		{http.MethodPut, "/api/v1/data/news"},
		{http.MethodPut, "/api/v1/data/sponsors"},
		{http.MethodPost, "/api/v1/upload-file"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rr := env.do(httptest.NewRequest(route.method, route.path, strings.NewReader("{}")))
			assertStatus(t, rr, http.StatusUnauthorized)
			if rr.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Errorf("WWW-Authenticate = %q", rr.Header().Get("WWW-Authenticate"))
			}

			req := httptest.NewRequest(route.method, route.path, strings.NewReader("{}"))
			req.Header.Set("Authorization", "Bearer "+otherToken)
			assertStatus(t, env.do(req), http.StatusForbidden)
		})
	}
}

func TestUpdateContent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		check      func(t *testing.T, doc festival.Object)
	}{
		{
			name:       "nested path is created",
			body:       `{"key":"info.dates.start","value":"2026-07-01"}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, doc festival.Object) {
				info, _ := doc["info"].(map[string]any)
				dates, _ := info["dates"].(map[string]any)
				if dates["start"] != "2026-07-01" {
					t.Errorf("info = %v", doc["info"])
				}
			},
		},
		{
			name:       "top-level object value",
			body:       `{"key":"bracket","value":{"final":["A","B"]}}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, doc festival.Object) {
				bracket, _ := doc["bracket"].(map[string]any)
				if final, _ := bracket["final"].([]any); len(final) != 2 {
					t.Errorf("bracket = %v", doc["bracket"])
				}
			},
		},
		{
			name:       "explicit null",
			body:       `{"key":"logoSVG","value":null}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, doc festival.Object) {
				if v, ok := doc["logoSVG"]; !ok || v != nil {
					t.Errorf("logoSVG = %#v, want stored null", v)
				}
			},
		},
		{"missing value", `{"key":"info.title"}`, http.StatusBadRequest, nil},
		{"missing key", `{"value":1}`, http.StatusBadRequest, nil},
		{"empty segment", `{"key":"info..title","value":1}`, http.StatusBadRequest, nil},
		{"operator key", `{"key":"$set","value":1}`, http.StatusBadRequest, nil},
		{"not json", `key=info`, http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := env.do(env.adminRequest(t, http.MethodPatch, "/api/v1/data/content", tt.body))
			assertStatus(t, rr, tt.wantStatus)
			if tt.check != nil {
				tt.check(t, env.document(t))
			}
		})
	}
}

func TestUpdateContentMissingDocument(t *testing.T) {
	env := newTestEnv(t, withoutSeed())
	rr := env.do(env.adminRequest(t, http.MethodPatch, "/api/v1/data/content", `{"key":"info.title","value":"x"}`))
	assertStatus(t, rr, http.StatusNotFound)
}

func TestUpdateContentListIndex(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(env.adminRequest(t, http.MethodPut, "/api/v1/data/news",
		`[{"title":"Lineup","body":"a"},{"title":"Tickets","body":"b"}]`))
	assertStatus(t, rr, http.StatusOK)

	rr = env.do(env.adminRequest(t, http.MethodPatch, "/api/v1/data/content", `{"key":"news.0.title","value":"edited"}`))
	assertStatus(t, rr, http.StatusOK)

	news, ok := env.document(t)["news"].([]any)
	if !ok || len(news) != 2 {
		t.Fatalf("news = %#v, want a list of 2", env.document(t)["news"])
	}
	first, _ := news[0].(map[string]any)
	second, _ := news[1].(map[string]any)
	if first["title"] != "edited" || first["body"] != "a" {
		t.Errorf("news[0] = %v", first)
	}
	if second["title"] != "Tickets" || second["body"] != "b" {
		t.Errorf("news[1] = %v", second)
	}

	for _, key := range []string{"news.2.title", "news.title"} {
		rr = env.do(env.adminRequest(t, http.MethodPatch, "/api/v1/data/content", `{"key":"`+key+`","value":"x"}`))
		assertStatus(t, rr, http.StatusBadRequest)
	}
	if news, _ := env.document(t)["news"].([]any); len(news) != 2 {
		t.Errorf("news = %#v after rejected edits", news)
	}
}

func TestUpdateContentBands(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(submission(t, "kraken@example.com").request(t, "/api/v1/submit-band"))
	assertStatus(t, rr, http.StatusOK)

	rr = env.do(env.adminRequest(t, http.MethodPatch, "/api/v1/data/content",
		`{"key":"bands.0.qualificationStatus","value":"Semifinal"}`))
	assertStatus(t, rr, http.StatusOK)

	for _, body := range []string{
		`{"key":"bands","value":"oops"}`,
		`{"key":"bands.0","value":42}`,
		`{"key":"bands.0.id","value":"one"}`,
		`{"key":"bands.0.genre","value":"doom"}`,
	} {
		rr = env.do(env.adminRequest(t, http.MethodPatch, "/api/v1/data/content", body))
		assertStatus(t, rr, http.StatusBadRequest)
	}

	bands, err := festival.BandsOf(env.document(t))
	if err != nil {
		t.Fatalf("stored bands corrupted: %v", err)
	}
	if len(bands) != 1 || bands[0].QualificationStatus != "Semifinal" {
		t.Errorf("bands = %+v", bands)
	}

	rr = env.do(submission(t, "hydra@example.com").request(t, "/api/v1/submit-band"))
	assertStatus(t, rr, http.StatusOK)
}

func TestReplaceBands(t *testing.T) {
	env := newTestEnv(t)

	body := `[
		{"id":1,"name":"Kraken","email":"k@example.com","province":"Madrid","bio":"doom","qualificationStatus":"Semifinal","rating":8},
		{"id":2,"name":"Hydra","email":"k@example.com","province":"Lugo","bio":"sludge","qualificationStatus":"Maqueta recibida"}
	]`
	rr := env.do(env.adminRequest(t, http.MethodPut, "/api/v1/data/bands", body))
	assertStatus(t, rr, http.StatusOK)

	bands, err := festival.BandsOf(env.document(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(bands) != 2 {
		t.Fatalf("len(bands) = %d, want 2 (duplicates allowed on replace)", len(bands))
	}
	if bands[0].Rating == nil || *bands[0].Rating != 8 {
		t.Errorf("rating = %v, want 8", bands[0].Rating)
	}

	rr = env.do(env.adminRequest(t, http.MethodPut, "/api/v1/data/bands", `{"id":1}`))
	assertStatus(t, rr, http.StatusBadRequest)
	assertDetail(t, rr, "bands must be a list of bands")
}

func TestReplaceCollections(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		field      string
		body       string
		wantStatus int
	}{
		{"news list", "/api/v1/data/news", "news", `[{"title":"Lineup"},{"title":"Tickets"}]`, http.StatusOK},
		{"news empty", "/api/v1/data/news", "news", `[]`, http.StatusOK},
		{"news not a list", "/api/v1/data/news", "news", `{"title":"x"}`, http.StatusBadRequest},
		{"news item not object", "/api/v1/data/news", "news", `["x"]`, http.StatusBadRequest},
		{"sponsors list", "/api/v1/data/sponsors", "sponsors", `[{"name":"Acme","logo":"http://x/y.png"}]`, http.StatusOK},
		{"sponsors null", "/api/v1/data/sponsors", "sponsors", `null`, http.StatusBadRequest},
		{"bracket object", "/api/v1/data/bracket", "bracket", `{"rounds":[]}`, http.StatusOK},
		{"bracket list", "/api/v1/data/bracket", "bracket", `[]`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := env.do(env.adminRequest(t, http.MethodPut, tt.path, tt.body))
			assertStatus(t, rr, tt.wantStatus)

			if tt.wantStatus != http.StatusOK {
				return
			}
			if _, ok := env.document(t)[tt.field]; !ok {
				t.Errorf("%s not stored", tt.field)
			}
		})
	}
}

func TestUploadFile(t *testing.T) {
	env := newTestEnv(t)

	req := newMultipart().
		field(t, "path", "news/2026").
		file(t, "file", "Cartel Final.PNG", []byte("poster")).
		request(t, "/api/v1/upload-file")
	req.Header.Set("Authorization", "Bearer "+env.adminToken(t))

	rr := env.do(req)
	assertStatus(t, rr, http.StatusOK)

	body := decodeBody[FileURLResponse](t, rr.Body)
	prefix := testBaseURL + "/files/news/2026/"
	if !strings.HasPrefix(body.FileURL, prefix) || !strings.HasSuffix(body.FileURL, ".png") {
		t.Fatalf("file_url = %q", body.FileURL)
	}

	get := env.do(httptest.NewRequest(http.MethodGet, strings.TrimPrefix(body.FileURL, testBaseURL), nil))
	assertStatus(t, get, http.StatusOK)
	content, _ := io.ReadAll(get.Body)
	if string(content) != "poster" {
		t.Errorf("served content = %q", content)
	}
}

func TestUploadFileRejects(t *testing.T) {
	tests := []struct {
		name       string
		opts       []envOption
		build      func(t *testing.T) *multipartBody
		wantStatus int
	}{
		{
			name:       "missing path",
			build:      func(t *testing.T) *multipartBody { return newMultipart().file(t, "file", "a.txt", []byte("a")) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing file",
			build:      func(t *testing.T) *multipartBody { return newMultipart().field(t, "path", "news") },
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "path escapes root",
			build: func(t *testing.T) *multipartBody {
				return newMultipart().field(t, "path", "../etc").file(t, "file", "a.txt", []byte("a"))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "objects unavailable",
			opts: []envOption{withoutObjects()},
			build: func(t *testing.T) *multipartBody {
				return newMultipart().field(t, "path", "news").file(t, "file", "a.txt", []byte("a"))
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.opts...)
			req := tt.build(t).request(t, "/api/v1/upload-file")
			req.Header.Set("Authorization", "Bearer "+env.adminToken(t))
			assertStatus(t, env.do(req), tt.wantStatus)
		})
	}
}

// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package api

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/SilentBYOB/blacksoundfest-api/internal/festival"
)

func TestSubmitBand(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(submission(t, "Kraken@Example.com").request(t, "/api/v1/submit-band"))
	assertStatus(t, rr, http.StatusOK)

	body := decodeBody[SubmitBandResponse](t, rr.Body)
	if body.Status != "ok" || body.BandID != 1 {
		t.Errorf("body = %+v", body)
	}

	bands, err := festival.BandsOf(env.document(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(bands) != 1 {
		t.Fatalf("len(bands) = %d, want 1", len(bands))
	}
	band := bands[0]
	if band.Name != "Kraken" || band.Province != "Madrid" {
		t.Errorf("band = %+v", band)
	}
	if band.QualificationStatus != festival.QualificationReceived {
		t.Errorf("qualificationStatus = %q", band.QualificationStatus)
	}
	for _, u := range []struct{ url, prefix string }{
		{band.Logo, "/files/logos/"},
		{band.Photo, "/files/photos/"},
		{band.SongURL, "/files/songs/"},
	} {
		if !strings.HasPrefix(u.url, testBaseURL+u.prefix) {
			t.Errorf("url %q not under %s", u.url, u.prefix)
		}
	}

	// Same address, different case and padding
	rr = env.do(submission(t, "  kraken@example.COM ").request(t, "/api/v1/submit-band"))
	assertStatus(t, rr, http.StatusConflict)
	assertDetail(t, rr, "Email already registered")

	rr = env.do(submission(t, "hydra@example.com").request(t, "/api/v1/submit-band"))
	assertStatus(t, rr, http.StatusOK)
	if got := decodeBody[SubmitBandResponse](t, rr.Body).BandID; got != 2 {
		t.Errorf("second band id = %d, want 2", got)
	}
}

func TestSubmitBandRejects(t *testing.T) {
	tooBig := bytes.Repeat([]byte{'x'}, int(2*festival.MB)+1)

	tests := []struct {
		name       string
		opts       []envOption
		build      func(t *testing.T) *multipartBody
		wantStatus int
	}{
		{
			name: "missing song",
			build: func(t *testing.T) *multipartBody {
				return newMultipart().
					field(t, "band_name", "Kraken").
					field(t, "band_email", "k@example.com").
					field(t, "band_province", "Madrid").
					field(t, "band_bio", "doom").
					file(t, "logo_file", "logo.png", []byte("png")).
					file(t, "photo_file", "photo.jpg", []byte("jpg"))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "blank name",
			build: func(t *testing.T) *multipartBody {
				return newMultipart().
					field(t, "band_name", "   ").
					field(t, "band_email", "k@example.com").
					field(t, "band_province", "Madrid").
					field(t, "band_bio", "doom").
					file(t, "logo_file", "logo.png", []byte("png")).
					file(t, "photo_file", "photo.jpg", []byte("jpg")).
					file(t, "song_file", "demo.mp3", []byte("mp3"))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "logo over ceiling",
			build: func(t *testing.T) *multipartBody {
				return newMultipart().
					field(t, "band_name", "Kraken").
					field(t, "band_email", "k@example.com").
					field(t, "band_province", "Madrid").
					field(t, "band_bio", "doom").
					file(t, "logo_file", "logo.png", tooBig).
					file(t, "photo_file", "photo.jpg", []byte("jpg")).
					file(t, "song_file", "demo.mp3", []byte("mp3"))
			},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "store unavailable",
			opts:       []envOption{withoutStore()},
			build:      func(t *testing.T) *multipartBody { return submission(t, "k@example.com") },
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "objects unavailable",
			opts:       []envOption{withoutObjects()},
			build:      func(t *testing.T) *multipartBody { return submission(t, "k@example.com") },
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "document missing",
			opts:       []envOption{withoutSeed()},
			build:      func(t *testing.T) *multipartBody { return submission(t, "k@example.com") },
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.opts...)
			rr := env.do(tt.build(t).request(t, "/api/v1/submit-band"))
			assertStatus(t, rr, tt.wantStatus)
		})
	}
}

func TestSubmitBandOversizedFileNamed(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		size   int64
		detail string
	}{
		{"song one byte over", "song_file", 10*festival.MB + 1, "Song file exceeds the 10 MB limit"},
		{"song above body cap", "song_file", 17 * festival.MB, "Song file exceeds the 10 MB limit"},
		{"photo one byte over", "photo_file", 3*festival.MB + 1, "Photo file exceeds the 3 MB limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			files := map[string][]byte{
				"logo_file":  []byte("png"),
				"photo_file": []byte("jpg"),
				"song_file":  []byte("mp3"),
			}
			files[tt.field] = bytes.Repeat([]byte{'x'}, int(tt.size))

			body := newMultipart().
				field(t, "band_name", "Kraken").
				field(t, "band_email", "k@example.com").
				field(t, "band_province", "Madrid").
				field(t, "band_bio", "doom").
				file(t, "logo_file", "logo.png", files["logo_file"]).
				file(t, "photo_file", "photo.jpg", files["photo_file"]).
				file(t, "song_file", "demo.mp3", files["song_file"])

			rr := env.do(body.request(t, "/api/v1/submit-band"))
			assertStatus(t, rr, http.StatusRequestEntityTooLarge)
			assertDetail(t, rr, tt.detail)

			bands, err := festival.BandsOf(env.document(t))
			if err != nil {
				t.Fatal(err)
			}
			if len(bands) != 0 {
				t.Errorf("band stored despite oversized %s", tt.field)
			}
		})
	}
}

func TestSubmitBandNotMultipart(t *testing.T) {
	env := newTestEnv(t)
	req := env.adminRequest(t, http.MethodPost, "/api/v1/submit-band", `{"band_name":"Kraken"}`)
	assertStatus(t, env.do(req), http.StatusBadRequest)
}

func TestSubmitBandRateLimit(t *testing.T) {
	env := newTestEnv(t, withRateLimit())

	assertStatus(t, env.do(submission(t, "a@example.com").request(t, "/api/v1/submit-band")), http.StatusOK)
	assertStatus(t, env.do(submission(t, "b@example.com").request(t, "/api/v1/submit-band")), http.StatusTooManyRequests)
}

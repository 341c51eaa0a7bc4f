// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

//go:build integration

package mongostore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
	"github.com/SilentBYOB/blacksoundfest-api/internal/festival"
	"github.com/SilentBYOB/blacksoundfest-api/internal/testinfra"
)

func openIntegrationStore(t *testing.T) *Store {
	t.Helper()
	testinfra.SkipIfNoDocker(t)

	ctx := context.Background()
	container, err := testinfra.NewMongoContainer(ctx)
	if err != nil {
		t.Fatalf("start mongo: %v", err)
	}
	t.Cleanup(func() { testinfra.CleanupContainer(t, ctx, container) })

	s, err := Open(ctx, Options{
		URI:        container.URI,
		Database:   "blacksoundfest_test",
		Collection: "festival",
		Timeout:    30 * time.Second,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMongoStore_Lifecycle(t *testing.T) {
	s := openIntegrationStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Get on empty collection = %v, want not_found", err)
	}
	if err := s.SetField(ctx, "info.title", "x"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("SetField on empty collection = %v, want not_found", err)
	}

	doc := festival.NewDocument()
	delete(doc, festival.FieldSponsors)
	created, err := s.Create(ctx, doc)
	if err != nil || !created {
		t.Fatalf("Create = %v, %v; want true, nil", created, err)
	}
	created, err = s.Create(ctx, festival.NewDocument())
	if err != nil || created {
		t.Fatalf("second Create = %v, %v; want false, nil", created, err)
	}
	exists, err := s.Exists(ctx)
	if err != nil || !exists {
		t.Fatalf("Exists = %v, %v; want true, nil", exists, err)
	}

	if err := s.SetField(ctx, "info.title", "Blacksound Fest"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if err := s.SetField(ctx, "info.edition", float64(3)); err != nil {
		t.Fatalf("SetField: %v", err)
	}

	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	info := got["info"].(map[string]any)
	if info["title"] != "Blacksound Fest" || info["edition"] != float64(3) {
		t.Errorf("info = %#v", info)
	}
	if _, ok := got[festival.FieldSponsors]; ok {
		t.Error("sponsors present in storage; back-fill must happen on read only")
	}

	rating := 8
	err = s.UpdateBands(ctx, func(current []festival.Band) ([]festival.Band, error) {
		return append(current, festival.Band{ID: 1, Name: "The Kraken", Email: "kraken@example.com", Rating: &rating}), nil
	})
	if err != nil {
		t.Fatalf("UpdateBands: %v", err)
	}
	got, err = s.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	bands, err := festival.BandsOf(got)
	if err != nil {
		t.Fatalf("BandsOf: %v", err)
	}
	if len(bands) != 1 || bands[0].Rating == nil || *bands[0].Rating != 8 {
		t.Errorf("bands = %+v", bands)
	}
}

func TestMongoStore_ConcurrentAppends(t *testing.T) {
	s := openIntegrationStore(t)
	ctx := context.Background()
	if _, err := s.Create(ctx, festival.NewDocument()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.UpdateBands(ctx, func(current []festival.Band) ([]festival.Band, error) {
				return append(current, festival.Band{ID: festival.NextBandID(current), Email: fmt.Sprintf("b%d@example.com", i)}), nil
			})
			if err != nil {
				t.Errorf("UpdateBands: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	bands, err := festival.BandsOf(got)
	if err != nil {
		t.Fatalf("BandsOf: %v", err)
	}
	if len(bands) != writers {
		t.Errorf("stored %d bands, want %d", len(bands), writers)
	}
}

func TestMongoStore_SetFieldShapes(t *testing.T) {
	s := openIntegrationStore(t)
	ctx := context.Background()
	if _, err := s.Create(ctx, festival.NewDocument()); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.SetField(ctx, "info", "plain"); err != nil {
		t.Fatalf("SetField(info): %v", err)
	}
	if err := s.SetField(ctx, "info.title", "Blacksound Fest"); err != nil {
		t.Fatalf("SetField(info.title) over a string: %v", err)
	}

	news := []any{
		map[string]any{"title": "first", "body": "a"},
		map[string]any{"title": "second", "body": "b"},
	}
	if err := s.SetField(ctx, festival.FieldNews, news); err != nil {
		t.Fatalf("SetField(news): %v", err)
	}
	if err := s.SetField(ctx, "news.0.title", "edited"); err != nil {
		t.Fatalf("SetField(news.0.title): %v", err)
	}
	if err := s.SetField(ctx, "news.5.title", "x"); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("SetField(news.5.title) = %v, want validation", err)
	}
	if err := s.SetField(ctx, "_version.x", 1); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("SetField(_version.x) = %v, want validation", err)
	}

	got, err := s.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	info, ok := got[festival.FieldInfo].(map[string]any)
	if !ok || info["title"] != "Blacksound Fest" {
		t.Errorf("info = %#v, want object replacing the string", got[festival.FieldInfo])
	}
	list, ok := got[festival.FieldNews].([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("news = %#v, want a list of 2", got[festival.FieldNews])
	}
	first := list[0].(map[string]any)
	second := list[1].(map[string]any)
	if first["title"] != "edited" || first["body"] != "a" || second["title"] != "second" {
		t.Errorf("news = %#v", list)
	}
}

// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package festival

import (
	"context"
	"fmt"
	"os"

	"github.com/SilentBYOB/blacksoundfest-api/internal/logging"
)

// LoadSeed reads a festival document from a JSON file. Known fields the
// file omits are filled with empty values.
func LoadSeed(path string) (Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	seed, err := ParseObject(data, "seed document")
	if err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if _, err := BandsOf(seed); err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}

	doc := NewDocument()
	for k, v := range seed {
		doc[k] = v
	}
	return doc, nil
}

// Seed creates the festival document from the file at path unless the store
// already holds one. It reports whether a document was created.
func Seed(ctx context.Context, store Store, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	exists, err := store.Exists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		logging.Debug().Str("seed_file", path).Msg("Festival document exists, skipping seed")
		return false, nil
	}

	doc, err := LoadSeed(path)
	if err != nil {
		return false, err
	}
	created, err := store.Create(ctx, doc)
	if err != nil {
		return false, err
	}
	if created {
		logging.Info().Str("seed_file", path).Str("backend", store.Backend()).Msg("Festival document seeded")
	}
	return created, nil
}

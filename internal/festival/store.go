// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package festival

import (
	"bytes"
	"context"
	"errors"

	"github.com/goccy/go-json"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
)

// MaxUpdateAttempts bounds how often a conditional bands update is retried
// after losing a race against a concurrent writer.
const MaxUpdateAttempts = 10

// ErrUpdateContention is returned when a conditional update lost the race
// MaxUpdateAttempts times in a row.
var ErrUpdateContention = errors.New("festival document is being modified concurrently")

// BandsUpdate receives the current bands and returns the list to store.
// It may be called several times and must not have side effects beyond
// computing its result. Returning an error aborts the update.
type BandsUpdate func(current []Band) ([]Band, error)

// Store holds the single festival document.
//
// Implementations return apperr.KindNotFound when the document does not
// exist. Every method honors ctx.
type Store interface {
	// Get returns the full document.
	Get(ctx context.Context) (Object, error)

	// Exists reports whether the document is present.
	Exists(ctx context.Context) (bool, error)

	// Create stores doc only if no document exists yet, reporting whether
	// it did.
	Create(ctx context.Context, doc Object) (bool, error)

	// SetField replaces the value at a dotted path such as "info.title".
	SetField(ctx context.Context, path string, value any) error

	// UpdateBands atomically replaces the bands list with fn's result,
	// retrying fn when another writer changed the document in between.
	UpdateBands(ctx context.Context, fn BandsUpdate) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Backend names the implementation, e.g. "badger".
	Backend() string

	Close() error
}

// ErrNotFound builds the error returned when the document is absent.
func ErrNotFound() error {
	return apperr.NotFound("Festival data not found")
}

// SetContent writes value at a dotted path of the document held by store.
// Paths under "bands" go through UpdateBands, so the edited list must still
// decode as bands before it is stored; everything else is a plain SetField.
func SetContent(ctx context.Context, store Store, path string, value any) error {
	segments, err := SplitPath(path)
	if err != nil {
		return err
	}
	if segments[0] != FieldBands {
		return store.SetField(ctx, path, value)
	}
	return store.UpdateBands(ctx, func(current []Band) ([]Band, error) {
		list, err := BandsValue(current)
		if err != nil {
			return nil, err
		}
		holder := Object{FieldBands: list}
		if err := SetPath(holder, path, value); err != nil {
			return nil, err
		}
		return strictBands(holder[FieldBands])
	})
}

// strictBands decodes a generic value into bands, rejecting fields a Band
// does not have.
func strictBands(v any) ([]Band, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "bands must be a list of bands", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var bands []Band
	if err := dec.Decode(&bands); err != nil || bands == nil {
		return nil, apperr.Wrap(apperr.KindValidation, "bands must be a list of bands", err)
	}
	return bands, nil
}

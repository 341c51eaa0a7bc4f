// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
	"github.com/SilentBYOB/blacksoundfest-api/internal/festival"
	"github.com/SilentBYOB/blacksoundfest-api/internal/logging"
	"github.com/SilentBYOB/blacksoundfest-api/internal/metrics"
)

const backendName = "badger"

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("badger store is closed")

// Options configures the embedded store.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM; used by tests.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// Key is the document key, "festival" by default.
	Key string

	// GCInterval is how often Serve runs value log GC. Zero disables it.
	GCInterval time.Duration

	// GCRatio is the discard ratio handed to RunValueLogGC.
	GCRatio float64
}

// Store keeps the festival document as one JSON value under a fixed key.
type Store struct {
	db   *badger.DB
	key  []byte
	opts Options

	mu     sync.RWMutex
	closed bool
}

var _ festival.Store = (*Store)(nil)

// Open opens (or creates) the database.
func Open(opts Options) (*Store, error) {
	if opts.Key == "" {
		opts.Key = "festival"
	}
	if opts.GCRatio <= 0 || opts.GCRatio >= 1 {
		opts.GCRatio = 0.5
	}

	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else if opts.Path == "" {
		return nil, errors.New("badger path is required")
	}
	bopts.SyncWrites = opts.SyncWrites
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", opts.Path).
		Bool("in_memory", opts.InMemory).
		Str("key", opts.Key).
		Msg("Festival store opened")

	return &Store{db: db, key: []byte(opts.Key), opts: opts}, nil
}

// Backend implements festival.Store.
func (s *Store) Backend() string { return backendName }

// Get implements festival.Store.
func (s *Store) Get(ctx context.Context) (doc festival.Object, err error) {
	defer observe("get", time.Now(), &err)
	if err := s.check(ctx); err != nil {
		return nil, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		var err error
		doc, err = s.read(txn)
		return err
	})
	return doc, err
}

// Exists implements festival.Store.
func (s *Store) Exists(ctx context.Context) (found bool, err error) {
	defer observe("exists", time.Now(), &err)
	if err := s.check(ctx); err != nil {
		return false, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(s.key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// Create implements festival.Store.
func (s *Store) Create(ctx context.Context, doc festival.Object) (created bool, err error) {
	defer observe("create", time.Now(), &err)
	if err := s.check(ctx); err != nil {
		return false, err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("encode festival document: %w", err)
	}
	err = s.withRetry(ctx, func(txn *badger.Txn) error {
		created = false
		_, err := txn.Get(s.key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		created = true
		return txn.Set(s.key, data)
	})
	return created, err
}

// SetField implements festival.Store.
func (s *Store) SetField(ctx context.Context, path string, value any) (err error) {
	defer observe("set_field", time.Now(), &err)
	if _, err := festival.SplitPath(path); err != nil {
		return err
	}
	return s.update(ctx, func(doc festival.Object) error {
		return festival.SetPath(doc, path, value)
	})
}

// UpdateBands implements festival.Store. The read of the current list and
// the write of the new one happen in one transaction; a concurrent commit
// makes the transaction fail with badger.ErrConflict and fn is run again.
func (s *Store) UpdateBands(ctx context.Context, fn festival.BandsUpdate) (err error) {
	defer observe("update_bands", time.Now(), &err)
	return s.update(ctx, func(doc festival.Object) error {
		current, err := festival.BandsOf(doc)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		value, err := festival.BandsValue(next)
		if err != nil {
			return err
		}
		doc[festival.FieldBands] = value
		return nil
	})
}

// Ping implements festival.Store.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return apperr.Wrap(apperr.KindUnavailable, "Festival store unavailable", ErrClosed)
	}
	return nil
}

// Close implements festival.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("Festival store closed")
	return nil
}

// update reads the document, applies fn and writes it back in one
// transaction.
func (s *Store) update(ctx context.Context, fn func(doc festival.Object) error) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.withRetry(ctx, func(txn *badger.Txn) error {
		doc, err := s.read(txn)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode festival document: %w", err)
		}
		return txn.Set(s.key, data)
	})
}

// withRetry runs fn in an update transaction, retrying on ErrConflict.
func (s *Store) withRetry(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		metrics.StoreConflictRetries.WithLabelValues(backendName).Inc()
		if attempt >= festival.MaxUpdateAttempts {
			return fmt.Errorf("%w: %w", festival.ErrUpdateContention, err)
		}
		logging.Ctx(ctx).Debug().Int("attempt", attempt).Msg("Festival document write conflict, retrying")
	}
}

func (s *Store) read(txn *badger.Txn) (festival.Object, error) {
	item, err := txn.Get(s.key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, festival.ErrNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("read festival document: %w", err)
	}

	var doc festival.Object
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	})
	if err != nil {
		return nil, fmt.Errorf("decode festival document: %w", err)
	}
	if doc == nil {
		doc = festival.Object{}
	}
	return doc, nil
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return apperr.Wrap(apperr.KindUnavailable, "Festival store unavailable", ErrClosed)
	}
	return nil
}

func observe(operation string, start time.Time, err *error) {
	metrics.RecordStoreOperation(backendName, operation, time.Since(start), *err)
}

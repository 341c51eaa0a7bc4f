// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/thejerf/suture/v4"

	"github.com/SilentBYOB/blacksoundfest-api/internal/logging"
)

// RunGC reclaims value log space until badger reports nothing left to
// rewrite. Every document write leaves the previous version behind, so a
// long-running instance needs this.
func (s *Store) RunGC() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if s.opts.InMemory {
		return nil
	}

	start := time.Now()
	runs := 0
	for {
		err := s.db.RunValueLogGC(s.opts.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			return fmt.Errorf("run value log GC: %w", err)
		}
		runs++
	}
	logging.Debug().Int("rewrites", runs).Dur("duration", time.Since(start)).Msg("Festival store GC finished")
	return nil
}

// Serve runs RunGC every GCInterval until ctx is canceled. It implements
// suture.Service.
func (s *Store) Serve(ctx context.Context) error {
	if s.opts.GCInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.opts.GCInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.RunGC(); err != nil {
				if errors.Is(err, ErrClosed) {
					return suture.ErrDoNotRestart
				}
				logging.Warn().Err(err).Msg("Festival store GC failed")
			}
		}
	}
}

// String names the service in supervisor logs.
func (s *Store) String() string {
	return "festival-store-gc"
}

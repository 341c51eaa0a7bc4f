// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
	"github.com/SilentBYOB/blacksoundfest-api/internal/logging"
	"github.com/SilentBYOB/blacksoundfest-api/internal/metrics"
)

// BreakerSettings tunes the circuit breaker around an ObjectStore.
type BreakerSettings struct {
	Name        string
	MaxRequests uint32        // trial requests allowed while half-open
	Interval    time.Duration // closed-state counter reset period
	Timeout     time.Duration // open-state duration before half-open
	MinRequests uint32        // requests needed before the failure ratio counts
	FailureRate float64
}

// DefaultBreakerSettings returns the settings used in production.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:        "object-store",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		MinRequests: 5,
		FailureRate: 0.6,
	}
}

// BreakerStore wraps an ObjectStore with a circuit breaker so a failing
// backend rejects uploads quickly instead of stalling every submission.
// Errors leaving Put are classified with apperr.
type BreakerStore struct {
	next ObjectStore
	cb   *gobreaker.CircuitBreaker[*Stored]
	name string
}

// NewBreakerStore wraps next.
func NewBreakerStore(next ObjectStore, settings BreakerSettings) *BreakerStore {
	name := settings.Name
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*Stored](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			trip := ratio >= settings.FailureRate
			if trip {
				logging.Warn().Str("breaker", name).Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).Msg("Opening object store circuit")
			}
			return trip
		},
		IsSuccessful: func(err error) bool {
			// Client mistakes and cancellations say nothing about backend health.
			return err == nil || errors.Is(err, ErrInvalidPrefix) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", stateToString(from)).
				Str("to", stateToString(to)).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})

	return &BreakerStore{next: next, cb: cb, name: name}
}

// Put writes obj through the breaker.
func (b *BreakerStore) Put(ctx context.Context, obj Object) (*Stored, error) {
	label := metricPrefix(obj.Prefix)
	stored, err := b.cb.Execute(func() (*Stored, error) {
		return b.next.Put(ctx, obj)
	})

	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		metrics.RecordUpload(label, stored.Size, nil)
		return stored, nil
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		// A rejected write is still a failed upload; 503 is kept for a
		// store that was never initialized.
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		metrics.RecordUpload(label, 0, err)
		return nil, apperr.Wrap(apperr.KindUpload, "Object storage temporarily unavailable", err)
	case errors.Is(err, ErrInvalidPrefix):
		metrics.RecordUpload(label, 0, err)
		return nil, apperr.Wrap(apperr.KindValidation, "Invalid path", err)
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		metrics.RecordUpload(label, 0, err)
		return nil, apperr.Wrap(apperr.KindUpload, "Error uploading file", err)
	}
}

// Ready delegates to the wrapped store, reporting an open circuit as not ready.
func (b *BreakerStore) Ready(ctx context.Context) error {
	if b.cb.State() == gobreaker.StateOpen {
		return gobreaker.ErrOpenState
	}
	return b.next.Ready(ctx)
}

// State returns the breaker state as "closed", "half-open" or "open".
func (b *BreakerStore) State() string {
	return stateToString(b.cb.State())
}

// metricPrefix keeps only the first path segment so admin-chosen folders do
// not explode label cardinality.
func metricPrefix(prefix string) string {
	p := strings.Trim(prefix, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	if p == "" || p == ".." {
		return "invalid"
	}
	return p
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

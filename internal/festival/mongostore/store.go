// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package mongostore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
	"github.com/SilentBYOB/blacksoundfest-api/internal/festival"
	"github.com/SilentBYOB/blacksoundfest-api/internal/logging"
	"github.com/SilentBYOB/blacksoundfest-api/internal/metrics"
)

const (
	backendName = "mongo"

	// versionField is bumped by every write; the bands update is
	// conditional on it.
	versionField = "_version"
)

// Options configures the MongoDB backend.
type Options struct {
	URI        string
	Database   string
	Collection string

	// Key is the _id of the festival document, "festival" by default.
	Key string

	// Timeout bounds server selection and the initial ping.
	Timeout time.Duration
}

// Store keeps the festival document in a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	key    string
}

var _ festival.Store = (*Store)(nil)

// Open connects to MongoDB and verifies the connection with a ping.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.URI == "" {
		return nil, errors.New("mongo URI is required")
	}
	if opts.Key == "" {
		opts.Key = "festival"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	client, err := mongo.Connect(options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(opts.Timeout).
		SetAppName("blacksoundfest-api"))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logging.Info().
		Str("database", opts.Database).
		Str("collection", opts.Collection).
		Str("key", opts.Key).
		Msg("Festival store connected to MongoDB")

	return &Store{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
		key:    opts.Key,
	}, nil
}

// Backend implements festival.Store.
func (s *Store) Backend() string { return backendName }

// Get implements festival.Store.
func (s *Store) Get(ctx context.Context) (doc festival.Object, err error) {
	defer observe("get", time.Now(), &err)
	doc, _, err = s.read(ctx)
	return doc, err
}

// Exists implements festival.Store.
func (s *Store) Exists(ctx context.Context) (found bool, err error) {
	defer observe("exists", time.Now(), &err)
	n, err := s.coll.CountDocuments(ctx, s.filter(), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count festival document: %w", err)
	}
	return n > 0, nil
}

// Create implements festival.Store.
func (s *Store) Create(ctx context.Context, doc festival.Object) (created bool, err error) {
	defer observe("create", time.Now(), &err)

	insert := bson.M{}
	for k, v := range doc {
		insert[k] = normalize(v)
	}
	insert["_id"] = s.key
	insert[versionField] = int64(0)

	_, err = s.coll.InsertOne(ctx, insert)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert festival document: %w", err)
	}
	return true, nil
}

// SetField implements festival.Store. The path is applied with
// festival.SetPath to a fresh read and the affected top-level field is
// written back, so lists indexed by the path and scalars standing in the
// way behave exactly as in the other backends.
func (s *Store) SetField(ctx context.Context, path string, value any) (err error) {
	defer observe("set_field", time.Now(), &err)
	segments, err := festival.SplitPath(path)
	if err != nil {
		return err
	}
	root := segments[0]
	if root == versionField || root == "_id" {
		return apperr.Newf(apperr.KindValidation, "Invalid field path %q", path)
	}

	return s.updateVersioned(ctx, func(doc festival.Object) (string, any, error) {
		if err := festival.SetPath(doc, path, value); err != nil {
			return "", nil, err
		}
		return root, normalize(doc[root]), nil
	})
}

// UpdateBands implements festival.Store.
func (s *Store) UpdateBands(ctx context.Context, fn festival.BandsUpdate) (err error) {
	defer observe("update_bands", time.Now(), &err)

	return s.updateVersioned(ctx, func(doc festival.Object) (string, any, error) {
		current, err := festival.BandsOf(doc)
		if err != nil {
			return "", nil, err
		}
		next, err := fn(current)
		if err != nil {
			return "", nil, err
		}
		if next == nil {
			next = []festival.Band{}
		}
		return festival.FieldBands, next, nil
	})
}

// updateVersioned reads the document, lets change compute the new value of
// one top-level field and writes it conditional on the _version read
// alongside. If another writer got there first the update matches nothing
// and change runs again on a fresh read.
func (s *Store) updateVersioned(ctx context.Context, change func(doc festival.Object) (string, any, error)) error {
	for attempt := 1; ; attempt++ {
		doc, version, err := s.read(ctx)
		if err != nil {
			return err
		}
		field, value, err := change(doc)
		if err != nil {
			return err
		}

		res, err := s.coll.UpdateOne(ctx, s.versionFilter(version), bson.M{
			"$set": bson.M{field: value},
			"$inc": bson.M{versionField: 1},
		})
		if err != nil {
			return fmt.Errorf("update festival document: %w", err)
		}
		if res.MatchedCount == 1 {
			return nil
		}

		metrics.StoreConflictRetries.WithLabelValues(backendName).Inc()
		if attempt >= festival.MaxUpdateAttempts {
			return festival.ErrUpdateContention
		}
		logging.Ctx(ctx).Debug().Int("attempt", attempt).Msg("Festival document version changed, retrying")
	}
}

// Ping implements festival.Store.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "Festival store unavailable", err)
	}
	return nil
}

// Close implements festival.Store.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	logging.Info().Msg("Festival store disconnected")
	return nil
}

func (s *Store) filter() bson.M {
	return bson.M{"_id": s.key}
}

// versionFilter matches the document only while it is still at version.
// Documents written before versioning have no _version and count as 0.
func (s *Store) versionFilter(version int64) bson.M {
	if version == 0 {
		return bson.M{"_id": s.key, "$or": bson.A{
			bson.M{versionField: bson.M{"$exists": false}},
			bson.M{versionField: 0},
		}}
	}
	return bson.M{"_id": s.key, versionField: version}
}

// read returns the document without its bookkeeping fields, plus its
// version.
func (s *Store) read(ctx context.Context) (festival.Object, int64, error) {
	raw, err := s.coll.FindOne(ctx, s.filter()).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, 0, festival.ErrNotFound()
	}
	if err != nil {
		return nil, 0, fmt.Errorf("find festival document: %w", err)
	}
	return decode(raw)
}

// decode converts a raw BSON document into the generic JSON form through
// relaxed extended JSON, so numbers come back as float64 like any other
// JSON input.
func decode(raw bson.Raw) (festival.Object, int64, error) {
	var version int64
	if v, err := raw.LookupErr(versionField); err == nil {
		if n, ok := v.Int32OK(); ok {
			version = int64(n)
		} else if n, ok := v.Int64OK(); ok {
			version = n
		} else if f, ok := v.DoubleOK(); ok {
			version = int64(f)
		}
	}

	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, 0, fmt.Errorf("unmarshal festival document: %w", err)
	}
	data, err := bson.MarshalExtJSON(fields, false, false)
	if err != nil {
		return nil, 0, fmt.Errorf("convert festival document: %w", err)
	}
	var doc festival.Object
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("decode festival document: %w", err)
	}
	delete(doc, "_id")
	delete(doc, versionField)
	return doc, version, nil
}

// normalize turns integral float64 values into int64 so numbers that
// arrived as JSON integers are stored as BSON integers.
func normalize(v any) any {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	case map[string]any:
		out := make(bson.M, len(t))
		for k, item := range t {
			out[k] = normalize(item)
		}
		return out
	case []any:
		out := make(bson.A, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}

func observe(operation string, start time.Time, err *error) {
	metrics.RecordStoreOperation(backendName, operation, time.Since(start), *err)
}

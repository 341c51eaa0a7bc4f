// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package festival

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"github.com/SilentBYOB/blacksoundfest-api/internal/storage"
)

// memStore is an in-memory Store for workflow tests.
type memStore struct {
	mu  sync.Mutex
	doc Object // nil means no document

	// beforeUpdate runs once, before the first attempt of UpdateBands, to
	// simulate a concurrent writer.
	beforeUpdate func(doc Object)
	getErr       error
	updates      int
}

func newMemStore(doc Object) *memStore {
	return &memStore{doc: doc}
}

func (m *memStore) Get(context.Context) (Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.doc == nil {
		return nil, ErrNotFound()
	}
	return cloneObject(m.doc), nil
}

func (m *memStore) Exists(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc != nil, nil
}

func (m *memStore) Create(_ context.Context, doc Object) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc != nil {
		return false, nil
	}
	m.doc = cloneObject(doc)
	return true, nil
}

func (m *memStore) SetField(_ context.Context, path string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return ErrNotFound()
	}
	return SetPath(m.doc, path, value)
}

func (m *memStore) UpdateBands(_ context.Context, fn BandsUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return ErrNotFound()
	}
	if m.beforeUpdate != nil {
		m.beforeUpdate(m.doc)
		m.beforeUpdate = nil
	}
	current, err := BandsOf(m.doc)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	value, err := BandsValue(next)
	if err != nil {
		return err
	}
	m.doc[FieldBands] = value
	m.updates++
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Backend() string { return "memory" }
func (m *memStore) Close() error { return nil }

func (m *memStore) bands() []Band {
	m.mu.Lock()
	defer m.mu.Unlock()
	bands, err := BandsOf(m.doc)
	if err != nil {
		panic(err)
	}
	return bands
}

func cloneObject(doc Object) Object {
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	var out Object
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return out
}

// fakeUploader records uploads and fails for prefixes listed in failOn.
type fakeUploader struct {
	mu     sync.Mutex
	calls  []storage.Object
	failOn map[string]error
}

func (f *fakeUploader) Put(_ context.Context, obj storage.Object) (*storage.Stored, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, obj)
	if err := f.failOn[obj.Prefix]; err != nil {
		return nil, err
	}
	n, _ := io.Copy(io.Discard, obj.Body)
	key := obj.Prefix + "/" + obj.Filename
	return &storage.Stored{Key: key, URL: "https://cdn.example.org/files/" + key, Size: n}, nil
}

func (f *fakeUploader) prefixes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Prefix
	}
	return out
}

func upload(name string, size int64) *Upload {
	return &Upload{Filename: name, Size: size, Body: strings.NewReader("data")}
}

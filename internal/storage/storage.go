// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

// Package storage is the object store gateway: it writes uploaded blobs under
// a path prefix and returns a publicly resolvable URL for each.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// Object is a blob to be written.
type Object struct {
	// Prefix is the folder the blob is stored under, e.g. "logos".
	Prefix string

	// Filename is the client-supplied name; only its sanitized stem and
	// extension survive into the stored key.
	Filename string

	// ContentType as reported by the client.
	ContentType string

	// Size in bytes as reported by the multipart header.
	Size int64

	// Body is read to EOF.
	Body io.Reader
}

// Stored describes a written blob.
type Stored struct {
	Key      string
	URL      string
	Size     int64
	Checksum string
}

// ObjectStore writes blobs and reports readiness.
type ObjectStore interface {
	Put(ctx context.Context, obj Object) (*Stored, error)
	Ready(ctx context.Context) error
}

// ErrInvalidPrefix is returned for prefixes that are empty, absolute or try
// to leave the store root.
var ErrInvalidPrefix = errors.New("invalid object path")

// CleanPrefix normalizes a client-supplied folder such as "news/2026/" into
// "news/2026". Backslashes, absolute paths and ".." segments are rejected.
func CleanPrefix(prefix string) (string, error) {
	p := strings.TrimSpace(prefix)
	if p == "" || strings.ContainsAny(p, "\\\x00") || strings.HasPrefix(p, "/") {
		return "", ErrInvalidPrefix
	}
	for _, segment := range strings.Split(strings.Trim(p, "/"), "/") {
		if segment == ".." || segment == "." {
			return "", ErrInvalidPrefix
		}
	}
	p = path.Clean(p)
	if p == "." || p == "" {
		return "", ErrInvalidPrefix
	}
	return p, nil
}

// ctxReader stops a copy once ctx is canceled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// FilesRoute is where FileStore blobs are served from.
const FilesRoute = "/files/"

// FileStore keeps blobs on the local filesystem and serves them over HTTP.
//
// Writes go to a temporary file, are fsynced and then atomically renamed so
// a reader never sees a partial blob.
type FileStore struct {
	root    string
	baseURL string
	now     func() time.Time
}

// NewFileStore creates root if needed. publicBaseURL is the externally
// reachable origin of this server, e.g. "https://api.blacksoundfest.example".
func NewFileStore(root, publicBaseURL string) (*FileStore, error) {
	if root == "" {
		return nil, errors.New("object store root directory is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create object store root %s: %w", root, err)
	}
	return &FileStore{
		root:    root,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		now:     time.Now,
	}, nil
}

// Put streams obj.Body to disk under obj.Prefix and returns its public URL.
func (fs *FileStore) Put(ctx context.Context, obj Object) (*Stored, error) {
	prefix, err := CleanPrefix(obj.Prefix)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := path.Join(prefix, fs.storageName(obj.Filename))
	fullPath := filepath.Join(fs.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	hasher := sha256.New()
	size, err := io.Copy(tmp, io.TeeReader(ctxReader{ctx: ctx, r: obj.Body}, hasher))
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err := os.Chmod(tmpPath, 0o640); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to chmod %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to rename %s: %w", key, err)
	}

	return &Stored{
		Key:      key,
		URL:      fs.PublicURL(key),
		Size:     size,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// PublicURL returns the URL under which key is served.
func (fs *FileStore) PublicURL(key string) string {
	return fs.baseURL + FilesRoute + (&url.URL{Path: key}).EscapedPath()
}

// Ready reports whether the root directory exists and is writable.
func (fs *FileStore) Ready(_ context.Context) error {
	f, err := os.CreateTemp(fs.root, ".ready-*")
	if err != nil {
		return fmt.Errorf("object store root not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// Handler serves stored blobs. Mount it at FilesRoute. Directory listings
// and dot-files (in-flight temp files) are not served.
func (fs *FileStore) Handler() http.Handler {
	files := http.FileServer(http.Dir(fs.root))
	return http.StripPrefix(FilesRoute, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		if name == "" || strings.HasSuffix(name, "/") || strings.HasPrefix(path.Base(name), ".") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}))
}

// storageName builds "<stem>_<timestamp>_<uuid8><ext>" from a client filename.
func (fs *FileStore) storageName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := ""
	if e := sanitize(strings.TrimPrefix(filepath.Ext(base), ".")); e != "" {
		ext = "." + strings.ToLower(e)
	}
	stem := sanitize(strings.TrimSuffix(base, filepath.Ext(base)))
	if len(stem) > 50 {
		stem = stem[:50]
	}
	if stem == "" {
		stem = "file"
	}
	if len(ext) > 10 {
		ext = ""
	}

	ts := fs.now().UTC().Format("20060102150405")
	return fmt.Sprintf("%s_%s_%s%s", stem, ts, uuid.New().String()[:8], ext)
}

// sanitize keeps ASCII letters, digits, '-', '_' and '.'; everything else
// becomes '-'.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(b.String(), ".")
}

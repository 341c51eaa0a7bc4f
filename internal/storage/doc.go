// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

/*
Package storage writes uploaded blobs (band logos, photos, demo songs and
admin content files) and hands back public URLs for them.

# Backends

FileStore keeps blobs on the local filesystem under a root directory and
serves them from /files/ on the API itself:

	fs, err := storage.NewFileStore("./data/objects", "https://api.example.org")
	objects := storage.NewBreakerStore(fs, storage.DefaultBreakerSettings())
	stored, err := objects.Put(ctx, storage.Object{
	    Prefix:   "logos",
	    Filename: header.Filename,
	    Body:     file,
	})
	// stored.URL == "https://api.example.org/files/logos/kraken_20260101120000_1a2b3c4d.png"

Keys have the form "<prefix>/<stem>_<utc timestamp>_<short uuid><ext>", so
two uploads with the same client filename never collide.

# Circuit Breaker

BreakerStore opens after repeated backend failures and then rejects uploads
with apperr.KindUpload, the same 500 as a failed write, until a trial
request in the half-open state succeeds. Invalid prefixes and canceled
requests do not count as failures.
*/
package storage

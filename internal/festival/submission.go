// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package festival

import (
	"context"
	"io"
	"strings"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
	"github.com/SilentBYOB/blacksoundfest-api/internal/logging"
	"github.com/SilentBYOB/blacksoundfest-api/internal/metrics"
	"github.com/SilentBYOB/blacksoundfest-api/internal/storage"
	"github.com/SilentBYOB/blacksoundfest-api/internal/validation"
)

// MB is the unit used for upload ceilings.
const MB int64 = 1024 * 1024

// Object store prefixes for band assets.
const (
	PrefixLogos  = "logos"
	PrefixPhotos = "photos"
	PrefixSongs  = "songs"
)

// Limits are the per-asset upload ceilings in bytes, inclusive.
type Limits struct {
	Logo  int64
	Photo int64
	Song  int64
}

// DefaultLimits returns 2 MB for logos, 3 MB for photos and 10 MB for songs.
func DefaultLimits() Limits {
	return Limits{Logo: 2 * MB, Photo: 3 * MB, Song: 10 * MB}
}

// Asset names as they appear in size errors.
const (
	AssetLogo  = "Logo"
	AssetPhoto = "Photo"
	AssetSong  = "Song"
)

// Of returns the ceiling of asset, or 0 for an unknown one.
func (l Limits) Of(asset string) int64 {
	switch asset {
	case AssetLogo:
		return l.Logo
	case AssetPhoto:
		return l.Photo
	case AssetSong:
		return l.Song
	}
	return 0
}

// Check returns a KindPayloadTooLarge error naming asset when size is above
// its ceiling.
func (l Limits) Check(asset string, size int64) error {
	if limit := l.Of(asset); size > limit {
		return apperr.Newf(apperr.KindPayloadTooLarge, "%s file exceeds the %d MB limit", asset, limit/MB)
	}
	return nil
}

// Upload is one file of a submission.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Submission is a band inscription as received from the public form.
type Submission struct {
	Name     string  `form:"band_name" validate:"required,notblank,max=200"`
	Email    string  `form:"band_email" validate:"required,notblank,max=320"`
	Province string  `form:"band_province" validate:"required,notblank,max=200"`
	Bio      string  `form:"band_bio" validate:"required,notblank,max=10000"`
	Logo     *Upload `form:"logo_file" validate:"required"`
	Photo    *Upload `form:"photo_file" validate:"required"`
	Song     *Upload `form:"song_file" validate:"required"`
}

// Uploader writes blobs; storage.ObjectStore satisfies it.
type Uploader interface {
	Put(ctx context.Context, obj storage.Object) (*storage.Stored, error)
}

// Submitter runs the band submission workflow.
type Submitter struct {
	store       Store
	uploader    Uploader
	limits      Limits
	exemptEmail string
}

// NewSubmitter creates a Submitter. An empty exemptEmail disables the
// uniqueness exemption.
func NewSubmitter(store Store, uploader Uploader, limits Limits, exemptEmail string) *Submitter {
	return &Submitter{
		store:       store,
		uploader:    uploader,
		limits:      limits,
		exemptEmail: NormalizeEmail(exemptEmail),
	}
}

// Limits returns the ceilings Submit enforces.
func (s *Submitter) Limits() Limits { return s.limits }

// Submit validates sub, uploads its three files and appends a new band,
// returning the band id.
//
// The size ceilings are checked for every file before anything is
// uploaded. Blobs already uploaded when a later step fails are left in
// place. The email uniqueness check runs once before uploading and again
// inside the conditional bands update.
func (s *Submitter) Submit(ctx context.Context, sub Submission) (int, error) {
	id, err := s.submit(ctx, sub)
	if err != nil {
		metrics.RecordSubmission(apperr.KindOf(err).String())
		return 0, err
	}
	metrics.RecordSubmission("ok")
	return id, nil
}

func (s *Submitter) submit(ctx context.Context, sub Submission) (int, error) {
	if err := validation.ValidateStruct(sub); err != nil {
		return 0, err
	}
	if err := s.checkSizes(sub); err != nil {
		return 0, err
	}

	email := strings.TrimSpace(sub.Email)
	doc, err := s.store.Get(ctx)
	if err != nil {
		return 0, err
	}
	bands, err := BandsOf(doc)
	if err != nil {
		return 0, err
	}
	if err := s.checkUnique(bands, email); err != nil {
		return 0, err
	}

	logoURL, err := s.upload(ctx, PrefixLogos, sub.Logo)
	if err != nil {
		return 0, err
	}
	photoURL, err := s.upload(ctx, PrefixPhotos, sub.Photo)
	if err != nil {
		return 0, err
	}
	songURL, err := s.upload(ctx, PrefixSongs, sub.Song)
	if err != nil {
		return 0, err
	}

	band := Band{
		Name:                strings.TrimSpace(sub.Name),
		Email:               email,
		Province:            strings.TrimSpace(sub.Province),
		Bio:                 strings.TrimSpace(sub.Bio),
		Logo:                logoURL,
		Photo:               photoURL,
		SongURL:             songURL,
		QualificationStatus: QualificationReceived,
	}
	err = s.store.UpdateBands(ctx, func(current []Band) ([]Band, error) {
		if err := s.checkUnique(current, email); err != nil {
			return nil, err
		}
		band.ID = NextBandID(current)
		return append(current, band), nil
	})
	if err != nil {
		return 0, err
	}

	logging.Ctx(ctx).Info().Int("band_id", band.ID).Str("band", band.Name).Msg("Band submission stored")
	return band.ID, nil
}

func (s *Submitter) checkSizes(sub Submission) error {
	checks := []struct {
		asset string
		file  *Upload
	}{
		{AssetLogo, sub.Logo},
		{AssetPhoto, sub.Photo},
		{AssetSong, sub.Song},
	}
	for _, c := range checks {
		if err := s.limits.Check(c.asset, c.file.Size); err != nil {
			return err
		}
	}
	return nil
}

func (s *Submitter) checkUnique(bands []Band, email string) error {
	normalized := NormalizeEmail(email)
	if s.exemptEmail != "" && normalized == s.exemptEmail {
		return nil
	}
	for _, b := range bands {
		if NormalizeEmail(b.Email) == normalized {
			return apperr.Conflict("Email already registered")
		}
	}
	return nil
}

func (s *Submitter) upload(ctx context.Context, prefix string, file *Upload) (string, error) {
	stored, err := s.uploader.Put(ctx, storage.Object{
		Prefix:      prefix,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Size:        file.Size,
		Body:        file.Body,
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return "", err
		}
		return "", apperr.Wrap(apperr.KindUpload, "Error uploading "+prefix+" file", err)
	}
	return stored.URL, nil
}

// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

package festival

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/SilentBYOB/blacksoundfest-api/internal/apperr"
	"github.com/SilentBYOB/blacksoundfest-api/internal/validation"
)

// Object is a JSON object as decoded by encoding/json compatible decoders:
// values are nil, bool, float64, string, []any or map[string]any.
type Object = map[string]any

// Top-level document fields.
const (
	FieldLogoSVG  = "logoSVG"
	FieldInfo     = "info"
	FieldBands    = "bands"
	FieldNews     = "news"
	FieldBracket  = "bracket"
	FieldSponsors = "sponsors"
)

// QualificationReceived is the status of every freshly submitted band.
const QualificationReceived = "Maqueta recibida"

// Band is one entry of the bands list.
type Band struct {
	ID                  int    `json:"id" bson:"id"`
	Name                string `json:"name" bson:"name"`
	Email               string `json:"email" bson:"email"`
	Province            string `json:"province" bson:"province"`
	Bio                 string `json:"bio" bson:"bio"`
	Logo                string `json:"logo,omitempty" bson:"logo,omitempty"`
	Photo               string `json:"photo,omitempty" bson:"photo,omitempty"`
	SongURL             string `json:"songUrl,omitempty" bson:"songUrl,omitempty"`
	QualificationStatus string `json:"qualificationStatus" bson:"qualificationStatus"`
	Rating              *int   `json:"rating,omitempty" bson:"rating,omitempty"`
}

// NewDocument returns an empty festival document with every known field set.
func NewDocument() Object {
	return Object{
		FieldLogoSVG:  "",
		FieldInfo:     Object{},
		FieldBands:    []any{},
		FieldNews:     []any{},
		FieldBracket:  Object{},
		FieldSponsors: []any{},
	}
}

// WithSponsors returns doc with sponsors set to an empty list when absent.
// doc itself is not modified.
func WithSponsors(doc Object) Object {
	if _, ok := doc[FieldSponsors]; ok {
		return doc
	}
	out := make(Object, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out[FieldSponsors] = []any{}
	return out
}

// SplitPath validates a dotted document path and returns its segments.
func SplitPath(path string) ([]string, error) {
	if !validation.ValidDotPath(path) {
		return nil, apperr.Newf(apperr.KindValidation, "Invalid field path %q", path)
	}
	return strings.Split(path, "."), nil
}

// SetPath replaces the value at a dotted path inside doc, creating
// intermediate objects. A segment that meets a list must be the decimal
// index of an existing element; the element is edited in place. Any other
// intermediate value that is neither an object nor a list is replaced by
// an object.
func SetPath(doc Object, path string, value any) error {
	segments, err := SplitPath(path)
	if err != nil {
		return err
	}
	var container any = doc
	for i, segment := range segments {
		last := i == len(segments)-1
		switch c := container.(type) {
		case map[string]any:
			if last {
				c[segment] = value
				return nil
			}
			next := c[segment]
			if !isContainer(next) {
				next = Object{}
				c[segment] = next
			}
			container = next
		case []any:
			idx, err := listIndex(path, segment, len(c))
			if err != nil {
				return err
			}
			if last {
				c[idx] = value
				return nil
			}
			next := c[idx]
			if !isContainer(next) {
				next = Object{}
				c[idx] = next
			}
			container = next
		}
	}
	return nil
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// listIndex parses segment as an index into a list of n elements.
func listIndex(path, segment string, n int) (int, error) {
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, apperr.Newf(apperr.KindValidation,
				"Invalid field path %q: %q is not a list index", path, segment)
		}
	}
	idx, err := strconv.Atoi(segment)
	if err != nil || idx >= n {
		return 0, apperr.Newf(apperr.KindValidation,
			"Invalid field path %q: index %s out of range for a list of %d", path, segment, n)
	}
	return idx, nil
}

// BandsOf extracts the bands list from a document. A missing or null field
// is an empty list.
func BandsOf(doc Object) ([]Band, error) {
	raw, ok := doc[FieldBands]
	if !ok || raw == nil {
		return []Band{}, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Stored bands are malformed", err)
	}
	bands, err := ParseBands(data)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "Stored bands are malformed", err)
	}
	return bands, nil
}

// ParseBands decodes a JSON array of bands.
func ParseBands(data []byte) ([]Band, error) {
	var bands []Band
	if err := json.Unmarshal(data, &bands); err != nil || bands == nil {
		return nil, apperr.Wrap(apperr.KindValidation, "bands must be a list of bands", err)
	}
	return bands, nil
}

// BandsValue converts bands into the generic form stored in a document.
func BandsValue(bands []Band) ([]any, error) {
	data, err := json.Marshal(bands)
	if err != nil {
		return nil, fmt.Errorf("encode bands: %w", err)
	}
	var out []any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode bands: %w", err)
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

// NextBandID returns max(ids)+1, or 1 for an empty list.
func NextBandID(bands []Band) int {
	maxID := 0
	for _, b := range bands {
		if b.ID > maxID {
			maxID = b.ID
		}
	}
	return maxID + 1
}

// NormalizeEmail is the form used for uniqueness comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseObjectList decodes a JSON array whose items are all objects.
func ParseObjectList(data []byte, field string) ([]any, error) {
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return nil, apperr.Newf(apperr.KindValidation, "%s must be a list of objects", field)
	}
	out := make([]any, len(items))
	for i, item := range items {
		if item == nil {
			return nil, apperr.Newf(apperr.KindValidation, "%s must be a list of objects", field)
		}
		out[i] = item
	}
	return out, nil
}

// ParseObject decodes a JSON object.
func ParseObject(data []byte, field string) (Object, error) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, apperr.Newf(apperr.KindValidation, "%s must be an object", field)
	}
	return obj, nil
}

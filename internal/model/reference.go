package model

import (
	"fmt"
	"time"
)

// ReferenceKind distinguishes the two classes of cached reference material.
type ReferenceKind string

const (
	// KindSection is a tax code section summary (e.g. section 162).
	KindSection ReferenceKind = "section"
	// KindPublication is an IRS publication summary (e.g. publication 463).
	KindPublication ReferenceKind = "publication"
)

// ParseReferenceKind converts a stored or user-supplied string into a
// ReferenceKind.
func ParseReferenceKind(s string) (ReferenceKind, error) {
	switch ReferenceKind(s) {
	case KindSection, KindPublication:
		return ReferenceKind(s), nil
	default:
		return "", fmt.Errorf("unknown reference kind %q", s)
	}
}

// ReferenceEntry is one cached piece of reference material. Entries are
// replaced whole on refresh; freshness is derived from FetchedAt rather
// than stored.
type ReferenceEntry struct {
	Kind      ReferenceKind `json:"kind"`
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Source    string        `json:"source"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Key is the cache key for the entry, unique across kinds.
func (e ReferenceEntry) Key() string {
	return ReferenceKey(e.Kind, e.ID)
}

// FreshAt reports whether the entry is still within its TTL at the given
// instant. A stale entry remains servable; it is only a refresh trigger.
func (e ReferenceEntry) FreshAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) <= ttl
}

// ReferenceKey builds the canonical cache key for a kind/id pair.
func ReferenceKey(kind ReferenceKind, id string) string {
	return string(kind) + "/" + id
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

// Package store provides document persistence for user accounts.
//
// A Collection is a narrow filter-based view over one logical collection of
// documents. Three implementations exist:
//   - Memory - in-process, used by tests and the memory driver
//   - mongodb.Collection - MongoDB via the official v2 driver
//   - postgres.Collection - PostgreSQL JSONB documents via pgx
//
// Every operation touches at most one document and is atomic with respect to
// that document. Uniqueness is enforced by the backing store (unique indexes),
// never by read-then-write sequences in callers.
package store

import (
	"context"
	"errors"
)

// OrKey is the Filter key holding a list of alternative filters.
const OrKey = "$or"

// ErrDuplicate is returned when a write would violate a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// Filter selects documents by exact field equality. All entries must match.
// A Filter built by AnyOf matches when any of its alternatives matches.
type Filter map[string]any

// AnyOf returns a Filter matching documents that satisfy at least one of the
// given filters. Empty filters are skipped, since they would match everything.
func AnyOf(filters ...Filter) Filter {
	alts := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if len(f) > 0 {
			alts = append(alts, f)
		}
	}
	return Filter{OrKey: alts}
}

// Alternatives returns the OR branches of f, or nil when f is a plain filter.
func (f Filter) Alternatives() ([]Filter, bool) {
	v, ok := f[OrKey]
	if !ok {
		return nil, false
	}
	alts, ok := v.([]Filter)
	return alts, ok
}

// Update describes a partial document modification. Set and Unset are applied
// together in a single atomic write.
type Update struct {
	Set   map[string]any
	Unset []string
}

// IsEmpty reports whether the update would change nothing.
func (u Update) IsEmpty() bool {
	return len(u.Set) == 0 && len(u.Unset) == 0
}

// Collection is the document store contract used by the services.
//
// FindOne returns (nil, nil) when nothing matches and FindMany returns an empty
// slice; absence is not an error. Insert returns an error wrapping ErrDuplicate
// when a unique constraint rejects the document. UpdateFields modifies the first
// matching document and reports how many documents matched (0 or 1), which lets
// callers build compare-and-swap updates by including the expected current
// value in the filter.
type Collection[T any] interface {
	FindOne(ctx context.Context, filter Filter) (*T, error)
	FindMany(ctx context.Context, filter Filter) ([]T, error)
	Insert(ctx context.Context, doc *T) error
	UpdateFields(ctx context.Context, filter Filter, update Update) (int64, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

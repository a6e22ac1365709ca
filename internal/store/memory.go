// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package store

import (
	"context"
	"maps"
	"reflect"
	"sync"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Memory is an in-process Collection. Documents are normalized through their
// BSON encoding so filters see the same field names a real store would.
type Memory[T any] struct {
	mu     sync.RWMutex
	docs   []bson.M
	unique []string
}

// NewMemory creates an empty in-memory collection. Each field in uniqueFields
// behaves like a unique index that ignores missing and empty values.
func NewMemory[T any](uniqueFields ...string) *Memory[T] {
	return &Memory[T]{unique: uniqueFields}
}

// Compile-time interface checks.
var (
	_ Collection[struct{}] = (*Memory[struct{}])(nil)
	_ Pinger               = (*Memory[struct{}])(nil)
)

// Ping always succeeds.
func (m *Memory[T]) Ping(context.Context) error { return nil }

// Len returns the number of stored documents.
func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// FindOne returns the first document matching filter, or nil.
func (m *Memory[T]) FindOne(_ context.Context, filter Filter) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, doc := range m.docs {
		if matches(doc, filter) {
			return decode[T](doc)
		}
	}
	return nil, nil
}

// FindMany returns all documents matching filter in insertion order.
func (m *Memory[T]) FindMany(_ context.Context, filter Filter) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]T, 0)
	for _, doc := range m.docs {
		if !matches(doc, filter) {
			continue
		}
		v, err := decode[T](doc)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	return result, nil
}

// Insert stores doc, rejecting it when a unique field collides.
func (m *Memory[T]) Insert(_ context.Context, doc *T) error {
	if doc == nil {
		return oops.Code("STORE_INVALID_DOCUMENT").Errorf("document is required")
	}
	encoded, err := encode(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkUnique(encoded, -1); err != nil {
		return err
	}
	m.docs = append(m.docs, encoded)
	return nil
}

// UpdateFields applies update to the first document matching filter.
func (m *Memory[T]) UpdateFields(_ context.Context, filter Filter, update Update) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, doc := range m.docs {
		if !matches(doc, filter) {
			continue
		}

		next := maps.Clone(doc)
		for k, v := range update.Set {
			next[k] = v
		}
		for _, k := range update.Unset {
			delete(next, k)
		}
		normalized, err := encode(next)
		if err != nil {
			return 0, err
		}
		if err := m.checkUnique(normalized, i); err != nil {
			return 0, err
		}
		m.docs[i] = normalized
		return 1, nil
	}
	return 0, nil
}

func (m *Memory[T]) checkUnique(candidate bson.M, skip int) error {
	for _, field := range m.unique {
		val, ok := candidate[field]
		if !ok || val == nil || val == "" {
			continue
		}
		for i, doc := range m.docs {
			if i == skip {
				continue
			}
			if existing, ok := doc[field]; ok && equalValues(existing, val) {
				return oops.Code("STORE_DUPLICATE").With("field", field).Wrap(ErrDuplicate)
			}
		}
	}
	return nil
}

func encode(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, oops.Code("STORE_ENCODE_FAILED").Wrap(err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, oops.Code("STORE_ENCODE_FAILED").Wrap(err)
	}
	return doc, nil
}

func decode[T any](doc bson.M) (*T, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, oops.Code("STORE_DECODE_FAILED").Wrap(err)
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, oops.Code("STORE_DECODE_FAILED").Wrap(err)
	}
	return &out, nil
}

func matches(doc bson.M, filter Filter) bool {
	if alts, ok := filter.Alternatives(); ok {
		for _, alt := range alts {
			if matches(doc, alt) {
				return true
			}
		}
		return false
	}

	for k, want := range filter {
		got, ok := doc[k]
		if !ok {
			if want != nil {
				return false
			}
			continue
		}
		if !equalValues(got, want) {
			return false
		}
	}
	return true
}

// equalValues compares scalars after collapsing numeric widths, since BSON
// may hand back int32 for a value stored from an int64 and vice versa.
func equalValues(a, b any) bool {
	return reflect.DeepEqual(normalizeNumber(a), normalizeNumber(b))
}

func normalizeNumber(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()) //nolint:gosec // document values fit in int64
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return v
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

// Package postgres implements store.Collection as JSONB documents in PostgreSQL.
//
// Each collection is a table of (id, doc) rows where doc holds the document's
// JSON encoding. Filters compile to JSONB containment so they use the GIN
// index, and uniqueness comes from expression indexes created by the
// embedded migrations.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store"
)

// Querier is the subset of pgxpool.Pool the collection needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Collection stores documents of type T in a single table.
type Collection[T any] struct {
	db    Querier
	table string
	ident string
}

// NewCollection returns a collection over table. T must encode an "_id" string
// field to JSON.
func NewCollection[T any](db Querier, table string) *Collection[T] {
	return &Collection[T]{
		db:    db,
		table: table,
		ident: pgx.Identifier{table}.Sanitize(),
	}
}

// Compile-time interface checks.
var (
	_ store.Collection[struct{}] = (*Collection[struct{}])(nil)
	_ store.Pinger               = (*Collection[struct{}])(nil)
)

// Ping checks the database is reachable.
func (c *Collection[T]) Ping(ctx context.Context) error {
	if err := c.db.Ping(ctx); err != nil {
		return oops.Code("STORE_PING_FAILED").With("driver", "postgres").Wrap(err)
	}
	return nil
}

// FindOne returns the first matching document, or nil when none matches.
func (c *Collection[T]) FindOne(ctx context.Context, filter store.Filter) (*T, error) {
	where, args, err := buildWhere(filter, nil)
	if err != nil {
		return nil, err
	}

	var raw []byte
	query := fmt.Sprintf("SELECT doc FROM %s WHERE %s ORDER BY id LIMIT 1", c.ident, where)
	err = c.db.QueryRow(ctx, query, args...).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("STORE_FIND_FAILED").With("table", c.table).Wrap(err)
	}
	return c.decode(raw)
}

// FindMany returns every matching document ordered by id.
func (c *Collection[T]) FindMany(ctx context.Context, filter store.Filter) ([]T, error) {
	where, args, err := buildWhere(filter, nil)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT doc FROM %s WHERE %s ORDER BY id", c.ident, where)
	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, oops.Code("STORE_FIND_FAILED").With("table", c.table).Wrap(err)
	}
	defer rows.Close()

	result := make([]T, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, oops.Code("STORE_FIND_FAILED").With("table", c.table).Wrap(err)
		}
		doc, err := c.decode(raw)
		if err != nil {
			return nil, err
		}
		result = append(result, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("STORE_FIND_FAILED").With("table", c.table).Wrap(err)
	}
	return result, nil
}

// Insert stores doc. A unique index violation wraps store.ErrDuplicate.
func (c *Collection[T]) Insert(ctx context.Context, doc *T) error {
	if doc == nil {
		return oops.Code("STORE_INVALID_DOCUMENT").Errorf("document is required")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return oops.Code("STORE_ENCODE_FAILED").With("table", c.table).Wrap(err)
	}
	var head struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil || head.ID == "" {
		return oops.Code("STORE_INVALID_DOCUMENT").With("table", c.table).Errorf("document has no _id")
	}

	query := fmt.Sprintf("INSERT INTO %s (id, doc) VALUES ($1, $2::jsonb)", c.ident)
	if _, err := c.db.Exec(ctx, query, head.ID, string(raw)); err != nil {
		return c.writeError("STORE_INSERT_FAILED", err)
	}
	return nil
}

// UpdateFields applies update to the first matching row. The row is selected
// FOR UPDATE in the same statement, so a concurrent writer that changed the
// row first makes this update match nothing.
func (c *Collection[T]) UpdateFields(ctx context.Context, filter store.Filter, update store.Update) (int64, error) {
	set := update.Set
	if set == nil {
		set = map[string]any{}
	}
	setJSON, err := json.Marshal(set)
	if err != nil {
		return 0, oops.Code("STORE_ENCODE_FAILED").With("table", c.table).Wrap(err)
	}
	unset := update.Unset
	if unset == nil {
		unset = []string{}
	}

	where, args, err := buildWhere(filter, []any{unset, string(setJSON)})
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(
		"UPDATE %[1]s SET doc = (doc - $1::text[]) || $2::jsonb WHERE id = (SELECT id FROM %[1]s WHERE %[2]s ORDER BY id LIMIT 1 FOR UPDATE)",
		c.ident, where)
	tag, err := c.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, c.writeError("STORE_UPDATE_FAILED", err)
	}
	return tag.RowsAffected(), nil
}

func (c *Collection[T]) decode(raw []byte) (*T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, oops.Code("STORE_DECODE_FAILED").With("table", c.table).Wrap(err)
	}
	return &out, nil
}

func (c *Collection[T]) writeError(code string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("STORE_DUPLICATE").
			With("table", c.table).
			With("constraint", pgErr.ConstraintName).
			Wrapf(store.ErrDuplicate, "%v", err)
	}
	return oops.Code(code).With("table", c.table).Wrap(err)
}

// buildWhere compiles filter to a boolean SQL expression, appending its
// parameters to args. Plain filters become a single JSONB containment test.
func buildWhere(filter store.Filter, args []any) (string, []any, error) {
	if alts, ok := filter.Alternatives(); ok {
		if len(alts) == 0 {
			return "FALSE", args, nil
		}
		parts := make([]string, 0, len(alts))
		for _, alt := range alts {
			var part string
			var err error
			part, args, err = buildWhere(alt, args)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, part)
		}
		return "(" + strings.Join(parts, " OR ") + ")", args, nil
	}

	if len(filter) == 0 {
		return "TRUE", args, nil
	}
	raw, err := json.Marshal(map[string]any(filter))
	if err != nil {
		return "", nil, oops.Code("STORE_FILTER_INVALID").Wrap(err)
	}
	args = append(args, string(raw))
	return fmt.Sprintf("doc @> $%d::jsonb", len(args)), args, nil
}

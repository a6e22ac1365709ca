// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

// Package mongodb implements store.Collection on MongoDB.
package mongodb

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store"
)

// Collection adapts a mongo collection to store.Collection.
type Collection[T any] struct {
	coll *mongo.Collection
}

// NewCollection wraps coll. Documents are encoded with their bson tags.
func NewCollection[T any](coll *mongo.Collection) *Collection[T] {
	return &Collection[T]{coll: coll}
}

// Compile-time interface check.
var _ store.Collection[struct{}] = (*Collection[struct{}])(nil)

// FindOne returns the first matching document, or nil when none matches.
func (c *Collection[T]) FindOne(ctx context.Context, filter store.Filter) (*T, error) {
	var out T
	err := c.coll.FindOne(ctx, toFilter(filter)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("STORE_FIND_FAILED").
			With("collection", c.coll.Name()).
			Wrap(err)
	}
	return &out, nil
}

// FindMany returns every matching document.
func (c *Collection[T]) FindMany(ctx context.Context, filter store.Filter) ([]T, error) {
	cursor, err := c.coll.Find(ctx, toFilter(filter))
	if err != nil {
		return nil, oops.Code("STORE_FIND_FAILED").
			With("collection", c.coll.Name()).
			Wrap(err)
	}

	result := make([]T, 0)
	if err := cursor.All(ctx, &result); err != nil {
		return nil, oops.Code("STORE_DECODE_FAILED").
			With("collection", c.coll.Name()).
			Wrap(err)
	}
	return result, nil
}

// Insert stores doc. A unique index violation wraps store.ErrDuplicate.
func (c *Collection[T]) Insert(ctx context.Context, doc *T) error {
	if doc == nil {
		return oops.Code("STORE_INVALID_DOCUMENT").Errorf("document is required")
	}
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return oops.Code("STORE_DUPLICATE").
				With("collection", c.coll.Name()).
				Wrapf(store.ErrDuplicate, "%v", err)
		}
		return oops.Code("STORE_INSERT_FAILED").
			With("collection", c.coll.Name()).
			Wrap(err)
	}
	return nil
}

// UpdateFields applies update to the first matching document with a single
// UpdateOne, so the filter doubles as the compare part of compare-and-swap.
func (c *Collection[T]) UpdateFields(ctx context.Context, filter store.Filter, update store.Update) (int64, error) {
	f := toFilter(filter)
	if update.IsEmpty() {
		n, err := c.coll.CountDocuments(ctx, f, options.Count().SetLimit(1))
		if err != nil {
			return 0, oops.Code("STORE_UPDATE_FAILED").With("collection", c.coll.Name()).Wrap(err)
		}
		return n, nil
	}

	res, err := c.coll.UpdateOne(ctx, f, toUpdate(update))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, oops.Code("STORE_DUPLICATE").
				With("collection", c.coll.Name()).
				Wrapf(store.ErrDuplicate, "%v", err)
		}
		return 0, oops.Code("STORE_UPDATE_FAILED").
			With("collection", c.coll.Name()).
			Wrap(err)
	}
	return res.MatchedCount, nil
}

// matchNothing is used for an OR with no alternatives; every document has an _id.
var matchNothing = bson.M{"_id": bson.M{"$exists": false}}

func toFilter(filter store.Filter) bson.M {
	if alts, ok := filter.Alternatives(); ok {
		if len(alts) == 0 {
			return matchNothing
		}
		or := make(bson.A, 0, len(alts))
		for _, alt := range alts {
			or = append(or, toFilter(alt))
		}
		return bson.M{"$or": or}
	}

	out := make(bson.M, len(filter))
	for k, v := range filter {
		out[k] = v
	}
	return out
}

func toUpdate(update store.Update) bson.M {
	out := bson.M{}
	if len(update.Set) > 0 {
		set := make(bson.M, len(update.Set))
		for k, v := range update.Set {
			set[k] = v
		}
		out["$set"] = set
	}
	if len(update.Unset) > 0 {
		unset := make(bson.M, len(update.Unset))
		for _, k := range update.Unset {
			unset[k] = ""
		}
		out["$unset"] = unset
	}
	return out
}

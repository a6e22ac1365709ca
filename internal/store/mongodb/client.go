// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package mongodb

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store"
)

// Options configures Open.
type Options struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	Retry          store.ConnectRetry
	Logger         *slog.Logger
}

// Client owns a MongoDB connection and the database the service uses.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to MongoDB and pings the primary, retrying transient failures.
func Open(ctx context.Context, opts Options) (*Client, error) {
	if opts.URI == "" {
		return nil, oops.Code("STORE_CONFIG_INVALID").Errorf("mongodb uri is required")
	}
	if opts.Database == "" {
		return nil, oops.Code("STORE_CONFIG_INVALID").Errorf("mongodb database is required")
	}

	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(opts.ConnectTimeout)
		clientOpts.SetServerSelectionTimeout(opts.ConnectTimeout)
	}

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, oops.Code("STORE_CONNECT_FAILED").With("driver", "mongo").Wrap(err)
	}

	err = store.Connect(ctx, opts.Logger, "mongo", opts.Retry, func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		_ = client.Disconnect(context.Background()) //nolint:errcheck // connect error takes precedence
		return nil, err
	}

	return &Client{client: client, db: client.Database(opts.Database)}, nil
}

// Collection returns the named collection in the configured database.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Ping checks the primary is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return oops.Code("STORE_PING_FAILED").With("driver", "mongo").Wrap(err)
	}
	return nil
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return oops.Code("STORE_CLOSE_FAILED").With("driver", "mongo").Wrap(err)
	}
	return nil
}

// UserIndexes are the indexes the account collection relies on. Username is
// unique. Email is unique among documents that carry a non-empty email, which
// keeps optional emails from colliding on the empty value. The reset token
// index serves recovery lookups.
func UserIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("username_unique").SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("email_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$gt": ""}}),
		},
		{
			Keys:    bson.D{{Key: "resetToken", Value: 1}},
			Options: options.Index().SetName("reset_token").SetSparse(true),
		},
	}
}

// EnsureIndexes creates models on coll. Creating an index that already exists
// with the same definition is a no-op.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) ([]string, error) {
	names, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return nil, oops.Code("STORE_INDEX_FAILED").
			With("collection", coll.Name()).
			Wrap(err)
	}
	return names, nil
}

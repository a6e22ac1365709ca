// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

//go:build integration

package mongodb_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store/mongodb"
)

func TestMongoDB(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "MongoDB Store Suite")
}

type userDoc struct {
	ID           string  `bson:"_id"`
	Username     string  `bson:"username"`
	Email        string  `bson:"email,omitempty"`
	ResetToken   *string `bson:"resetToken,omitempty"`
	ResetExpires *int64  `bson:"resetExpires,omitempty"`
}

var (
	container *tcmongo.MongoDBContainer
	client    *mongodb.Client
)

var _ = BeforeSuite(func() {
	ctx := context.Background()

	var err error
	container, err = tcmongo.Run(ctx, "mongo:7")
	Expect(err).NotTo(HaveOccurred())

	uri, err := container.ConnectionString(ctx)
	Expect(err).NotTo(HaveOccurred())

	client, err = mongodb.Open(ctx, mongodb.Options{
		URI:            uri,
		Database:       "authsvc_test",
		ConnectTimeout: 10 * time.Second,
	})
	Expect(err).NotTo(HaveOccurred())
})

var _ = AfterSuite(func() {
	ctx := context.Background()
	if client != nil {
		_ = client.Close(ctx)
	}
	if container != nil {
		_ = container.Terminate(ctx)
	}
})

var _ = Describe("Collection", func() {
	var (
		ctx   context.Context
		users *mongodb.Collection[userDoc]
	)

	BeforeEach(func() {
		ctx = context.Background()
		name := "users_" + time.Now().Format("150405.000000000")
		coll := client.Collection(name)
		_, err := mongodb.EnsureIndexes(ctx, coll, mongodb.UserIndexes())
		Expect(err).NotTo(HaveOccurred())
		users = mongodb.NewCollection[userDoc](coll)
		DeferCleanup(func() { _ = coll.Drop(context.Background()) })
	})

	It("returns nil for no match", func() {
		got, err := users.FindOne(ctx, store.Filter{"username": "ghost"})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeNil())

		many, err := users.FindMany(ctx, store.Filter{"username": "ghost"})
		Expect(err).NotTo(HaveOccurred())
		Expect(many).To(BeEmpty())
	})

	It("enforces unique usernames and non-empty emails", func() {
		Expect(users.Insert(ctx, &userDoc{ID: "1", Username: "alice", Email: "a@x.io"})).To(Succeed())
		Expect(users.Insert(ctx, &userDoc{ID: "2", Username: "alice"})).To(MatchError(store.ErrDuplicate))
		Expect(users.Insert(ctx, &userDoc{ID: "3", Username: "bob", Email: "a@x.io"})).To(MatchError(store.ErrDuplicate))

		Expect(users.Insert(ctx, &userDoc{ID: "4", Username: "carol"})).To(Succeed())
		Expect(users.Insert(ctx, &userDoc{ID: "5", Username: "dave"})).To(Succeed())
	})

	It("matches any-of filters", func() {
		Expect(users.Insert(ctx, &userDoc{ID: "1", Username: "alice", Email: "a@x.io"})).To(Succeed())
		got, err := users.FindOne(ctx, store.AnyOf(store.Filter{"username": "zed"}, store.Filter{"email": "a@x.io"}))
		Expect(err).NotTo(HaveOccurred())
		Expect(got).NotTo(BeNil())
		Expect(got.ID).To(Equal("1"))
	})

	It("lets exactly one conditional update win", func() {
		token := "h"
		expires := time.Now().Add(time.Minute).Unix()
		Expect(users.Insert(ctx, &userDoc{ID: "1", Username: "alice", ResetToken: &token, ResetExpires: &expires})).To(Succeed())

		var wins atomic.Int64
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				n, err := users.UpdateFields(ctx, store.Filter{"resetToken": "h"}, store.Update{
					Set:   map[string]any{"salt": "new"},
					Unset: []string{"resetToken", "resetExpires"},
				})
				Expect(err).NotTo(HaveOccurred())
				wins.Add(n)
			}()
		}
		wg.Wait()
		Expect(wins.Load()).To(Equal(int64(1)))

		got, err := users.FindOne(ctx, store.Filter{"_id": "1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ResetToken).To(BeNil())
		Expect(got.ResetExpires).To(BeNil())
	})
})

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Idea Igniters Contributors

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/auth"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/config"
	"github.com/Jithmi25/iwb25-127-idea-igniters/internal/store"
)

// mockServer implements Server for testing.
type mockServer struct {
	startFunc func() (<-chan error, error)
	stopFunc  func(ctx context.Context) error
	addr      string

	mu      sync.Mutex
	started bool
	stopped bool
}

func (m *mockServer) Start() (<-chan error, error) {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	if m.startFunc != nil {
		return m.startFunc()
	}
	return make(chan error, 1), nil
}

func (m *mockServer) Stop(ctx context.Context) error {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
	if m.stopFunc != nil {
		return m.stopFunc(ctx)
	}
	return nil
}

func (m *mockServer) Addr() string {
	if m.addr != "" {
		return m.addr
	}
	return "127.0.0.1:0"
}

func (m *mockServer) wasStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

func (m *mockServer) wasStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// mockMigrator implements Migrator for testing.
type mockMigrator struct {
	upErr      error
	downErr    error
	version    uint
	dirty      bool
	versionErr error
	forceErr   error

	upCalled    bool
	downCalled  bool
	forced      *int
	closeCalled bool
}

func (m *mockMigrator) Up() error {
	m.upCalled = true
	return m.upErr
}

func (m *mockMigrator) Down() error {
	m.downCalled = true
	return m.downErr
}

func (m *mockMigrator) Version() (uint, bool, error) {
	return m.version, m.dirty, m.versionErr
}

func (m *mockMigrator) Force(version int) error {
	m.forced = &version
	return m.forceErr
}

func (m *mockMigrator) Close() error {
	m.closeCalled = true
	return nil
}

// Helper function to create a mock command for testing.
func newMockCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd
}

// testConfig returns a valid configuration backed by the in-memory store.
func testConfig() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{
			Driver:         config.DriverMemory,
			ConnectTimeout: time.Second,
		},
		Token: config.TokenConfig{
			Issuer:   "authsvc-test",
			Audience: "marketplace",
			Secret:   "test-secret-0123456789",
			TTL:      5 * time.Minute,
		},
		HTTP:    config.HTTPConfig{Addr: "127.0.0.1:0"},
		Metrics: config.MetricsConfig{Addr: ""},
		Log:     config.LogConfig{Format: "json", Level: "info"},
		Reset:   config.ResetConfig{DeliverInResponse: true},
	}
}

// serveHarness captures what runServeWithDeps built.
type serveHarness struct {
	api     *mockServer
	obs     *mockServer
	handler http.Handler
	pinger  store.Pinger
	closed  bool
	logs    *syncBuffer
}

func newServeHarness() (*serveHarness, *ServeDeps) {
	h := &serveHarness{
		api:  &mockServer{addr: "127.0.0.1:9090"},
		obs:  &mockServer{addr: "127.0.0.1:9100"},
		logs: &syncBuffer{},
	}
	deps := &ServeDeps{
		BackendOpener: func(_ context.Context, _ *config.Config, _ *slog.Logger) (*Backend, error) {
			users := store.NewMemory[auth.User](auth.UniqueUserFields()...)
			return &Backend{
				Users:  users,
				Pinger: users,
				Close: func(context.Context) error {
					h.closed = true
					return nil
				},
			}, nil
		},
		APIServerFactory: func(_ string, handler http.Handler, _ *slog.Logger) Server {
			h.handler = handler
			return h.api
		},
		ObservabilityServerFactory: func(_ string, _ prometheus.Gatherer, pinger store.Pinger, _ *slog.Logger) Server {
			h.pinger = pinger
			return h.obs
		},
		LogWriter: h.logs,
	}
	return h, deps
}

// syncBuffer is a goroutine-safe log sink.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var _ io.Writer = (*syncBuffer)(nil)

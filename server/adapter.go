// Package server provides the HTTP transport for the advisory engine: a
// pluggable ServerAdapter abstraction (so the concrete router/runtime can be
// swapped without touching handler code), SSE and websocket framing for the
// orchestrator's token/source/action/done/error event stream, and the
// request handlers that wire it all to an orchestration.Pipeline.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// Config configures a ServerAdapter. Extra carries adapter-specific fields
// (e.g. a pre-built client) for adapters registered by other packages.
type Config struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Extra        map[string]any
}

func (c Config) withDefaults() Config {
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout <= 0 {
		// SSE responses stay open for the orchestrator's full 60s deadline.
		c.WriteTimeout = 90 * time.Second
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 120 * time.Second
	}
	return c
}

// ServerAdapter fronts one concrete HTTP runtime. RegisterHandler mounts a
// plain http.Handler at path; Serve blocks until ctx is canceled or the
// listener fails; Shutdown drains in-flight requests.
type ServerAdapter interface {
	RegisterHandler(path string, handler http.Handler) error
	Serve(ctx context.Context, addr string) error
	Shutdown(ctx context.Context) error
}

// Factory builds a ServerAdapter from Config.
type Factory func(cfg Config) (ServerAdapter, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func init() {
	Register("stdlib", func(cfg Config) (ServerAdapter, error) {
		return NewStdlibAdapter(cfg), nil
	})
}

// Register adds a named adapter Factory to the registry, overwriting any
// existing entry under the same name.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New builds the named adapter via its registered Factory.
func New(name string, cfg Config) (ServerAdapter, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("server: unknown adapter %q", name)
	}
	return factory(cfg)
}

// List returns the names of all registered adapters, sorted.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StdlibAdapter is the default ServerAdapter, backed by net/http and a
// gorilla/mux router (despite the name, retained from the registry's default
// adapter slot rather than net/http's own ServeMux, since the router must
// support the path-prefixed websocket upgrade route alongside plain
// handlers).
type StdlibAdapter struct {
	cfg    Config
	router *mux.Router

	mu     sync.Mutex
	server *http.Server
}

// NewStdlibAdapter creates a StdlibAdapter. cfg's zero-value fields are
// defaulted on Serve.
func NewStdlibAdapter(cfg Config) *StdlibAdapter {
	return &StdlibAdapter{cfg: cfg, router: mux.NewRouter()}
}

// RegisterHandler mounts handler at path for all methods; per-method
// restriction, if any, is the handler's own responsibility.
func (a *StdlibAdapter) RegisterHandler(path string, handler http.Handler) error {
	if handler == nil {
		return fmt.Errorf("server: handler must not be nil")
	}
	a.router.Handle(path, handler)
	return nil
}

// Serve listens on addr and blocks until ctx is canceled or the listener
// returns an error. On cancellation it shuts the server down and returns
// ctx.Err().
func (a *StdlibAdapter) Serve(ctx context.Context, addr string) error {
	cfg := a.cfg.withDefaults()

	a.mu.Lock()
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	server := a.server
	a.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Shutdown gracefully stops a running server. It is a no-op if Serve was
// never called.
func (a *StdlibAdapter) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	server := a.server
	a.mu.Unlock()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

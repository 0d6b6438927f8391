package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pgrunner/src/core/domain"
	"pgrunner/src/core/ports"
)

// ErrMissingURL is returned by Start when no connection URL is configured.
// It is fatal: the process should stop rather than run degraded.
var ErrMissingURL = errors.New("postgres connection URL is required")

// PoolConfig carries the pool settings the manager needs, decoupled from the
// environment-loading layer in infra.
type PoolConfig struct {
	// URL is the connection string; Start fails without it.
	URL string

	// MaxPoolSize and MinPoolSize bound the pool capacity.
	MaxPoolSize int
	MinPoolSize int

	// ConnectTimeout bounds both establishing a connection and waiting for
	// a free one from a saturated pool.
	ConnectTimeout time.Duration

	// QueryTimeout is the per-statement default when a caller gives none.
	QueryTimeout time.Duration
}

// PoolManager owns the lifecycle of one shared connection pool and brokers
// scoped access to it. It is the only process-wide mutable state in the
// executor; create one per configured database.
type PoolManager struct {
	driver ports.Driver
	cfg    PoolConfig
	log    *slog.Logger

	mu      sync.Mutex
	started bool
}

// NewPoolManager creates a pool manager over the given driver capability.
// Call Start before use and Shutdown at process stop.
func NewPoolManager(driver ports.Driver, cfg PoolConfig, log *slog.Logger) *PoolManager {
	return &PoolManager{driver: driver, cfg: cfg, log: log}
}

// Start opens the pool and eagerly pre-fills it toward the minimum size.
// A missing connection URL or an unusable pool configuration is fatal.
// A pre-fill failure is logged as a warning and does not abort startup; the
// pool remains usable and later acquisitions retry connecting.
func (m *PoolManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return nil
	}
	if m.cfg.URL == "" {
		m.log.Error("missing postgres connection URL")
		return ErrMissingURL
	}
	if err := m.driver.Open(ctx); err != nil {
		return fmt.Errorf("failed to open connection pool: %w", err)
	}
	m.started = true
	if err := m.driver.Warm(ctx); err != nil {
		m.log.Warn("error connecting to PostgreSQL on startup", "error", err)
	}
	m.log.Info("connection pool started",
		"max_size", m.cfg.MaxPoolSize,
		"min_size", m.cfg.MinPoolSize,
	)
	return nil
}

// Shutdown closes the pool, blocking until all in-flight connections are
// released and closed. It is safe to call when the pool was never started,
// and safe to call more than once.
func (m *PoolManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return nil
	}
	m.started = false
	if err := m.driver.Close(ctx); err != nil {
		return fmt.Errorf("failed to close connection pool: %w", err)
	}
	m.log.Info("connection pool closed")
	return nil
}

// WithConnector acquires one connection, runs fn with a Connector bound to
// it plus the given observer and default timeout, and always returns the
// connection to the pool when fn exits.
//
// Acquisition is bounded by the pool's connect timeout. On acquisition
// failure the observer's OnError is invoked with the "postgres_connector"
// metric name; if it returns an error, that error is returned to the caller,
// and if it swallows the failure, fn runs with a nil Connector so callers
// such as the status check can observe unavailability without an error.
func (m *PoolManager) WithConnector(ctx context.Context, obs Observer, timeout time.Duration, fn func(*Connector) error) error {
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()
	if !started {
		if raised := obs.OnError(domain.ConnectorMetric, domain.NewUnavailableError(domain.ErrNotStarted)); raised != nil {
			return raised
		}
		return fn(nil)
	}

	acquireCtx := ctx
	if m.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, m.cfg.ConnectTimeout)
		defer cancel()
	}
	conn, err := m.driver.Acquire(acquireCtx)
	if err != nil {
		if raised := obs.OnError(domain.ConnectorMetric, domain.NewUnavailableError(err)); raised != nil {
			return raised
		}
		return fn(nil)
	}
	defer conn.Release()

	if timeout <= 0 {
		timeout = m.cfg.QueryTimeout
	}
	return fn(newConnector(conn, obs, timeout))
}

// Status exercises the pool with a trivial statement under a short timeout
// and reports availability plus the pool's current size and free counts. It
// never returns an error; every failure surfaces as Available = false.
func (m *PoolManager) Status(ctx context.Context) domain.PoolStatus {
	var failed bool
	obs := ObserverFuncs{
		Error: func(string, error) error {
			failed = true
			return nil
		},
	}
	_ = m.WithConnector(ctx, obs, domain.StatusTimeout, func(c *Connector) error {
		if c == nil {
			return nil
		}
		_, _ = c.Execute(ctx, "SELECT 1", nil, "postgres_status", 0)
		return nil
	})

	stat := m.driver.Stat()
	return domain.PoolStatus{
		Available: !failed,
		PoolSize:  stat.Size,
		PoolFree:  stat.Free,
	}
}

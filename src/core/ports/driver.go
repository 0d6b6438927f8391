// Package ports defines interfaces (ports) that connect the core executor to
// infrastructure. These interfaces follow the ports and adapters (hexagonal)
// architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra/db. This ensures the core has no dependency on the
// database driver and lets tests inject a fake driver.
package ports

import (
	"context"

	"pgrunner/src/core/domain"
)

// PoolStat reports connection pool bookkeeping counts.
type PoolStat struct {
	// Size is the current number of open connections.
	Size int

	// Free is the current number of idle connections.
	Free int

	// Max is the configured maximum pool size.
	Max int
}

// Result is the raw outcome of one statement execution, before shaping.
type Result interface {
	// RowCount returns the number of rows affected or returned.
	RowCount() int

	// Fetch returns all result rows in driver order. It returns
	// domain.ErrNoResultSet when the statement kind produced no result set
	// (e.g. a write without RETURNING); callers treat that as "no data"
	// rather than a failure.
	Fetch() ([]domain.Row, error)
}

// Conn is one acquired connection. It is not safe for concurrent use; a Conn
// is owned exclusively by one connector scope until Release.
type Conn interface {
	// Execute runs a parameterized statement. args are positional values,
	// or a single domain.NamedParams for named placeholders.
	Execute(ctx context.Context, sql string, args []any) (Result, error)

	// Begin starts an explicit transaction on this connection.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	Rollback(ctx context.Context) error

	// Release returns the connection to the pool. It is called exactly once,
	// regardless of how the owning scope exits.
	Release()
}

// Driver is the capability contract over the underlying database driver and
// its connection pool.
type Driver interface {
	// Open creates the pool from configuration. Errors are fatal (bad URL,
	// invalid options); Open does not require the database to be reachable.
	Open(ctx context.Context) error

	// Warm eagerly validates connectivity and pre-fills the pool toward its
	// minimum size. A Warm failure leaves the pool usable; later
	// acquisitions retry connecting.
	Warm(ctx context.Context) error

	// Acquire takes exclusive use of one connection, blocking while the
	// pool is saturated until ctx expires.
	Acquire(ctx context.Context) (Conn, error)

	// Stat returns current pool bookkeeping counts.
	Stat() PoolStat

	// Close drains the pool, blocking until in-flight connections are
	// released. It is safe to call more than once, or before Open.
	Close(ctx context.Context) error
}

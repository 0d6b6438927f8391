package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the query executor. Every statement-level failure is
// routed through an Observer's OnError callback carrying one of these
// categories, so callers can branch on category without knowing the driver.

var (
	// ErrConnectionUnavailable is returned when a connection cannot be
	// acquired from the pool (unreachable database, exhausted pool).
	ErrConnectionUnavailable = errors.New("postgres connection unavailable")

	// ErrQueryTimeout is returned when a statement exceeds its effective
	// timeout.
	ErrQueryTimeout = errors.New("query timeout")

	// ErrNoResultSet is returned by a driver Result's Fetch when the
	// executed statement kind has no result set. The result shaper
	// suppresses it; callers should never observe it.
	ErrNoResultSet = errors.New("statement returned no result set")

	// ErrNotStarted is returned when the pool is used before Start.
	ErrNotStarted = errors.New("connection pool not started")
)

// UniqueViolationCode is the SQLSTATE code Postgres reports for a
// uniqueness-constraint violation.
const UniqueViolationCode = "23505"

// DriverError is a failure reported by the database itself, carrying the
// SQLSTATE code so policies can classify it.
type DriverError struct {
	// Code is the five-character SQLSTATE error code.
	Code string

	// Message is the primary human-readable error message.
	Message string

	// Detail is the optional detail line reported by the server.
	Detail string
}

// Error implements the error interface.
func (e *DriverError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (SQLSTATE %s): %s", e.Message, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s (SQLSTATE %s)", e.Message, e.Code)
}

// QueryError is the categorized error raised by the default error policy.
// Status maps 1:1 onto conventional HTTP status codes (503 connection,
// 500 timeout, 409 conflict, 500 database) but carries no HTTP dependency.
type QueryError struct {
	// Status is the suggested status code for the category.
	Status int

	// Reason is a short human-readable category description.
	Reason string

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Reason, e.Err)
	}
	return e.Reason
}

// Unwrap returns the underlying failure for errors.Is/As support.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewUnavailableError wraps an acquisition failure.
func NewUnavailableError(err error) error {
	return fmt.Errorf("%w: %v", ErrConnectionUnavailable, err)
}

// NewTimeoutError wraps a statement timeout.
func NewTimeoutError(err error) error {
	return fmt.Errorf("%w: %v", ErrQueryTimeout, err)
}

// IsConnectionUnavailable checks if an error is an acquisition failure.
func IsConnectionUnavailable(err error) bool {
	return errors.Is(err, ErrConnectionUnavailable)
}

// IsQueryTimeout checks if an error is a statement timeout.
func IsQueryTimeout(err error) bool {
	return errors.Is(err, ErrQueryTimeout)
}

// IsUniqueViolation checks if an error is a uniqueness-constraint violation.
func IsUniqueViolation(err error) bool {
	var driverErr *DriverError
	if errors.As(err, &driverErr) {
		return driverErr.Code == UniqueViolationCode
	}
	return false
}

// IsDriverError checks if an error was reported by the database itself.
func IsDriverError(err error) bool {
	var driverErr *DriverError
	return errors.As(err, &driverErr)
}

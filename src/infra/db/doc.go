// Package db implements the driver capability over PostgreSQL.
//
// This package is responsible for:
//   - pgx connection pool initialization and teardown
//   - Acquiring and releasing pooled connections
//   - Statement execution and raw result collection
//   - Translating pgx errors into domain error categories
//
// It adapts github.com/jackc/pgx/v5 to the ports.Driver contract; the core
// executor never imports pgx directly.
package db

package domain

// Row is a single result row keyed by column name.
type Row map[string]any

// NamedParams holds named statement parameters. Pass one NamedParams value as
// the only parameter and reference the keys in the statement with @name
// placeholders. Positional parameters are passed as plain values and
// referenced with $1, $2, etc.
type NamedParams map[string]any

// QueryResult is produced by every statement execution.
//
// Exactly one of Row and Rows is set when the statement returned data: Row
// when a single row came back, Rows (in driver return order) when more than
// one did. When RowCount is zero, or the statement kind has no result set
// (e.g. an INSERT without RETURNING), both are nil.
type QueryResult struct {
	// RowCount is the number of rows affected or returned, as reported by
	// the driver.
	RowCount int

	// Row holds the data when exactly one row was returned.
	Row Row

	// Rows holds the data, in order, when more than one row was returned.
	Rows []Row
}

// PoolStatus reports the outcome of a pool health check.
type PoolStatus struct {
	// Available is true when a trivial statement could be executed against
	// an acquired connection.
	Available bool `json:"available"`

	// PoolSize is the current number of open connections.
	PoolSize int `json:"pool_size"`

	// PoolFree is the current number of idle connections.
	PoolFree int `json:"pool_free"`
}

package domain

import "time"

// DefaultQueryTimeout is the per-statement timeout used when neither the
// caller nor the connector specifies one.
const DefaultQueryTimeout = 120 * time.Second

// StatusTimeout bounds the trivial statement executed by the pool health
// check so a stuck database cannot stall a status endpoint.
const StatusTimeout = 3 * time.Second

// ConnectorMetric is the metric name attributed to connection acquisition
// failures, as opposed to failures of a caller's own statements.
const ConnectorMetric = "postgres_connector"

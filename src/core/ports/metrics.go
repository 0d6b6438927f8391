package ports

import "time"

// MetricsRecorder is an optional capability for recording query timings.
// When a recorder is attached to the query service, the default duration
// policy records (metric name, elapsed time) there; otherwise durations are
// logged at debug level.
type MetricsRecorder interface {
	// RecordTiming records the elapsed time for one named query.
	RecordTiming(metricName string, d time.Duration)
}

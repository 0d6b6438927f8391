// Package usecase implements the executor core: the pool manager that
// brokers scoped access to pooled connections, the connector that runs
// statements with uniform timeout and error semantics, and the query service
// that binds default error-translation and metrics policies for callers.
package usecase

import "time"

// Observer is the strategy for translating statement failures and recording
// query timings. One Observer is bound to every connector scope.
//
// OnError receives the metric name and the failure and RETURNS the error the
// caller should see; returning nil swallows the failure and the operation
// completes with a zero QueryResult. Implementations must not panic; the
// return value is the only propagation channel.
//
// OnDuration is invoked with the elapsed time after a statement completes
// successfully. It is not invoked for failed or swallowed statements.
type Observer interface {
	OnError(metricName string, err error) error
	OnDuration(metricName string, d time.Duration)
}

// ObserverFuncs adapts plain functions to the Observer interface. A nil
// Error function propagates failures unchanged; a nil Duration function
// drops timings.
type ObserverFuncs struct {
	Error    func(metricName string, err error) error
	Duration func(metricName string, d time.Duration)
}

// OnError implements Observer.
func (o ObserverFuncs) OnError(metricName string, err error) error {
	if o.Error == nil {
		return err
	}
	return o.Error(metricName, err)
}

// OnDuration implements Observer.
func (o ObserverFuncs) OnDuration(metricName string, d time.Duration) {
	if o.Duration != nil {
		o.Duration(metricName, d)
	}
}

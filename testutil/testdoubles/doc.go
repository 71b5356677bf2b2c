// Package testdoubles provides spies for event handlers and for the observability interfaces
// of the eventhandler package.
//
//   - HandlerSpy: a Handler that records every event it receives and returns a configured error
//   - CallLog: shared, ordered log of handler starts and finishes across several spies
//   - MetricsCollectorSpy: captures metrics recording calls
//   - TracingCollectorSpy: captures started and finished spans
//   - LoggerSpy: captures plain and contextual log records
//
// All spies are safe for concurrent use.
package testdoubles

package postgresjournal

import (
	"time"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler"
)

// Option configures a Journal.
type Option func(*Journal) error

// WithTableName sets the journal table, "event_journal" by default.
func WithTableName(tableName string) Option {
	return func(j *Journal) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		j.tableName = tableName

		return nil
	}
}

// WithName sets the name recorded in every entry's metadata and used in logs, metrics and spans.
func WithName(name string) Option {
	return func(j *Journal) error {
		if name == "" {
			return ErrEmptyJournalName
		}

		j.name = name

		return nil
	}
}

// WithLogger sets the logger for the Journal.
//
// Debug level: SQL statements with execution timing
// Info level: appended events and query result sizes
// Warn level: cleanup failures
// Error level: failures that make Handle or Query fail.
func WithLogger(logger eventhandler.Logger) Option {
	return func(j *Journal) error {
		j.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, which takes precedence over WithLogger.
func WithContextualLogger(logger eventhandler.ContextualLogger) Option {
	return func(j *Journal) error {
		j.contextualLogger = logger
		return nil
	}
}

func WithMetrics(collector eventhandler.MetricsCollector) Option {
	return func(j *Journal) error {
		j.metricsCollector = collector
		return nil
	}
}

func WithTracing(collector eventhandler.TracingCollector) Option {
	return func(j *Journal) error {
		j.tracingCollector = collector
		return nil
	}
}

// WithClock replaces the source of occurred_at timestamps, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) error {
		if now == nil {
			return ErrNilClock
		}

		j.now = now

		return nil
	}
}

package testdoubles

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler"
)

// SpyLogRecord is one captured log call. Context is nil for calls through the plain Logger methods.
type SpyLogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// LoggerSpy captures log records from both the plain and the contextual logger interface.
type LoggerSpy struct {
	records []SpyLogRecord
	mu      sync.Mutex
}

func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{records: make([]SpyLogRecord, 0)}
}

func (s *LoggerSpy) Debug(msg string, args ...any) { s.add(nil, "debug", msg, args) }
func (s *LoggerSpy) Info(msg string, args ...any)  { s.add(nil, "info", msg, args) }
func (s *LoggerSpy) Warn(msg string, args ...any)  { s.add(nil, "warn", msg, args) }
func (s *LoggerSpy) Error(msg string, args ...any) { s.add(nil, "error", msg, args) }

func (s *LoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.add(ctx, "debug", msg, args)
}

func (s *LoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.add(ctx, "info", msg, args)
}

func (s *LoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.add(ctx, "warn", msg, args)
}

func (s *LoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.add(ctx, "error", msg, args)
}

func (s *LoggerSpy) add(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, SpyLogRecord{
		Level:   level,
		Message: msg,
		Args:    append([]any(nil), args...),
		Context: ctx,
	})
}

// GetRecords returns a copy of all captured records.
func (s *LoggerSpy) GetRecords() []SpyLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyLogRecord(nil), s.records...)
}

// HasLog checks if a record with level and message exists.
func (s *LoggerSpy) HasLog(level, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.Level == level && record.Message == message {
			return true
		}
	}

	return false
}

// HasInfoLog checks if an info record with message exists.
func (s *LoggerSpy) HasInfoLog(message string) bool {
	return s.HasLog("info", message)
}

// HasErrorLog checks if an error record with message exists.
func (s *LoggerSpy) HasErrorLog(message string) bool {
	return s.HasLog("error", message)
}

// ArgValue returns the value following key in the args of the first record with message.
func (s *LoggerSpy) ArgValue(message, key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		if record.Message != message {
			continue
		}

		for i := 0; i+1 < len(record.Args); i += 2 {
			if k, ok := record.Args[i].(string); ok && k == key {
				return record.Args[i+1], true
			}
		}
	}

	return nil, false
}

var _ eventhandler.Logger = (*LoggerSpy)(nil)
var _ eventhandler.ContextualLogger = (*LoggerSpy)(nil)

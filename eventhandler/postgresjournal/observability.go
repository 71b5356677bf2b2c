package postgresjournal

import (
	"context"
	"strconv"
	"time"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler"
)

const (
	// AppendDurationMetric tracks how long appending one event takes.
	AppendDurationMetric = "eventjournal_append_duration_seconds"

	// AppendErrorsMetric counts failed appends by error type.
	AppendErrorsMetric = "eventjournal_append_errors_total"

	// QueryDurationMetric tracks how long reading the journal takes.
	QueryDurationMetric = "eventjournal_query_duration_seconds"

	// QueryEntriesMetric records how many entries the last query returned.
	QueryEntriesMetric = "eventjournal_query_entries"

	// SpanNameAppend is the tracing span name for Handle.
	SpanNameAppend = "eventjournal.append"

	// SpanNameQuery is the tracing span name for Query.
	SpanNameQuery = "eventjournal.query"

	statusSuccess = "success"
	statusError   = "error"

	operationAppend = "append"
	operationQuery  = "query"

	errorTypeEncodeEvent    = "encode_event"
	errorTypeBuildQuery     = "build_query"
	errorTypeDatabaseExec   = "database_exec"
	errorTypeRowsAffected   = "rows_affected"
	errorTypeNoRowsAffected = "no_rows_affected"
	errorTypeDatabaseQuery  = "database_query"
	errorTypeScanRow        = "scan_row"

	logMsgEncodeEventFailed      = "failed to encode event for the journal"
	logMsgBuildInsertQueryFailed = "failed to build insert query"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgDBExecFailed           = "database execution failed during event append"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgNoRowsAffected         = "event append affected no rows"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgDecodeEntryFailed      = "failed to decode journal entry"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgCreateTableFailed      = "failed to create journal table"
	logMsgEventAppended          = "event appended to journal"
	logMsgQueryCompleted         = "journal query completed"
	logMsgSQLExecuted            = "executed sql for: "

	logAttrJournal    = "journal"
	logAttrEventType  = "event_type"
	logAttrJournalID  = "journal_id"
	logAttrEntryCount = "entry_count"
	logAttrDurationMS = "duration_ms"
	logAttrQuery      = "query"
	logAttrError      = "error"
	logAttrOperation  = "operation"
	logAttrStatus     = "status"
	logAttrErrorType  = "error_type"
)

func toMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// journalObserver measures one Handle or Query call and reports it to the configured
// metrics and tracing collectors. Either may be absent.
type journalObserver struct {
	journal   *Journal
	ctx       context.Context
	span      eventhandler.SpanContext
	operation string
	eventType string
	start     time.Time
}

func (j *Journal) startAppendObservation(ctx context.Context, eventType string) (*journalObserver, context.Context) {
	return j.startObservation(ctx, SpanNameAppend, operationAppend, eventType)
}

func (j *Journal) startQueryObservation(ctx context.Context) (*journalObserver, context.Context) {
	return j.startObservation(ctx, SpanNameQuery, operationQuery, "")
}

func (j *Journal) startObservation(
	ctx context.Context,
	spanName string,
	operation string,
	eventType string,
) (*journalObserver, context.Context) {

	observer := &journalObserver{
		journal:   j,
		operation: operation,
		eventType: eventType,
		start:     time.Now(),
	}

	if j.tracingCollector != nil {
		attrs := map[string]string{
			logAttrJournal:   j.name,
			logAttrOperation: operation,
		}
		if eventType != "" {
			attrs[logAttrEventType] = eventType
		}

		ctx, observer.span = j.tracingCollector.StartSpan(ctx, spanName, attrs)
	}

	observer.ctx = ctx

	return observer, ctx
}

// finishSuccess returns the measured duration. For queries, the number of returned entries
// is recorded as well.
func (o *journalObserver) finishSuccess(entryCount ...int) time.Duration {
	duration := time.Since(o.start)
	labels := o.labels(statusSuccess)

	o.recordDuration(duration, labels)

	if len(entryCount) > 0 {
		o.recordValue(QueryEntriesMetric, float64(entryCount[0]), labels)
	}

	o.finishSpan(statusSuccess, map[string]string{logAttrDurationMS: formatMilliseconds(duration)})

	return duration
}

func (o *journalObserver) finishError(errorType string) {
	duration := time.Since(o.start)
	labels := o.labels(statusError)
	labels[logAttrErrorType] = errorType

	o.recordDuration(duration, labels)

	if o.operation == operationAppend {
		o.incrementCounter(AppendErrorsMetric, labels)
	}

	o.finishSpan(statusError, map[string]string{logAttrErrorType: errorType})
}

func (o *journalObserver) labels(status string) map[string]string {
	labels := map[string]string{
		logAttrJournal: o.journal.name,
		logAttrStatus:  status,
	}

	if o.eventType != "" {
		labels[logAttrEventType] = o.eventType
	}

	return labels
}

func (o *journalObserver) durationMetric() string {
	if o.operation == operationQuery {
		return QueryDurationMetric
	}

	return AppendDurationMetric
}

func (o *journalObserver) recordDuration(duration time.Duration, labels map[string]string) {
	collector := o.journal.metricsCollector
	if collector == nil {
		return
	}

	if contextual, ok := collector.(eventhandler.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(o.ctx, o.durationMetric(), duration, labels)
		return
	}

	collector.RecordDuration(o.durationMetric(), duration, labels)
}

func (o *journalObserver) incrementCounter(metric string, labels map[string]string) {
	collector := o.journal.metricsCollector
	if collector == nil {
		return
	}

	if contextual, ok := collector.(eventhandler.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(o.ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

func (o *journalObserver) recordValue(metric string, value float64, labels map[string]string) {
	collector := o.journal.metricsCollector
	if collector == nil {
		return
	}

	if contextual, ok := collector.(eventhandler.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(o.ctx, metric, value, labels)
		return
	}

	collector.RecordValue(metric, value, labels)
}

func (o *journalObserver) finishSpan(status string, attrs map[string]string) {
	if o.journal.tracingCollector == nil || o.span == nil {
		return
	}

	o.journal.tracingCollector.FinishSpan(o.span, status, attrs)
}

func formatMilliseconds(d time.Duration) string {
	return strconv.FormatFloat(toMilliseconds(d), 'f', 3, 64)
}

// logSQL logs executed statements at debug level.
func (j *Journal) logSQL(ctx context.Context, action string, sqlQuery string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	switch {
	case j.contextualLogger != nil:
		j.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	case j.logger != nil:
		j.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

func (j *Journal) logInfo(ctx context.Context, msg string, args ...any) {
	switch {
	case j.contextualLogger != nil:
		j.contextualLogger.InfoContext(ctx, msg, args...)
	case j.logger != nil:
		j.logger.Info(msg, args...)
	}
}

func (j *Journal) logWarn(ctx context.Context, msg string, args ...any) {
	switch {
	case j.contextualLogger != nil:
		j.contextualLogger.WarnContext(ctx, msg, args...)
	case j.logger != nil:
		j.logger.Warn(msg, args...)
	}
}

func (j *Journal) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	switch {
	case j.contextualLogger != nil:
		j.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	case j.logger != nil:
		j.logger.Error(msg, allArgs...)
	}
}

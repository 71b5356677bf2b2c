package postgresjournal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler/postgresjournal/internal/adapters"
	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/events"
	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/testutil/testdoubles"
)

func Test_buildInsertQuery_UsesPlaceholders(t *testing.T) {
	// arrange
	journal, err := newJournal(&fakeDB{}, WithTableName("block_journal"))
	require.NoError(t, err)
	occurredAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	// act
	sqlQuery, args, buildErr := journal.buildInsertQuery(
		events.BlockEndEventType,
		occurredAt,
		[]byte(`{"height":10}`),
		[]byte(`{"journal_id":"x","recorded_by":"postgresjournal"}`),
	)

	// assert
	require.NoError(t, buildErr)
	assert.Contains(t, sqlQuery, `INSERT INTO "block_journal"`)
	assert.Contains(t, sqlQuery, `"event_type", "occurred_at", "payload", "metadata"`)
	assert.Contains(t, sqlQuery, "::jsonb")
	assert.NotContains(t, sqlQuery, `"height"`)
	require.Len(t, args, 4)
	assert.Equal(t, events.BlockEndEventType, args[0])
	assert.Equal(t, occurredAt, args[1])
	assert.Equal(t, `{"height":10}`, args[2])
}

func Test_buildSelectQuery_WithoutEventTypes(t *testing.T) {
	// arrange
	journal, err := newJournal(&fakeDB{})
	require.NoError(t, err)

	// act
	sqlQuery, args, buildErr := journal.buildSelectQuery(nil)

	// assert
	require.NoError(t, buildErr)
	assert.Contains(t, sqlQuery, `FROM "event_journal"`)
	assert.Contains(t, sqlQuery, `ORDER BY "sequence_number" ASC`)
	assert.NotContains(t, sqlQuery, "WHERE")
	assert.Empty(t, args)
}

func Test_buildSelectQuery_FiltersByEventTypes(t *testing.T) {
	// arrange
	journal, err := newJournal(&fakeDB{})
	require.NoError(t, err)

	// act
	sqlQuery, args, buildErr := journal.buildSelectQuery([]string{events.BlockBeginEventType, events.BlockEndEventType})

	// assert
	require.NoError(t, buildErr)
	assert.Contains(t, sqlQuery, `"event_type" IN ($1, $2)`)
	assert.Equal(t, []any{events.BlockBeginEventType, events.BlockEndEventType}, args)
}

func Test_buildCreateTableStatements_QuotesIdentifiers(t *testing.T) {
	// arrange
	journal, err := newJournal(&fakeDB{}, WithTableName(`odd"name`))
	require.NoError(t, err)

	// act
	statements := journal.buildCreateTableStatements()

	// assert
	require.Len(t, statements, 2)
	assert.Contains(t, statements[0], `CREATE TABLE IF NOT EXISTS "odd""name"`)
	assert.Contains(t, statements[1], `ON "odd""name" (event_type)`)
}

func Test_Handle_AppendsEvent(t *testing.T) {
	// arrange
	db := &fakeDB{rowsAffected: 1}
	metrics := testdoubles.NewMetricsCollectorSpy()
	tracing := testdoubles.NewTracingCollectorSpy()
	logger := testdoubles.NewLoggerSpy()
	journal, err := newJournal(db, WithMetrics(metrics), WithTracing(tracing), WithContextualLogger(logger))
	require.NoError(t, err)

	// act
	handleErr := journal.Handle(context.Background(), events.BlockEnd{Height: 10})

	// assert
	require.NoError(t, handleErr)
	require.Len(t, db.execCalls, 1)
	assert.Len(t, db.execCalls[0].args, 4)
	assert.True(t, metrics.HasDurationRecordForMetric(AppendDurationMetric).WithStatus(statusSuccess).Assert())
	assert.Zero(t, metrics.CountCounterRecordsForMetric(AppendErrorsMetric))
	assert.True(t, logger.HasInfoLog(logMsgEventAppended))

	journalID, found := logger.ArgValue(logMsgEventAppended, logAttrJournalID)
	assert.True(t, found)
	assert.NotEmpty(t, journalID)

	spans := tracing.GetSpanRecords()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanNameAppend, spans[0].Name)
	assert.Equal(t, statusSuccess, spans[0].Status)
	assert.Equal(t, events.BlockEndEventType, spans[0].StartAttributes[logAttrEventType])
}

func Test_Handle_Fails_WhenExecFails(t *testing.T) {
	// arrange
	dbErr := errors.New("connection reset")
	metrics := testdoubles.NewMetricsCollectorSpy()
	logger := testdoubles.NewLoggerSpy()
	journal, err := newJournal(&fakeDB{execErr: dbErr}, WithMetrics(metrics), WithLogger(logger))
	require.NoError(t, err)

	// act
	handleErr := journal.Handle(context.Background(), events.BlockEnd{Height: 10})

	// assert
	assert.ErrorIs(t, handleErr, ErrAppendingEventFailed)
	assert.ErrorIs(t, handleErr, dbErr)
	assert.True(t, metrics.HasCounterRecordForMetric(AppendErrorsMetric).WithLabel(logAttrErrorType, errorTypeDatabaseExec).Assert())
	assert.True(t, logger.HasErrorLog(logMsgDBExecFailed))
}

func Test_Handle_Fails_WhenNoRowsAffected(t *testing.T) {
	// arrange
	journal, err := newJournal(&fakeDB{rowsAffected: 0})
	require.NoError(t, err)

	// act
	handleErr := journal.Handle(context.Background(), events.BlockBegin{Height: 1})

	// assert
	assert.ErrorIs(t, handleErr, ErrNoRowsAffected)
}

func Test_Handle_Fails_WhenPayloadEncodingFails(t *testing.T) {
	// arrange
	encodeErr := errors.New("not encodable")
	db := &fakeDB{rowsAffected: 1}
	journal, err := newJournal(db)
	require.NoError(t, err)

	// act
	handleErr := journal.Handle(context.Background(), unencodableEvent{err: encodeErr})

	// assert
	assert.ErrorIs(t, handleErr, ErrEncodingEventFailed)
	assert.ErrorIs(t, handleErr, encodeErr)
	assert.Empty(t, db.execCalls, "nothing must be written")
}

func Test_Handle_UsesConfiguredClock(t *testing.T) {
	// arrange
	fixed := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{rowsAffected: 1}
	journal, err := newJournal(db, WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	// act
	handleErr := journal.Handle(context.Background(), events.BlockEnd{Height: 10})

	// assert
	require.NoError(t, handleErr)
	require.Len(t, db.execCalls, 1)
	assert.Equal(t, fixed, db.execCalls[0].args[1])
}

func Test_Query_DecodesEntries(t *testing.T) {
	// arrange
	occurredAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	db := &fakeDB{rows: []journalRow{
		{
			sequenceNumber: 1,
			eventType:      events.BlockBeginEventType,
			occurredAt:     occurredAt,
			payload:        []byte(`{"height":10}`),
			metadata:       []byte(`{"journal_id":"a","recorded_by":"postgresjournal"}`),
		},
		{
			sequenceNumber: 2,
			eventType:      events.BlockEndEventType,
			occurredAt:     occurredAt,
			payload:        []byte(`{"height":10}`),
			metadata:       []byte(`{"journal_id":"b","recorded_by":"postgresjournal"}`),
		},
	}}
	metrics := testdoubles.NewMetricsCollectorSpy()
	journal, err := newJournal(db, WithMetrics(metrics))
	require.NoError(t, err)

	// act
	entries, queryErr := journal.Query(context.Background())

	// assert
	require.NoError(t, queryErr)
	require.Len(t, entries, 2)
	assert.Equal(t, events.BlockBegin{Height: 10}, entries[0].Event)
	assert.Equal(t, events.BlockEnd{Height: 10}, entries[1].Event)
	assert.Equal(t, uint64(2), entries[1].SequenceNumber)
	assert.Equal(t, Metadata{JournalID: "b", RecordedBy: "postgresjournal"}, entries[1].Metadata)
	assert.True(t, db.closed)
	assert.True(t, metrics.HasDurationRecordForMetric(QueryDurationMetric).WithStatus(statusSuccess).Assert())
}

func Test_Query_Fails_WhenEntryCannotBeDecoded(t *testing.T) {
	// arrange
	db := &fakeDB{rows: []journalRow{
		{sequenceNumber: 1, eventType: "Unknown", payload: []byte(`{}`), metadata: []byte(`{}`)},
	}}
	journal, err := newJournal(db)
	require.NoError(t, err)

	// act
	_, queryErr := journal.Query(context.Background())

	// assert
	assert.ErrorIs(t, queryErr, ErrDecodingEntryFailed)
	assert.ErrorIs(t, queryErr, events.ErrUnknownEventType)
	assert.True(t, db.closed)
}

func Test_Query_Fails_WhenQueryFails(t *testing.T) {
	// arrange
	dbErr := errors.New("relation does not exist")
	journal, err := newJournal(&fakeDB{queryErr: dbErr})
	require.NoError(t, err)

	// act
	_, queryErr := journal.Query(context.Background(), events.BlockEndEventType)

	// assert
	assert.ErrorIs(t, queryErr, ErrQueryingJournalFailed)
	assert.ErrorIs(t, queryErr, dbErr)
}

type execCall struct {
	query string
	args  []any
}

type fakeDB struct {
	execCalls    []execCall
	rowsAffected int64
	execErr      error
	rows         []journalRow
	queryErr     error
	closed       bool
}

func (f *fakeDB) Exec(_ context.Context, query string, args ...any) (adapters.DBResult, error) {
	if f.execErr != nil {
		return nil, f.execErr
	}

	f.execCalls = append(f.execCalls, execCall{query: query, args: args})

	return fakeResult{rowsAffected: f.rowsAffected}, nil
}

func (f *fakeDB) Query(_ context.Context, _ string, _ ...any) (adapters.DBRows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	return &fakeRows{db: f, rows: f.rows, pos: -1}, nil
}

func (f *fakeDB) Ping(context.Context) error {
	return nil
}

type fakeResult struct {
	rowsAffected int64
}

func (r fakeResult) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}

type fakeRows struct {
	db   *fakeDB
	rows []journalRow
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos]
	*dest[0].(*uint64) = row.sequenceNumber
	*dest[1].(*string) = row.eventType
	*dest[2].(*time.Time) = row.occurredAt
	*dest[3].(*[]byte) = row.payload
	*dest[4].(*[]byte) = row.metadata

	return nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	r.db.closed = true
	return nil
}

type unencodableEvent struct {
	err error
}

func (e unencodableEvent) EventType() string {
	return "Unencodable"
}

func (e unencodableEvent) PayloadToJSON() ([]byte, error) {
	return nil, e.err
}

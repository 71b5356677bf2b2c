package postgresjournal

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler"
	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/eventhandler/postgresjournal/internal/adapters"
	"github.com/AntonStoeckl/dynamic-streams-eventhandlers/events"
)

const (
	defaultTableName   = "event_journal"
	defaultJournalName = "postgresjournal"
)

// Metadata is stored next to every journaled event.
type Metadata struct {
	JournalID  string `json:"journal_id"`
	RecordedBy string `json:"recorded_by"`
}

// Entry is one journaled event as read back by Query.
type Entry struct {
	SequenceNumber uint64
	OccurredAt     time.Time
	Event          events.Event
	Metadata       Metadata
}

// Journal is an eventhandler.Handler that appends each handled event as one row.
// It is safe for concurrent use as long as the underlying connection pool is.
type Journal struct {
	db               adapters.DBAdapter
	tableName        string
	name             string
	now              func() time.Time
	logger           eventhandler.Logger
	contextualLogger eventhandler.ContextualLogger
	metricsCollector eventhandler.MetricsCollector
	tracingCollector eventhandler.TracingCollector
}

// NewJournalFromPGXPool creates a Journal on a pgx pool.
func NewJournalFromPGXPool(db *pgxpool.Pool, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewPGXAdapter(db), options...)
}

// NewJournalFromSQLDB creates a Journal on a sql.DB opened with the lib/pq driver.
func NewJournalFromSQLDB(db *sql.DB, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewSQLAdapter(db), options...)
}

// NewJournalFromSQLX creates a Journal on a sqlx.DB opened with the lib/pq driver.
func NewJournalFromSQLX(db *sqlx.DB, options ...Option) (*Journal, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newJournal(adapters.NewSQLXAdapter(db), options...)
}

func newJournal(db adapters.DBAdapter, options ...Option) (*Journal, error) {
	j := &Journal{
		db:        db,
		tableName: defaultTableName,
		name:      defaultJournalName,
		now:       time.Now,
	}

	for _, option := range options {
		if err := option(j); err != nil {
			return nil, err
		}
	}

	return j, nil
}

func (j *Journal) Name() string {
	return j.name
}

func (j *Journal) TableName() string {
	return j.tableName
}

// Handle appends event to the journal. It fails if the row could not be written;
// cancellation of ctx is reported by the driver and stays reachable with errors.Is.
func (j *Journal) Handle(ctx context.Context, event events.Event) error {
	eventType := event.EventType()
	observer, ctx := j.startAppendObservation(ctx, eventType)

	payloadJSON, payloadErr := event.PayloadToJSON()
	if payloadErr != nil {
		j.logError(ctx, logMsgEncodeEventFailed, payloadErr, logAttrEventType, eventType)
		observer.finishError(errorTypeEncodeEvent)

		return errors.Join(ErrEncodingEventFailed, payloadErr)
	}

	metadata := Metadata{JournalID: uuid.NewString(), RecordedBy: j.name}

	metadataJSON, metadataErr := jsoniter.ConfigFastest.Marshal(metadata)
	if metadataErr != nil {
		j.logError(ctx, logMsgEncodeEventFailed, metadataErr, logAttrEventType, eventType)
		observer.finishError(errorTypeEncodeEvent)

		return errors.Join(ErrEncodingEventFailed, metadataErr)
	}

	sqlQuery, args, buildErr := j.buildInsertQuery(eventType, j.now(), payloadJSON, metadataJSON)
	if buildErr != nil {
		j.logError(ctx, logMsgBuildInsertQueryFailed, buildErr, logAttrEventType, eventType)
		observer.finishError(errorTypeBuildQuery)

		return buildErr
	}

	start := time.Now()
	result, execErr := j.db.Exec(ctx, sqlQuery, args...)
	j.logSQL(ctx, operationAppend, sqlQuery, time.Since(start))

	if execErr != nil {
		j.logError(ctx, logMsgDBExecFailed, execErr, logAttrEventType, eventType, logAttrQuery, sqlQuery)
		observer.finishError(errorTypeDatabaseExec)

		return errors.Join(ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		j.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		observer.finishError(errorTypeRowsAffected)

		return errors.Join(ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	if rowsAffected == 0 {
		j.logError(ctx, logMsgNoRowsAffected, ErrNoRowsAffected, logAttrEventType, eventType)
		observer.finishError(errorTypeNoRowsAffected)

		return ErrNoRowsAffected
	}

	duration := observer.finishSuccess()

	j.logInfo(
		ctx,
		logMsgEventAppended,
		logAttrJournal, j.name,
		logAttrEventType, eventType,
		logAttrJournalID, metadata.JournalID,
		logAttrDurationMS, toMilliseconds(duration),
	)

	return nil
}

// Query reads the journal back in append order. Without eventTypes, all entries are returned.
func (j *Journal) Query(ctx context.Context, eventTypes ...string) ([]Entry, error) {
	observer, ctx := j.startQueryObservation(ctx)

	sqlQuery, args, buildErr := j.buildSelectQuery(eventTypes)
	if buildErr != nil {
		j.logError(ctx, logMsgBuildSelectQueryFailed, buildErr)
		observer.finishError(errorTypeBuildQuery)

		return nil, buildErr
	}

	start := time.Now()
	rows, queryErr := j.db.Query(ctx, sqlQuery, args...)
	j.logSQL(ctx, operationQuery, sqlQuery, time.Since(start))

	if queryErr != nil {
		j.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		observer.finishError(errorTypeDatabaseQuery)

		return nil, errors.Join(ErrQueryingJournalFailed, queryErr)
	}
	defer j.closeRows(ctx, rows)

	entries, scanErr := j.scanEntries(ctx, rows)
	if scanErr != nil {
		observer.finishError(errorTypeScanRow)
		return nil, scanErr
	}

	duration := observer.finishSuccess(len(entries))

	j.logInfo(
		ctx,
		logMsgQueryCompleted,
		logAttrJournal, j.name,
		logAttrEntryCount, len(entries),
		logAttrDurationMS, toMilliseconds(duration),
	)

	return entries, nil
}

type journalRow struct {
	sequenceNumber uint64
	eventType      string
	occurredAt     time.Time
	payload        []byte
	metadata       []byte
}

func (j *Journal) scanEntries(ctx context.Context, rows adapters.DBRows) ([]Entry, error) {
	entries := make([]Entry, 0)
	row := journalRow{}

	for rows.Next() {
		if err := rows.Scan(&row.sequenceNumber, &row.eventType, &row.occurredAt, &row.payload, &row.metadata); err != nil {
			j.logError(ctx, logMsgScanRowFailed, err)
			return nil, errors.Join(ErrScanningDBRowFailed, err)
		}

		entry, decodeErr := decodeEntry(row)
		if decodeErr != nil {
			j.logError(ctx, logMsgDecodeEntryFailed, decodeErr, logAttrEventType, row.eventType)
			return nil, decodeErr
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		j.logError(ctx, logMsgScanRowFailed, err)
		return nil, errors.Join(ErrScanningDBRowFailed, err)
	}

	return entries, nil
}

func decodeEntry(row journalRow) (Entry, error) {
	event, eventErr := events.EventFromJSON(row.eventType, row.payload)
	if eventErr != nil {
		return Entry{}, errors.Join(ErrDecodingEntryFailed, eventErr)
	}

	metadata := Metadata{}
	if err := jsoniter.ConfigFastest.Unmarshal(row.metadata, &metadata); err != nil {
		return Entry{}, errors.Join(ErrDecodingEntryFailed, err)
	}

	return Entry{
		SequenceNumber: row.sequenceNumber,
		OccurredAt:     row.occurredAt,
		Event:          event,
		Metadata:       metadata,
	}, nil
}

func (j *Journal) closeRows(ctx context.Context, rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		j.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, err.Error())
	}
}

// CreateTable creates the journal table and its event type index if they don't exist.
func (j *Journal) CreateTable(ctx context.Context) error {
	for _, statement := range j.buildCreateTableStatements() {
		if _, err := j.db.Exec(ctx, statement); err != nil {
			j.logError(ctx, logMsgCreateTableFailed, err, logAttrQuery, statement)
			return errors.Join(ErrCreatingTableFailed, err)
		}
	}

	return nil
}

// Ping checks that the database is reachable.
func (j *Journal) Ping(ctx context.Context) error {
	return j.db.Ping(ctx)
}

var _ eventhandler.Handler = (*Journal)(nil)

package postgresjournal

import "errors"

var (
	ErrNilDatabaseConnection     = errors.New("database connection must not be nil")
	ErrEmptyTableName            = errors.New("journal table name must not be empty")
	ErrEmptyJournalName          = errors.New("journal name must not be empty")
	ErrNilClock                  = errors.New("clock must not be nil")
	ErrEncodingEventFailed       = errors.New("encoding event for the journal failed")
	ErrBuildingQueryFailed       = errors.New("building journal query failed")
	ErrAppendingEventFailed      = errors.New("appending event to the journal failed")
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected after append failed")
	ErrNoRowsAffected            = errors.New("appending event to the journal affected no rows")
	ErrQueryingJournalFailed     = errors.New("querying the journal failed")
	ErrScanningDBRowFailed       = errors.New("scanning journal row failed")
	ErrDecodingEntryFailed       = errors.New("decoding journal entry failed")
	ErrCreatingTableFailed       = errors.New("creating journal table failed")
)

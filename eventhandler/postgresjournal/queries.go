package postgresjournal

import (
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
)

const (
	dialectPostgres   = "postgres"
	colSequenceNumber = "sequence_number"
	colEventType      = "event_type"
	colOccurredAt     = "occurred_at"
	colPayload        = "payload"
	colMetadata       = "metadata"
	castJsonb         = "?::jsonb"
)

const createTableTemplate = `CREATE TABLE IF NOT EXISTS %s (
	sequence_number bigserial PRIMARY KEY,
	event_type text NOT NULL,
	occurred_at timestamptz NOT NULL,
	payload jsonb NOT NULL,
	metadata jsonb NOT NULL
)`

const createIndexTemplate = `CREATE INDEX IF NOT EXISTS %s ON %s (event_type)`

type (
	sqlQueryString = string
	sqlArgs        = []any
)

func (j *Journal) buildInsertQuery(
	eventType string,
	occurredAt time.Time,
	payloadJSON []byte,
	metadataJSON []byte,
) (sqlQueryString, sqlArgs, error) {

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(j.tableName).
		Prepared(true).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		Vals(goqu.Vals{
			eventType,
			occurredAt.UTC(),
			goqu.L(castJsonb, string(payloadJSON)),
			goqu.L(castJsonb, string(metadataJSON)),
		})

	sqlQuery, args, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

func (j *Journal) buildSelectQuery(eventTypes []string) (sqlQueryString, sqlArgs, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(j.tableName).
		Prepared(true).
		Select(colSequenceNumber, colEventType, colOccurredAt, colPayload, colMetadata).
		Order(goqu.I(colSequenceNumber).Asc())

	if len(eventTypes) > 0 {
		selectStmt = selectStmt.Where(goqu.Ex{colEventType: eventTypes})
	}

	sqlQuery, args, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", nil, errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

// goqu has no DDL support, so identifiers are quoted with pgx.
func (j *Journal) buildCreateTableStatements() []sqlQueryString {
	table := pgx.Identifier{j.tableName}.Sanitize()
	index := pgx.Identifier{j.tableName + "_event_type_idx"}.Sanitize()

	return []sqlQueryString{
		fmt.Sprintf(createTableTemplate, table),
		fmt.Sprintf(createIndexTemplate, index, table),
	}
}

// Package adapters lets the Postgres journal run on pgxpool.Pool, sql.DB or sqlx.DB.
//
// All three are reduced to DBAdapter: parameterized Exec and Query with positional ($n) arguments.
// The journal builds its statements with goqu in prepared mode, so values never end up in the SQL text.
package adapters

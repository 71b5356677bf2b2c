// Package postgresjournal provides a leaf event handler that appends every event it handles
// to a Postgres table, and reads the journal back.
//
// A Journal is usually the first step of a chain, so that nothing downstream sees an event
// that was not persisted:
//
//	journal, _ := postgresjournal.NewJournalFromPGXPool(pool, postgresjournal.WithTableName("block_journal"))
//	pipeline := eventhandler.Chain(journal, forwarder)
//
// Table layout:
//
//	sequence_number  bigserial primary key
//	event_type       text
//	occurred_at      timestamptz
//	payload          jsonb
//	metadata         jsonb   {"journal_id": "<uuid>", "recorded_by": "<journal name>"}
//
// CreateTable creates the table if it does not exist yet.
package postgresjournal

// Package ledger persists a history of validation runs in SQLite.
//
// One row is appended per terminal job state: refid, format, outcome, error
// kind and message, and timing. The ledger is operational history, not a work
// queue; nothing in the pipeline reads it to make decisions, and clearing the
// database loses nothing but the audit trail. Schema changes bump the version
// in schema.go; users delete the database to adopt the new schema.
package ledger

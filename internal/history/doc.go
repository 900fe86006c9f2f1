// Package history persists session summaries and their per-track outcomes
// in SQLite.
//
// The Store manages database connections, schema initialization, and the
// queries behind the history CLI. A session is written in three steps: a row
// when the run starts, one track row per terminal result, and a final update
// carrying the aggregate counters. A session row without a finished_at
// timestamp marks a run that was interrupted.
//
// The database is an archive, not coordination state; nothing in the
// pipeline reads it back during a run. Schema changes bump the version in
// schema.go; users clear the database to adopt the new schema.
package history

// Package session coordinates one end-to-end download run.
//
// A run moves through extraction, the sequential download loop, optional
// fingerprint verification, and reporting. The coordinator owns the track
// list and the aggregate statistics for the run's lifetime; downloader and
// verifier receive one track at a time and hand back result values. One
// track failing, however badly, never aborts the batch: unexpected errors
// are converted into failed results at the loop boundary and the loop
// continues.
//
// A file lock in the state directory keeps concurrent sessions from
// competing for the same output files and rate-limit budgets.
package session

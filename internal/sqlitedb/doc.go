// Package sqlitedb holds the SQLite plumbing shared by the registry and the
// per-project store: connection setup with pragmas, busy retries with
// backoff, embedded migrations, unique-constraint detection, and the
// timestamp encoding used by every table.
package sqlitedb

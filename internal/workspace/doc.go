// Package workspace keeps project directory trees consistent with their
// registry rows.
//
// The registry row is authoritative. A directory tree and a database row
// cannot share a transaction, so every multi-step operation orders its steps
// so that the row is written last (create, duplicate, import) or first
// (delete), and undoes the filesystem step on failure. Compensating cleanup
// is best effort: its own failures are logged at WARN and never replace the
// original error.
//
// Operations on the same project name are serialized with an in-process
// mutex and a cross-process advisory lock file under the data directory, so
// two cutroom processes cannot interleave a create and a rename of the same
// name.
//
// Each project directory holds:
//
//	sources/      imported media, copied in by ImportMedia
//	output/       render output (not produced by cutroom itself)
//	temp/, cache/ scratch space emptied by CleanTempFiles
//	project.json  manifest validated by ImportProject
//	project.db    the per-project store (see package projectdb)
package workspace

// Package registry persists the catalog of projects in SQLite.
//
// Each row binds a unique, already sanitized project name to the absolute
// path of its directory tree plus an opaque settings map. The row is the
// authoritative record of a project's existence: callers that manage the
// directory tree (see package workspace) create the tree before inserting the
// row and clean it up on failure, but a row without a directory, or a
// directory without a row, is resolved in favour of the row.
//
// The registry does not track media files. Counts and sizes come from the
// per-project store and the filesystem.
package registry

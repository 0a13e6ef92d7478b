// Package projectdb is the per-project store: media file records, timeline
// placements that reference them, effects attached to placements, and a
// key/value settings table.
//
// A Store lives in a single project.db file inside the project directory.
// The rollback journal is used instead of WAL so the file is self-contained
// whenever the store is closed, which lets directory copies and archives pick
// it up without extra files.
//
// Deletes cascade explicitly inside one transaction: effects of the affected
// placements, then the placements, then the target row. Foreign keys are
// declared and enforced but carry no ON DELETE action.
//
// Listing order is part of the contract:
//   - media files: created_at descending
//   - placements: track_number, then position, ascending
//   - effects: start_time ascending
//
// Ties fall back to the row id so results are stable for identical inputs.
package projectdb

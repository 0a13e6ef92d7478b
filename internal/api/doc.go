// Package api is the caller-facing facade over the project workspace. It
// translates registry and project-store models into transport-friendly DTOs
// and folds every mutating operation into a Result so callers never handle
// raw errors.
//
// # Key Types
//
// Result: outcome of a mutating call (OK, user-facing Message, affected ID).
//
// Project, MediaFile, Placement, Effect: DTOs with camelCase JSON tags.
//
// ProjectDetail: a project plus its on-disk usage and store statistics.
//
// ProjectService: wraps workspace.Manager and exposes every lifecycle and
// store operation.
//
// # Design Notes
//
// Reads return (nil, nil) for a missing project, mirroring the lookup
// convention used elsewhere. Store mutations bump the project's modified_at
// so the registry list reflects recent edits. Timestamps use RFC3339 with
// milliseconds.
package api

// Package config loads, normalizes, and validates cutroom configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// CUTROOM_PROJECTS_DIR. The Config type centralizes where projects live,
// where the registry database and staging areas are kept, the manifest
// defaults written into every new project, and logging/metrics output.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config

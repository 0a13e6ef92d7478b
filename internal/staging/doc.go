// Package staging sweeps the import staging area under the data directory.
//
// Imports extract archives into "import-<uuid>" directories and remove them
// when they finish. A killed process leaves its directory behind; CleanStale
// removes those once they are older than a cutoff, and ListDirectories
// reports what is currently present for diagnostics.
package staging

// Package archive writes and reads the zip archives used to move whole
// project directories between machines.
//
// Archives are written with deflate compression through
// github.com/klauspost/compress/zip. Extraction refuses entries that would
// land outside the destination directory and never materializes symlinks.
package archive

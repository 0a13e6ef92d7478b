// Package fileutil provides the filesystem primitives behind project
// directory lifecycles: streaming copies, recursive tree copies, size and
// file-count walks, and directory emptying.
package fileutil

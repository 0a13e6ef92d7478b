// Package preflight checks the filesystem before cutroom touches it.
//
// These checks run in two contexts:
//   - The workspace manager calls EnsureFreeSpace before copy-heavy
//     operations (duplicate, import) so a full disk fails fast instead of
//     leaving a half-written tree behind.
//   - The CLI "cutroom doctor" command calls RunAll to display the state of
//     every configured directory.
package preflight

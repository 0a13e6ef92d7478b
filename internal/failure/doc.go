// Package failure defines the error taxonomy shared by the registry, the
// project store, and the workspace manager.
//
// Every error produced by those layers is tagged with one of the exported
// sentinel markers so callers can classify it with errors.Is (or Kind) and
// render a user-facing message with Message. Raw driver and filesystem
// errors stay wrapped underneath the marker for logging.
package failure

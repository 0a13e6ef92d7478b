package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNameConflict     = errors.New("name already exists")
	ErrNotFound         = errors.New("not found")
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidStructure = errors.New("invalid project structure")
	ErrInvalidInput     = errors.New("invalid input")
	ErrIO               = errors.New("filesystem error")
	ErrStorage          = errors.New("storage error")
)

// Kind names an error class for logs and transport payloads.
type Kind string

const (
	KindNone             Kind = ""
	KindNameConflict     Kind = "name_conflict"
	KindNotFound         Kind = "not_found"
	KindInvalidName      Kind = "invalid_name"
	KindInvalidStructure Kind = "invalid_structure"
	KindInvalidInput     Kind = "invalid_input"
	KindIO               Kind = "io_failure"
	KindStorage          Kind = "storage_failure"
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker. The marker should be one of the exported
// sentinel errors above; a nil marker is treated as ErrStorage.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrStorage
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// NotFound is shorthand for a missing entity of the named kind.
func NotFound(operation, entity string, id any) error {
	return Wrap(ErrNotFound, operation, fmt.Sprintf("%s %v", entity, id), nil)
}

// KindOf classifies err by the first marker it carries.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNameConflict):
		return KindNameConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidName):
		return KindInvalidName
	case errors.Is(err, ErrInvalidStructure):
		return KindInvalidStructure
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrIO):
		return KindIO
	default:
		return KindStorage
	}
}

// Message renders err as a short user-facing sentence. Conflict, not-found,
// and validation failures keep their detail; IO and storage failures are
// prefixed so the user can tell which system failed.
func Message(err error) string {
	if err == nil {
		return ""
	}
	detail := stripMarker(err)
	switch KindOf(err) {
	case KindNameConflict:
		return joinMessage("A project with this name already exists", detail)
	case KindNotFound:
		return joinMessage("Not found", detail)
	case KindInvalidName:
		return joinMessage("Invalid name", detail)
	case KindInvalidStructure:
		return joinMessage("Invalid project structure", detail)
	case KindInvalidInput:
		return joinMessage("Invalid input", detail)
	case KindIO:
		return "Filesystem error: " + detail
	default:
		return "Storage error: " + detail
	}
}

func stripMarker(err error) string {
	msg := err.Error()
	for _, marker := range []error{ErrNameConflict, ErrNotFound, ErrInvalidName, ErrInvalidStructure, ErrInvalidInput, ErrIO, ErrStorage} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
		if msg == marker.Error() {
			return ""
		}
	}
	return msg
}

func joinMessage(head, detail string) string {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		return head
	}
	return head + ": " + detail
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "operation failed"
	}
	return strings.Join(parts, ": ")
}

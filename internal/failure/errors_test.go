package failure

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrIO, "create project", "mkdir /tmp/x", cause)

	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO marker, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	if got := err.Error(); got != "filesystem error: create project: mkdir /tmp/x: disk full" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWrapNilMarkerDefaultsToStorage(t *testing.T) {
	err := Wrap(nil, "", "", nil)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if !strings.Contains(err.Error(), "operation failed") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{nil, KindNone},
		{Wrap(ErrNameConflict, "create", "demo", nil), KindNameConflict},
		{NotFound("get project", "project", 7), KindNotFound},
		{fmt.Errorf("outer: %w", Wrap(ErrInvalidName, "", "empty", nil)), KindInvalidName},
		{Wrap(ErrInvalidStructure, "import", "missing sources", nil), KindInvalidStructure},
		{Wrap(ErrInvalidInput, "add placement", "negative track", nil), KindInvalidInput},
		{Wrap(ErrIO, "copy", "", errors.New("boom")), KindIO},
		{errors.New("unclassified"), KindStorage},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestMessageDistinguishesKinds(t *testing.T) {
	cases := []struct {
		err    error
		prefix string
	}{
		{Wrap(ErrNameConflict, "create project", "demo", nil), "A project with this name already exists"},
		{NotFound("get project", "project", 3), "Not found"},
		{Wrap(ErrInvalidName, "sanitize", "name is empty", nil), "Invalid name"},
		{Wrap(ErrInvalidStructure, "import", "missing project.json", nil), "Invalid project structure"},
		{Wrap(ErrIO, "export", "", errors.New("permission denied")), "Filesystem error: export: permission denied"},
		{Wrap(ErrStorage, "insert", "", errors.New("locked")), "Storage error: insert: locked"},
	}
	for _, tc := range cases {
		if got := Message(tc.err); !strings.HasPrefix(got, tc.prefix) {
			t.Fatalf("Message(%v) = %q, want prefix %q", tc.err, got, tc.prefix)
		}
	}
	if Message(nil) != "" {
		t.Fatal("expected empty message for nil error")
	}
	if got := Message(ErrNotFound); got != "Not found" {
		t.Fatalf("bare marker message = %q", got)
	}
}

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one line per record:
//
//	2026-10-15T09:12:44Z INFO  workspace: project created [#7 Holiday Cut] path=/srv/p event_type=project_created
//
// The component becomes the prefix and the project id and name become the
// bracketed subject. Impact and error hint always close the line.
type consoleHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	level  slog.Leveler
	fields []field
	group  string
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, level slog.Leveler) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, out: w, level: level}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := slices.Clone(h.fields)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendAttr(fields, h.group, attr)
		return true
	})

	var component, projectID, projectName string
	var body, trailer []field
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			component = f.value.String()
		case FieldProjectID:
			projectID = f.value.String()
		case FieldProjectName:
			projectName = f.value.String()
		case FieldImpact, FieldErrorHint:
			trailer = append(trailer, f)
		default:
			body = append(body, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	b.WriteString(ts.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, " %-5s ", record.Level.String())
	if component != "" {
		b.WriteString(component)
		b.WriteString(": ")
	}
	b.WriteString(record.Message)
	if s := subject(projectID, projectName); s != "" {
		b.WriteString(" [")
		b.WriteString(s)
		b.WriteByte(']')
	}
	for _, f := range append(body, trailer...) {
		b.WriteByte(' ')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(renderValue(f.value))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.fields = slices.Clone(h.fields)
	for _, attr := range attrs {
		clone.fields = appendAttr(clone.fields, h.group, attr)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = joinKey(h.group, name)
	return &clone
}

func appendAttr(fields []field, group string, attr slog.Attr) []field {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return fields
	}
	if attr.Value.Kind() == slog.KindGroup {
		inner := group
		if attr.Key != "" {
			inner = joinKey(group, attr.Key)
		}
		for _, a := range attr.Value.Group() {
			fields = appendAttr(fields, inner, a)
		}
		return fields
	}
	return append(fields, field{key: joinKey(group, attr.Key), value: attr.Value})
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}

func subject(id, name string) string {
	switch {
	case id != "" && name != "":
		return "#" + id + " " + name
	case id != "":
		return "#" + id
	default:
		return name
	}
}

func renderValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\r\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

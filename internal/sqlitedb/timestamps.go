package sqlitedb

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// timeLayout has a fixed-width fraction so stored values sort lexically in
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime encodes t in UTC with nanosecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ParseTime decodes a stored timestamp. Values written by SQLite's
// CURRENT_TIMESTAMP are accepted as well.
func ParseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

// ParseNullTime returns the zero time for NULL or malformed values.
func ParseNullTime(value sql.NullString) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	t, err := ParseTime(value.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Clock hands out strictly increasing timestamps so two writes in the same
// process never share a modified_at value.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock returns a Clock backed by now, or time.Now when now is nil.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Now returns the current time, nudged forward past the previous value when
// the wall clock has not advanced.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t
}

// NullableString maps "" to NULL.
func NullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// NullableFloat maps a nil pointer to NULL.
func NullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

// FloatPtr converts a nullable column into an optional value.
func FloatPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}

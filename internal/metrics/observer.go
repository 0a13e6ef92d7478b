package metrics

import (
	"time"
)

// Observer receives one callback per lifecycle operation.
type Observer interface {
	RecordOperation(operation string, duration time.Duration, err error)
	RecordBytes(operation string, bytes int64)
}

// Nop discards all observations.
type Nop struct{}

func (Nop) RecordOperation(string, time.Duration, error) {}

func (Nop) RecordBytes(string, int64) {}

// OrNop returns o, or Nop when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return Nop{}
	}
	return o
}

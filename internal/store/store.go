package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("document not found")

// PendingAlarm is an armed wake-up restored at startup.
type PendingAlarm struct {
	Key string
	At  time.Time
}

// Store is the durable document store backing every actor: one JSON document
// per actor key plus a single-slot alarm. SetAlarm overwrites any previous
// alarm for the key; Delete removes the document and its alarm together.
// Implementations must be strongly consistent per key.
//
// Consumers define this interface, not the MongoDB implementation.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, doc []byte) error
	Delete(ctx context.Context, key string) error

	SetAlarm(ctx context.Context, key string, at time.Time) error
	Alarm(ctx context.Context, key string) (time.Time, bool, error)
	CancelAlarm(ctx context.Context, key string) error

	// PendingAlarms lists every key with an armed alarm so the runtime can
	// re-arm timers after a restart.
	PendingAlarms(ctx context.Context) ([]PendingAlarm, error)
}

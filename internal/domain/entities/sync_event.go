package entities

import (
	"time"
)

// SyncEventKind identifies which synchronization operation ran
type SyncEventKind string

const (
	SyncEventPush SyncEventKind = "push"
	SyncEventPull SyncEventKind = "pull"
	SyncEventSeed SyncEventKind = "seed"
)

// SyncEvent is published on the event bus after every sync operation so
// connected clients can show a notification. Error is empty on success.
type SyncEvent struct {
	ID         string        `json:"id"`
	UID        string        `json:"uid"`
	Kind       SyncEventKind `json:"kind"`
	Count      int           `json:"count"`
	Error      string        `json:"error,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

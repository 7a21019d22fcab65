package models

import (
	"encoding/json"
	"time"
)

// SyncQueueItem is one durable pending mutation. Items are drained in
// non-decreasing Timestamp order; a retried item keeps its original timestamp
// so it stays ahead of anything enqueued later.
type SyncQueueItem struct {
	ID        string          `json:"id"`
	Entity    EntityKind      `json:"entity"`
	EntityID  string          `json:"entityId"`
	Operation Operation       `json:"operation"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
	Retries   int             `json:"retries"`
}

// SyncState is the process-wide connectivity and drain status snapshot.
type SyncState struct {
	IsOnline       bool       `json:"isOnline"`
	IsSyncing      bool       `json:"isSyncing"`
	PendingChanges int        `json:"pendingChanges"`
	LastSyncAt     *time.Time `json:"lastSyncAt"`
	FailedItems    int        `json:"failedItems"`
}

package store

import "github.com/cortex-os/cortex/internal/models"

// Record is one durable row in an entity partition. Data holds the JSON
// encoding of the entity; Parent is the habit id for habit entries and the
// parent task id for subtasks (empty otherwise).
type Record struct {
	Kind       models.EntityKind
	ID         string
	Parent     string
	UpdatedAt  int64
	SyncStatus models.SyncStatus
	Data       []byte
}

// Store is the contract the core requires from local persistence: keyed
// records per entity partition, iteration ordered by the updated-at index,
// one secondary index by parent, and the durable sync queue.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Store interface {
	Put(rec Record) error
	Get(kind models.EntityKind, id string) (*Record, error)
	GetAll(kind models.EntityKind) ([]Record, error)
	Delete(kind models.EntityKind, id string) error
	ListByParent(kind models.EntityKind, parent string) ([]Record, error)
	Rename(kind models.EntityKind, oldID string, rec Record) error

	Enqueue(item models.SyncQueueItem) (string, error)
	QueueByTimestamp() ([]models.SyncQueueItem, error)
	RemoveQueueItem(id string) error
	SetQueueRetries(id string, retries int) error
	QueueLength() (int, error)

	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

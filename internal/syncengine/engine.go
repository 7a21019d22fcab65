// Package syncengine drains the durable mutation queue against the remote
// API, owns the auto-sync timer, and runs the best-effort pull pass.
package syncengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cortex-os/cortex/internal/apperr"
	"github.com/cortex-os/cortex/internal/appstate"
	"github.com/cortex-os/cortex/internal/models"
	"github.com/cortex-os/cortex/internal/remote"
	"github.com/cortex-os/cortex/internal/store"
)

// maxRetries is the retry budget per queue item: an item that keeps failing
// is attempted maxRetries+1 times in total before it is dropped.
const maxRetries = 3

// Result summarizes one drain cycle.
type Result struct {
	Success   int `json:"success"`
	Failed    int `json:"failed"`
	Conflicts int `json:"conflicts"`
}

// Engine coordinates queue drains. One engine per session.
type Engine struct {
	store  store.Store
	remote remote.Client
	state  *appstate.Container
	log    *slog.Logger

	itemTimeout time.Duration
	pullLimit   int
	onStart     func()
	onComplete  func(Result)

	mu        sync.Mutex
	stopTimer context.CancelFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithItemTimeout bounds each remote call during a drain. A hung call then
// costs one retry instead of stalling the queue forever.
func WithItemTimeout(d time.Duration) Option {
	return func(e *Engine) { e.itemTimeout = d }
}

// WithPullLimit caps the number of notes fetched per pull pass.
func WithPullLimit(n int) Option {
	return func(e *Engine) { e.pullLimit = n }
}

// WithOnStart registers a callback fired when a drain begins.
func WithOnStart(fn func()) Option {
	return func(e *Engine) { e.onStart = fn }
}

// WithOnComplete registers a callback fired with each drain's result.
func WithOnComplete(fn func(Result)) Option {
	return func(e *Engine) { e.onComplete = fn }
}

// New builds an engine over the session's store, remote client, and state.
func New(st store.Store, rc remote.Client, state *appstate.Container, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:       st,
		remote:      rc,
		state:       state,
		log:         log,
		itemTimeout: 30 * time.Second,
		pullLimit:   100,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync walks the full queue in strict timestamp order. A call while another
// drain is in flight returns a zero Result immediately without reading the
// queue.
func (e *Engine) Sync(ctx context.Context) Result {
	if e.remote == nil {
		e.log.Warn("sync skipped, no remote configured")
		return Result{}
	}
	if !e.state.TryBeginSync() {
		return Result{}
	}
	defer e.state.EndSync()

	if e.onStart != nil {
		e.onStart()
	}

	var res Result
	items, err := e.store.QueueByTimestamp()
	if err != nil {
		e.log.Error("queue read failed", "error", err)
		e.finish(res)
		return res
	}

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		err := e.syncItem(ctx, item)
		switch {
		case err == nil:
			e.removeItem(item)
			res.Success++
		case remote.IsNotFound(err):
			// The remote never saw this entity; dropping the item keeps the
			// rest of the queue moving.
			e.log.Warn("entity missing remotely, dropping item",
				"entity", item.Entity, "id", item.EntityID, "op", item.Operation)
			e.removeItem(item)
		case remote.IsFatal(err):
			e.log.Warn("permanent failure, dropping item",
				"entity", item.Entity, "id", item.EntityID, "op", item.Operation, "error", err)
			e.removeItem(item)
			res.Failed++
			if isConflict(err) {
				res.Conflicts++
				e.markConflict(item)
			}
		default:
			if item.Retries < maxRetries {
				if err := e.store.SetQueueRetries(item.ID, item.Retries+1); err != nil {
					e.log.Error("retry bump failed", "item", item.ID, "error", err)
				}
			} else {
				e.log.Warn("retry budget exhausted, dropping item",
					"entity", item.Entity, "id", item.EntityID, "retries", item.Retries)
				e.removeItem(item)
				res.Failed++
			}
		}
	}

	e.finish(res)
	return res
}

func (e *Engine) finish(res Result) {
	if n, err := e.store.QueueLength(); err == nil {
		e.state.SetPending(n)
	} else {
		e.log.Error("queue length failed", "error", err)
	}
	e.state.SetFailed(res.Failed)
	e.state.SetLastSync(time.Now())
	if e.onComplete != nil {
		e.onComplete(res)
	}
}

func (e *Engine) removeItem(item models.SyncQueueItem) {
	if err := e.store.RemoveQueueItem(item.ID); err != nil {
		e.log.Error("queue remove failed", "item", item.ID, "error", err)
	}
}

func (e *Engine) markConflict(item models.SyncQueueItem) {
	if item.Operation == models.OpDelete {
		return
	}
	if err := store.SetRecordStatus(e.store, item.Entity, item.EntityID, models.StatusConflict); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		e.log.Error("conflict mark failed", "entity", item.Entity, "id", item.EntityID, "error", err)
	}
	e.state.SetSyncStatus(item.Entity, item.EntityID, models.StatusConflict)
}

// syncItem dispatches one queue item. Kind/operation pairs the remote API has
// no surface for resolve as local no-ops, mirroring the server contract:
// habits change only through archival, entries are append-only, and decisions
// mutate only by outcome recording.
func (e *Engine) syncItem(ctx context.Context, item models.SyncQueueItem) error {
	if !item.Entity.Valid() {
		return remote.NewError(remote.KindFatal, "dispatch", 0,
			fmt.Errorf("unknown entity kind %q", item.Entity))
	}

	ctx, cancel := context.WithTimeout(ctx, e.itemTimeout)
	defer cancel()

	switch item.Operation {
	case models.OpCreate:
		res, err := e.remote.Create(ctx, item.Entity, item.Payload)
		if err != nil {
			return err
		}
		return e.reconcileCreate(item.Entity, item.EntityID, res.ID)
	case models.OpUpdate:
		switch item.Entity {
		case models.KindHabit, models.KindHabitEntry:
			return nil
		case models.KindDecision:
			if !hasActualOutcome(item.Payload) {
				return nil
			}
		}
		if err := e.remote.Update(ctx, item.Entity, item.EntityID, item.Payload); err != nil {
			return err
		}
		e.markSynced(item.Entity, item.EntityID)
		return nil
	case models.OpDelete:
		switch item.Entity {
		case models.KindDecision, models.KindHabitEntry:
			return nil
		}
		return e.remote.Delete(ctx, item.Entity, item.EntityID)
	default:
		return remote.NewError(remote.KindFatal, "dispatch", 0,
			fmt.Errorf("unknown operation %q", item.Operation))
	}
}

// reconcileCreate swaps the provisional id for the authoritative one. When
// the fast path already renamed the record, the provisional id is gone and
// there is nothing left to do; the duplicate remote create is idempotent
// server-side.
func (e *Engine) reconcileCreate(kind models.EntityKind, localID, remoteID string) error {
	if remoteID == "" || localID == remoteID || !models.IsTempID(localID) {
		e.markSynced(kind, localID)
		return nil
	}
	if err := store.RenameRecord(e.store, kind, localID, remoteID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("syncengine: rename %s %s: %w", kind, localID, err)
	}
	e.state.Rename(kind, localID, remoteID)
	return nil
}

func (e *Engine) markSynced(kind models.EntityKind, id string) {
	if err := store.SetRecordStatus(e.store, kind, id, models.StatusSynced); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		e.log.Error("mark synced failed", "entity", kind, "id", id, "error", err)
	}
	e.state.SetSyncStatus(kind, id, models.StatusSynced)
}

func hasActualOutcome(payload json.RawMessage) bool {
	var probe struct {
		ActualOutcome string `json:"actualOutcome"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return false
	}
	return probe.ActualOutcome != ""
}

func isConflict(err error) bool {
	var re *remote.Error
	return errors.As(err, &re) && re.Status == http.StatusConflict
}

package syncengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cortex-os/cortex/internal/appstate"
	"github.com/cortex-os/cortex/internal/models"
	"github.com/cortex-os/cortex/internal/remote"
	"github.com/cortex-os/cortex/internal/store"
)

type call struct {
	op   string
	kind models.EntityKind
	id   string
}

type fakeRemote struct {
	calls     []call
	createErr []error // consumed per create call; nil entry means success
	updateErr error
	deleteErr error
	nextID    int
	notes     []models.Note
	tree      []models.TaskNode
}

var _ remote.Client = (*fakeRemote)(nil)

func (f *fakeRemote) Create(_ context.Context, kind models.EntityKind, _ json.RawMessage) (*remote.CreateResult, error) {
	f.calls = append(f.calls, call{"create", kind, ""})
	if len(f.createErr) > 0 {
		err := f.createErr[0]
		f.createErr = f.createErr[1:]
		if err != nil {
			return nil, err
		}
	}
	f.nextID++
	return &remote.CreateResult{ID: fmt.Sprintf("srv-%d", f.nextID)}, nil
}

func (f *fakeRemote) Update(_ context.Context, kind models.EntityKind, id string, _ json.RawMessage) error {
	f.calls = append(f.calls, call{"update", kind, id})
	return f.updateErr
}

func (f *fakeRemote) Delete(_ context.Context, kind models.EntityKind, id string) error {
	f.calls = append(f.calls, call{"delete", kind, id})
	return f.deleteErr
}

func (f *fakeRemote) ListNotes(context.Context, int) ([]models.Note, error) { return f.notes, nil }
func (f *fakeRemote) TaskTree(context.Context) ([]models.TaskNode, error)  { return f.tree, nil }
func (f *fakeRemote) Ping(context.Context) error                           { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *fakeRemote, *appstate.Container, store.Store) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "cortex.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	state := appstate.New()
	state.SetOnline(true)
	fr := &fakeRemote{}
	e := New(db, fr, state, testLogger(), opts...)
	return e, fr, state, db
}

func enqueue(t *testing.T, st store.Store, kind models.EntityKind, id string, op models.Operation, ts int64) {
	t.Helper()
	enqueueRetries(t, st, kind, id, op, ts, 0)
}

func enqueueRetries(t *testing.T, st store.Store, kind models.EntityKind, id string, op models.Operation, ts int64, retries int) {
	t.Helper()
	_, err := st.Enqueue(models.SyncQueueItem{
		Entity: kind, EntityID: id, Operation: op,
		Payload: []byte(`{}`), Timestamp: ts, Retries: retries,
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
}

func TestSyncDrainsInTimestampOrder(t *testing.T) {
	e, fr, state, st := newTestEngine(t)
	enqueue(t, st, models.KindNote, "n2", models.OpUpdate, 200)
	enqueue(t, st, models.KindNote, "n1", models.OpUpdate, 100)

	res := e.Sync(context.Background())
	if res.Success != 2 || res.Failed != 0 {
		t.Fatalf("result = %+v, want 2 successes", res)
	}
	if len(fr.calls) != 2 || fr.calls[0].id != "n1" || fr.calls[1].id != "n2" {
		t.Fatalf("calls = %+v, want n1 before n2", fr.calls)
	}
	if got := state.SyncState().PendingChanges; got != 0 {
		t.Errorf("pending = %d, want 0", got)
	}
	if state.SyncState().LastSyncAt == nil {
		t.Error("lastSyncAt not set")
	}
}

func TestRetryableFailureKeepsPositionAndBudget(t *testing.T) {
	e, fr, state, st := newTestEngine(t)
	enqueue(t, st, models.KindNote, "flaky", models.OpCreate, 100)
	enqueue(t, st, models.KindNote, "later", models.OpUpdate, 200)

	fr.createErr = []error{remote.NewError(remote.KindRetryable, "create", http.StatusBadGateway, nil)}

	res := e.Sync(context.Background())
	if res.Success != 1 || res.Failed != 0 {
		t.Fatalf("result = %+v, want success=1 failed=0", res)
	}

	items, err := st.QueueByTimestamp()
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("queue length = %d, want the retried item only", len(items))
	}
	if items[0].EntityID != "flaky" || items[0].Retries != 1 || items[0].Timestamp != 100 {
		t.Errorf("retried item = %+v, want retries=1 at original timestamp", items[0])
	}
	if got := state.SyncState().PendingChanges; got != 1 {
		t.Errorf("pending = %d, want 1", got)
	}
}

func TestRetryBudgetExhaustedAfterFourthAttempt(t *testing.T) {
	e, fr, state, st := newTestEngine(t)
	enqueue(t, st, models.KindNote, "doomed", models.OpCreate, 100)
	fr.createErr = []error{
		remote.NewError(remote.KindRetryable, "create", 0, nil),
		remote.NewError(remote.KindRetryable, "create", 0, nil),
		remote.NewError(remote.KindRetryable, "create", 0, nil),
		remote.NewError(remote.KindRetryable, "create", 0, nil),
	}

	var last Result
	for range 4 {
		last = e.Sync(context.Background())
	}
	if last.Failed != 1 {
		t.Fatalf("fourth drain = %+v, want failed=1", last)
	}
	if n, _ := st.QueueLength(); n != 0 {
		t.Errorf("queue length = %d, want 0 after drop", n)
	}
	if got := state.SyncState().FailedItems; got != 1 {
		t.Errorf("failedItems = %d, want 1", got)
	}
}

func TestSyncMutualExclusion(t *testing.T) {
	e, fr, state, st := newTestEngine(t)
	enqueue(t, st, models.KindNote, "n1", models.OpUpdate, 100)

	if !state.TryBeginSync() {
		t.Fatal("could not take the sync flag")
	}
	res := e.Sync(context.Background())
	state.EndSync()

	if res != (Result{}) {
		t.Fatalf("re-entrant sync = %+v, want zero result", res)
	}
	if len(fr.calls) != 0 {
		t.Errorf("queue was read during re-entrant sync: %+v", fr.calls)
	}
	if n, _ := st.QueueLength(); n != 1 {
		t.Errorf("queue length = %d, want untouched 1", n)
	}
}

func TestCreateReconcilesProvisionalID(t *testing.T) {
	e, _, state, st := newTestEngine(t)

	task := models.Task{ID: "temp_abc", Title: "draft", Status: models.TaskTodo, SyncStatus: models.StatusPending}
	data, _ := json.Marshal(task)
	if err := st.Put(store.Record{Kind: models.KindTask, ID: "temp_abc", SyncStatus: models.StatusPending, Data: data}); err != nil {
		t.Fatal(err)
	}
	state.PutTask(task)
	enqueue(t, st, models.KindTask, "temp_abc", models.OpCreate, 100)

	res := e.Sync(context.Background())
	if res.Success != 1 {
		t.Fatalf("result = %+v", res)
	}

	rec, err := st.Get(models.KindTask, "srv-1")
	if err != nil {
		t.Fatalf("authoritative record missing: %v", err)
	}
	if rec.SyncStatus != models.StatusSynced {
		t.Errorf("record status = %q, want synced", rec.SyncStatus)
	}
	var stored models.Task
	if err := json.Unmarshal(rec.Data, &stored); err != nil {
		t.Fatal(err)
	}
	if stored.ID != "srv-1" || stored.SyncStatus != models.StatusSynced {
		t.Errorf("stored body = %+v, want re-keyed synced task", stored)
	}
	if _, ok := state.Task("srv-1"); !ok {
		t.Error("state not renamed")
	}
}

func TestNotFoundDropsItemWithoutFailure(t *testing.T) {
	e, fr, _, st := newTestEngine(t)
	enqueue(t, st, models.KindNote, "ghost", models.OpUpdate, 100)
	fr.updateErr = remote.NewError(remote.KindNotFound, "update", http.StatusNotFound, nil)

	res := e.Sync(context.Background())
	if res.Failed != 0 || res.Success != 0 {
		t.Fatalf("result = %+v, want not-found counted in neither", res)
	}
	if n, _ := st.QueueLength(); n != 0 {
		t.Errorf("queue length = %d, want 0", n)
	}
}

func TestConflictDropsAndMarksRecord(t *testing.T) {
	e, fr, state, st := newTestEngine(t)

	note := models.Note{ID: "n1", Title: "shared", SyncStatus: models.StatusPending}
	data, _ := json.Marshal(note)
	if err := st.Put(store.Record{Kind: models.KindNote, ID: "n1", SyncStatus: models.StatusPending, Data: data}); err != nil {
		t.Fatal(err)
	}
	state.PutNote(note)
	enqueue(t, st, models.KindNote, "n1", models.OpUpdate, 100)
	fr.updateErr = remote.NewError(remote.KindFatal, "update", http.StatusConflict, nil)

	res := e.Sync(context.Background())
	if res.Failed != 1 || res.Conflicts != 1 {
		t.Fatalf("result = %+v, want failed=1 conflicts=1", res)
	}
	got, _ := state.Note("n1")
	if got.SyncStatus != models.StatusConflict {
		t.Errorf("state status = %q, want conflict", got.SyncStatus)
	}
	rec, err := st.Get(models.KindNote, "n1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.SyncStatus != models.StatusConflict {
		t.Errorf("record status = %q, want conflict", rec.SyncStatus)
	}
}

func TestServerSideNoopOperations(t *testing.T) {
	e, fr, _, st := newTestEngine(t)
	enqueue(t, st, models.KindHabit, "h1", models.OpUpdate, 100)
	enqueue(t, st, models.KindHabitEntry, "e1", models.OpDelete, 200)
	enqueue(t, st, models.KindDecision, "d1", models.OpDelete, 300)
	// Outcome-free decision update also resolves locally.
	enqueue(t, st, models.KindDecision, "d2", models.OpUpdate, 400)

	res := e.Sync(context.Background())
	if res.Success != 4 || res.Failed != 0 {
		t.Fatalf("result = %+v, want 4 local no-ops", res)
	}
	if len(fr.calls) != 0 {
		t.Errorf("remote called for no-op items: %+v", fr.calls)
	}
}

func TestDecisionOutcomeUpdateReachesRemote(t *testing.T) {
	e, fr, _, st := newTestEngine(t)
	payload := []byte(`{"actualOutcome":"shipped late"}`)
	if _, err := st.Enqueue(models.SyncQueueItem{
		Entity: models.KindDecision, EntityID: "d1", Operation: models.OpUpdate,
		Payload: payload, Timestamp: 100,
	}); err != nil {
		t.Fatal(err)
	}

	if res := e.Sync(context.Background()); res.Success != 1 {
		t.Fatalf("result = %+v", res)
	}
	if len(fr.calls) != 1 || fr.calls[0].op != "update" || fr.calls[0].id != "d1" {
		t.Fatalf("calls = %+v", fr.calls)
	}
}

func TestUnknownEntityKindIsFatal(t *testing.T) {
	e, _, _, st := newTestEngine(t)
	enqueue(t, st, models.EntityKind("contact"), "c1", models.OpCreate, 100)

	res := e.Sync(context.Background())
	if res.Failed != 1 {
		t.Fatalf("result = %+v, want immediate drop", res)
	}
	if n, _ := st.QueueLength(); n != 0 {
		t.Errorf("queue length = %d, want 0", n)
	}
}

func TestPullReplayIsByteIdentical(t *testing.T) {
	e, fr, state, st := newTestEngine(t)
	fr.notes = []models.Note{{ID: "n1", Title: "remote truth", UpdatedAt: 12345}}
	parent := "t1"
	fr.tree = []models.TaskNode{{
		Task: models.Task{ID: "t1", Title: "root", Status: models.TaskTodo, UpdatedAt: 500},
		Children: []models.TaskNode{{
			Task: models.Task{ID: "t2", Title: "leaf", Status: models.TaskTodo, ParentID: &parent, UpdatedAt: 600},
		}},
	}}

	e.PullLatestData(context.Background())
	first, err := st.Get(models.KindNote, "n1")
	if err != nil {
		t.Fatalf("pulled note missing: %v", err)
	}
	if first.UpdatedAt != 12345 {
		t.Errorf("updatedAt = %d, want the remote timestamp", first.UpdatedAt)
	}

	e.PullLatestData(context.Background())
	second, err := st.Get(models.KindNote, "n1")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Data, second.Data) || first.UpdatedAt != second.UpdatedAt {
		t.Error("replayed pull changed the stored record")
	}

	if _, ok := state.Task("t2"); !ok {
		t.Error("subtree task not pulled")
	}
	if got := state.ActiveChildren("t1"); got != 1 {
		t.Errorf("children index after pull = %d, want 1", got)
	}
}

func TestPullSkippedWhileOffline(t *testing.T) {
	e, fr, state, st := newTestEngine(t)
	state.SetOnline(false)
	fr.notes = []models.Note{{ID: "n1", Title: "remote"}}

	e.PullLatestData(context.Background())
	if _, err := st.Get(models.KindNote, "n1"); err == nil {
		t.Error("pull ran while offline")
	}
}

func TestStartAutoSyncImmediateDrainAndIdempotence(t *testing.T) {
	e, _, state, st := newTestEngine(t)
	enqueue(t, st, models.KindNote, "n1", models.OpUpdate, 100)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.StartAutoSync(ctx, time.Hour)
	e.StartAutoSync(ctx, time.Hour) // no-op
	defer e.StopAutoSync()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if n, _ := st.QueueLength(); n == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("immediate drain did not run")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := state.SyncState().PendingChanges; got != 0 {
		t.Errorf("pending = %d, want 0", got)
	}

	e.StopAutoSync()
	e.StopAutoSync() // safe when not running
}

func TestOnCallbacksFire(t *testing.T) {
	started := false
	var completed *Result
	e, _, _, st := newTestEngine(t,
		WithOnStart(func() { started = true }),
		WithOnComplete(func(r Result) { completed = &r }),
	)
	enqueue(t, st, models.KindNote, "n1", models.OpUpdate, 100)

	e.Sync(context.Background())
	if !started {
		t.Error("onStart not fired")
	}
	if completed == nil || completed.Success != 1 {
		t.Errorf("onComplete = %+v", completed)
	}
}

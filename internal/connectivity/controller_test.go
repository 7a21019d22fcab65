package connectivity

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cortex-os/cortex/internal/appstate"
	"github.com/cortex-os/cortex/internal/models"
	"github.com/cortex-os/cortex/internal/remote"
	"github.com/cortex-os/cortex/internal/syncengine"
)

type fakeSyncer struct {
	mu    sync.Mutex
	syncs int
	pulls int
}

func (f *fakeSyncer) Sync(context.Context) syncengine.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncs++
	return syncengine.Result{}
}

func (f *fakeSyncer) PullLatestData(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulls++
}

func (f *fakeSyncer) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncs, f.pulls
}

type fakePinger struct {
	mu  sync.Mutex
	err error
}

var _ remote.Client = (*fakePinger)(nil)

func (f *fakePinger) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakePinger) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakePinger) Create(context.Context, models.EntityKind, json.RawMessage) (*remote.CreateResult, error) {
	return nil, nil
}
func (f *fakePinger) Update(context.Context, models.EntityKind, string, json.RawMessage) error {
	return nil
}
func (f *fakePinger) Delete(context.Context, models.EntityKind, string) error { return nil }
func (f *fakePinger) ListNotes(context.Context, int) ([]models.Note, error)   { return nil, nil }
func (f *fakePinger) TaskTree(context.Context) ([]models.TaskNode, error)     { return nil, nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestReconnectTriggersDrainAndPull(t *testing.T) {
	state := appstate.New()
	fs := &fakeSyncer{}
	c := New(state, fs, nil, testLogger())
	ctx := context.Background()

	c.SetOnline(ctx, true)
	if s, p := fs.counts(); s != 1 || p != 1 {
		t.Fatalf("after reconnect: syncs=%d pulls=%d, want 1/1", s, p)
	}

	// Repeating the same value is not a transition.
	c.SetOnline(ctx, true)
	if s, p := fs.counts(); s != 1 || p != 1 {
		t.Fatalf("after repeat: syncs=%d pulls=%d, want unchanged", s, p)
	}

	// Going offline never triggers recovery.
	c.SetOnline(ctx, false)
	if s, _ := fs.counts(); s != 1 {
		t.Fatalf("after disconnect: syncs=%d, want 1", s)
	}
	if state.Online() {
		t.Error("state still online")
	}
}

func TestOnChangeCallback(t *testing.T) {
	state := appstate.New()
	var transitions []bool
	c := New(state, &fakeSyncer{}, nil, testLogger(),
		WithOnChange(func(online bool) { transitions = append(transitions, online) }))
	ctx := context.Background()

	c.SetOnline(ctx, true)
	c.SetOnline(ctx, true)
	c.SetOnline(ctx, false)

	if len(transitions) != 2 || transitions[0] != true || transitions[1] != false {
		t.Fatalf("transitions = %v, want [true false]", transitions)
	}
}

func TestProbeFeedsConnectivity(t *testing.T) {
	state := appstate.New()
	fs := &fakeSyncer{}
	fp := &fakePinger{}
	fp.setErr(errors.New("unreachable"))
	c := New(state, fs, fp, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.Probe(ctx, 20*time.Millisecond); err != nil {
			t.Errorf("Probe: %v", err)
		}
	}()

	waitFor := func(online bool, msg string) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for state.Online() != online {
			if time.Now().After(deadline) {
				t.Fatal(msg)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	waitFor(false, "probe never reported offline")
	fp.setErr(nil)
	waitFor(true, "probe never reported online")
	fp.setErr(errors.New("gone again"))
	waitFor(false, "probe never reported offline again")

	cancel()
	<-done

	if s, _ := fs.counts(); s != 1 {
		t.Errorf("syncs = %d, want exactly 1 for the single reconnect", s)
	}
}

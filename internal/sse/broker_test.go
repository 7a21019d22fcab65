package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cortex-os/cortex/internal/models"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishSyncCompleted(map[string]int{"success": 3, "failed": 0, "conflicts": 0})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: sync.completed") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"success":3`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestStateChangedCarriesSnapshot(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishStateChanged(models.SyncState{IsOnline: true, PendingChanges: 4})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: state.changed") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"pendingChanges":4`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishEntityEvent_AggregateThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event should trigger entities.changed.
	b.PublishEntityEvent(models.OpCreate, models.KindTask, "t1")
	// Second event immediately should NOT trigger another entities.changed.
	b.PublishEntityEvent(models.OpUpdate, models.KindTask, "t1")

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	aggregateCount := 0
	entityCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "entities.changed") {
				aggregateCount++
			} else {
				entityCount++
			}
		default:
			break loop
		}
	}

	if entityCount != 2 {
		t.Errorf("entity events = %d, want 2", entityCount)
	}
	if aggregateCount != 1 {
		t.Errorf("aggregate events = %d, want 1 (throttled)", aggregateCount)
	}
}

func TestEntityEventNaming(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishEntityEvent(models.OpDelete, models.KindNote, "n1")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: note.deleted") {
			t.Errorf("event name in %q, want note.deleted", s)
		}
		if !strings.Contains(s, `"id":"n1"`) {
			t.Errorf("missing id in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishSyncStarted()
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: sync.started") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.PublishSyncStarted()
	b.PublishEntityEvent(models.OpUpdate, models.KindTask, "t1")
}

// Package sse implements a Server-Sent Events broker for real-time updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cortex-os/cortex/internal/models"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type entityEventReq struct {
	op   models.Operation
	kind models.EntityKind
	id   string
}

// Broker manages SSE client connections and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (clients + aggregate throttle timestamp). Public methods communicate with this
// loop through channels, so no mutexes are required.
type Broker struct {
	aggregateMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	entityEventCh chan entityEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker with the given aggregate throttle
// interval. Entity change events always go out; the coalesced
// entities.changed event is throttled so a burst of mutations does not force
// clients into refresh storms.
func NewBroker(aggregateThrottle time.Duration) *Broker {
	if aggregateThrottle <= 0 {
		aggregateThrottle = 2 * time.Second
	}

	b := &Broker{
		aggregateMin:  aggregateThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		entityEventCh: make(chan entityEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastAggregate time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		msg := fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)
		raw := []byte(msg)

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.entityEventCh:
			data := map[string]string{"entity": string(req.kind), "id": req.id}
			switch req.op {
			case models.OpCreate:
				broadcast(Event{Type: string(req.kind) + ".created", Data: data})
			case models.OpUpdate:
				broadcast(Event{Type: string(req.kind) + ".updated", Data: data})
			case models.OpDelete:
				broadcast(Event{Type: string(req.kind) + ".deleted", Data: data})
			}

			now := time.Now()
			if now.Sub(lastAggregate) >= b.aggregateMin {
				lastAggregate = now
				broadcast(Event{Type: "entities.changed", Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishSyncStarted announces the beginning of a queue drain.
func (b *Broker) PublishSyncStarted() {
	b.Publish(Event{Type: "sync.started", Data: map[string]string{}})
}

// PublishSyncCompleted announces a drain result.
func (b *Broker) PublishSyncCompleted(data any) {
	b.Publish(Event{Type: "sync.completed", Data: data})
}

// PublishStateChanged announces a connectivity or sync-state transition.
func (b *Broker) PublishStateChanged(state models.SyncState) {
	b.Publish(Event{Type: "state.changed", Data: state})
}

// PublishEntityEvent publishes an entity change plus the throttled
// entities.changed aggregate.
func (b *Broker) PublishEntityEvent(op models.Operation, kind models.EntityKind, id string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.entityEventCh <- entityEventReq{op: op, kind: kind, id: id}:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}

package syncengine

import (
	"context"
	"time"
)

// StartAutoSync launches the periodic drain loop. It is idempotent: a second
// call while the timer is active is a no-op. An immediate drain runs first
// when the session is online; afterwards the timer re-syncs only while online
// and not already draining.
func (e *Engine) StartAutoSync(ctx context.Context, interval time.Duration) {
	e.mu.Lock()
	if e.stopTimer != nil {
		e.mu.Unlock()
		return
	}
	timerCtx, cancel := context.WithCancel(context.Background())
	e.stopTimer = cancel
	e.mu.Unlock()

	e.log.Info("auto-sync started", "interval", interval)

	go func() {
		if e.state.Online() {
			e.Sync(ctx)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-timerCtx.Done():
				return
			case <-ticker.C:
				if e.state.Online() && !e.state.Syncing() {
					// The drain runs under the session context: stopping the
					// timer never aborts a cycle already in flight.
					e.Sync(ctx)
				}
			}
		}
	}()
}

// StopAutoSync cancels the timer. Safe to call when not running.
func (e *Engine) StopAutoSync() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopTimer != nil {
		e.stopTimer()
		e.stopTimer = nil
		e.log.Info("auto-sync stopped")
	}
}

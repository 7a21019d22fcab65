// Package connectivity tracks whether the remote API is reachable and turns
// offline-to-online transitions into recovery work.
package connectivity

import (
	"context"
	"log/slog"
	"time"

	"github.com/cortex-os/cortex/internal/appstate"
	"github.com/cortex-os/cortex/internal/remote"
	"github.com/cortex-os/cortex/internal/syncengine"
)

// Syncer is the slice of the sync engine the controller drives on reconnect.
type Syncer interface {
	Sync(ctx context.Context) syncengine.Result
	PullLatestData(ctx context.Context)
}

// Controller owns the online flag. Both the periodic probe and the manual
// override endpoint funnel through SetOnline.
type Controller struct {
	state    *appstate.Container
	syncer   Syncer
	remote   remote.Client
	log      *slog.Logger
	onChange func(online bool)

	pingTimeout time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithOnChange registers a callback fired on every connectivity transition.
func WithOnChange(fn func(online bool)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithPingTimeout bounds each reachability probe.
func WithPingTimeout(d time.Duration) Option {
	return func(c *Controller) { c.pingTimeout = d }
}

// New builds a controller. rc is only used by Probe; pass nil when running
// probe-less with manual overrides.
func New(state *appstate.Container, syncer Syncer, rc remote.Client, log *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		state:       state,
		syncer:      syncer,
		remote:      rc,
		log:         log,
		pingTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetOnline records a connectivity transition. Going from offline to online
// drains the queue and then pulls the latest remote data; every other
// transition only updates the flag.
func (c *Controller) SetOnline(ctx context.Context, online bool) {
	if !c.state.SetOnline(online) {
		return
	}
	c.log.Info("connectivity changed", "online", online)
	if c.onChange != nil {
		c.onChange(online)
	}
	if online {
		c.syncer.Sync(ctx)
		c.syncer.PullLatestData(ctx)
	}
}

// Probe pings the remote health endpoint on an interval and feeds the result
// into SetOnline. It blocks until ctx is done.
func (c *Controller) Probe(ctx context.Context, interval time.Duration) error {
	c.probeOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.probeOnce(ctx)
		}
	}
}

func (c *Controller) probeOnce(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()
	err := c.remote.Ping(pingCtx)
	if err != nil && ctx.Err() != nil {
		return
	}
	c.SetOnline(ctx, err == nil)
}

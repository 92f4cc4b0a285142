package remote

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/babanuki/internal/game"
)

// ErrPushInFlight is returned when a push is attempted while another one has
// not finished. Pushes are rejected, never queued.
var ErrPushInFlight = errors.New("push already in progress")

// Remote is the store the coordinator synchronizes with.
type Remote interface {
	Fetch(ctx context.Context) (game.Snapshot, string, error)
	Store(ctx context.Context, snap game.Snapshot) error
}

// State is the local side of the snapshot exchange.
type State interface {
	Snapshot() game.Snapshot
	Replace(snap game.Snapshot)
}

// Coordinator pulls and pushes whole snapshots. Synchronization is
// last-write-wins: a pull overwrites local state without merging.
type Coordinator struct {
	remote   Remote
	state    State
	interval time.Duration
	pushing  atomic.Bool
}

// NewCoordinator wires a coordinator; interval drives Run.
func NewCoordinator(r Remote, s State, interval time.Duration) *Coordinator {
	return &Coordinator{remote: r, state: s, interval: interval}
}

// Pull fetches the remote snapshot and replaces local state with it.
func (c *Coordinator) Pull(ctx context.Context) error {
	snap, rev, err := c.remote.Fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("pull failed")
		return err
	}
	c.state.Replace(snap)
	log.Info().Str("rev", rev).Int("seats", len(snap.SeatMap)).Int("players", len(snap.PlayerData)).Msg("pulled snapshot")
	return nil
}

// Push uploads the current local snapshot. It fails with ErrPushInFlight
// while a previous push is still running.
func (c *Coordinator) Push(ctx context.Context) error {
	if !c.pushing.CompareAndSwap(false, true) {
		return ErrPushInFlight
	}
	defer c.pushing.Store(false)

	snap := c.state.Snapshot()
	if err := c.remote.Store(ctx, snap); err != nil {
		log.Warn().Err(err).Msg("push failed")
		return err
	}
	log.Info().Int("seats", len(snap.SeatMap)).Int("players", len(snap.PlayerData)).Msg("pushed snapshot")
	return nil
}

// Pushing reports whether a push is in flight.
func (c *Coordinator) Pushing() bool { return c.pushing.Load() }

// Run pulls on every tick until ctx is done. Ticks that land while a push is
// in flight are skipped so the pull cannot clobber the state being saved.
// Failures are logged and retried on the next tick.
func (c *Coordinator) Run(ctx context.Context) {
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if c.Pushing() {
				log.Debug().Msg("skipping pull: push in flight")
				continue
			}
			_ = c.Pull(ctx)
		}
	}
}

package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/babanuki/assets"
	"github.com/robalobadob/babanuki/internal/config"
	"github.com/robalobadob/babanuki/internal/db"
	"github.com/robalobadob/babanuki/internal/remote"
	"github.com/robalobadob/babanuki/internal/store"
	"github.com/robalobadob/babanuki/internal/tracker"
)

// localSession is an opened local database with a tracker restored from it.
type localSession struct {
	tracker *tracker.Tracker
	sync    *remote.Coordinator
	conn    *sql.DB
	lock    *flock.Flock
}

// openLocal locks and opens the local database, restores the tracker from
// the persisted snapshot and wires the sync coordinator.
func openLocal(cfg config.Config) (*localSession, error) {
	lock, err := db.AcquireWriterLock(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open %s: %w", cfg.DBPath, err)
	}
	if err := db.Migrate(conn, assets.Migrations()); err != nil {
		_ = conn.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	snaps := db.NewSnapshotStore(conn)
	snap, err := snaps.Load(context.Background())
	if err != nil {
		_ = conn.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("load local snapshot: %w", err)
	}

	tr := tracker.New(store.NewMemorySeats(), store.NewMemoryProfiles(), snaps, cfg.ScanCooldown)
	tr.Restore(snap)
	log.Debug().Int("seats", len(snap.SeatMap)).Int("players", len(snap.PlayerData)).Msg("local snapshot restored")

	client := remote.NewClient(cfg.RemoteEndpoint, cfg.HTTPTimeout)
	return &localSession{
		tracker: tr,
		sync:    remote.NewCoordinator(client, tr, cfg.PollInterval),
		conn:    conn,
		lock:    lock,
	}, nil
}

func (s *localSession) Close() {
	if err := s.conn.Close(); err != nil {
		log.Warn().Err(err).Msg("close local database")
	}
	if err := s.lock.Unlock(); err != nil {
		log.Warn().Err(err).Msg("release local lock")
	}
}

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/babanuki/internal/game"
)

// ErrMalformedSnapshot marks a stored blob that does not parse. Load recovers
// from it by substituting an empty map.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

const (
	keySeatMap    = "seatMap"
	keyPlayerData = "playerData"
	keyRevision   = "rev"
)

// SnapshotStore persists a game.Snapshot as independently keyed JSON blobs.
type SnapshotStore struct{ db *sql.DB }

// NewSnapshotStore wraps an opened, migrated database.
func NewSnapshotStore(db *sql.DB) *SnapshotStore { return &SnapshotStore{db: db} }

// Load reads both blobs. A missing or unparsable blob yields an empty map;
// only database errors are returned.
func (s *SnapshotStore) Load(ctx context.Context) (game.Snapshot, error) {
	snap := game.EmptySnapshot()

	raw, err := s.get(ctx, keySeatMap)
	if err != nil {
		return snap, err
	}
	if err := decodeBlob(raw, &snap.SeatMap); err != nil {
		log.Debug().Err(err).Str("key", keySeatMap).Msg("falling back to empty seat map")
		snap.SeatMap = game.SeatMap{}
	}

	raw, err = s.get(ctx, keyPlayerData)
	if err != nil {
		return snap, err
	}
	if err := decodeBlob(raw, &snap.PlayerData); err != nil {
		log.Debug().Err(err).Str("key", keyPlayerData).Msg("falling back to empty player data")
		snap.PlayerData = game.PlayerData{}
	}
	return snap.Normalize(), nil
}

// Save writes both blobs in one transaction.
func (s *SnapshotStore) Save(ctx context.Context, snap game.Snapshot) error {
	return s.save(ctx, snap.Normalize(), "")
}

// SaveRevision writes both blobs plus a revision id in one transaction.
func (s *SnapshotStore) SaveRevision(ctx context.Context, snap game.Snapshot, rev string) error {
	return s.save(ctx, snap.Normalize(), rev)
}

// Revision returns the stored revision id, or "" when none was written.
func (s *SnapshotStore) Revision(ctx context.Context) (string, error) {
	raw, err := s.get(ctx, keyRevision)
	return string(raw), err
}

func (s *SnapshotStore) save(ctx context.Context, snap game.Snapshot, rev string) error {
	seats, err := json.Marshal(snap.SeatMap)
	if err != nil {
		return fmt.Errorf("encode seat map: %w", err)
	}
	players, err := json.Marshal(snap.PlayerData)
	if err != nil {
		return fmt.Errorf("encode player data: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	put := func(key string, value []byte) error {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO snapshot_blobs (key, value, updated_at) VALUES (?, ?, ?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
			key, string(value), now,
		)
		if err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
		return nil
	}
	if err := put(keySeatMap, seats); err != nil {
		return err
	}
	if err := put(keyPlayerData, players); err != nil {
		return err
	}
	if rev != "" {
		if err := put(keyRevision, []byte(rev)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// get returns nil when the key is absent.
func (s *SnapshotStore) get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM snapshot_blobs WHERE key=?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return []byte(value), nil
}

func decodeBlob(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return nil
}

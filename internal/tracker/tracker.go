// internal/tracker/tracker.go
//
// Event handling for one scanning device.
// Responsibilities:
//   - Route decoded tokens: seat tokens pick the active (or ranking) seat,
//     player tokens join the active seat.
//   - Suppress a repeated token inside the scan cooldown window.
//   - Record every seat mutation in the undo log and persist the snapshot
//     locally after each change.
//   - Confirm rankings: rate the finish order, reorder the seat, reassign
//     titles across the whole population.
//   - Expose Snapshot/Replace so the sync coordinator can exchange state.
//
// Notes:
//   - Events are serialized by a mutex; the coordinator's pulls arrive on
//     another goroutine and go through the same lock.
//   - Every method returns a short user-facing message; failures never leave
//     partial state behind.

package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/babanuki/internal/game"
	"github.com/robalobadob/babanuki/internal/store"
)

// Mode selects how seat tokens are interpreted.
type Mode string

const (
	ModeScan    Mode = "scan"
	ModeRanking Mode = "ranking"
)

// Saver persists the local snapshot.
type Saver interface {
	Save(ctx context.Context, snap game.Snapshot) error
}

// Tracker owns the seat and profile repositories for one device.
type Tracker struct {
	mu       sync.Mutex
	seats    store.SeatRepo
	profiles store.ProfileRepo
	assign   *store.AssignmentStore
	undo     *store.UndoLog
	saver    Saver
	cooldown time.Duration
	now      func() time.Time

	mode        Mode
	rankingSeat string
	lastToken   string
	lastScanAt  time.Time
}

// New wires a tracker over the repositories. saver may be nil.
func New(seats store.SeatRepo, profiles store.ProfileRepo, saver Saver, cooldown time.Duration) *Tracker {
	return &Tracker{
		seats:    seats,
		profiles: profiles,
		assign:   store.NewAssignmentStore(seats, profiles),
		undo:     store.NewUndoLog(),
		saver:    saver,
		cooldown: cooldown,
		now:      time.Now,
		mode:     ModeScan,
	}
}

// Mode returns the current mode.
func (t *Tracker) Mode() Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// SetMode switches between scanning and ranking. Leaving ranking mode drops
// the selected ranking seat.
func (t *Tracker) SetMode(m Mode) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = m
	if m != ModeRanking {
		t.rankingSeat = ""
	}
	return fmt.Sprintf("mode: %s", m)
}

// ActiveSeat returns the seat new players join.
func (t *Tracker) ActiveSeat() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.assign.ActiveSeat()
}

// RankingSeat returns the seat selected for ranking, or "".
func (t *Tracker) RankingSeat() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rankingSeat
}

// HandleScan processes one decoded token. Unrecognized tokens and repeats
// within the cooldown return an empty message and no error.
func (t *Tracker) HandleScan(token string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if token == t.lastToken && now.Sub(t.lastScanAt) < t.cooldown {
		return "", nil
	}
	t.lastToken, t.lastScanAt = token, now

	kind := game.Classify(token)
	if t.mode == ModeRanking {
		if kind != game.KindSeat {
			return "", nil
		}
		return t.selectRankingSeat(token)
	}

	switch kind {
	case game.KindSeat:
		t.assign.SetActiveSeat(token)
		t.persist()
		return fmt.Sprintf("seat set: %s", token), nil
	case game.KindPlayer:
		rec, err := t.assign.AddPlayerToActiveSeat(token)
		if err != nil {
			return "", err
		}
		t.undo.Record(rec)
		t.persist()
		return fmt.Sprintf("%s added to %s", token, t.assign.ActiveSeat()), nil
	default:
		log.Debug().Str("token", token).Msg("ignoring unrecognized token")
		return "", nil
	}
}

func (t *Tracker) selectRankingSeat(seatID string) (string, error) {
	players, ok := t.assign.Seat(seatID)
	if !ok {
		return "", fmt.Errorf("seat %s has no members: %w", seatID, store.ErrNotFound)
	}
	t.rankingSeat = seatID
	return fmt.Sprintf("ranking %s: %s", seatID, strings.Join(players, ", ")), nil
}

// RankingCandidates returns the members of the selected ranking seat in
// their current order, the starting point for the finish order.
func (t *Tracker) RankingCandidates() ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rankingSeat == "" {
		return nil, store.ErrNotFound
	}
	players, ok := t.assign.Seat(t.rankingSeat)
	if !ok {
		return nil, store.ErrNotFound
	}
	return players, nil
}

// RemovePlayer takes a player off a seat; the profile is kept.
func (t *Tracker) RemovePlayer(seatID, playerID string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx, err := t.assign.RemovePlayer(seatID, playerID)
	if err != nil {
		return "", err
	}
	t.undo.Record(store.RemovePlayer{Seat: seatID, Player: playerID, Index: idx})
	t.persist()
	return fmt.Sprintf("%s removed from %s", playerID, seatID), nil
}

// RemoveSeat deletes a seat with all its assignments.
func (t *Tracker) RemoveSeat(seatID string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	players, err := t.assign.RemoveSeat(seatID)
	if err != nil {
		return "", err
	}
	t.undo.Record(store.RemoveSeat{Seat: seatID, Players: players})
	t.persist()
	return fmt.Sprintf("seat %s removed", seatID), nil
}

// Undo reverses up to three recent mutations.
func (t *Tracker) Undo() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.undo.Undo(t.assign)
	t.persist()
	return fmt.Sprintf("undid %d operations", n)
}

// ConfirmRanking records the finish order for seatID (the selected ranking
// seat when empty). The seat's current order is the previous round.
func (t *Tracker) ConfirmRanking(seatID string, finish []string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seatID == "" {
		seatID = t.rankingSeat
	}
	if seatID == "" {
		return "", fmt.Errorf("no seat selected: %w", store.ErrNotFound)
	}
	previous, ok := t.assign.Seat(seatID)
	if !ok {
		return "", fmt.Errorf("seat %s: %w", seatID, store.ErrNotFound)
	}
	if len(finish) == 0 {
		return "", fmt.Errorf("empty finish order: %w", store.ErrInvalidReorder)
	}
	if err := t.assign.ReorderSeat(seatID, finish); err != nil {
		return "", err
	}

	results := game.ComputeRatings(finish, previous, t.profiles.All())
	for id, r := range results {
		p, ok := t.profiles.Get(id)
		if !ok {
			p = game.NewProfile(id)
		}
		p.Rate = game.IntPtr(r.Rate)
		p.Bonus = r.Bonus
		p.LastRank = r.LastRank
		t.profiles.Put(id, p)
	}
	t.profiles.Replace(game.AssignTitles(t.profiles.All()))

	t.rankingSeat = ""
	t.mode = ModeScan
	t.persist()
	log.Info().Str("seat", seatID).Strs("finish", finish).Msg("ranking confirmed")
	return fmt.Sprintf("ranking for %s confirmed", seatID), nil
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() game.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return game.Snapshot{SeatMap: t.seats.All(), PlayerData: t.profiles.All()}
}

// Replace overwrites local state wholesale (a pull) and persists it. The
// undo log is cleared: its records describe the state that was replaced.
func (t *Tracker) Replace(snap game.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.restore(snap)
	t.undo.Reset()
	t.persist()
}

// Restore loads a snapshot at startup without persisting it again.
func (t *Tracker) Restore(snap game.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.restore(snap)
}

func (t *Tracker) restore(snap game.Snapshot) {
	snap = snap.Normalize()
	t.seats.Replace(snap.SeatMap)
	t.profiles.Replace(snap.PlayerData)
}

// persist saves the snapshot; failures are logged and otherwise ignored.
func (t *Tracker) persist() {
	if t.saver == nil {
		return
	}
	snap := game.Snapshot{SeatMap: t.seats.All(), PlayerData: t.profiles.All()}
	if err := t.saver.Save(context.Background(), snap); err != nil {
		log.Error().Err(err).Msg("save local snapshot")
	}
}

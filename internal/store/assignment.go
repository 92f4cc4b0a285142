package store

import (
	"errors"
	"fmt"

	"github.com/robalobadob/babanuki/internal/game"
)

// Mutation failures. None of them change state.
var (
	ErrNoActiveSeat    = errors.New("no active seat")
	ErrDuplicatePlayer = errors.New("player already in seat")
	ErrSeatFull        = fmt.Errorf("seat holds at most %d players", game.MaxSeatSize)
	ErrNotFound        = errors.New("not found")
	ErrInvalidReorder  = errors.New("reorder does not match seat membership")
)

// AssignmentStore applies the seat mutation rules on top of the injected
// repositories. It is single-writer: callers serialize access.
//
// A player may sit at several seats at once; uniqueness is only enforced
// within one seat.
type AssignmentStore struct {
	seats    SeatRepo
	profiles ProfileRepo
	active   string
}

// NewAssignmentStore wires a store over the given repositories.
func NewAssignmentStore(seats SeatRepo, profiles ProfileRepo) *AssignmentStore {
	return &AssignmentStore{seats: seats, profiles: profiles}
}

// ActiveSeat returns the current mutation target, or "" when none is set.
func (s *AssignmentStore) ActiveSeat() string { return s.active }

// SetActiveSeat marks seatID as the mutation target, creating an empty entry
// if the seat does not exist yet.
func (s *AssignmentStore) SetActiveSeat(seatID string) {
	s.active = seatID
	if _, ok := s.seats.Get(seatID); !ok {
		s.seats.Put(seatID, []string{})
	}
}

// AddPlayerToActiveSeat appends playerID to the active seat and creates a
// default profile when the player has none. The returned record reverses it.
func (s *AssignmentStore) AddPlayerToActiveSeat(playerID string) (Record, error) {
	if s.active == "" {
		return nil, ErrNoActiveSeat
	}
	players, _ := s.seats.Get(s.active)
	if indexOf(players, playerID) >= 0 {
		return nil, ErrDuplicatePlayer
	}
	if len(players) >= game.MaxSeatSize {
		return nil, ErrSeatFull
	}

	s.seats.Put(s.active, append(players, playerID))
	if _, ok := s.profiles.Get(playerID); !ok {
		s.profiles.Put(playerID, game.NewProfile(playerID))
	}
	return AddPlayer{Seat: s.active, Player: playerID}, nil
}

// RemovePlayer deletes playerID from seatID, keeping the order of the rest,
// and returns the index it occupied. The profile is kept.
func (s *AssignmentStore) RemovePlayer(seatID, playerID string) (int, error) {
	players, ok := s.seats.Get(seatID)
	idx := indexOf(players, playerID)
	if !ok || idx < 0 {
		return -1, ErrNotFound
	}
	s.seats.Put(seatID, append(players[:idx], players[idx+1:]...))
	return idx, nil
}

// RemoveSeat deletes the seat entry and returns its former players.
func (s *AssignmentStore) RemoveSeat(seatID string) ([]string, error) {
	players, ok := s.seats.Get(seatID)
	if !ok {
		return nil, ErrNotFound
	}
	s.seats.Delete(seatID)
	return players, nil
}

// ReorderSeat replaces the seat's players with a permutation of themselves.
func (s *AssignmentStore) ReorderSeat(seatID string, order []string) error {
	players, ok := s.seats.Get(seatID)
	if !ok {
		return ErrNotFound
	}
	if !samePlayers(players, order) {
		return ErrInvalidReorder
	}
	s.seats.Put(seatID, order)
	return nil
}

// Seat returns the ordered players of a seat.
func (s *AssignmentStore) Seat(seatID string) ([]string, bool) { return s.seats.Get(seatID) }

// Seats returns a copy of every seat.
func (s *AssignmentStore) Seats() game.SeatMap { return s.seats.All() }

// filterPlayer drops playerID from seatID without failing when either is gone.
func (s *AssignmentStore) filterPlayer(seatID, playerID string) {
	players, ok := s.seats.Get(seatID)
	if !ok {
		return
	}
	kept := players[:0]
	for _, p := range players {
		if p != playerID {
			kept = append(kept, p)
		}
	}
	s.seats.Put(seatID, kept)
}

// insertPlayer puts playerID back at idx (clamped to the seat length).
func (s *AssignmentStore) insertPlayer(seatID, playerID string, idx int) {
	players, ok := s.seats.Get(seatID)
	if !ok {
		return
	}
	idx = max(0, min(idx, len(players)))
	players = append(players, "")
	copy(players[idx+1:], players[idx:])
	players[idx] = playerID
	s.seats.Put(seatID, players)
}

func indexOf(players []string, id string) int {
	for i, p := range players {
		if p == id {
			return i
		}
	}
	return -1
}

// samePlayers reports whether order is a permutation of players.
func samePlayers(players, order []string) bool {
	if len(players) != len(order) {
		return false
	}
	counts := make(map[string]int, len(players))
	for _, p := range players {
		counts[p]++
	}
	for _, p := range order {
		counts[p]--
		if counts[p] < 0 {
			return false
		}
	}
	return true
}

// internal/store/memory.go
//
// In-memory repositories for seat assignments and player profiles.
// These are the two explicitly owned maps that together form the persisted
// snapshot; every component receives them by injection.
//
// Characteristics:
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Values are copied on the way in and out, so callers never alias the
//     stored slices or pointer fields.
//   - State is lost when the process restarts; durability lives in internal/db.

package store

import (
	"sync"

	"github.com/robalobadob/babanuki/internal/game"
)

// SeatRepo owns the seat -> ordered players mapping.
type SeatRepo interface {
	// Get returns the ordered players of a seat and whether the seat exists.
	Get(seatID string) ([]string, bool)
	// Put creates or replaces a seat entry.
	Put(seatID string, players []string)
	// Delete removes a seat entry; missing seats are ignored.
	Delete(seatID string)
	// All returns a copy of the whole mapping.
	All() game.SeatMap
	// Replace swaps the whole mapping.
	Replace(m game.SeatMap)
}

// ProfileRepo owns the player -> profile mapping.
type ProfileRepo interface {
	Get(playerID string) (game.Profile, bool)
	Put(playerID string, p game.Profile)
	All() game.PlayerData
	Replace(m game.PlayerData)
}

// memorySeats is a map-based SeatRepo.
type memorySeats struct {
	mu    sync.RWMutex        // guards seats
	seats map[string][]string // keyed by seat id
}

// NewMemorySeats constructs an empty in-memory SeatRepo.
func NewMemorySeats() SeatRepo {
	return &memorySeats{seats: make(map[string][]string)}
}

func (m *memorySeats) Get(seatID string) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	players, ok := m.seats[seatID]
	if !ok {
		return nil, false
	}
	return append([]string{}, players...), true
}

func (m *memorySeats) Put(seatID string, players []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seats[seatID] = append([]string{}, players...)
}

func (m *memorySeats) Delete(seatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seats, seatID)
}

func (m *memorySeats) All() game.SeatMap {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(game.SeatMap, len(m.seats))
	for id, players := range m.seats {
		out[id] = append([]string{}, players...)
	}
	return out
}

func (m *memorySeats) Replace(src game.SeatMap) {
	next := make(map[string][]string, len(src))
	for id, players := range src {
		next[id] = append([]string{}, players...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seats = next
}

// memoryProfiles is a map-based ProfileRepo.
type memoryProfiles struct {
	mu       sync.RWMutex
	profiles map[string]game.Profile
}

// NewMemoryProfiles constructs an empty in-memory ProfileRepo.
func NewMemoryProfiles() ProfileRepo {
	return &memoryProfiles{profiles: make(map[string]game.Profile)}
}

func (m *memoryProfiles) Get(playerID string) (game.Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[playerID]
	return p.Clone(), ok
}

func (m *memoryProfiles) Put(playerID string, p game.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[playerID] = p.Clone()
}

func (m *memoryProfiles) All() game.PlayerData {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(game.PlayerData, len(m.profiles))
	for id, p := range m.profiles {
		out[id] = p.Clone()
	}
	return out
}

func (m *memoryProfiles) Replace(src game.PlayerData) {
	next := make(map[string]game.Profile, len(src))
	for id, p := range src {
		next[id] = p.Clone()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = next
}

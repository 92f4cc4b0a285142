// internal/game/types.go
//
// Core type definitions for the seat/rating tracker.
// Defines:
//   - Kind: classification of a decoded token (seat/player/unrecognized).
//   - Title: top-3 badge tier.
//   - Profile: persistent per-player rating state.
//   - SeatMap / PlayerData / Snapshot: the serializable state exchanged with
//     local persistence and the remote store.

package game

// Kind is the classification of a decoded identifier token.
type Kind string

const (
	KindSeat         Kind = "seat"
	KindPlayer       Kind = "player"
	KindUnrecognized Kind = "unrecognized"
)

// Title is a global-rate badge. The zero value means no badge.
type Title string

const (
	TitleNone   Title = ""
	TitleCrown  Title = "crown"
	TitleSilver Title = "silver"
	TitleBronze Title = "bronze"
)

const (
	InitialRate = 50 // rate assigned to a player with no rate yet
	MinRate     = 30 // hard floor after every rating pass
	MaxSeatSize = 6  // players per seat
)

// Profile holds the rating state of a single player.
type Profile struct {
	Nickname string `json:"nickname"`
	Rate     *int   `json:"rate"`     // nil means unset; see EffectiveRate
	LastRank *int   `json:"lastRank"` // 1-based placement last round, nil if never ranked
	Bonus    int    `json:"bonus"`    // delta of the most recent rating pass (display only)
	Title    Title  `json:"title,omitempty"`
}

// NewProfile returns the default profile for a freshly scanned player.
func NewProfile(playerID string) Profile {
	return Profile{Nickname: playerID, Rate: IntPtr(InitialRate)}
}

// EffectiveRate returns the player's rate, or InitialRate when unset.
func (p Profile) EffectiveRate() int {
	if p.Rate == nil {
		return InitialRate
	}
	return *p.Rate
}

// Clone returns a deep copy (pointer fields are not shared).
func (p Profile) Clone() Profile {
	out := p
	if p.Rate != nil {
		out.Rate = IntPtr(*p.Rate)
	}
	if p.LastRank != nil {
		out.LastRank = IntPtr(*p.LastRank)
	}
	return out
}

// SeatMap maps a seat identifier to its ordered player identifiers.
type SeatMap map[string][]string

// PlayerData maps a player identifier to its profile.
type PlayerData map[string]Profile

// Snapshot is the full persisted state: both maps together.
type Snapshot struct {
	SeatMap    SeatMap    `json:"seatMap"`
	PlayerData PlayerData `json:"playerData"`
}

// EmptySnapshot returns a snapshot with non-nil empty maps.
func EmptySnapshot() Snapshot {
	return Snapshot{SeatMap: SeatMap{}, PlayerData: PlayerData{}}
}

// Normalize replaces nil maps and nil seat lists with empty values.
func (s Snapshot) Normalize() Snapshot {
	if s.SeatMap == nil {
		s.SeatMap = SeatMap{}
	}
	if s.PlayerData == nil {
		s.PlayerData = PlayerData{}
	}
	for id, players := range s.SeatMap {
		if players == nil {
			s.SeatMap[id] = []string{}
		}
	}
	return s
}

// Clone deep-copies both maps.
func (s Snapshot) Clone() Snapshot {
	out := EmptySnapshot()
	for id, players := range s.SeatMap {
		out.SeatMap[id] = append([]string{}, players...)
	}
	for id, p := range s.PlayerData {
		out.PlayerData[id] = p.Clone()
	}
	return out
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

package game

import (
	"sort"
)

var podium = []Title{TitleCrown, TitleSilver, TitleBronze}

// Standing is one entry of the global rate ordering.
type Standing struct {
	PlayerID string
	Profile  Profile
}

// Standings orders every profile by rate, highest first. Ties keep ascending
// player id order so the result is reproducible.
func Standings(players PlayerData) []Standing {
	ids := make([]string, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Standing, 0, len(ids))
	for _, id := range ids {
		out = append(out, Standing{PlayerID: id, Profile: players[id]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Profile.EffectiveRate() > out[j].Profile.EffectiveRate()
	})
	return out
}

// AssignTitles returns a copy of players with crown/silver/bronze given to the
// three best rates across the whole population and every other title cleared.
func AssignTitles(players PlayerData) PlayerData {
	out := make(PlayerData, len(players))
	for rank, st := range Standings(players) {
		p := st.Profile.Clone()
		p.Title = TitleNone
		if rank < len(podium) {
			p.Title = podium[rank]
		}
		out[st.PlayerID] = p
	}
	return out
}

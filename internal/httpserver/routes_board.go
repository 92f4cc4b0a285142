// internal/httpserver/routes_board.go
//
// Read-only views over the stored snapshot:
//   - GET /leaderboard → every player ordered by rate, with titles
//   - GET /export.csv  → the CSV export, served as an attachment

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/babanuki/internal/export"
	"github.com/robalobadob/babanuki/internal/game"
)

// boardRow is one leaderboard entry.
type boardRow struct {
	Rank     int        `json:"rank"`
	PlayerID string     `json:"playerId"`
	Nickname string     `json:"nickname"`
	Rate     int        `json:"rate"`
	Bonus    int        `json:"bonus"`
	LastRank *int       `json:"lastRank"`
	Title    game.Title `json:"title,omitempty"`
}

func (s *Server) mountBoard(r chi.Router) {
	r.Get("/leaderboard", s.handleLeaderboard)
	r.Get("/export.csv", s.handleExport)
}

// handleLeaderboard lists standings; ?limit=N trims the list (default all).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snaps.Load(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("load snapshot")
		http.Error(w, `{"error":"load_failed"}`, http.StatusInternalServerError)
		return
	}

	standings := game.Standings(snap.PlayerData)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, `{"error":"bad_limit"}`, http.StatusBadRequest)
			return
		}
		if n < len(standings) {
			standings = standings[:n]
		}
	}

	out := make([]boardRow, 0, len(standings))
	for i, st := range standings {
		out = append(out, boardRow{
			Rank:     i + 1,
			PlayerID: st.PlayerID,
			Nickname: st.Profile.Nickname,
			Rate:     st.Profile.EffectiveRate(),
			Bonus:    st.Profile.Bonus,
			LastRank: st.Profile.LastRank,
			Title:    st.Profile.Title,
		})
	}
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snaps.Load(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("load snapshot")
		http.Error(w, `{"error":"load_failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(time.Now())+`"`)
	if err := export.Write(w, snap); err != nil {
		log.Warn().Err(err).Msg("write export")
	}
}

// internal/httpserver/server.go
//
// HTTP server acting as the shared remote store that every tracker device
// pulls from and pushes to.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Store endpoints: GET /exec (snapshot + revision), POST /exec ({data}).
//   - Read-only views: mounted by routes_board.go (/leaderboard, /export.csv).
//
// Notes:
//   - Writes are last-write-wins; every accepted POST gets a fresh revision id.
//   - CORS is origin-aware so a browser client on another port can sync.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/babanuki/internal/game"
	"github.com/robalobadob/babanuki/internal/remote"
)

// SnapshotStore is the durable state behind the endpoint.
type SnapshotStore interface {
	Load(ctx context.Context) (game.Snapshot, error)
	SaveRevision(ctx context.Context, snap game.Snapshot, rev string) error
	Revision(ctx context.Context) (string, error)
}

// Server bundles the router and the snapshot store.
type Server struct {
	r     *chi.Mux
	snaps SnapshotStore
}

// New constructs a Server, installs middleware, and registers routes.
// origin is the single CORS origin allowed to call the endpoint.
func New(snaps SnapshotStore, origin string) *Server {
	s := &Server{r: chi.NewRouter(), snaps: snaps}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(cors(origin))

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"babanuki-store","endpoints":["/health","GET /exec","POST /exec","/leaderboard","/export.csv"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Get("/exec", s.handleFetch)
	s.r.Post("/exec", s.handleStore)
	s.mountBoard(s.r)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// handleFetch returns the stored snapshot. The rev query flag is accepted for
// compatibility; the revision id is always included.
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snaps.Load(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("load snapshot")
		http.Error(w, `{"error":"load_failed"}`, http.StatusInternalServerError)
		return
	}
	rev, err := s.snaps.Revision(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("load revision")
	}
	_ = json.NewEncoder(w).Encode(remote.FetchResponse{
		SeatMap:    snap.SeatMap,
		PlayerData: snap.PlayerData,
		Rev:        rev,
	})
}

// storeReq mirrors remote.StoreRequest with a pointer so a missing data
// envelope can be told apart from an empty snapshot.
type storeReq struct {
	Data *game.Snapshot `json:"data"`
}

// handleStore replaces the stored snapshot with the posted one.
func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	var req storeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.Data == nil {
		http.Error(w, `{"error":"missing_data"}`, http.StatusBadRequest)
		return
	}

	rev := uuid.NewString()
	if err := s.snaps.SaveRevision(r.Context(), req.Data.Normalize(), rev); err != nil {
		log.Error().Err(err).Msg("save snapshot")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	log.Info().
		Str("rev", rev).
		Str("requestId", chimw.GetReqID(r.Context())).
		Int("seats", len(req.Data.SeatMap)).
		Int("players", len(req.Data.PlayerData)).
		Msg("snapshot stored")
	_ = json.NewEncoder(w).Encode(remote.StoreResponse{OK: true, Rev: rev})
}

package main

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/robalobadob/babanuki/assets"
	"github.com/robalobadob/babanuki/internal/db"
	"github.com/robalobadob/babanuki/internal/game"
	"github.com/robalobadob/babanuki/internal/httpserver"
	"github.com/robalobadob/babanuki/internal/remote"
	"github.com/robalobadob/babanuki/internal/store"
	"github.com/robalobadob/babanuki/internal/tracker"
)

// newTestConsole wires a console to a store endpoint backed by a temp SQLite file.
func newTestConsole(t *testing.T) (*console, *strings.Builder) {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "remote.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Migrate(conn, assets.Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	srv := httptest.NewServer(httpserver.New(db.NewSnapshotStore(conn), "*").Router())
	t.Cleanup(srv.Close)

	tr := tracker.New(store.NewMemorySeats(), store.NewMemoryProfiles(), nil, 0)
	sc := remote.NewCoordinator(remote.NewClient(srv.URL+"/exec", 5*time.Second), tr, time.Minute)
	out := &strings.Builder{}
	return newConsole(tr, sc, out, t.TempDir()), out
}

func run(t *testing.T, c *console, line string) string {
	t.Helper()
	msg, quit := c.exec(context.Background(), line)
	if quit {
		t.Fatalf("%q unexpectedly quit", line)
	}
	return msg
}

func TestConsoleScanAndRank(t *testing.T) {
	c, _ := newTestConsole(t)

	if got := run(t, c, "player1"); got != "! scan a seat first" {
		t.Fatalf("unexpected %q", got)
	}
	for _, tok := range []string{"table1", "player1", "player2"} {
		run(t, c, tok)
	}
	if got := run(t, c, "player2"); got != "! already registered" {
		t.Fatalf("unexpected %q", got)
	}

	run(t, c, ":mode ranking")
	if got := run(t, c, "table1"); !strings.HasPrefix(got, "ranking table1") {
		t.Fatalf("unexpected %q", got)
	}
	if got := run(t, c, ":candidates"); got != "player1 player2" {
		t.Fatalf("unexpected candidates %q", got)
	}
	if got := run(t, c, ":rank player2 player1"); got != "ranking for table1 confirmed" {
		t.Fatalf("unexpected %q", got)
	}

	snap := c.tr.Snapshot()
	if got := snap.SeatMap["table1"]; strings.Join(got, ",") != "player2,player1" {
		t.Fatalf("seat not reordered: %v", got)
	}
	if snap.PlayerData["player2"].Title != game.TitleCrown {
		t.Fatalf("expected crown for winner, got %+v", snap.PlayerData["player2"])
	}
	if c.tr.Mode() != tracker.ModeScan {
		t.Fatal("confirm should return to scan mode")
	}
}

func TestConsoleRankExplicitSeat(t *testing.T) {
	c, _ := newTestConsole(t)
	for _, tok := range []string{"table1", "player1", "player2"} {
		run(t, c, tok)
	}
	if got := run(t, c, ":rank table1 player1"); got != "! finish order must list every seat member exactly once" {
		t.Fatalf("unexpected %q", got)
	}
	if got := run(t, c, ":rank table1 player2 player1"); got != "ranking for table1 confirmed" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestConsoleRemoveAndUndo(t *testing.T) {
	c, _ := newTestConsole(t)
	for _, tok := range []string{"table1", "player1", "player2"} {
		run(t, c, tok)
	}
	run(t, c, ":rm table1 player1")
	run(t, c, ":rmseat table1")
	if _, ok := c.tr.Snapshot().SeatMap["table1"]; ok {
		t.Fatal("seat should be gone")
	}
	if got := run(t, c, ":undo"); got != "undid 3 operations" {
		t.Fatalf("unexpected %q", got)
	}
	if got := c.tr.Snapshot().SeatMap["table1"]; strings.Join(got, ",") != "player1" {
		t.Fatalf("unexpected seat after undo: %v", got)
	}
	if got := run(t, c, ":rm table1"); !strings.HasPrefix(got, "usage:") {
		t.Fatalf("unexpected %q", got)
	}
}

func TestConsolePushThenPull(t *testing.T) {
	c, out := newTestConsole(t)
	for _, tok := range []string{"table1", "player1"} {
		run(t, c, tok)
	}
	if got := run(t, c, ":push"); got != "saving..." {
		t.Fatalf("unexpected %q", got)
	}
	c.wait()
	if !strings.Contains(out.String(), "data saved") {
		t.Fatalf("push not reported: %q", out.String())
	}

	run(t, c, ":rmseat table1")
	if got := run(t, c, ":pull"); got != "data synced" {
		t.Fatalf("unexpected %q", got)
	}
	if got := c.tr.Snapshot().SeatMap["table1"]; strings.Join(got, ",") != "player1" {
		t.Fatalf("pull did not restore remote state: %v", got)
	}
}

func TestConsolePullUnreachable(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	tr := tracker.New(store.NewMemorySeats(), store.NewMemoryProfiles(), nil, 0)
	sc := remote.NewCoordinator(remote.NewClient(url+"/exec", time.Second), tr, time.Minute)
	c := newConsole(tr, sc, &strings.Builder{}, t.TempDir())

	if got := run(t, c, ":pull"); !strings.HasPrefix(got, "! ") {
		t.Fatalf("expected error message, got %q", got)
	}
}

func TestConsoleExport(t *testing.T) {
	c, _ := newTestConsole(t)
	c.now = func() time.Time { return time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC) }
	for _, tok := range []string{"table1", "player1"} {
		run(t, c, tok)
	}
	got := run(t, c, ":export")
	want := filepath.Join(c.exportDir, "babanuki_20261016T093000Z.csv")
	if got != "exported "+want {
		t.Fatalf("unexpected %q", got)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("export missing: %v", err)
	}
}

func TestConsoleLoopQuits(t *testing.T) {
	c, out := newTestConsole(t)
	c.loop(context.Background(), strings.NewReader("table1\n:bogus\n:quit\nplayer1\n"))
	if !strings.Contains(out.String(), "seat set: table1") || !strings.Contains(out.String(), `unknown command "bogus"`) {
		t.Fatalf("unexpected output %q", out.String())
	}
	if c.tr.ActiveSeat() != "table1" {
		t.Fatalf("unexpected active seat %q", c.tr.ActiveSeat())
	}
	if len(c.tr.Snapshot().PlayerData) != 0 {
		t.Fatal("input after :quit was processed")
	}
}

func TestFormatChange(t *testing.T) {
	cases := map[int]string{8: "↑8", -4: "↓4", 0: "±0"}
	for in, want := range cases {
		if got := formatChange(in); got != want {
			t.Errorf("formatChange(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderSeats(t *testing.T) {
	if got := renderSeats(game.EmptySnapshot()); got != "no seats" {
		t.Fatalf("unexpected %q", got)
	}
	snap := game.Snapshot{
		SeatMap: game.SeatMap{"table2": {"player3"}, "table1": {"player1"}},
		PlayerData: game.PlayerData{
			"player1": {Nickname: "player1", Rate: game.IntPtr(64), Bonus: 14, Title: game.TitleCrown},
		},
	}
	got := renderSeats(snap)
	for _, want := range []string{"👑", "64", "↑14", "player3", "50"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "table1") > strings.Index(got, "table2") {
		t.Errorf("seats not sorted:\n%s", got)
	}
}

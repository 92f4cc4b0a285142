package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/babanuki/internal/game"
)

func sampleSnapshot() game.Snapshot {
	ranked := game.NewProfile("player1")
	ranked.Rate = game.IntPtr(64)
	ranked.LastRank = game.IntPtr(4)
	ranked.Bonus = 14
	ranked.Title = game.TitleCrown
	return game.Snapshot{
		SeatMap: game.SeatMap{
			"table2": {"player3"},
			"table1": {"player1", "player2"},
		},
		PlayerData: game.PlayerData{
			"player1": ranked,
			"player2": game.NewProfile("player2"),
			"player3": game.NewProfile("player3"),
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleSnapshot()); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := `"seatId","playerId","rate","lastRank","title","bonus"` + "\r\n" +
		`"table1","player1","64","4","crown","14"` + "\r\n" +
		`"table1","player2","50","","","0"` + "\r\n" +
		`"table2","player3","50","","","0"` + "\r\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteEscapesQuotes(t *testing.T) {
	snap := game.Snapshot{SeatMap: game.SeatMap{`table"x`: {"player1"}}, PlayerData: game.PlayerData{}}
	var buf bytes.Buffer
	if err := Write(&buf, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"table""x","player1","","","","0"`)) {
		t.Fatalf("quotes not escaped: %s", buf.String())
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	path, err := WriteFile(dir, sampleSnapshot(), now)
	if err != nil {
		t.Fatalf("write file: %v", err)
	}
	if filepath.Base(path) != "babanuki_20261016T093000Z.csv" {
		t.Fatalf("unexpected name %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(bytes.Split(bytes.TrimSpace(data), []byte("\r\n"))) != 4 {
		t.Fatalf("unexpected row count in %q", data)
	}
}

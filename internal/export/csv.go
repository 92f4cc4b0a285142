// Package export renders the read-only CSV view of a snapshot.
//
// Every field is double-quoted (embedded quotes doubled) and rows end with
// CRLF. encoding/csv only quotes when needed, so the writer is hand-rolled.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/babanuki/internal/game"
)

// Header is the first CSV row.
var Header = []string{"seatId", "playerId", "rate", "lastRank", "title", "bonus"}

// Rows returns the header plus one row per (seat, player), seats in ascending
// id order and players in seat order.
func Rows(snap game.Snapshot) [][]string {
	seatIDs := make([]string, 0, len(snap.SeatMap))
	for id := range snap.SeatMap {
		seatIDs = append(seatIDs, id)
	}
	sort.Strings(seatIDs)

	rows := [][]string{Header}
	for _, seatID := range seatIDs {
		for _, pid := range snap.SeatMap[seatID] {
			p, ok := snap.PlayerData[pid]
			rate, lastRank := "", ""
			if ok && p.Rate != nil {
				rate = strconv.Itoa(*p.Rate)
			}
			if p.LastRank != nil {
				lastRank = strconv.Itoa(*p.LastRank)
			}
			rows = append(rows, []string{seatID, pid, rate, lastRank, string(p.Title), strconv.Itoa(p.Bonus)})
		}
	}
	return rows
}

// Write encodes the snapshot as CSV.
func Write(w io.Writer, snap game.Snapshot) error {
	bw := bufio.NewWriter(w)
	for _, row := range Rows(snap) {
		for i, field := range row {
			if i > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\r\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FileName returns the export file name for t, e.g. babanuki_20261016T093000Z.csv.
func FileName(t time.Time) string {
	return "babanuki_" + t.UTC().Format("20060102T150405Z") + ".csv"
}

// WriteFile writes the CSV into dir and returns the created path.
func WriteFile(dir string, snap game.Snapshot, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(now))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Write(f, snap); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

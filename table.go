package main

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/robalobadob/babanuki/internal/game"
)

var titleBadges = map[game.Title]string{
	game.TitleCrown:  "👑",
	game.TitleSilver: "🥈",
	game.TitleBronze: "🥉",
}

// renderSeats lists every seat member with title, rate and last change.
func renderSeats(snap game.Snapshot) string {
	if len(snap.SeatMap) == 0 {
		return "no seats"
	}
	seatIDs := make([]string, 0, len(snap.SeatMap))
	for id := range snap.SeatMap {
		seatIDs = append(seatIDs, id)
	}
	sort.Strings(seatIDs)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Seat", "Player", "Title", "Rate", "Change"})
	for _, seatID := range seatIDs {
		players := snap.SeatMap[seatID]
		if len(players) == 0 {
			tw.AppendRow(table.Row{seatID, "-", "", "", ""})
		}
		for _, pid := range players {
			p := snap.PlayerData[pid]
			tw.AppendRow(table.Row{seatID, pid, titleBadges[p.Title], p.EffectiveRate(), formatChange(p.Bonus)})
		}
		tw.AppendSeparator()
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	return tw.Render()
}

// formatChange renders a bonus as ↑n, ↓n or ±0.
func formatChange(bonus int) string {
	switch {
	case bonus > 0:
		return fmt.Sprintf("↑%d", bonus)
	case bonus < 0:
		return fmt.Sprintf("↓%d", -bonus)
	default:
		return "±0"
	}
}

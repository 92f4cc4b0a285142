package game

import "strings"

const (
	seatPrefix   = "table"
	playerPrefix = "player"
)

// Classify maps a decoded token to its Kind. Matching is an exact,
// case-sensitive prefix check with no normalization.
func Classify(token string) Kind {
	switch {
	case strings.HasPrefix(token, seatPrefix):
		return KindSeat
	case strings.HasPrefix(token, playerPrefix):
		return KindPlayer
	default:
		return KindUnrecognized
	}
}

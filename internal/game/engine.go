// internal/game/engine.go
//
// Rating engine for one confirmed round at a seat.
// Responsibilities:
//   - Convert a finish order plus the seat's previous order into point deltas.
//   - Apply the special cases: last-to-first bonus, high-rate damping and the
//     top-rate challenge bonus.
//   - Clamp resulting rates to MinRate.
//
// Notes:
//   - All "before" rates are snapshotted once, so the result never depends on
//     the order in which players are evaluated.
//   - ComputeRatings is pure; callers apply the results to their profiles.
package game

const (
	pointsPerPosition = 2
	lastToFirstBonus  = 8
	dampingThreshold  = 80
	challengeBonus    = 2
)

// RatingResult is the outcome of one rating pass for a single player.
type RatingResult struct {
	Rate     int  // new rate, >= MinRate
	Bonus    int  // points applied this pass
	LastRank *int // 1-based position in the previous order, nil if absent
}

// ComputeRatings scores a finish order (index 0 = first place).
//
// previous is the seat's order before this round; a player's position there
// is their previous rank. Players missing from previous are treated as having
// held their current placement, which yields a zero differential.
//
// Steps per player, using rates as they were before this call:
//   - points = (previousRank - currentRank) * 2
//   - last place last time and first now: +8
//   - rate >= 80: points scaled by 0.8, floored
//   - first place while below the best rate at the seat: +2
//   - rate = max(MinRate, rate + points)
func ComputeRatings(finish, previous []string, profiles PlayerData) map[string]RatingResult {
	n := len(finish)
	out := make(map[string]RatingResult, n)
	if n == 0 {
		return out
	}

	before := make(map[string]int, n)
	topRate := 0
	for i, id := range finish {
		r := profiles[id].EffectiveRate()
		before[id] = r
		if i == 0 || r > topRate {
			topRate = r
		}
	}

	prevRank := make(map[string]int, len(previous))
	for i, id := range previous {
		if _, seen := prevRank[id]; !seen {
			prevRank[id] = i + 1
		}
	}

	for i, id := range finish {
		current := i + 1
		res := RatingResult{}
		prev, ok := prevRank[id]
		if ok {
			res.LastRank = IntPtr(prev)
		} else {
			prev = current
		}

		points := (prev - current) * pointsPerPosition
		if prev == n && i == 0 {
			points += lastToFirstBonus
		}
		rate := before[id]
		if rate >= dampingThreshold {
			points = floorDiv(points*4, 5)
		}
		if rate < topRate && i == 0 {
			points += challengeBonus
		}

		res.Bonus = points
		res.Rate = max(MinRate, rate+points)
		out[id] = res
	}
	return out
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

package engine

import "mahjongcore/tiles"

// removeTiles returns hand with one copy of each of want removed, or
// ok=false if the hand doesn't contain them (by Type+ID, exact tile).
func removeTiles(hand []tiles.Tile, want []tiles.Tile) ([]tiles.Tile, bool) {
	out := append([]tiles.Tile(nil), hand...)
	for _, w := range want {
		found := false
		for i, t := range out {
			if t == w {
				out = append(out[:i], out[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return out, true
}

func countType(hand []tiles.Tile, ty tiles.Type) int {
	n := 0
	for _, t := range hand {
		if t.Type == ty {
			n++
		}
	}
	return n
}

// ccwDistance returns how many seats counter-clockwise (i.e. in turn
// order) from must be traveled to reach to, used for call-resolution
// tie-breaks (spec §4.2), grounded on selectStickWinnerRonA's
// closest-counterclockwise-seat rule.
func ccwDistance(from, to int) int {
	d := to - from
	if d < 0 {
		d += 4
	}
	return d
}

func nextSeat(s int) int { return (s + 1) % 4 }

// seatWind returns a seat's own wind relative to the current dealer
// (dealer is always East), used for fu/han scoring.
func seatWind(seat, dealerSeat int) int { return ccwDistance(dealerSeat, seat) }

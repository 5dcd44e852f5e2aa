package engine

import "mahjongcore/state"

// maxRoundWind/maxRoundIndex and bustPoints gate game end, grounded on
// riichi_mahjong_4p_engine.go:finalizeRound's `RoundNumber > 4` and
// `maxPoints >= 30000` checks (south-round hanchan, 30000-point buster).
const (
	maxRoundWind  = state.South
	maxRoundIndex = 4
	bustPoints    = 30000
)

// endRound finalizes the current round: records the end kind, emits a
// RoundEnd event, and advances the honba/dealer/round-wind table per
// spec §4.5 (dealer repeats --renchan-- on a dealer win, an exhaustive
// draw that leaves the dealer tenpai, or any abortive draw; otherwise the
// dealer seat rotates and the round number/wind advances).
func endRound(rs state.RoundState, kind state.RoundEndKind, winners []int, loser int) (state.RoundState, []Event, error) {
	rs.Phase = state.PhaseRoundEnd
	rs.EndKind = kind
	rs.Pending = nil

	// the riichi stick pool pays out to the winner(s) of a tsumo/ron and
	// is otherwise carried into the next round untouched.
	if (kind == state.RoundEndTsumo || kind == state.RoundEndRon) && len(winners) > 0 && rs.Situation.RiichiSticks > 0 {
		share := rs.Situation.RiichiSticks * 1000 / len(winners)
		for _, w := range winners {
			p := rs.Players[w]
			p.Score += share
			rs.Players[w] = p
		}
		rs.Situation.RiichiSticks = 0
	}

	dealerWon := false
	for _, w := range winners {
		if w == rs.Situation.DealerSeat {
			dealerWon = true
		}
	}
	dealerTenpaiOnDraw := kind == state.RoundEndExhaustiveDraw && rs.Players[rs.Situation.DealerSeat].IsTenpai

	isDraw := kind == state.RoundEndExhaustiveDraw || kind == state.RoundEndAbortiveDraw
	renchan := dealerWon || (kind == state.RoundEndExhaustiveDraw && dealerTenpaiOnDraw) || kind == state.RoundEndAbortiveDraw

	newSit := rs.Situation
	// honba always increases after a draw or a dealer repeat; it resets
	// only when the deal passes to a new dealer.
	if isDraw || renchan {
		newSit.Honba++
	} else {
		newSit.Honba = 0
	}
	if !renchan {
		newSit.DealerSeat = nextSeat(rs.Situation.DealerSeat)
		newSit.RoundNumber++
		if newSit.RoundNumber > maxRoundIndex {
			newSit.RoundNumber = 1
			newSit.RoundWind = rs.Situation.RoundWind.Next()
		}
	}

	events := []Event{{
		Kind: EventRoundEnd, RoundEndKind: kind, WinnerSeats: winners,
		LoserSeat: loser, HasLoser: loser >= 0, NewSituation: newSit,
	}}

	ended, ranking := checkGameEnd(rs, newSit)
	if ended {
		events = append(events, Event{Kind: EventGameEnd, GameRanking: ranking})
	}
	rs.Situation = newSit
	return rs, events, nil
}

// checkGameEnd applies the game-end conditions from spec §4.5: the hand
// count exceeds the configured length (south round, round 4, i.e. past
// 2-4 in the all-last) or someone has busted below zero or past
// bustPoints a rival has reached.
func checkGameEnd(rs state.RoundState, newSit state.Situation) (bool, []int) {
	busted := false
	for _, p := range rs.Players {
		if p.Score < 0 {
			busted = true
		}
		if p.Score >= bustPoints {
			busted = true
		}
	}
	pastLength := newSit.RoundWind > maxRoundWind
	if !busted && !pastLength {
		return false, nil
	}
	ranking := rankSeatsByScore(rs)
	return true, ranking
}

func rankSeatsByScore(rs state.RoundState) []int {
	seats := []int{0, 1, 2, 3}
	for i := 0; i < len(seats); i++ {
		for j := i + 1; j < len(seats); j++ {
			if rs.Players[seats[j]].Score > rs.Players[seats[i]].Score {
				seats[i], seats[j] = seats[j], seats[i]
			}
		}
	}
	return seats
}

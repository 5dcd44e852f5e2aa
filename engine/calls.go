package engine

import (
	"context"

	"mahjongcore/state"
	"mahjongcore/tiles"
)

// tripleRonCount is the number of simultaneous ron callers that voids
// the hand instead of awarding a win, grounded on
// original_source/backend/game/logic/abortive.py:check_triple_ron.
const tripleRonCount = 3

// resolveCallWindow applies spec §4.2's priority table (ron > kan/pon >
// chi) with a counter-clockwise-seat tie-break, grounded on
// selectBestReaction/selectStickWinnerRonA.
func resolveCallWindow(rs state.RoundState, deps Deps) (state.RoundState, []Event, error) {
	furitenEvs := updateMissedRonFuriten(&rs, deps)
	cw := rs.Pending
	var ronSeats, kanSeats, ponSeats, chiSeats []int
	for s := 0; s < 4; s++ {
		switch cw.Responses[s].Kind {
		case state.RespRon:
			ronSeats = append(ronSeats, s)
		case state.RespKan:
			kanSeats = append(kanSeats, s)
		case state.RespPon:
			ponSeats = append(ponSeats, s)
		case state.RespChi:
			chiSeats = append(chiSeats, s)
		}
	}

	if len(ronSeats) > 0 {
		if len(ronSeats) >= tripleRonCount {
			rs.Pending = nil
			next, evs, err := endRound(rs, state.RoundEndAbortiveDraw, nil, cw.DiscardSeat)
			return next, append(furitenEvs, evs...), err
		}
		next, evs, err := resolveRon(rs, deps, ronSeats, cw)
		return next, append(furitenEvs, evs...), err
	}
	if len(kanSeats) > 0 {
		seat := closestCCW(cw.DiscardSeat, kanSeats)
		next, evs, err := executeDaiminkan(rs, deps, seat, cw)
		return next, append(furitenEvs, evs...), err
	}
	if len(ponSeats) > 0 {
		seat := closestCCW(cw.DiscardSeat, ponSeats)
		next, evs, err := executeMeldCall(rs, seat, cw, state.MeldPon, cw.Responses[seat].MeldTiles)
		return next, append(furitenEvs, evs...), err
	}
	if len(chiSeats) > 0 {
		seat := chiSeats[0]
		next, evs, err := executeMeldCall(rs, seat, cw, state.MeldChi, cw.Responses[seat].MeldTiles)
		return next, append(furitenEvs, evs...), err
	}

	// everyone passed
	if cw.IsChankan {
		// the robbed kan stands: the kan caller (recorded as cw.DiscardSeat
		// for a chankan window) draws its replacement tile from the dead
		// wall, same as any other kan call -- not an ordinary wall draw.
		rs.Pending = nil
		next, evs, err := drawKanReplacement(rs, cw.DiscardSeat)
		return next, append(furitenEvs, evs...), err
	}
	next, evs, err := advanceAfterDiscard(rs, cw.DiscardSeat)
	return next, append(furitenEvs, evs...), err
}

// updateMissedRonFuriten marks temporary (and, for riichi hands,
// permanent) furiten on any seat that passed on a call window while
// holding a winning wait on the window's tile -- spec §8's "a seat whose
// discard pile contains any tile it currently waits on is furiten"
// extends to a missed ron exactly the same way real table rules treat
// a declined win. A WaitAnalyzer that can't answer (the NullWaitAnalyzer
// test double) makes this a no-op, same as before this existed. Returns
// one EventFuriten per seat whose furiten status just flipped on.
func updateMissedRonFuriten(rs *state.RoundState, deps Deps) []Event {
	cw := rs.Pending
	if cw == nil {
		return nil
	}
	var evs []Event
	for s := 0; s < 4; s++ {
		if cw.Responses[s].Kind != state.RespPass {
			continue
		}
		p := rs.Players[s]
		waits, err := deps.Waits.Waits(p.Hand, len(p.Melds))
		if err != nil || len(waits) == 0 {
			continue
		}
		wasFuriten := p.TemporaryFuriten
		for _, w := range waits {
			if w == cw.Tile.Type {
				p.TemporaryFuriten = true
				if p.IsRiichi {
					p.PermanentFuriten = true
				}
				break
			}
		}
		rs.Players[s] = p
		if p.TemporaryFuriten && !wasFuriten {
			evs = append(evs, Event{Kind: EventFuriten, Seat: s, FuritenTemporary: p.TemporaryFuriten, FuritenPermanent: p.PermanentFuriten})
		}
	}
	return evs
}

func closestCCW(from int, candidates []int) int {
	best, bestDist := candidates[0], 5
	for _, c := range candidates {
		d := ccwDistance(from, c)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func resolveRon(rs state.RoundState, deps Deps, ronSeats []int, cw *state.CallWindow) (state.RoundState, []Event, error) {
	events := make([]Event, 0, len(ronSeats)+1)
	lost := 0
	for _, seat := range ronSeats {
		p := rs.Players[seat]
		res, _ := deps.Scorer.ScoreHand(context.Background(), append(append([]tiles.Tile(nil), p.Hand...), cw.Tile), len(p.Melds), cw.Tile, false, seatWind(seat, rs.Situation.DealerSeat), int(rs.Situation.RoundWind), rs.Wall.VisibleDoraIndicators())
		p.Score += res.Points
		rs.Players[seat] = p
		lost += res.Points
		events = append(events, Event{Kind: EventRon, Seat: seat, Tile: cw.Tile, WinnerSeats: ronSeats, LoserSeat: cw.DiscardSeat, HasLoser: true})
	}
	loser := rs.Players[cw.DiscardSeat]
	loser.Score -= lost
	rs.Players[cw.DiscardSeat] = loser
	rs.Pending = nil
	nr, endEvents, err := endRound(rs, state.RoundEndRon, ronSeats, cw.DiscardSeat)
	return nr, append(events, endEvents...), err
}

func executeDaiminkan(rs state.RoundState, deps Deps, seat int, cw *state.CallWindow) (state.RoundState, []Event, error) {
	p := rs.Players[seat]
	want := []tiles.Tile{cw.Tile, cw.Tile, cw.Tile}
	hand, ok := removeTiles(p.Hand, want)
	if !ok {
		// fall back to the tiles the caller explicitly submitted
		hand, ok = removeTiles(p.Hand, cw.Responses[seat].MeldTiles)
		if !ok {
			return rs, nil, ruleErr("kan call tiles not in hand")
		}
	}
	p.Hand = hand
	p.Melds = append(p.Melds, state.Meld{Type: state.MeldOpenKan, Tiles: append(want, cw.Tile), From: cw.DiscardSeat})
	rs.Players[seat] = p
	rs.KanCount++
	rs.Pending = nil
	return drawKanReplacement(rs, seat)
}

func applySelfKan(rs state.RoundState, deps Deps, in Input) (state.RoundState, []Event, error) {
	next := rs.Clone()
	p := next.Players[in.Seat]
	if in.KanIsAdded {
		idx := -1
		for i, m := range p.Melds {
			if m.Type == state.MeldPon && len(m.Tiles) > 0 && m.Tiles[0].Type == in.KanTile.Type {
				idx = i
				break
			}
		}
		if idx < 0 {
			return rs, nil, ruleErr("no matching pon to add kan to")
		}
		hand, ok := removeTiles(p.Hand, []tiles.Tile{in.KanTile})
		if !ok {
			return rs, nil, ruleErr("added-kan tile not in hand")
		}
		p.Hand = hand
		m := p.Melds[idx]
		m.Type = state.MeldAddedKan
		m.Tiles = append(m.Tiles, in.KanTile)
		p.Melds[idx] = m
		next.Players[in.Seat] = p
		next.KanCount++
		// chankan: the added tile can still be robbed by ron.
		eligible := eligibleReactors(next, in.Seat, in.KanTile, true)
		if anyEligible(eligible) {
			next.Phase = state.PhaseCallWindow
			next.Pending = state.NewCallWindow(in.Seat, in.KanTile, eligible, true)
			return next, []Event{{Kind: EventMeldFormed, Seat: in.Seat, Meld: m}}, nil
		}
		return drawKanReplacement(next, in.Seat)
	}

	want := []tiles.Tile{in.KanTile, in.KanTile, in.KanTile, in.KanTile}
	hand, ok := removeTiles(p.Hand, want)
	if !ok {
		return rs, nil, ruleErr("ankan tiles not in hand")
	}
	p.Hand = hand
	m := state.Meld{Type: state.MeldClosedKan, Tiles: want, From: in.Seat}
	p.Melds = append(p.Melds, m)
	next.Players[in.Seat] = p
	next.KanCount++
	return drawKanReplacement(next, in.Seat)
}

func drawKanReplacement(rs state.RoundState, seat int) (state.RoundState, []Event, error) {
	events := []Event{}
	t, ok := rs.Wall.DrawReplacement()
	if !ok {
		rs.Pending = nil
		return endRound(rs, state.RoundEndExhaustiveDraw, nil, -1)
	}
	if dora, ok := rs.Wall.RevealDoraIndicator(); ok {
		events = append(events, Event{Kind: EventDoraRevealed, Tile: dora})
	}
	p := rs.Players[seat]
	p.Hand = append(p.Hand, t)
	nt := t
	p.NewestTile = &nt
	rs.Players[seat] = p
	rs.CurrentPlayer = seat
	rs.Phase = state.PhaseAction
	if rs.KanCount >= 4 && countDistinctKanCallers(rs) >= 2 {
		return endRound(rs, state.RoundEndAbortiveDraw, nil, -1)
	}
	return rs, append(events, Event{Kind: EventDraw, Seat: seat, Tile: t}), nil
}

func countDistinctKanCallers(rs state.RoundState) int {
	n := 0
	for _, p := range rs.Players {
		for _, m := range p.Melds {
			if m.Type == state.MeldOpenKan || m.Type == state.MeldClosedKan || m.Type == state.MeldAddedKan {
				n++
				break
			}
		}
	}
	return n
}

func executeMeldCall(rs state.RoundState, seat int, cw *state.CallWindow, mt state.MeldType, chosen []tiles.Tile) (state.RoundState, []Event, error) {
	p := rs.Players[seat]
	hand, ok := removeTiles(p.Hand, chosen)
	if !ok {
		return rs, nil, ruleErr("meld call tiles not in hand")
	}
	p.Hand = hand
	m := state.Meld{Type: mt, Tiles: append(append([]tiles.Tile(nil), chosen...), cw.Tile), From: cw.DiscardSeat}
	p.Melds = append(p.Melds, m)
	rs.Players[seat] = p
	// a call breaks ippatsu for every seat and discards the no-longer-live discard tile from the discarder's pile visually, but the tile stays recorded.
	for s := range rs.IppatsuSeats {
		rs.IppatsuSeats[s] = false
	}
	rs.Pending = nil
	rs.CurrentPlayer = seat
	rs.Phase = state.PhaseAction
	return rs, []Event{{Kind: EventMeldFormed, Seat: seat, Meld: m}}, nil
}

func applyTsumo(rs state.RoundState, deps Deps, in Input) (state.RoundState, []Event, error) {
	if rs.Phase != state.PhaseAction || in.Seat != rs.CurrentPlayer {
		return rs, nil, ruleErr("tsumo not available now")
	}
	next := rs.Clone()
	p := next.Players[in.Seat]
	winTile := *p.NewestTile
	res, _ := deps.Scorer.ScoreHand(context.Background(), p.Hand, len(p.Melds), winTile, true, seatWind(in.Seat, next.Situation.DealerSeat), int(next.Situation.RoundWind), next.Wall.VisibleDoraIndicators())
	payPerLoser := res.Points / 3
	for s := 0; s < 4; s++ {
		if s == in.Seat {
			continue
		}
		lp := next.Players[s]
		lp.Score -= payPerLoser
		next.Players[s] = lp
	}
	p.Score += payPerLoser * 3
	next.Players[in.Seat] = p
	return endRound(next, state.RoundEndTsumo, []int{in.Seat}, -1)
}

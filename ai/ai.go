// Package ai implements the AI seat decision port: a pure function from
// round state to the next input for an AI-controlled seat. Grounded on
// original_source/backend/game/logic/ai_player_controller.py, which
// implements a single "tsumogiri" strategy (always discard the tile
// just drawn, never call, never riichi) -- the only AI behavior spec.md
// requires (AI seats are named "Tsumogiri N" by the matchmaker).
package ai

import (
	"mahjongcore/engine"
	"mahjongcore/state"
)

// Decide returns the engine.Input an AI seat should submit for the
// current state, or ok=false if it's not that seat's turn to act.
func Decide(rs state.RoundState, seat int) (engine.Input, bool) {
	if rs.Phase == state.PhaseAction && rs.CurrentPlayer == seat {
		p := rs.Players[seat]
		if p.NewestTile == nil {
			return engine.Input{}, false
		}
		return engine.Input{Kind: engine.InputDiscard, Seat: seat, Discard: *p.NewestTile, Tsumogiri: true}, true
	}
	if rs.Phase == state.PhaseCallWindow && rs.Pending != nil && rs.Pending.Eligible[seat] &&
		rs.Pending.Responses[seat].Kind == state.RespNone {
		// tsumogiri AI never calls or rons.
		return engine.Input{Kind: engine.InputPass, Seat: seat}, true
	}
	return engine.Input{}, false
}

package session

import (
	"mahjongcore/engine"
	"mahjongcore/state"
	"mahjongcore/tiles"
)

const initialScore = 25000

// dealInitialRound builds the very first hand of a new game: a fresh
// wall, 13 concealed tiles per seat dealt from its head, dealer at seat
// 0, east-1 (spec §3: "deterministic initial hands of 13 tiles per
// seat").
func dealInitialRound(builder tiles.Builder, seed int64) state.RoundState {
	return dealHand(builder, seed, state.Situation{DealerSeat: 0, RoundWind: state.East, RoundNumber: 1}, [4]int{initialScore, initialScore, initialScore, initialScore}, [4]string{}, [4]bool{})
}

// nextRound deals a fresh hand carrying forward the prior round's
// resolved Situation (dealer/honba/round-wind already rotated by
// engine.endRound) and every seat's current score.
func nextRound(prev state.RoundState, builder tiles.Builder, seed int64) state.RoundState {
	var scores [4]int
	var names [4]string
	var ai [4]bool
	for i, p := range prev.Players {
		scores[i] = p.Score
		names[i] = p.Name
		ai[i] = p.IsAI
	}
	return dealHand(builder, seed, prev.Situation, scores, names, ai)
}

func dealHand(builder tiles.Builder, seed int64, sit state.Situation, scores [4]int, names [4]string, ai [4]bool) state.RoundState {
	wall := builder.BuildWall(seed)
	var players [4]state.Player
	for s := 0; s < 4; s++ {
		hand := make([]tiles.Tile, 0, 13)
		for i := 0; i < 13; i++ {
			t, ok := wall.Draw()
			if !ok {
				break
			}
			hand = append(hand, t)
		}
		players[s] = state.Player{
			Seat: s, Name: names[s], IsAI: ai[s], Hand: hand, Score: scores[s], RiichiDiscardIx: -1,
		}
	}
	wall.RevealDoraIndicator()
	return state.RoundState{
		Situation: sit, Players: players, Wall: wall,
		CurrentPlayer: sit.DealerSeat, Phase: state.PhaseDraw,
	}
}

// AdvanceRound deals and starts the next hand once every required seat
// has confirmed (spec §4.4). It always deals; it is only reached after a
// round end that did not also end the game, since publish does not call
// OnRoundEnd when the batch carries EventGameEnd.
func (a *GameActor) AdvanceRound(builder tiles.Builder, seed int64) {
	a.mu.Lock()
	next := nextRound(a.game.Round, builder, seed)
	a.game.Round = next
	a.mu.Unlock()
	a.bank.AddRoundBonusAll()
	a.Submit(engine.Input{Kind: engine.InputDraw, Seat: next.CurrentPlayer})
}

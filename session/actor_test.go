package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mahjongcore/engine"
	"mahjongcore/state"
)

func humanSeatOf(actor *GameActor) int {
	for _, sc := range actor.Seats {
		if !sc.IsAI {
			return sc.Seat
		}
	}
	return -1
}

// TestStartGameReachesRoundEndWithoutExternalDraws exercises spec
// testable property #2 at the actor level: once the three AI seats and
// a tsumogiri-playing human each just discard and pass, the round must
// reach ROUND_END on its own. Nothing in this test ever submits
// InputDraw -- the actor's PhaseDraw auto-advance (wired in onTransition
// and in EmitStart) is the only thing moving play from seat to seat.
func TestStartGameReachesRoundEndWithoutExternalDraws(t *testing.T) {
	ctl := newTestController()
	actor, err := ctl.StartGame("g1", []string{"human"}, 7)
	require.NoError(t, err)

	human := humanSeatOf(actor)
	require.GreaterOrEqual(t, human, 0, "matchmaker should have seated exactly one human")

	require.Eventually(t, func() bool {
		snap := actor.Snapshot()
		round := snap.Round
		switch round.Phase {
		case state.PhaseAction:
			if round.CurrentPlayer == human {
				if p := round.Players[human]; p.NewestTile != nil {
					actor.Submit(engine.Input{Kind: engine.InputDiscard, Seat: human, Discard: *p.NewestTile, Tsumogiri: true})
				}
			}
		case state.PhaseCallWindow:
			if round.Pending != nil && round.Pending.Eligible[human] && round.Pending.Responses[human].Kind == state.RespNone {
				actor.Submit(engine.Input{Kind: engine.InputPass, Seat: human})
			}
		}
		return round.Phase == state.PhaseRoundEnd
	}, 5*time.Second, time.Millisecond, "an all-tsumogiri table should reach a round end well within the wall's tile count")
}

// TestEmitStartLandsDealersFirstDraw checks spec §4.4 step 5: the
// dealer's hand grows to 14 tiles once the first draw that EmitStart
// submits lands. The GAME_STARTED/ROUND_STARTED messages themselves are
// not inspected here.
func TestEmitStartLandsDealersFirstDraw(t *testing.T) {
	ctl := newTestController()
	actor, err := ctl.StartGame("g2", []string{"human"}, 11)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		snap := actor.Snapshot()
		dealer := snap.Round.Situation.DealerSeat
		return len(snap.Round.Players[dealer].Hand) == 14
	}, time.Second, time.Millisecond, "the dealer's first draw should land without any test-submitted InputDraw")
}

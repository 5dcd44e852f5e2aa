package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mahjongcore/ports"
	"mahjongcore/state"
	"mahjongcore/tiles"
)

func newTestRound() state.RoundState {
	wall := tiles.DeterministicBuilder{}.BuildWall(1)
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
		players[s] = state.Player{Seat: s, Score: 25000, Hand: hand, RiichiDiscardIx: -1}
	}
	return state.RoundState{
		Situation:     state.Situation{DealerSeat: 0, RoundWind: state.East, RoundNumber: 1},
		Players:       players,
		Wall:          wall,
		CurrentPlayer: 0,
		Phase:         state.PhaseDraw,
	}
}

func testDeps() Deps { return Deps{Scorer: ports.NullScorer{}, Waits: ports.NullWaitAnalyzer{}} }

func TestApplyDrawThenRiichiDiscard(t *testing.T) {
	rs := newTestRound()
	deps := testDeps()

	rs1, events1, err := Apply(rs, deps, Input{Kind: InputDraw, Seat: 0})
	require.NoError(t, err)
	require.Equal(t, state.PhaseAction, rs1.Phase)
	require.Len(t, events1, 1)
	require.Equal(t, EventDraw, events1[0].Kind)
	require.NotNil(t, rs1.Players[0].NewestTile)

	drawn := *rs1.Players[0].NewestTile
	rs2, events2, err := Apply(rs1, deps, Input{
		Kind: InputDiscard, Seat: 0, Discard: drawn, Tsumogiri: true, DeclareRiichi: true,
	})
	require.NoError(t, err)
	require.True(t, rs2.Players[0].IsRiichi)
	require.Equal(t, 24000, rs2.Players[0].Score)
	require.Equal(t, 1, rs2.Situation.RiichiSticks)
	require.Equal(t, state.PhaseCallWindow, rs2.Phase, "every other seat is always ron-eligible until the window resolves")
	require.Len(t, events2, 1)
	require.True(t, events2[0].IsRiichi)

	rs3, _, err := Apply(rs2, deps, Input{Kind: InputTimeout, Timeout: TimeoutMeld})
	require.NoError(t, err)
	require.Equal(t, state.PhaseDraw, rs3.Phase, "an all-pass call window resumes the next seat's draw")
	require.Equal(t, 1, rs3.CurrentPlayer)
}

func TestApplyDiscardRejectsWrongSeat(t *testing.T) {
	rs := newTestRound()
	deps := testDeps()
	rs1, _, err := Apply(rs, deps, Input{Kind: InputDraw, Seat: 0})
	require.NoError(t, err)

	_, _, err = Apply(rs1, deps, Input{Kind: InputDiscard, Seat: 1, Discard: rs1.Players[0].Hand[0]})
	require.Error(t, err)
	var engErr *Error
	require.ErrorAs(t, err, &engErr)
	require.Equal(t, CategoryGameRuleViolation, engErr.Category)
}

func TestApplyDiscardRejectsUnheldTile(t *testing.T) {
	rs := newTestRound()
	deps := testDeps()
	rs1, _, err := Apply(rs, deps, Input{Kind: InputDraw, Seat: 0})
	require.NoError(t, err)

	held := func(tl tiles.Tile) bool {
		for _, h := range rs1.Players[0].Hand {
			if h == tl {
				return true
			}
		}
		return false
	}
	var foreign tiles.Tile
	found := false
	for id := 0; id < tiles.NumTiles; id++ {
		cand := tiles.FromID136(id)
		if !held(cand) {
			foreign, found = cand, true
			break
		}
	}
	require.True(t, found, "hand of 14 can't cover all 136 tiles")

	_, _, err = Apply(rs1, deps, Input{Kind: InputDiscard, Seat: 0, Discard: foreign})
	require.Error(t, err)
}

func TestApplyTimeoutTurnTsumogirisTheDrawnTile(t *testing.T) {
	rs := newTestRound()
	deps := testDeps()
	rs1, _, err := Apply(rs, deps, Input{Kind: InputDraw, Seat: 0})
	require.NoError(t, err)
	drawn := *rs1.Players[0].NewestTile

	rs2, events, err := Apply(rs1, deps, Input{Kind: InputTimeout, Seat: 0, Timeout: TimeoutTurn})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, EventDiscard, events[0].Kind)
	require.True(t, events[0].Tsumogiri)
	require.Equal(t, drawn, events[0].Tile)
	require.NotContains(t, rs2.Players[0].Hand, drawn)
}

func TestKyuushuKyuuhaiRequiresUntouchedFirstTurn(t *testing.T) {
	rs := newTestRound()
	deps := testDeps()
	rs1, _, err := Apply(rs, deps, Input{Kind: InputDraw, Seat: 0})
	require.NoError(t, err)

	_, _, err = Apply(rs1, deps, Input{Kind: InputKyuushuKyuuhai, Seat: 0})
	require.Error(t, err, "the test hand has no nine distinct terminal/honor types")
}

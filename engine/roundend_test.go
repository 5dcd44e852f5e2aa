package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mahjongcore/state"
)

func TestEndRoundPaysOutRiichiSticksToWinner(t *testing.T) {
	rs := newTestRound()
	rs.Situation.RiichiSticks = 2
	rs.Players[1].Score = 26000

	next, events, err := endRound(rs, state.RoundEndTsumo, []int{1}, -1)
	require.NoError(t, err)
	require.Equal(t, 0, next.Situation.RiichiSticks, "the pool empties once paid out")
	require.Equal(t, 26000+2000, next.Players[1].Score)
	require.Len(t, events, 1)
	require.Equal(t, EventRoundEnd, events[0].Kind)
}

func TestEndRoundSplitsSticksAcrossDoubleRon(t *testing.T) {
	rs := newTestRound()
	rs.Situation.RiichiSticks = 1

	next, _, err := endRound(rs, state.RoundEndRon, []int{1, 2}, 0)
	require.NoError(t, err)
	require.Equal(t, 0, next.Situation.RiichiSticks)
	require.Equal(t, 25000+500, next.Players[1].Score)
	require.Equal(t, 25000+500, next.Players[2].Score)
}

func TestEndRoundCarriesSticksForwardOnExhaustiveDraw(t *testing.T) {
	rs := newTestRound()
	rs.Situation.RiichiSticks = 1

	next, _, err := endRound(rs, state.RoundEndExhaustiveDraw, nil, -1)
	require.NoError(t, err)
	require.Equal(t, 1, next.Situation.RiichiSticks, "an exhaustive draw doesn't consume the pool")
}

func TestEndRoundDealerWinIsRenchan(t *testing.T) {
	rs := newTestRound()
	rs.Situation.DealerSeat = 0

	next, _, err := endRound(rs, state.RoundEndTsumo, []int{0}, -1)
	require.NoError(t, err)
	require.Equal(t, 0, next.Situation.DealerSeat, "dealer repeats after a dealer win")
	require.Equal(t, 1, next.Situation.Honba)
}

func TestEndRoundNonDealerWinRotatesDealerAndHonba(t *testing.T) {
	rs := newTestRound()
	rs.Situation.DealerSeat = 0
	rs.Situation.RoundNumber = 1
	rs.Situation.Honba = 3

	next, _, err := endRound(rs, state.RoundEndTsumo, []int{1}, -1)
	require.NoError(t, err)
	require.Equal(t, 1, next.Situation.DealerSeat)
	require.Equal(t, 2, next.Situation.RoundNumber)
	require.Equal(t, 0, next.Situation.Honba, "honba resets once the deal passes to a new dealer")
}

func TestCheckGameEndOnBust(t *testing.T) {
	rs := newTestRound()
	rs.Players[2].Score = -500

	ended, ranking := checkGameEnd(rs, rs.Situation)
	require.True(t, ended)
	require.Len(t, ranking, 4)
}

func TestCheckGameEndContinuesWithinHanchan(t *testing.T) {
	rs := newTestRound()
	rs.Situation.RoundWind = state.East
	ended, _ := checkGameEnd(rs, rs.Situation)
	require.False(t, ended)
}

package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"mahjongcore/engine"
	"mahjongcore/ports"
	"mahjongcore/ticket"
	"mahjongcore/tiles"
	"mahjongcore/timer"
)

type noopSink struct{}

func (noopSink) Append(ctx context.Context, gameID string, seq int, payload []byte) error {
	return nil
}
func (noopSink) Close() error { return nil }

type noopRepo struct{}

func (noopRepo) SaveGameRecord(ctx context.Context, rec ports.GameRecord) error { return nil }

func newTestController() *Controller {
	deps := engine.Deps{Scorer: ports.NullScorer{}, Waits: ports.NullWaitAnalyzer{}}
	signer := ticket.NewSessionSigner("test-secret", 0)
	return NewController(nil, signer, deps, noopSink{}, noopRepo{}, tiles.DeterministicBuilder{}, timer.DefaultConfig())
}

func TestJoinRoomStartsGameOnceFull(t *testing.T) {
	ctl := newTestController()

	gameID, err := ctl.JoinRoom("room-1", "alice", 2)
	require.NoError(t, err)
	require.Empty(t, gameID, "the room isn't full yet")

	gameID, err = ctl.JoinRoom("room-1", "bob", 2)
	require.NoError(t, err)
	require.Equal(t, "room-1", gameID)

	ctl.gamesMu.RLock()
	_, ok := ctl.games["room-1"]
	ctl.gamesMu.RUnlock()
	require.True(t, ok, "a started game should be registered under the room id")
}

func TestJoinRoomRejectsDuplicateJoin(t *testing.T) {
	ctl := newTestController()
	_, err := ctl.JoinRoom("room-1", "alice", 2)
	require.NoError(t, err)

	_, err = ctl.JoinRoom("room-1", "alice", 2)
	require.Error(t, err)
}

func TestConfirmRoundIsNoopWithoutPendingAdvance(t *testing.T) {
	ctl := newTestController()
	require.NotPanics(t, func() { ctl.ConfirmRound("no-such-game", 0) })
}

func TestStatsReflectsActiveGames(t *testing.T) {
	ctl := newTestController()
	gameCount, _ := ctl.Stats()
	require.Equal(t, 0, gameCount)

	_, err := ctl.StartGame("g1", []string{"alice", "bob", "carol", "dan"}, 1)
	require.NoError(t, err)

	gameCount, playerCount := ctl.Stats()
	require.Equal(t, 1, gameCount)
	require.Equal(t, 0, playerCount, "playerCount tracks connected seats, none of which have joined yet")
}

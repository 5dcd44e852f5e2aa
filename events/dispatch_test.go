package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"mahjongcore/engine"
	"mahjongcore/tiles"
)

func TestTranslateDoraRevealed(t *testing.T) {
	tile := tiles.Tile{Type: tiles.Pin5, ID: 2}
	msgs := Translate(engine.Event{Kind: engine.EventDoraRevealed, Tile: tile})
	require.Len(t, msgs, 1)
	require.Equal(t, MsgDoraRevealed, msgs[0].Type)
	require.True(t, msgs[0].Broadcast)

	var payload doraPayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &payload))
	require.Equal(t, tile.ID136(), payload.TileID)
}

func TestTranslateDrawIsSeatOnly(t *testing.T) {
	msgs := Translate(engine.Event{Kind: engine.EventDraw, Seat: 2, Tile: tiles.Tile{Type: tiles.Man1}})
	require.Len(t, msgs, 1)
	require.False(t, msgs[0].Broadcast)
	require.Equal(t, 2, msgs[0].ToSeat)
}

func TestTranslateRonAndTsumoFoldIntoRoundEnd(t *testing.T) {
	require.Nil(t, Translate(engine.Event{Kind: engine.EventRon}))
	require.Nil(t, Translate(engine.Event{Kind: engine.EventTsumo}))
}

func TestTranslateRoundEndIsBroadcast(t *testing.T) {
	msgs := Translate(engine.Event{
		Kind: engine.EventRoundEnd, WinnerSeats: []int{1}, LoserSeat: 0, HasLoser: true,
	})
	require.Len(t, msgs, 1)
	require.Equal(t, MsgRoundEnd, msgs[0].Type)
	require.True(t, msgs[0].Broadcast)
}

func TestTranslateUnknownKindDrops(t *testing.T) {
	require.Nil(t, Translate(engine.Event{Kind: engine.EventKind(999)}))
}

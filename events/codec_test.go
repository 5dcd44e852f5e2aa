package events

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mahjongcore/tiles"
)

func TestEncodeDecodeDrawRoundTrip(t *testing.T) {
	for seat := 0; seat < 4; seat++ {
		for tileID := 0; tileID < tiles.NumTiles; tileID += 7 {
			d, err := EncodeDraw(seat, tileID)
			require.NoError(t, err)
			gotSeat, gotTile, err := DecodeDraw(d)
			require.NoError(t, err)
			require.Equal(t, seat, gotSeat)
			require.Equal(t, tileID, gotTile)
		}
	}
}

func TestEncodeDiscardRoundTripAllFlagCombinations(t *testing.T) {
	for _, tc := range []struct{ tsumogiri, riichi bool }{
		{false, false}, {true, false}, {false, true}, {true, true},
	} {
		d, err := EncodeDiscard(2, 55, tc.tsumogiri, tc.riichi)
		require.NoError(t, err)
		seat, tileID, tsumogiri, riichi, err := DecodeDiscard(d)
		require.NoError(t, err)
		require.Equal(t, 2, seat)
		require.Equal(t, 55, tileID)
		require.Equal(t, tc.tsumogiri, tsumogiri)
		require.Equal(t, tc.riichi, riichi)
	}
}

func TestEncodeDrawRejectsOutOfRange(t *testing.T) {
	_, err := EncodeDraw(4, 0)
	require.Error(t, err)
	_, err = EncodeDraw(0, tiles.NumTiles)
	require.Error(t, err)
}

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	frame := EncodeFrame(MsgDrawTile, payload)
	msgType, got, err := DecodeFrame(frame)
	require.NoError(t, err)
	require.Equal(t, MsgDrawTile, msgType)
	require.Equal(t, payload, got)
}

func TestDecodeFrameRejectsTruncated(t *testing.T) {
	_, _, err := DecodeFrame([]byte{1, 2})
	require.Error(t, err)
}

func TestDecodeFrameRejectsLengthMismatch(t *testing.T) {
	frame := EncodeFrame(MsgDiscardTile, []byte{9, 9, 9})
	frame = frame[:len(frame)-1] // truncate the payload after the header is written
	_, _, err := DecodeFrame(frame)
	require.Error(t, err)
}

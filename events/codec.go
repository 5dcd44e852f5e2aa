// Package events implements the compact integer encodings and binary
// wire framing from spec §6, ported from
// original_source/backend/game/messaging/compact.py (draw/discard
// packing) and protocol.py/encoder.py (frame shape), adapted to the
// teacher's length-delimited binary-message convention
// (framework/conn/connection.go enforces binary-only, length-capped
// websocket frames).
package events

import (
	"encoding/binary"
	"errors"

	"mahjongcore/tiles"
)

const (
	numPlayers    = 4
	seatTileSpace = numPlayers * tiles.NumTiles // 544
	maxDraw       = seatTileSpace - 1           // 543
	numDiscardFlags = 4
	maxDiscard    = numDiscardFlags*seatTileSpace - 1 // 2175
)

// EncodeDraw packs a draw event as d = seat*136 + tile_id.
func EncodeDraw(seat int, tileID int) (int, error) {
	if seat < 0 || seat >= numPlayers {
		return 0, errors.New("seat out of range")
	}
	if tileID < 0 || tileID >= tiles.NumTiles {
		return 0, errors.New("tile id out of range")
	}
	return seat*tiles.NumTiles + tileID, nil
}

// DecodeDraw reverses EncodeDraw.
func DecodeDraw(d int) (seat int, tileID int, err error) {
	if d < 0 || d > maxDraw {
		return 0, 0, errors.New("draw value out of range")
	}
	return d / tiles.NumTiles, d % tiles.NumTiles, nil
}

// EncodeDiscard packs flag=(riichi<<1)|tsumogiri then
// d = flag*544 + seat*136 + tile_id.
func EncodeDiscard(seat, tileID int, isTsumogiri, isRiichi bool) (int, error) {
	if seat < 0 || seat >= numPlayers {
		return 0, errors.New("seat out of range")
	}
	if tileID < 0 || tileID >= tiles.NumTiles {
		return 0, errors.New("tile id out of range")
	}
	flag := 0
	if isRiichi {
		flag |= 0b10
	}
	if isTsumogiri {
		flag |= 0b01
	}
	return flag*seatTileSpace + seat*tiles.NumTiles + tileID, nil
}

// DecodeDiscard reverses EncodeDiscard.
func DecodeDiscard(d int) (seat, tileID int, isTsumogiri, isRiichi bool, err error) {
	if d < 0 || d > maxDiscard {
		return 0, 0, false, false, errors.New("discard value out of range")
	}
	flag := d / seatTileSpace
	remainder := d % seatTileSpace
	seat = remainder / tiles.NumTiles
	tileID = remainder % tiles.NumTiles
	isTsumogiri = flag&0b01 != 0
	isRiichi = flag&0b10 != 0
	return
}

// MessageType tags the outermost binary frame for server push types,
// numbered from 3 (MsgDrawTile) to 13 (MsgSession); MsgError is 0.
// Client->server frames share the same tag space.
type MessageType byte

const (
	MsgDrawTile MessageType = iota + 3
	MsgDiscardTile
	MsgMeldAction
	MsgRoundEnd
	MsgGameEnd
	MsgDoraRevealed
	MsgGameStarted
	MsgRoundStarted
	MsgCallPrompt
	MsgFuriten
	MsgSession
)

// Frame is a length-delimited binary record: [1 byte type][4 byte
// big-endian payload length][payload]. Grounded on
// framework/conn/connection.go's maxMessageSize-bounded binary frames.
func EncodeFrame(t MessageType, payload []byte) []byte {
	buf := make([]byte, 5+len(payload))
	buf[0] = byte(t)
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(payload)))
	copy(buf[5:], payload)
	return buf
}

func DecodeFrame(buf []byte) (MessageType, []byte, error) {
	if len(buf) < 5 {
		return 0, nil, errors.New("frame too short")
	}
	t := MessageType(buf[0])
	n := binary.BigEndian.Uint32(buf[1:5])
	if uint32(len(buf)-5) < n {
		return 0, nil, errors.New("frame length mismatch")
	}
	return t, buf[5 : 5+n], nil
}

package events

import "encoding/json"

// ClientMsgType tags an inbound client frame (spec §6, t=3..7). Kept as a
// distinct type from MessageType (server->client push tags) even though
// the integer ranges overlap: the two travel in opposite directions over
// the same connection, so there is no ambiguity on the wire, only in
// source if the two were conflated into one enum.
type ClientMsgType byte

const (
	ClientGameAction ClientMsgType = iota + 3
	ClientChat
	ClientPing
	ClientReconnect
	ClientJoinGame
)

// GameActionKind is the fixed set of inner `action` values a
// ClientGameAction payload may carry.
type GameActionKind string

const (
	ActionDiscard       GameActionKind = "discard"
	ActionDeclareRiichi GameActionKind = "declare_riichi"
	ActionDeclareTsumo  GameActionKind = "declare_tsumo"
	ActionCallRon       GameActionKind = "call_ron"
	ActionCallPon       GameActionKind = "call_pon"
	ActionCallChi       GameActionKind = "call_chi"
	ActionCallKan       GameActionKind = "call_kan"
	ActionCallKyuushu   GameActionKind = "call_kyuushu"
	ActionPass          GameActionKind = "pass"
	ActionConfirmRound  GameActionKind = "confirm_round"
)

// GameActionPayload is the decoded body of a t=3 frame: the action name
// plus a loosely-typed payload map (spec §6: "tile_id, sequence_tiles,
// kan_type"), decoded as JSON rather than a fixed struct since the
// payload shape varies per action.
type GameActionPayload struct {
	Action GameActionKind `json:"action"`
	TileID *int           `json:"tile_id,omitempty"`
	Seq    []int          `json:"sequence_tiles,omitempty"`
	KanKind string        `json:"kan_type,omitempty"`
}

func DecodeGameAction(payload []byte) (GameActionPayload, error) {
	var p GameActionPayload
	err := json.Unmarshal(payload, &p)
	return p, err
}

// JoinGamePayload carries the signed admission ticket (spec §6: first
// client message over /ws/{game_id}).
type JoinGamePayload struct {
	Ticket string `json:"ticket"`
}

func DecodeJoinGame(payload []byte) (JoinGamePayload, error) {
	var p JoinGamePayload
	err := json.Unmarshal(payload, &p)
	return p, err
}

// ReconnectPayload carries the prior session token (spec §6, t=6).
type ReconnectPayload struct {
	Token string `json:"token"`
}

func DecodeReconnect(payload []byte) (ReconnectPayload, error) {
	var p ReconnectPayload
	err := json.Unmarshal(payload, &p)
	return p, err
}

// ErrorPayload is the wire shape of a server ERROR frame (spec §7):
// a stable code plus a short human-readable reason.
type ErrorPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

const (
	ErrInvalidMessage = "INVALID_MESSAGE"
	ErrRateLimited     = "RATE_LIMITED"
	ErrNotInGame       = "NOT_IN_GAME"
	ErrGameError       = "GAME_ERROR"
	ErrActionFailed    = "ACTION_FAILED"
)

func EncodeError(code, reason string) []byte {
	b, _ := json.Marshal(ErrorPayload{Code: code, Reason: reason})
	return b
}

// MsgError is the server-push wire tag for an ERROR frame, outside the
// MessageType range used by §6's compact draw/discard push types.
const MsgError MessageType = 0

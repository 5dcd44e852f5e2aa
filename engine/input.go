// Package engine implements the pure turn/call state machine (spec §4.1,
// §4.2): Apply(state, input) -> (state', events, error). No I/O, no
// blocking, no randomness beyond what's reached through tiles.Wall -- the
// whole package is safe to call from a single goroutine per game, which
// is exactly how session.GameActor drives it (spec §5: per-game serial
// executor). Grounded on the switch-on-event-type shape of
// riichi_mahjong_4p_engine.go's processEvent, rebuilt to return a new
// state value instead of mutating the receiver.
package engine

import "mahjongcore/tiles"

type InputKind int

const (
	InputDraw InputKind = iota
	InputDiscard
	InputCallPon
	InputCallChi
	InputCallKan // open kan (daiminkan) on a discard, or closed/added kan on own turn
	InputCallRon
	InputTsumo
	InputPass
	InputKyuushuKyuuhai
	InputTimeout
)

type TimeoutKind int

const (
	TimeoutTurn TimeoutKind = iota
	TimeoutMeld
	TimeoutRoundAdvance
)

// Input is the single tagged-union message type the engine accepts. Only
// the fields relevant to Kind are meaningful, matching the teacher's
// share.GameEvent family of concrete event structs but collapsed into
// one struct since the engine is now a pure function rather than a
// channel-driven actor reading concrete types off gameEvents.
type Input struct {
	Kind InputKind
	Seat int

	// InputDiscard
	Discard    tiles.Tile
	Tsumogiri  bool
	DeclareRiichi bool

	// InputCallPon / InputCallChi: the two (or for kan, three) tiles
	// from the caller's own hand used to form the meld.
	MeldTiles []tiles.Tile

	// InputCallKan: which kind.
	KanIsClosed bool
	KanIsAdded  bool
	KanTile     tiles.Tile // the tile being added/kan'd

	Timeout TimeoutKind
}

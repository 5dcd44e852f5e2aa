package engine

import (
	"mahjongcore/state"
	"mahjongcore/tiles"
)

type EventKind int

// EventRiichiDeclared, a distinct kind for an abortive/exhaustive draw,
// and a distinct kind for kyuushu kyuuhai were all dropped: a riichi
// declaration is already carried on EventDiscard.IsRiichi (and the wire
// discard codec's own riichi flag bit), and every draw/abort path folds
// into the single EventRoundEnd carrying the specific state.RoundEndKind
// -- a second representation of the same fact was dead weight.
const (
	EventDraw EventKind = iota
	EventDiscard
	EventMeldFormed
	EventTsumo
	EventRon
	EventRoundEnd
	EventGameEnd
	EventDoraRevealed
	EventGameStarted
	EventRoundStarted
	EventFuriten
)

// Event is the engine's output: a fact the caller fans out to the wire
// codec, the replay sink, and any AI/timer wiring. Events never carry
// behavior -- they are pure data, matching spec §9's "typed result, not
// exceptions" strategy.
type Event struct {
	Kind EventKind
	Seat int

	Tile      tiles.Tile
	Tsumogiri bool
	IsRiichi  bool

	Meld state.Meld

	RoundEndKind state.RoundEndKind
	WinnerSeats  []int
	LoserSeat    int // -1 if none (tsumo)
	HasLoser     bool

	NewSituation state.Situation
	GameRanking  []int

	// Hand is the concealed tiles carried by an EventRoundStarted, sent
	// only to the seat named in Seat.
	Hand []tiles.Tile
	// PlayerNames accompanies EventGameStarted, broadcast to every seat.
	PlayerNames [4]string

	// FuritenTemporary/FuritenPermanent accompany EventFuriten, reporting
	// the seat named in Seat's furiten status after it just changed.
	FuritenTemporary bool
	FuritenPermanent bool
}

// Package state holds the immutable round/game state value types and
// their copy-on-write update functions (spec §9: "Immutable state with
// polymorphic updates"). This is a deliberate divergence from the
// teacher's mutable PlayerImage/RiichiMahjong4p structs
// (runtime/game/engines/mahjong/player_image.go), required by the
// specification's architecture note rather than chosen for style: every
// transition produces a new RoundState value instead of mutating one in
// place, so the owning actor (session.GameActor) can swap a single
// pointer atomically per spec §9's "no ambient globals, no cyclic
// back-pointers" rules.
package state

import "mahjongcore/tiles"

type Wind int

const (
	East Wind = iota
	South
	West
	North
)

func (w Wind) Next() Wind { return (w + 1) % 4 }

type MeldType int

const (
	MeldChi MeldType = iota
	MeldPon
	MeldOpenKan
	MeldClosedKan
	MeldAddedKan
)

// Meld is immutable once formed; a kakan (added kan) is represented by
// producing a new Meld value rather than mutating the Pon it upgrades.
type Meld struct {
	Type  MeldType
	Tiles []tiles.Tile
	From  int // seat the call tile came from; meaningless for closed kan
}

// Player is one seat's immutable view of hand/discards/melds/flags.
type Player struct {
	Seat            int
	IsAI            bool
	Name            string
	Hand            []tiles.Tile
	Discards        []tiles.Tile
	Melds           []Meld
	Score           int
	IsRiichi        bool
	IsDoubleRiichi  bool
	RiichiDiscardIx int // index into Discards where riichi was declared, -1 if not riichi
	IsTenpai        bool
	TemporaryFuriten bool
	PermanentFuriten bool
	NewestTile      *tiles.Tile
}

func (p Player) clone() Player {
	np := p
	np.Hand = append([]tiles.Tile(nil), p.Hand...)
	np.Discards = append([]tiles.Tile(nil), p.Discards...)
	np.Melds = append([]Meld(nil), p.Melds...)
	if p.NewestTile != nil {
		t := *p.NewestTile
		np.NewestTile = &t
	}
	return np
}

// WithHand returns a copy of p with Hand replaced.
func (p Player) WithHand(h []tiles.Tile) Player {
	np := p.clone()
	np.Hand = h
	return np
}

type Phase int

const (
	PhaseDraw Phase = iota
	PhaseAction
	PhaseCallWindow
	PhaseResolve
	PhaseRoundEnd
)

// RoundEndKind mirrors material.go's RoundEnd* string constants as a
// typed enum instead of magic strings.
type RoundEndKind int

const (
	RoundEndNone RoundEndKind = iota
	RoundEndTsumo
	RoundEndRon
	RoundEndExhaustiveDraw
	RoundEndAbortiveDraw
)

// Situation is the per-round table state shared by all seats.
type Situation struct {
	DealerSeat   int
	Honba        int
	RoundWind    Wind
	RoundNumber  int // 1-indexed within the round-wind
	RiichiSticks int
}

// RoundState is the full immutable snapshot of one hand in progress.
// Every transition in package engine takes a RoundState and input and
// returns a new RoundState value; nothing here is ever mutated after
// construction except through the With* copy helpers.
type RoundState struct {
	Situation     Situation
	Players       [4]Player
	Wall          *tiles.Wall
	CurrentPlayer int
	Phase         Phase
	LastDiscard   *tiles.Tile
	LastDiscardBy int
	IppatsuSeats  [4]bool
	KanCount      int
	KanInterrupted bool // not set by the engine; chankan windows are marked by CallWindow.IsChankan
	EndKind       RoundEndKind
	Pending       *CallWindow
}

// Clone deep-copies the round state, used as the basis for every With*
// update so concurrently-held prior snapshots (e.g. a replay reader) are
// never mutated.
func (r RoundState) Clone() RoundState {
	nr := r
	for i := range r.Players {
		nr.Players[i] = r.Players[i].clone()
	}
	if r.Wall != nil {
		nr.Wall = r.Wall.Clone()
	}
	if r.LastDiscard != nil {
		t := *r.LastDiscard
		nr.LastDiscard = &t
	}
	if r.Pending != nil {
		nr.Pending = r.Pending.Clone()
	}
	return nr
}

// GameState is the top-level immutable per-game snapshot: the round in
// progress plus standings carried across rounds.
type GameState struct {
	GameID  string
	Round   RoundState
	Ended   bool
	Ranking []int // seat indices in finishing-position order, filled at game end
}

func (g GameState) Clone() GameState {
	ng := g
	ng.Round = g.Round.Clone()
	ng.Ranking = append([]int(nil), g.Ranking...)
	return ng
}

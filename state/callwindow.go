package state

import "mahjongcore/tiles"

// ResponseKind is what a seat chose to do about a pending call window.
type ResponseKind int

const (
	RespNone ResponseKind = iota // not yet responded
	RespPass
	RespChi
	RespPon
	RespKan
	RespRon
)

// CallResponse is one seat's recorded reaction to the current call
// window, grounded on player_image.go-adjacent PlayerReaction but kept
// as plain immutable data rather than a mutable tracking struct.
type CallResponse struct {
	Seat      int
	Kind      ResponseKind
	MeldTiles []tiles.Tile
}

// CallWindow is the engine's bookkeeping for an open call-resolution
// window (spec §4.2): who may react to which tile, and what each has
// said so far. It rides along inside RoundState between Apply calls
// because the window spans multiple Input events.
type CallWindow struct {
	DiscardSeat int
	Tile        tiles.Tile
	IsChankan   bool // true if Tile is being robbed from an added kan
	Responses   [4]CallResponse
	Eligible    [4]bool
}

func NewCallWindow(discardSeat int, tile tiles.Tile, eligible [4]bool, chankan bool) *CallWindow {
	cw := &CallWindow{DiscardSeat: discardSeat, Tile: tile, IsChankan: chankan, Eligible: eligible}
	for s := 0; s < 4; s++ {
		cw.Responses[s] = CallResponse{Seat: s, Kind: RespNone}
	}
	return cw
}

// AllResponded reports whether every eligible seat has responded (used
// for early resolution, spec §4.2).
func (cw *CallWindow) AllResponded() bool {
	for s := 0; s < 4; s++ {
		if cw.Eligible[s] && cw.Responses[s].Kind == RespNone {
			return false
		}
	}
	return true
}

func (cw *CallWindow) Clone() *CallWindow {
	n := *cw
	for s := range cw.Responses {
		n.Responses[s].MeldTiles = append([]tiles.Tile(nil), cw.Responses[s].MeldTiles...)
	}
	return &n
}

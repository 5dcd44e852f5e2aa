package events

import (
	"encoding/binary"
	"encoding/json"

	"mahjongcore/engine"
)

// WireMessage is one frame ready to send: either broadcast to every seat
// or addressed to a single seat (per-seat hand reveal, e.g. a draw is
// only ever sent to the drawer -- grounded on push.go's
// pushDrawTile-is-seat-only-but-broadcastDiscard-is-everyone split).
type WireMessage struct {
	Type      MessageType
	Payload   []byte
	Broadcast bool
	ToSeat    int
}

// meldPayload/roundEndPayload are JSON-encoded: the wire format's
// performance-sensitive hot path (draw/discard) uses the compact integer
// codec above; the low-frequency structural events (melds, round/game
// end) are plain JSON, since no generated-protobuf stack survived the
// dependency trim (see DESIGN.md) and nothing else in the retrieved
// pack ships a binary struct serializer for ad hoc payloads.
type meldPayload struct {
	Seat  int    `json:"seat"`
	Kind  int    `json:"kind"`
	Tiles []int  `json:"tiles"`
	From  int    `json:"from"`
}

type roundEndPayload struct {
	Kind        int   `json:"kind"`
	Winners     []int `json:"winners"`
	Loser       int   `json:"loser"`
	HasLoser    bool  `json:"has_loser"`
	DealerSeat  int   `json:"dealer_seat"`
	Honba       int   `json:"honba"`
	RoundNumber int   `json:"round_number"`
	RoundWind   int   `json:"round_wind"`
}

type gameEndPayload struct {
	Ranking []int `json:"ranking"`
}

type doraPayload struct {
	TileID int `json:"tile_id"`
}

type gameStartedPayload struct {
	DealerSeat  int      `json:"dealer_seat"`
	RoundWind   int      `json:"round_wind"`
	PlayerNames [4]string `json:"player_names"`
}

type roundStartedPayload struct {
	Seat        int   `json:"seat"`
	Hand        []int `json:"hand"`
	DealerSeat  int   `json:"dealer_seat"`
	RoundWind   int   `json:"round_wind"`
	RoundNumber int   `json:"round_number"`
	Honba       int   `json:"honba"`
}

type furitenPayload struct {
	Seat      int  `json:"seat"`
	Temporary bool `json:"temporary"`
	Permanent bool `json:"permanent"`
}

// Translate converts an engine.Event into zero or more wire messages.
func Translate(e engine.Event) []WireMessage {
	switch e.Kind {
	case engine.EventDraw:
		d, err := EncodeDraw(e.Seat, e.Tile.ID136())
		if err != nil {
			return nil
		}
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(d))
		return []WireMessage{{Type: MsgDrawTile, Payload: buf, Broadcast: false, ToSeat: e.Seat}}
	case engine.EventDiscard:
		d, err := EncodeDiscard(e.Seat, e.Tile.ID136(), e.Tsumogiri, e.IsRiichi)
		if err != nil {
			return nil
		}
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(d))
		return []WireMessage{{Type: MsgDiscardTile, Payload: buf, Broadcast: true}}
	case engine.EventMeldFormed:
		ids := make([]int, len(e.Meld.Tiles))
		for i, t := range e.Meld.Tiles {
			ids[i] = t.ID136()
		}
		payload, _ := json.Marshal(meldPayload{Seat: e.Seat, Kind: int(e.Meld.Type), Tiles: ids, From: e.Meld.From})
		return []WireMessage{{Type: MsgMeldAction, Payload: payload, Broadcast: true}}
	case engine.EventRoundEnd:
		payload, _ := json.Marshal(roundEndPayload{
			Kind: int(e.RoundEndKind), Winners: e.WinnerSeats, Loser: e.LoserSeat, HasLoser: e.HasLoser,
			DealerSeat: e.NewSituation.DealerSeat, Honba: e.NewSituation.Honba,
			RoundNumber: e.NewSituation.RoundNumber, RoundWind: int(e.NewSituation.RoundWind),
		})
		return []WireMessage{{Type: MsgRoundEnd, Payload: payload, Broadcast: true}}
	case engine.EventGameEnd:
		payload, _ := json.Marshal(gameEndPayload{Ranking: e.GameRanking})
		return []WireMessage{{Type: MsgGameEnd, Payload: payload, Broadcast: true}}
	case engine.EventRon, engine.EventTsumo:
		return nil // folded into the EventRoundEnd message that always follows
	case engine.EventDoraRevealed:
		payload, _ := json.Marshal(doraPayload{TileID: e.Tile.ID136()})
		return []WireMessage{{Type: MsgDoraRevealed, Payload: payload, Broadcast: true}}
	case engine.EventGameStarted:
		payload, _ := json.Marshal(gameStartedPayload{
			DealerSeat: e.NewSituation.DealerSeat, RoundWind: int(e.NewSituation.RoundWind), PlayerNames: e.PlayerNames,
		})
		return []WireMessage{{Type: MsgGameStarted, Payload: payload, Broadcast: true}}
	case engine.EventRoundStarted:
		ids := make([]int, len(e.Hand))
		for i, t := range e.Hand {
			ids[i] = t.ID136()
		}
		payload, _ := json.Marshal(roundStartedPayload{
			Seat: e.Seat, Hand: ids, DealerSeat: e.NewSituation.DealerSeat,
			RoundWind: int(e.NewSituation.RoundWind), RoundNumber: e.NewSituation.RoundNumber, Honba: e.NewSituation.Honba,
		})
		return []WireMessage{{Type: MsgRoundStarted, Payload: payload, Broadcast: false, ToSeat: e.Seat}}
	case engine.EventFuriten:
		payload, _ := json.Marshal(furitenPayload{Seat: e.Seat, Temporary: e.FuritenTemporary, Permanent: e.FuritenPermanent})
		return []WireMessage{{Type: MsgFuriten, Payload: payload, Broadcast: false, ToSeat: e.Seat}}
	default:
		return nil
	}
}

package session

import (
	"encoding/json"

	"mahjongcore/engine"
)

// encodeForReplay serializes a full engine.Event for the replay sink.
// Unlike events.Translate (which produces the trimmed wire messages
// actually sent to clients, e.g. folding EventRon/EventTsumo into the
// EventRoundEnd message), the replay log keeps every field of every
// event so spec §8's "replaying a recorded event log with the same seed
// produces byte-identical server output" can be checked against the
// engine's own output, not the wire-reduced form.
func encodeForReplay(e engine.Event) ([]byte, error) {
	return json.Marshal(e)
}

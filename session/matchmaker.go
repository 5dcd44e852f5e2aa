// Package session implements the session/room/game controller layer
// (spec §4.4): matchmaking and AI fill, the per-game actor, and
// reconnection/session-churn handling. Grounded on
// runtime/game/room_manager.go (room->game promotion),
// framework/conn/session.go (the Session entity), and
// original_source/backend/game/logic/matchmaker.py (seat fill + AI
// naming), which is more literally mirrored here than the teacher's Go
// matchmaking code since the teacher doesn't implement seat
// randomization or AI fill at all.
package session

import (
	"fmt"
	"math/rand"
)

const NumSeats = 4

type SeatConfig struct {
	Seat   int
	Name   string
	IsAI   bool
	UserID string // empty for AI seats
}

// FillSeats assigns 1-4 human player names to random seats and fills the
// rest with AI players named "Tsumogiri N" in join order, ported from
// matchmaker.py:fill_seats. The seat sample determines both which seats
// get humans and the order AI numbers are assigned, so seat
// randomization is correct even in an all-human game.
func FillSeats(userIDs []string, seed int64) ([NumSeats]SeatConfig, error) {
	var out [NumSeats]SeatConfig
	n := len(userIDs)
	if n == 0 || n > NumSeats {
		return out, fmt.Errorf("expected 1 to %d player ids, got %d", NumSeats, n)
	}
	seen := make(map[string]bool, n)
	for _, id := range userIDs {
		if id == "" {
			return out, fmt.Errorf("player ids must not be empty")
		}
		if seen[id] {
			return out, fmt.Errorf("player ids must be unique")
		}
		seen[id] = true
	}

	rng := rand.New(rand.NewSource(seed))
	seatOrder := rng.Perm(NumSeats)[:n]

	seatToUser := make(map[int]string, n)
	for i, seat := range seatOrder {
		seatToUser[seat] = userIDs[i]
	}

	aiNumber := 1
	for seat := 0; seat < NumSeats; seat++ {
		if uid, ok := seatToUser[seat]; ok {
			out[seat] = SeatConfig{Seat: seat, Name: uid, UserID: uid}
		} else {
			out[seat] = SeatConfig{Seat: seat, Name: fmt.Sprintf("Tsumogiri %d", aiNumber), IsAI: true}
			aiNumber++
		}
	}
	return out, nil
}

package session

import (
	"fmt"
	"sync"
)

// Room tracks players joining before a game starts, grounded on
// room_manager.go:CreateRoom's "requires len(users)==4" gate, but
// generalized to accept 1-4 human joiners (the rest AI-filled) per
// spec.md's matchmaker requirement.
type Room struct {
	mu       sync.Mutex
	RoomID   string
	wanted   int
	userIDs  []string
	Started  bool
}

func NewRoom(roomID string, wantedHumans int) *Room {
	return &Room{RoomID: roomID, wanted: wantedHumans}
}

// Join adds a human player; returns true once the room has every human
// seat it was configured for and is ready to promote to a game.
func (r *Room) Join(userID string) (ready bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Started {
		return false, fmt.Errorf("room %s already started", r.RoomID)
	}
	for _, u := range r.userIDs {
		if u == userID {
			return false, fmt.Errorf("player already joined")
		}
	}
	if len(r.userIDs) >= r.wanted {
		return false, fmt.Errorf("room %s is full", r.RoomID)
	}
	r.userIDs = append(r.userIDs, userID)
	return len(r.userIDs) == r.wanted, nil
}

// Promote atomically marks the room started and returns its final
// human roster for matchmaker.FillSeats -- grounded on CreateRoom's
// clone-then-initialize sequencing, which this room/game split
// preserves by never letting Join succeed again after Started.
func (r *Room) Promote() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Started {
		return nil, fmt.Errorf("room %s already started", r.RoomID)
	}
	if len(r.userIDs) != r.wanted {
		return nil, fmt.Errorf("room %s not full", r.RoomID)
	}
	r.Started = true
	return append([]string(nil), r.userIDs...), nil
}

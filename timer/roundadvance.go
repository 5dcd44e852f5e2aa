package timer

import "sync"

// pendingAdvance tracks round-advancement readiness for one game,
// ported from original_source/backend/game/logic/round_advance.py:
// AI seats are pre-confirmed at setup time; human seats must explicitly
// confirm. allConfirmed is vacuously true with zero human seats.
type pendingAdvance struct {
	confirmed map[int]bool
	required  map[int]bool
}

func (p *pendingAdvance) allConfirmed() bool {
	for s := range p.required {
		if !p.confirmed[s] {
			return false
		}
	}
	return true
}

// RoundAdvanceTracker manages round-advance confirmation across every
// active game, mirroring RoundAdvanceManager.
type RoundAdvanceTracker struct {
	mu      sync.Mutex
	pending map[string]*pendingAdvance
}

func NewRoundAdvanceTracker() *RoundAdvanceTracker {
	return &RoundAdvanceTracker{pending: make(map[string]*pendingAdvance)}
}

// Setup records which seats are AI (pre-confirmed) for a game and
// returns true if every seat is already confirmed (an all-AI game),
// meaning the caller should advance immediately instead of waiting.
func (r *RoundAdvanceTracker) Setup(gameID string, aiSeats []int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ai := make(map[int]bool, len(aiSeats))
	for _, s := range aiSeats {
		ai[s] = true
	}
	required := make(map[int]bool)
	for s := 0; s < 4; s++ {
		if !ai[s] {
			required[s] = true
		}
	}
	p := &pendingAdvance{confirmed: ai, required: required}
	if p.allConfirmed() {
		delete(r.pending, gameID)
		return true
	}
	r.pending[gameID] = p
	return false
}

// Confirm records seat's confirmation. Returns (allConfirmed, ok); ok is
// false if there's no pending advance or the seat isn't required,
// matching RoundAdvanceManager.confirm_seat's three-way return.
func (r *RoundAdvanceTracker) Confirm(gameID string, seat int) (allConfirmed bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, exists := r.pending[gameID]
	if !exists {
		return false, false
	}
	if !p.required[seat] {
		return false, false
	}
	p.confirmed[seat] = true
	if p.allConfirmed() {
		delete(r.pending, gameID)
		return true, true
	}
	return false, true
}

func (r *RoundAdvanceTracker) Cleanup(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, gameID)
}

func (r *RoundAdvanceTracker) IsPending(gameID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[gameID]
	return ok
}

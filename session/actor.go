package session

import (
	"context"
	"sync"
	"sync/atomic"

	"mahjongcore/ai"
	"mahjongcore/engine"
	"mahjongcore/events"
	"mahjongcore/ports"
	"mahjongcore/state"
	"mahjongcore/tiles"
	"mahjongcore/timer"

	mlog "mahjongcore/common/log"
)

// Broadcaster delivers wire messages to connected seats; the transport
// package implements it over websockets.
type Broadcaster interface {
	Send(gameID string, seat int, msg events.WireMessage)
}

// RoundLifecycle lets the actor notify the controller when a round ends
// without also ending the game, so the round-advance confirmation
// tracker can be re-armed for the seats of the game that's still
// running (spec §4.4). Controller implements this alongside Broadcaster.
type RoundLifecycle interface {
	OnRoundEnd(gameID string, aiSeats, humanSeats []int)
}

// GameActor is the per-game serial executor (spec §5): every state
// transition happens on its single goroutine, reading engine.Input
// values off a buffered channel, matching actorLoop/NotifyEvent/
// gameEvents in riichi_mahjong_4p_engine.go. Unlike the teacher, the
// state it holds is an immutable state.RoundState value swapped on each
// iteration rather than a struct mutated in place (spec §9).
type GameActor struct {
	GameID string
	Seats  [NumSeats]SeatConfig

	deps      engine.Deps
	bank      *timer.Bank
	bcast     Broadcaster
	lifecycle RoundLifecycle
	sink      ports.ReplaySink
	repo      ports.GameRepository

	inbox   chan engine.Input
	closed  atomic.Bool
	done    chan struct{}
	closeOnce sync.Once

	mu    sync.RWMutex
	game  state.GameState
	seq   int
}

func NewGameActor(gameID string, seats [NumSeats]SeatConfig, initial state.GameState, deps engine.Deps,
	bank *timer.Bank, bcast Broadcaster, sink ports.ReplaySink, repo ports.GameRepository) *GameActor {
	a := &GameActor{
		GameID: gameID, Seats: seats, deps: deps, bank: bank, bcast: bcast, sink: sink, repo: repo,
		inbox: make(chan engine.Input, 64), done: make(chan struct{}), game: initial,
	}
	if lc, ok := bcast.(RoundLifecycle); ok {
		a.lifecycle = lc
	}
	return a
}

// Run drives the actor loop until Close is called or ctx is cancelled.
// Grounded on actorLoop's `for { select { case ev := <-gameEvents: ... case <-actorExit: return } }`.
func (a *GameActor) Run(ctx context.Context) {
	for _, sc := range a.Seats {
		if sc.Seat == a.CurrentSeat() {
			a.bank.StartTurn(sc.Seat)
		}
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.done:
			return
		case in := <-a.inbox:
			a.process(in)
		}
	}
}

// Submit enqueues an input for processing; non-blocking with a drop+log
// fallback, grounded on NotifyEvent's default-drop-and-warn semantics.
func (a *GameActor) Submit(in engine.Input) {
	if a.closed.Load() {
		return
	}
	select {
	case a.inbox <- in:
	default:
		mlog.Warn("game %s: inbox full, dropping input kind=%d seat=%d", a.GameID, in.Kind, in.Seat)
	}
}

func (a *GameActor) CurrentSeat() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.game.Round.CurrentPlayer
}

func (a *GameActor) Snapshot() state.GameState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.game.Clone()
}

func (a *GameActor) process(in engine.Input) {
	a.mu.Lock()
	rs, evs, err := engine.Apply(a.game.Round, a.deps, in)
	if err != nil {
		a.mu.Unlock()
		mlog.Warn("game %s: rejected input seat=%d kind=%d: %v", a.GameID, in.Seat, in.Kind, err)
		return
	}
	a.game.Round = rs
	if rs.Phase == state.PhaseRoundEnd {
		a.game.Ended = len(a.game.Ranking) > 0 // set by a GameEnd event below
	}
	a.mu.Unlock()

	a.onTransition(in)
	a.publish(evs)
	a.driveAI()
}

// publish fans a batch of engine events out to the replay sink and the
// wire, same as process did inline before EmitStart needed to reuse it
// for the game-start sequence that isn't itself produced by engine.Apply.
func (a *GameActor) publish(evs []engine.Event) {
	endsGame := false
	for _, e := range evs {
		if e.Kind == engine.EventGameEnd {
			endsGame = true
		}
	}
	for _, e := range evs {
		a.seq++
		if a.sink != nil {
			if payload, err := encodeForReplay(e); err == nil {
				_ = a.sink.Append(context.Background(), a.GameID, a.seq, payload)
			}
		}
		for _, wm := range events.Translate(e) {
			if wm.Broadcast {
				for _, sc := range a.Seats {
					a.bcast.Send(a.GameID, sc.Seat, wm)
				}
			} else {
				a.bcast.Send(a.GameID, wm.ToSeat, wm)
			}
		}
		switch e.Kind {
		case engine.EventRoundEnd:
			// a round that also ends the game never needs another round
			// dealt, so the advance tracker has nothing to re-arm for it.
			if !endsGame && a.lifecycle != nil {
				var aiSeats, humanSeats []int
				for _, sc := range a.Seats {
					if sc.IsAI {
						aiSeats = append(aiSeats, sc.Seat)
					} else {
						humanSeats = append(humanSeats, sc.Seat)
					}
				}
				a.lifecycle.OnRoundEnd(a.GameID, aiSeats, humanSeats)
			}
		case engine.EventGameEnd:
			a.mu.Lock()
			a.game.Ended = true
			a.game.Ranking = e.GameRanking
			a.mu.Unlock()
		}
	}
}

// EmitStart publishes the game-start sequence (spec §4.4 steps 4-5):
// a broadcast GAME_STARTED, a per-seat ROUND_STARTED carrying only that
// seat's own concealed hand, then the dealer's first draw. Called once
// by the controller right after the actor's loop goroutine is started.
func (a *GameActor) EmitStart() {
	snap := a.Snapshot()
	var names [4]string
	for _, sc := range a.Seats {
		names[sc.Seat] = sc.Name
	}
	evs := make([]engine.Event, 0, 1+NumSeats)
	evs = append(evs, engine.Event{Kind: engine.EventGameStarted, Seat: -1, NewSituation: snap.Round.Situation, PlayerNames: names})
	for _, p := range snap.Round.Players {
		evs = append(evs, engine.Event{
			Kind: engine.EventRoundStarted, Seat: p.Seat,
			Hand: append([]tiles.Tile(nil), p.Hand...), NewSituation: snap.Round.Situation,
		})
	}
	a.publish(evs)
	a.Submit(engine.Input{Kind: engine.InputDraw, Seat: snap.Round.CurrentPlayer})
}

// onTransition manages timer-bank side effects for the transition that
// just landed, grounded on TimerManager.cancel_other_timers/start_turn_timer.
func (a *GameActor) onTransition(in engine.Input) {
	a.mu.RLock()
	rs := a.game.Round
	a.mu.RUnlock()

	// stop the timers armed for the previous state before arming the ones
	// this state needs, so the new ones are left running.
	if in.Kind != engine.InputTimeout {
		a.bank.CancelOthers(-1)
	}

	switch rs.Phase {
	case state.PhaseDraw:
		a.bank.StartTurn(rs.CurrentPlayer)
		// the server draws, not the client or the AI strategy: whenever a
		// transition lands in PhaseDraw (next seat after a discard, or
		// after a call window closes on nothing but passes), the actor
		// immediately submits the draw that advances it to PhaseAction.
		a.Submit(engine.Input{Kind: engine.InputDraw, Seat: rs.CurrentPlayer})
	case state.PhaseAction:
		if in.Kind == engine.InputDraw {
			a.bank.StartTurn(rs.CurrentPlayer)
		}
	case state.PhaseCallWindow:
		if rs.Pending != nil {
			for s := 0; s < 4; s++ {
				if rs.Pending.Eligible[s] {
					a.bank.StartMeld(s)
				}
			}
		}
	}
}

// driveAI submits the AI strategy's next action for any AI seat whose
// turn or call window it currently is, grounded on
// ai_player_controller.py's synchronous tsumogiri decision.
func (a *GameActor) driveAI() {
	snap := a.Snapshot()
	for _, sc := range a.Seats {
		if !sc.IsAI {
			continue
		}
		if in, ok := ai.Decide(snap.Round, sc.Seat); ok {
			a.Submit(in)
			return // one AI action per process() call keeps ordering simple; the actor loop re-enters immediately after
		}
	}
}

func (a *GameActor) Close() {
	a.closeOnce.Do(func() {
		a.closed.Store(true)
		close(a.done)
	})
}

package session

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"time"

	"mahjongcore/engine"
	"mahjongcore/events"
	"mahjongcore/ports"
	"mahjongcore/ratelimit"
	"mahjongcore/state"
	"mahjongcore/ticket"
	"mahjongcore/tiles"
	"mahjongcore/timer"
	"mahjongcore/transport"

	mlog "mahjongcore/common/log"
)

// DisconnectGrace is how long a disconnected seat's session is preserved
// before the AI controller takes over (spec §4.4).
const DisconnectGrace = 30 * time.Second

// Controller is the top-level session/room/game coordinator (spec §4.4):
// it implements transport.Router to receive decoded client frames and
// session.Broadcaster to deliver engine events back out, and owns the
// process-lifetime room/game/session maps (spec §3: "Sessions are owned
// by the session store keyed by token... Connections are owned by the
// transport layer; the session layer holds weak references").
type Controller struct {
	mu    sync.Mutex
	rooms map[string]*Room

	games     map[string]*GameActor
	gamesMu   sync.RWMutex
	seatConns map[string][NumSeats]string // gameID -> seat -> connID, "" if none
	conns     map[string]*transport.Connection
	userSeat  map[string]*Session // connID -> Session

	verifier ports.TicketVerifier
	signer   *ticket.SessionSigner
	deps     engine.Deps
	sink     ports.ReplaySink
	repo     ports.GameRepository
	wall     tiles.Builder
	timerCfg timer.Config

	banks map[string]*timer.Bank
	adv   *timer.RoundAdvanceTracker

	// preservedBank stashes a disconnected seat's remaining timer bank
	// (gameID -> seat -> duration), so reconnection resumes from where
	// the seat left off instead of the default initial bank (spec §4.3:
	// "remaining bank is captured; on reconnection the rebuilt timer
	// starts from that preserved bank").
	preservedBank map[string]map[int]time.Duration

	// joinLimiter guards admission-ticket redemption across every
	// instance sharing the Redis keyspace (nil disables the check), as
	// opposed to the per-connection in-memory ratelimit.Bucket the
	// transport layer uses for in-game message throttling.
	joinLimiter *ratelimit.RedisBucket

	// routes is the single-process analogue of the teacher's connector
	// GameRouteCache: a TTL-bounded userID->connID hint, useful once this
	// binary is fronted by a routing tier even though a lookup today
	// never crosses a process boundary.
	routes *RouteCache
}

// SetJoinLimiter wires an optional cluster-wide admission rate limiter
// (spec §6 domain stack: go-redis/v9 backs distributed rate limiting).
func (ctl *Controller) SetJoinLimiter(b *ratelimit.RedisBucket) { ctl.joinLimiter = b }

// SetRouteCache wires the ristretto-backed connection route cache.
func (ctl *Controller) SetRouteCache(rc *RouteCache) { ctl.routes = rc }

func NewController(verifier ports.TicketVerifier, signer *ticket.SessionSigner, deps engine.Deps,
	sink ports.ReplaySink, repo ports.GameRepository, wall tiles.Builder, timerCfg timer.Config) *Controller {
	return &Controller{
		rooms: make(map[string]*Room), games: make(map[string]*GameActor),
		seatConns: make(map[string][NumSeats]string), conns: make(map[string]*transport.Connection),
		userSeat: make(map[string]*Session), verifier: verifier, signer: signer, deps: deps,
		sink: sink, repo: repo, wall: wall, timerCfg: timerCfg,
		banks: make(map[string]*timer.Bank), adv: timer.NewRoundAdvanceTracker(),
		preservedBank: make(map[string]map[int]time.Duration),
	}
}

// bankForLocked returns the bank a (re)joining seat should start with:
// its preserved remaining bank if it disconnected mid-game, otherwise
// the configured initial bank for a fresh seat. Callers must already
// hold ctl.mu (handleJoin/handleReconnect both do).
func (ctl *Controller) bankForLocked(gameID string, seat int) time.Duration {
	if m, ok := ctl.preservedBank[gameID]; ok {
		if d, ok := m[seat]; ok {
			delete(m, seat)
			return d
		}
	}
	return ctl.timerCfg.InitialBank
}

// --- transport.Router ---

func (ctl *Controller) HandleFrame(c *transport.Connection, t events.ClientMsgType, payload []byte) {
	switch t {
	case events.ClientJoinGame:
		ctl.handleJoin(c, payload)
	case events.ClientReconnect:
		ctl.handleReconnect(c, payload)
	case events.ClientPing:
		// heartbeat: read-deadline reset already happens in transport on
		// every frame; nothing else to do.
	case events.ClientGameAction:
		ctl.handleAction(c, payload)
	case events.ClientChat:
		ctl.broadcastChat(c, payload)
	default:
		c.SendError(events.ErrInvalidMessage, "unknown frame type")
	}
}

func (ctl *Controller) HandleClose(c *transport.Connection) {
	ctl.mu.Lock()
	sess, ok := ctl.userSeat[c.ID]
	ctl.mu.Unlock()
	if !ok {
		return
	}
	sess.SetConnected(false)
	gameID, seat := sess.GameID, sess.Seat
	if ctl.routes != nil {
		ctl.routes.Delete(sess.UserID)
	}
	if gameID == "" {
		return
	}
	if bank, ok := ctl.banks[gameID]; ok {
		if t := bank.RemoveSeat(seat); t != nil {
			ctl.mu.Lock()
			m, ok := ctl.preservedBank[gameID]
			if !ok {
				m = make(map[int]time.Duration)
				ctl.preservedBank[gameID] = m
			}
			m[seat] = t.Bank()
			ctl.mu.Unlock()
		}
	}
	time.AfterFunc(DisconnectGrace, func() { ctl.maybeSubstituteAI(gameID, seat, sess) })
}

func (ctl *Controller) maybeSubstituteAI(gameID string, seat int, sess *Session) {
	if sess.Connected() {
		return // reconnected within the grace window
	}
	ctl.gamesMu.RLock()
	actor, ok := ctl.games[gameID]
	ctl.gamesMu.RUnlock()
	if !ok {
		return
	}
	actor.mu.Lock()
	if seat >= 0 && seat < NumSeats {
		actor.Seats[seat].IsAI = true
	}
	actor.mu.Unlock()
	mlog.Info("game %s: seat %d substituted with AI after disconnect grace window", gameID, seat)
	actor.driveAI()
}

func (ctl *Controller) handleJoin(c *transport.Connection, payload []byte) {
	jp, err := events.DecodeJoinGame(payload)
	if err != nil {
		c.SendError(events.ErrInvalidMessage, "malformed join_game payload")
		return
	}
	userID, err := ctl.verifier.Verify(jp.Ticket)
	if err != nil {
		c.SendError(events.ErrNotInGame, "invalid admission ticket")
		return
	}
	if ctl.joinLimiter != nil {
		ok, err := ctl.joinLimiter.Consume(context.Background())
		if err != nil {
			mlog.Error("join limiter: %v", err)
		} else if !ok {
			c.SendError(events.ErrRateLimited, "too many join attempts")
			return
		}
	}
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	actor, ok := ctl.games[c.GameID]
	if !ok {
		c.SendError(events.ErrNotInGame, "no such game")
		return
	}
	seat := -1
	for _, sc := range actor.Seats {
		if sc.UserID == userID {
			seat = sc.Seat
			break
		}
	}
	if seat < 0 {
		c.SendError(events.ErrNotInGame, "user not seated in this game")
		return
	}
	sess := NewSession(c.ID, userID)
	sess.SetGame(c.GameID, seat)
	c.UserID, c.Seat = userID, seat
	ctl.userSeat[c.ID] = sess
	ctl.conns[c.ID] = c
	sc := ctl.seatConns[c.GameID]
	sc[seat] = c.ID
	ctl.seatConns[c.GameID] = sc
	if bank, ok := ctl.banks[c.GameID]; ok {
		bank.AddSeat(seat, ctl.bankForLocked(c.GameID, seat))
	}
	if ctl.routes != nil {
		ctl.routes.Set(userID, c.ID)
	}

	token, err := ctl.signer.Issue(userID, c.GameID, seat)
	if err == nil {
		ctl.sendJSON(c, events.MsgSession, map[string]any{"session_token": token})
	}
}

// handleReconnect restores a disconnected seat and rotates its session
// token only after the first post-reconnect event has been sent
// successfully (spec §4.4: "commits the rotation only after the send has
// succeeded"). The old token stays valid in the meantime since
// SessionSigner.Parse has no revocation list -- it simply stops being
// issued again.
func (ctl *Controller) handleReconnect(c *transport.Connection, payload []byte) {
	rp, err := events.DecodeReconnect(payload)
	if err != nil {
		c.SendError(events.ErrInvalidMessage, "malformed reconnect payload")
		return
	}
	claims, err := ctl.signer.Parse(rp.Token)
	if err != nil {
		c.SendError(events.ErrNotInGame, "invalid or expired session token")
		return
	}
	ctl.mu.Lock()
	actor, ok := ctl.games[claims.GameID]
	if !ok {
		ctl.mu.Unlock()
		c.SendError(events.ErrNotInGame, "game no longer active")
		return
	}
	sess := NewSession(c.ID, claims.UserID)
	sess.SetGame(claims.GameID, claims.Seat)
	c.UserID, c.GameID, c.Seat = claims.UserID, claims.GameID, claims.Seat
	ctl.userSeat[c.ID] = sess
	ctl.conns[c.ID] = c
	sc := ctl.seatConns[claims.GameID]
	sc[claims.Seat] = c.ID
	ctl.seatConns[claims.GameID] = sc
	if bank, ok := ctl.banks[claims.GameID]; ok {
		bank.AddSeat(claims.Seat, ctl.bankForLocked(claims.GameID, claims.Seat))
	}
	actor.mu.Lock()
	actor.Seats[claims.Seat].IsAI = false
	actor.mu.Unlock()
	ctl.mu.Unlock()
	if ctl.routes != nil {
		ctl.routes.Set(claims.UserID, c.ID)
	}

	snap := actor.Snapshot()
	sent := c.Send(events.EncodeFrame(events.MsgSession, mustJSON(snapshotPayload{Round: snap.Round, GameID: claims.GameID, Seat: claims.Seat})))

	// commit the token rotation only once the snapshot send under the old
	// token has actually succeeded (spec §4.4): a failed send leaves the
	// old token as the only usable one, so the client can retry reconnect.
	if !sent {
		return
	}
	newToken, err := ctl.signer.Issue(claims.UserID, claims.GameID, claims.Seat)
	if err == nil {
		c.Send(events.EncodeFrame(events.MsgSession, mustJSON(map[string]any{"session_token": newToken})))
	}
}

type snapshotPayload struct {
	Round  state.RoundState `json:"round"`
	GameID string           `json:"game_id"`
	Seat   int              `json:"seat"`
}

func (ctl *Controller) handleAction(c *transport.Connection, payload []byte) {
	ctl.mu.Lock()
	sess, ok := ctl.userSeat[c.ID]
	ctl.mu.Unlock()
	if !ok {
		c.SendError(events.ErrNotInGame, "connection not admitted")
		return
	}
	ap, err := events.DecodeGameAction(payload)
	if err != nil {
		c.SendError(events.ErrInvalidMessage, "malformed action payload")
		return
	}
	if ap.Action == events.ActionConfirmRound {
		ctl.ConfirmRound(sess.GameID, sess.Seat)
		return
	}
	in, err := translateAction(sess.Seat, ap)
	if err != nil {
		c.SendError(events.ErrActionFailed, err.Error())
		return
	}
	ctl.gamesMu.RLock()
	actor, ok := ctl.games[sess.GameID]
	ctl.gamesMu.RUnlock()
	if !ok {
		c.SendError(events.ErrNotInGame, "game no longer active")
		return
	}
	actor.Submit(in)
}

func translateAction(seat int, ap events.GameActionPayload) (engine.Input, error) {
	tileOf := func() tiles.Tile {
		if ap.TileID == nil {
			return tiles.Tile{}
		}
		return tiles.FromID136(*ap.TileID)
	}
	switch ap.Action {
	case events.ActionDiscard:
		return engine.Input{Kind: engine.InputDiscard, Seat: seat, Discard: tileOf()}, nil
	case events.ActionDeclareRiichi:
		return engine.Input{Kind: engine.InputDiscard, Seat: seat, Discard: tileOf(), DeclareRiichi: true}, nil
	case events.ActionDeclareTsumo:
		return engine.Input{Kind: engine.InputTsumo, Seat: seat}, nil
	case events.ActionCallRon:
		return engine.Input{Kind: engine.InputCallRon, Seat: seat}, nil
	case events.ActionCallPon:
		return engine.Input{Kind: engine.InputCallPon, Seat: seat, MeldTiles: tilesOf(ap.Seq)}, nil
	case events.ActionCallChi:
		return engine.Input{Kind: engine.InputCallChi, Seat: seat, MeldTiles: tilesOf(ap.Seq)}, nil
	case events.ActionCallKan:
		return engine.Input{Kind: engine.InputCallKan, Seat: seat, KanTile: tileOf(), KanIsAdded: ap.KanKind == "added", KanIsClosed: ap.KanKind == "closed"}, nil
	case events.ActionCallKyuushu:
		return engine.Input{Kind: engine.InputKyuushuKyuuhai, Seat: seat}, nil
	case events.ActionPass:
		return engine.Input{Kind: engine.InputPass, Seat: seat}, nil
	case events.ActionConfirmRound:
		// handled in handleAction before translateAction is reached
		return engine.Input{}, fmt.Errorf("confirm_round handled outside the engine input path")
	default:
		return engine.Input{}, fmt.Errorf("unknown action %q", ap.Action)
	}
}

func tilesOf(ids []int) []tiles.Tile {
	out := make([]tiles.Tile, len(ids))
	for i, id := range ids {
		out[i] = tiles.FromID136(id)
	}
	return out
}

func (ctl *Controller) broadcastChat(c *transport.Connection, payload []byte) {
	ctl.mu.Lock()
	sess, ok := ctl.userSeat[c.ID]
	ctl.mu.Unlock()
	if !ok {
		return
	}
	ctl.mu.Lock()
	sc := ctl.seatConns[sess.GameID]
	ctl.mu.Unlock()
	for _, connID := range sc {
		if connID == "" {
			continue
		}
		if conn, ok := ctl.conns[connID]; ok {
			conn.Send(events.EncodeFrame(events.MessageType(events.ClientChat), payload))
		}
	}
}

// --- session.Broadcaster ---

func (ctl *Controller) Send(gameID string, seat int, msg events.WireMessage) {
	ctl.mu.Lock()
	sc, ok := ctl.seatConns[gameID]
	ctl.mu.Unlock()
	if !ok {
		return
	}
	connID := sc[seat]
	if connID == "" {
		return // seat's session currently disconnected: drop silently (spec §4.4)
	}
	ctl.mu.Lock()
	conn, ok := ctl.conns[connID]
	ctl.mu.Unlock()
	if !ok {
		return
	}
	conn.Send(events.EncodeFrame(msg.Type, msg.Payload))
}

func (ctl *Controller) sendJSON(c *transport.Connection, t events.MessageType, v any) {
	c.Send(events.EncodeFrame(t, mustJSON(v)))
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

func (ctl *Controller) ReplaySink() ports.ReplaySink { return ctl.sink }

// Stats reports the live game/connected-player counts for monitor.Monitor,
// grounded on framework/game/monitor.go's RoomManager.GetStats.
func (ctl *Controller) Stats() (gameCount, playerCount int) {
	ctl.gamesMu.RLock()
	gameCount = len(ctl.games)
	ctl.gamesMu.RUnlock()

	ctl.mu.Lock()
	for _, sc := range ctl.seatConns {
		for _, connID := range sc {
			if connID != "" {
				playerCount++
			}
		}
	}
	ctl.mu.Unlock()
	return
}

// StartGame performs the atomic room->game promotion described in
// spec §4.4: acquire a seat configuration, construct the initial round
// state, register and start the actor, emit GAME_STARTED/ROUND_STARTED
// and the dealer's first draw via EmitStart, and return the actor.
func (ctl *Controller) StartGame(gameID string, userIDs []string, seed int64) (*GameActor, error) {
	seats, err := FillSeats(userIDs, seed)
	if err != nil {
		return nil, err
	}
	round := dealInitialRound(ctl.wall, seed)
	gs := state.GameState{GameID: gameID, Round: round}

	bank := timer.NewBank(ctl.timerCfg, func(seat int, kind timer.TimeoutKind) {
		ctl.onTimeout(gameID, seat, kind)
	})
	allSeats := []int{0, 1, 2, 3}
	bank.CreateSeats(allSeats)

	actor := NewGameActor(gameID, seats, gs, ctl.deps, bank, ctl, ctl.sink, ctl.repo)
	ctl.gamesMu.Lock()
	ctl.games[gameID] = actor
	ctl.gamesMu.Unlock()
	ctl.banks[gameID] = bank
	ctl.mu.Lock()
	ctl.seatConns[gameID] = [NumSeats]string{}
	ctl.mu.Unlock()

	var aiSeats []int
	for _, sc := range seats {
		if sc.IsAI {
			aiSeats = append(aiSeats, sc.Seat)
		}
	}
	ctl.adv.Setup(gameID, aiSeats)

	go actor.Run(context.Background())
	actor.EmitStart()
	return actor, nil
}

// JoinRoom adds userID to roomID's pre-game lobby, creating the room on
// first join, and promotes it to a running game once wantedHumans
// players have joined (spec §4.4 matchmaker). Returns the started
// game's ID once promotion happens, or "" while the room is still
// filling.
func (ctl *Controller) JoinRoom(roomID, userID string, wantedHumans int) (gameID string, err error) {
	ctl.mu.Lock()
	room, ok := ctl.rooms[roomID]
	if !ok {
		room = NewRoom(roomID, wantedHumans)
		ctl.rooms[roomID] = room
	}
	ctl.mu.Unlock()

	ready, err := room.Join(userID)
	if err != nil {
		return "", err
	}
	if !ready {
		return "", nil
	}
	userIDs, err := room.Promote()
	if err != nil {
		return "", err
	}
	if _, err := ctl.StartGame(roomID, userIDs, newWallSeed()); err != nil {
		return "", err
	}
	ctl.mu.Lock()
	delete(ctl.rooms, roomID)
	ctl.mu.Unlock()
	return roomID, nil
}

func (ctl *Controller) onTimeout(gameID string, seat int, kind timer.TimeoutKind) {
	ctl.gamesMu.RLock()
	actor, ok := ctl.games[gameID]
	ctl.gamesMu.RUnlock()
	if !ok {
		return
	}
	switch kind {
	case timer.TimeoutTurn:
		actor.Submit(engine.Input{Kind: engine.InputTimeout, Seat: seat, Timeout: engine.TimeoutTurn})
	case timer.TimeoutMeld:
		actor.Submit(engine.Input{Kind: engine.InputTimeout, Seat: seat, Timeout: engine.TimeoutMeld})
	case timer.TimeoutRoundAdvance:
		ctl.ConfirmRound(gameID, seat)
	}
}

// OnRoundEnd implements session.RoundLifecycle: it re-arms the
// round-advance confirmation tracker for the round that just finished
// (spec §4.4) -- Setup is otherwise only ever called once, at
// StartGame, so without this every round past the first would find no
// pending entry and ConfirmRound would be a permanent no-op. An all-AI
// game is immediately ready (Setup returns true), so it advances on the
// spot instead of waiting on the round-advance timer.
func (ctl *Controller) OnRoundEnd(gameID string, aiSeats, humanSeats []int) {
	if ctl.adv.Setup(gameID, aiSeats) {
		ctl.gamesMu.RLock()
		actor, ok := ctl.games[gameID]
		ctl.gamesMu.RUnlock()
		if ok {
			actor.AdvanceRound(ctl.wall, newWallSeed())
		}
		return
	}
	if bank, ok := ctl.banks[gameID]; ok {
		bank.StartRoundAdvance(humanSeats)
	}
}

// ConfirmRound records a seat's round-advance confirmation (explicit
// client action or a round-advance timeout auto-confirm) and deals the
// next hand once every required seat has confirmed (spec §4.4). Round
// advance isn't an engine.Apply transition -- it builds a brand new
// RoundState -- so it goes straight to GameActor.AdvanceRound rather
// than through the engine.Input path.
func (ctl *Controller) ConfirmRound(gameID string, seat int) {
	all, ok := ctl.adv.Confirm(gameID, seat)
	if !ok || !all {
		return
	}
	ctl.gamesMu.RLock()
	actor, ok := ctl.games[gameID]
	ctl.gamesMu.RUnlock()
	if !ok {
		return
	}
	ctl.adv.Cleanup(gameID)
	actor.AdvanceRound(ctl.wall, newWallSeed())
}

// newWallSeed draws an unpredictable 63-bit seed for the next hand's
// wall shuffle. Production walls must not be guessable from the
// previous round's outcome, unlike DeterministicBuilder's test seeds.
func newWallSeed() int64 {
	n, err := crand.Int(crand.Reader, big.NewInt(1<<62))
	if err != nil {
		var buf [8]byte
		_, _ = crand.Read(buf[:])
		return int64(binary.BigEndian.Uint64(buf[:]) &^ (1 << 63))
	}
	return n.Int64()
}

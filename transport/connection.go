// Package transport drives the life cycle of one client WebSocket
// connection: framing, heartbeats, rate limiting, and decode-strike
// disconnection (spec §5, §6). Grounded on
// framework/conn/connection.go's LongConnection (ping ticker,
// read/write goroutines, graceful close) and framework/conn/session.go's
// Session, collapsed since this module has no separate connector-node
// hop: one process owns both the socket and the game actor it feeds.
package transport

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	mlog "mahjongcore/common/log"
	"mahjongcore/events"
	"mahjongcore/ratelimit"
)

const (
	pongWait             = 30 * time.Second
	writeWait            = 10 * time.Second
	pingInterval         = (pongWait * 9) / 10
	maxMessageSize int64 = 1 << 16
)

// Router receives decoded client frames for a connection. The session
// layer implements this to turn frames into engine.Input values; kept
// as an interface here so transport never imports session (session
// already depends on events; avoiding the reverse edge keeps the
// dependency graph acyclic per spec §9's "no cyclic references").
type Router interface {
	HandleFrame(c *Connection, t events.ClientMsgType, payload []byte)
	HandleClose(c *Connection)
}

// Connection owns one client's websocket for its lifetime. DecodeStrikes
// tracks consecutive malformed frames (spec §5: "a connection that
// accumulates a configurable number of consecutive malformed frames is
// closed with a distinct close code"); any valid frame resets it.
type Connection struct {
	ID      string
	ws      *websocket.Conn
	router  Router
	limiter *ratelimit.Bucket

	maxStrikes int
	strikes    atomic.Int32

	writeChan chan []byte
	closeChan chan struct{}
	closeOnce sync.Once

	UserID string
	GameID string
	Seat   int
}

// CloseDecodeStrikes is the close code sent when DecodeStrikes is
// exceeded, distinct from a normal client-initiated close (spec §5).
const CloseDecodeStrikes = 4001

// CloseFatalInvariant is the close code used when the game controller
// aborts a game on an internal invariant failure (spec §7).
const CloseFatalInvariant = 4002

func NewConnection(id string, ws *websocket.Conn, router Router, limiter *ratelimit.Bucket, maxStrikes int) *Connection {
	return &Connection{
		ID: id, ws: ws, router: router, limiter: limiter, maxStrikes: maxStrikes,
		writeChan: make(chan []byte, 32), closeChan: make(chan struct{}),
	}
}

// Run starts the read and write loops and blocks until the connection
// closes.
func (c *Connection) Run() {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); c.writeLoop() }()
	go func() { defer wg.Done(); c.readLoop() }()
	wg.Wait()
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.writeChan:
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				mlog.Warn("conn %s: write failed: %v", c.ID, err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closeChan:
			return
		}
	}
}

func (c *Connection) readLoop() {
	defer c.Close()
	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.BinaryMessage {
			c.strike("non-binary frame")
			continue
		}
		if c.limiter != nil && !c.limiter.Consume() {
			c.SendError(events.ErrRateLimited, "rate limit exceeded")
			continue // rate-limit rejections do not count as decode strikes (spec §5)
		}
		t, payload, err := events.DecodeFrame(data)
		if err != nil {
			c.strike("frame decode error: " + err.Error())
			continue
		}
		c.strikes.Store(0)
		c.router.HandleFrame(c, events.ClientMsgType(t), payload)
	}
}

func (c *Connection) strike(reason string) {
	n := c.strikes.Add(1)
	mlog.Warn("conn %s: decode strike %d/%d: %s", c.ID, n, c.maxStrikes, reason)
	if int(n) >= c.maxStrikes {
		c.closeWithCode(CloseDecodeStrikes)
	}
}

// Send queues a binary frame for delivery; it never blocks the caller
// (a slow client only backs up its own channel, spec §5 suspension
// point 3). It reports whether the frame was actually queued, so
// callers that gate a side effect on successful delivery (e.g. session
// token rotation, spec §4.4) can tell a drop from a success.
func (c *Connection) Send(frame []byte) bool {
	select {
	case c.writeChan <- frame:
		return true
	default:
		mlog.Warn("conn %s: write buffer full, dropping frame", c.ID)
		return false
	}
}

func (c *Connection) SendError(code, reason string) {
	c.Send(events.EncodeFrame(events.MsgError, events.EncodeError(code, reason)))
}

func (c *Connection) closeWithCode(code int) {
	msg := websocket.FormatCloseMessage(code, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	c.Close()
}

func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.closeChan)
		close(c.writeChan)
		_ = c.ws.Close()
		if c.router != nil {
			c.router.HandleClose(c)
		}
	})
}

var ErrNotAdmitted = errors.New("connection not yet admitted to a game")

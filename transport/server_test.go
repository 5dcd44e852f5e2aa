package transport

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"mahjongcore/events"
)

type fakeRouter struct {
	mu     sync.Mutex
	frames []events.ClientMsgType
	closed bool
}

func (f *fakeRouter) HandleFrame(c *Connection, t events.ClientMsgType, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, t)
}

func (f *fakeRouter) HandleClose(c *Connection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeRouter) closedNow() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func dialTestServer(t *testing.T, router Router, rateConf RateConfig) (*websocket.Conn, func()) {
	t.Helper()
	srv := NewServer(router, rateConf)
	httpSrv := httptest.NewServer(srv)
	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws/game-1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		httpSrv.Close()
	}
}

func TestServerDeliversValidFramesToRouter(t *testing.T) {
	router := &fakeRouter{}
	conn, cleanup := dialTestServer(t, router, RateConfig{PerSecond: 100, Burst: 100, DecodeStrikes: 3})
	defer cleanup()

	frame := events.EncodeFrame(events.MessageType(events.ClientChat), []byte(`{"message":"hi"}`))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, frame))

	require.Eventually(t, func() bool {
		router.mu.Lock()
		defer router.mu.Unlock()
		return len(router.frames) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestServerClosesAfterDecodeStrikeLimit(t *testing.T) {
	router := &fakeRouter{}
	conn, cleanup := dialTestServer(t, router, RateConfig{PerSecond: 100, Burst: 100, DecodeStrikes: 2})
	defer cleanup()

	garbage := []byte{0xFF}
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, garbage))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, garbage))

	require.Eventually(t, func() bool { return router.closedNow() }, time.Second, 5*time.Millisecond)
}

package transport

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	mlog "mahjongcore/common/log"
	"mahjongcore/ratelimit"
)

// Server upgrades incoming HTTP requests on /ws/{game_id} to WebSocket
// connections and hands each one to a fresh Connection, grounded on the
// teacher's per-node connection acceptor (framework/conn/manager.go)
// collapsed to a single net/http.Handler since this module runs as one
// process rather than a connector tier in front of game nodes.
type Server struct {
	upgrader   websocket.Upgrader
	router     Router
	rateConf   RateConfig
}

type RateConfig struct {
	PerSecond     float64
	Burst         int
	DecodeStrikes int
}

func NewServer(router Router, rateConf RateConfig) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		router: router, rateConf: rateConf,
	}
}

// ServeHTTP implements net/http.Handler for a route registered as
// "/ws/{game_id}" (spec §6); the game ID is taken from the final path
// segment rather than a router dependency, since this module carries no
// HTTP framework (gin is explicitly out of scope, see DESIGN.md).
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gameID := strings.TrimPrefix(r.URL.Path, "/ws/")
	if gameID == "" || strings.Contains(gameID, "/") {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		mlog.Warn("ws upgrade failed: %v", err)
		return
	}
	connID := uuid.NewString()
	limiter := ratelimit.NewBucket(s.rateConf.PerSecond, s.rateConf.Burst)
	c := NewConnection(connID, ws, s.router, limiter, s.rateConf.DecodeStrikes)
	c.GameID = gameID
	go c.Run()
}

package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/threetgame/backend/internal/entity"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// Client is one live socket. Until joinRoom succeeds it is anonymous and
// unbound; afterwards it carries exactly one (room code, identity) binding
// for its lifetime.
type Client struct {
	server *Server
	conn   *websocket.Conn
	send   chan []byte

	// written once on successful join, before the client is registered
	identity entity.Identity
	roomCode string
	bound    bool
}

func newClient(server *Server, conn *websocket.Conn) *Client {
	return &Client{
		server: server,
		conn:   conn,
		send:   make(chan []byte, 16),
	}
}

// readPump dispatches inbound frames until the socket drops. A panic in a
// handler is treated as a disconnect so the bound room is abandoned rather
// than left wedged.
func (that *Client) readPump() {
	defer func() {
		if r := recover(); r != nil {
			that.server.logger.Error("recovered from connection panic", "panic", r)
		}

		that.server.handleDisconnect(that)
		_ = that.conn.Close()
	}()

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			return
		}

		that.server.dispatch(that, data)
	}
}

func (that *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case data, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

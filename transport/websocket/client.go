package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBufferSize   = 32
	idlePingInterval = 30 * time.Second
	writeWait        = 10 * time.Second
	maxMessageSize   = 4 << 10
	pongWait         = 2 * idlePingInterval
	closeGracePeriod = time.Second
)

// client - one websocket connection. Only writePump writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// enqueue - drops the connection rather than blocking the sender when the client lags behind.
func (that *client) enqueue(msg []byte) bool {
	select {
	case that.send <- msg:
		return true
	default:
		return false
	}
}

// writePump - drains send and keeps an idle connection alive with pings.
func (that *client) writePump() error {
	ticker := time.NewTicker(idlePingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				_ = that.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(closeGracePeriod))
				return nil
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
		case <-ticker.C:
			if err := that.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

func (that *client) prepareRead() {
	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// WriteTyped sends one event to a change-feed client. The deadline keeps
// a stalled client from blocking the forward loop indefinitely.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse to a change-feed client.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// ReadJSON decodes one client message. The deadline doubles as an idle
// timeout: a client that neither pings nor closes gets dropped.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	return conn.ReadJSON(v)
}

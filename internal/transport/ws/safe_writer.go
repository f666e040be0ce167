package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// SafeWriter serializes writes to one websocket connection. gorilla
// connections allow a single concurrent writer; the broadcast loop and
// per-client replies would otherwise race.
type SafeWriter struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewSafeWriter wraps a connection.
func NewSafeWriter(conn *websocket.Conn) *SafeWriter {
	return &SafeWriter{conn: conn}
}

// WriteJSON writes v as one JSON text message.
func (w *SafeWriter) WriteJSON(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteJSON(v)
}

// WriteMessage writes a raw message frame.
func (w *SafeWriter) WriteMessage(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(messageType, data)
}

// Close closes the underlying connection.
func (w *SafeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.Close()
}

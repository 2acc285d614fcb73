// Package websocket adapts a gofiber websocket connection into the ordered
// per-run progress sink the pipeline services write to.
package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const writeWait = 10 * time.Second

// ErrWriterClosed is returned once a write has failed; the channel is
// considered gone and no further frames are attempted.
var ErrWriterClosed = errors.New("websocket writer closed")

// EventWriter serializes events onto one connection. The first failed write
// marks the writer dead so a disconnected client never blocks a pipeline.
type EventWriter struct {
	conn *websocket.Conn
	mu   sync.Mutex
	dead bool
}

func NewEventWriter(conn *websocket.Conn) *EventWriter {
	return &EventWriter{conn: conn}
}

func (w *EventWriter) Send(event any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dead {
		return ErrWriterClosed
	}
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := w.conn.WriteJSON(event); err != nil {
		w.dead = true
		return err
	}
	return nil
}

// CloseNormal sends a normal closure frame; used after a terminal success
// event.
func (w *EventWriter) CloseNormal() {
	w.closeWith(websocket.CloseNormalClosure, "")
}

// CloseWithCode sends a closure frame carrying a fault's close status and
// human-readable reason.
func (w *EventWriter) CloseWithCode(code int, reason string) {
	w.closeWith(code, reason)
}

func (w *EventWriter) closeWith(code int, reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dead {
		return
	}
	w.dead = true
	w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	w.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}

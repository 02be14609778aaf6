package sse

import (
	"net/http"
	"time"

	"github.com/mcoot/emojiguess-go/internal/model"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client represents a connected SSE client, keyed by its connection id
type Client struct {
	hub         *Hub
	connID      model.ConnectionID
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new SSE client
func NewClient(hub *Hub, connID model.ConnectionID) *Client {
	return &Client{
		hub:         hub,
		connID:      connID,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// serveClient writes the client's event stream to the response until the
// client disconnects or the hub closes its send channel. Registration is
// handled by the caller.
func serveClient(w http.ResponseWriter, r *http.Request, client *Client, flusher http.Flusher) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.send:
			if !ok {
				// Hub closed the channel
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

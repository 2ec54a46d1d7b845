package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second
)

// snapshotEvent is the first message on every stream so late subscribers
// can render the current state.
type snapshotEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func newSnapshotEvent(g Game) []byte {
	data, _ := json.Marshal(snapshotEvent{Type: "snapshot", Data: g.Snapshot()})
	return data
}

// handleEvents streams session events as Server-Sent Events.
func handleEvents(broker *Broker, g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		ch := broker.Subscribe()
		defer broker.Unsubscribe(ch)

		fmt.Fprintf(w, "data: %s\n\n", newSnapshotEvent(g))
		flusher.Flush()

		ping := time.NewTicker(pingInterval)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "data: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}

// handleWSEvents streams session events over a WebSocket. Client messages
// are ignored.
func handleWSEvents(logger *slog.Logger, broker *Broker, g Game) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ch := broker.Subscribe()
		defer broker.Unsubscribe(ch)

		ctx := conn.CloseRead(r.Context())

		if err := wsWrite(ctx, conn, newSnapshotEvent(g)); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				logger.Debug("websocket closed", "error", ctx.Err())
				return
			case data := <-ch:
				if err := wsWrite(ctx, conn, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}

func wsWrite(ctx context.Context, conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

package server

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"github.com/playperu/chatguessr/internal/chatguessr"
)

func TestHandleEventsSSE(t *testing.T) {
	broker := NewBroker()
	game := &fakeGame{startURL: "https://www.geoguessr.com/game/abc"}

	srv := httptest.NewServer(handleEvents(broker, game))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content-type = %q, want text/event-stream", got)
	}

	lines := bufio.NewScanner(resp.Body)
	next := func() string {
		for lines.Scan() {
			if data, ok := strings.CutPrefix(lines.Text(), "data: "); ok {
				return data
			}
		}
		t.Fatalf("stream ended: %v", lines.Err())
		return ""
	}

	if first := next(); !strings.Contains(first, `"type":"snapshot"`) || !strings.Contains(first, `"inGame":true`) {
		t.Fatalf("first event = %s, want snapshot", first)
	}

	broker.Publish(chatguessr.Event{Type: chatguessr.EventRoundStarted, Round: 2})

	var ev chatguessr.Event
	if err := json.Unmarshal([]byte(next()), &ev); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if ev.Type != chatguessr.EventRoundStarted || ev.Round != 2 {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestHandleWSEvents(t *testing.T) {
	broker := NewBroker()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/events", handleWSEvents(slog.Default(), broker, &fakeGame{}))

	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + srv.URL[len("http"):] + "/ws/events"

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	_, first, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(first), `"type":"snapshot"`) {
		t.Fatalf("first message = %s, want snapshot", first)
	}

	events := []chatguessr.EventType{chatguessr.EventGuessesOpen, chatguessr.EventGuess, chatguessr.EventGuessesClosed}
	for _, typ := range events {
		broker.Publish(chatguessr.Event{Type: typ})
	}

	for _, want := range events {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var ev chatguessr.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		if ev.Type != want {
			t.Errorf("got %q, want %q", ev.Type, want)
		}
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}

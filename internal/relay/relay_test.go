package relay

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playperu/chatguessr/internal/chatguessr"
	"github.com/playperu/chatguessr/internal/ingest"
)

type fakeHandler struct {
	mu   sync.Mutex
	msgs []ingest.Message
}

func (f *fakeHandler) Handle(_ context.Context, msg ingest.Message) (ingest.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return ingest.Result{}, nil
}

type recorder struct {
	mu     sync.Mutex
	events []chatguessr.Event
}

func (r *recorder) Publish(ev chatguessr.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func TestDispatch(t *testing.T) {
	h := &fakeHandler{}
	r := New(nil, "chat", h, &recorder{}, slog.Default())

	tests := []struct {
		payload string
		handled bool
	}{
		{`{"user": {"userId": "7", "username": "viewer"}, "message": "!g 1, 1"}`, true},
		{`{"user": {"username": "anonymous"}, "message": "!g 1, 1"}`, false},
		{`not json`, false},
	}
	for _, tt := range tests {
		before := len(h.msgs)
		r.dispatch(context.Background(), tt.payload)
		if got := len(h.msgs) > before; got != tt.handled {
			t.Errorf("dispatch(%q): handled=%v, want %v", tt.payload, got, tt.handled)
		}
	}

	if h.msgs[0].Text != "!g 1, 1" || h.msgs[0].User.Username != "viewer" {
		t.Errorf("unexpected decoded message %+v", h.msgs[0])
	}
}

func TestRunUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	events := &recorder{}
	r := New(client, "chat", &fakeHandler{}, events, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Run(ctx); err == nil {
		t.Fatal("expected subscribe error")
	}
	if len(events.events) != 0 {
		t.Errorf("expected no connection events, got %+v", events.events)
	}
}

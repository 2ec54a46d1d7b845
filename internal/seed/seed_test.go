package seed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGameID(t *testing.T) {
	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{"https://www.geoguessr.com/game/abcdefghijklmnop", "abcdefghijklmnop", true},
		{"https://www.geoguessr.com/game/abcdefghijklmnop?x=1", "abcdefghijklmnop", true},
		{"https://www.geoguessr.com/game/short", "", false},
		{"https://www.geoguessr.com/maps/world/play", "", false},
	}
	for _, tt := range tests {
		got, ok := GameID(tt.url)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("GameID(%q) = %q, %v; want %q, %v", tt.url, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIsGameURL(t *testing.T) {
	if !IsGameURL("https://www.geoguessr.com/game/abcdefghijklmnop") {
		t.Error("expected game url")
	}
	if IsGameURL("https://www.geoguessr.com/maps/world") {
		t.Error("expected non-game url")
	}
}

func TestClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/games/abcdefghijklmnop" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		c, err := r.Cookie("_ncfa")
		if err != nil || c.Value != "secret" {
			t.Errorf("missing session cookie")
		}
		w.Write([]byte(`{
			"token": "abcdefghijklmnop",
			"mapName": "World",
			"round": 1,
			"roundCount": 5,
			"bounds": {"min": {"lat": -60, "lng": -180}, "max": {"lat": 85, "lng": 180}},
			"rounds": [{"lat": 48.8566, "lng": 2.3522, "panoId": null, "heading": 12.5, "pitch": 0, "zoom": 0}],
			"player": {"guesses": []},
			"state": "started",
			"forbidMoving": true
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", time.Second)
	s, err := c.Fetch(context.Background(), "https://www.geoguessr.com/game/abcdefghijklmnop")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if s == nil {
		t.Fatal("expected seed")
	}
	if s.Token != "abcdefghijklmnop" || s.RoundCount != 5 {
		t.Errorf("unexpected seed %+v", s)
	}
	loc, ok := s.LastRound()
	if !ok || loc.Lat != 48.8566 || loc.PanoID != nil {
		t.Errorf("unexpected last round %+v", loc)
	}
	if !s.GameMode().NoMove || s.GameMode().NoPan {
		t.Errorf("unexpected mode %+v", s.GameMode())
	}
	if s.Finished() {
		t.Error("seed should not be finished")
	}
}

func TestClientFetchNotAGame(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "secret", time.Second)
	s, err := c.Fetch(context.Background(), "https://www.geoguessr.com/maps/world")
	if err != nil || s != nil {
		t.Fatalf("got %v, %v; want nil, nil", s, err)
	}
}

func TestClientFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "secret", time.Second).Fetch(context.Background(), "https://x/game/abcdefghijklmnop")
	if err == nil {
		t.Fatal("expected error")
	}
}

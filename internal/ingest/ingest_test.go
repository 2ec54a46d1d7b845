package ingest

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/playperu/chatguessr/internal/chatguessr"
	"github.com/playperu/chatguessr/internal/database"
	"github.com/playperu/chatguessr/internal/engine"
	"github.com/playperu/chatguessr/internal/migrations"
	"github.com/playperu/chatguessr/internal/store"
)

type fakeGuesser struct {
	mu      sync.Mutex
	open    bool
	bounds  *chatguessr.Bounds
	guesses []chatguessr.LatLng
}

func (f *fakeGuesser) GuessesOpen() bool { return f.open }

func (f *fakeGuesser) Bounds() *chatguessr.Bounds { return f.bounds }

func (f *fakeGuesser) HandleUserGuess(_ context.Context, _ chatguessr.UserInfo, p chatguessr.LatLng) (engine.GuessResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.guesses = append(f.guesses, p)
	return engine.GuessResult{Outcome: engine.OutcomeAccepted}, nil
}

// landGeocoder treats the northern hemisphere as land.
type landGeocoder struct {
	calls int
}

func (g *landGeocoder) CountryCode(_ context.Context, p chatguessr.LatLng) (*string, error) {
	g.calls++
	if p.Lat < 0 {
		return nil, nil
	}
	code := "XX"
	return &code, nil
}

func setup(t *testing.T) (*Dispatcher, *fakeGuesser, *store.SQLiteStore) {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := store.New(db)

	g := &fakeGuesser{open: true}
	d := NewDispatcher(g, st, &landGeocoder{}, slog.Default(), "Streamer", DefaultCommands(), rand.New(rand.NewPCG(1, 2)))
	return d, g, st
}

func msg(text string) Message {
	return Message{
		User: chatguessr.UserInfo{ChannelUserID: "7", Username: "viewer"},
		Text: text,
	}
}

func TestHandleGuess(t *testing.T) {
	d, g, _ := setup(t)

	tests := []struct {
		text    string
		guessed bool
	}{
		{"!g 48.8566, 2.3522", true},
		{"  !G -12.04,-77.04  ", true},
		{"!g 91, 0", false},
		{"!g somewhere", false},
		{"!g", false},
		{"hello chat", false},
		{"!guess 1, 1", false},
	}
	for _, tt := range tests {
		before := len(g.guesses)
		res, err := d.Handle(context.Background(), msg(tt.text))
		if err != nil {
			t.Fatalf("Handle(%q): %v", tt.text, err)
		}
		got := len(g.guesses) > before
		if got != tt.guessed {
			t.Errorf("Handle(%q): guessed=%v, want %v", tt.text, got, tt.guessed)
		}
		if tt.guessed && res.Action != ActionGuess {
			t.Errorf("Handle(%q): expected guess action, got %d", tt.text, res.Action)
		}
	}
}

func TestHandleGuessFilters(t *testing.T) {
	d, g, st := setup(t)
	ctx := context.Background()

	// Streamer chatting their own guess.
	self := Message{User: chatguessr.UserInfo{ChannelUserID: "1", Username: "streamer"}, Text: "!g 1, 1"}
	if _, err := d.Handle(ctx, self); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if err := st.AddBannedUser(ctx, "viewer"); err != nil {
		t.Fatalf("AddBannedUser: %v", err)
	}
	if _, err := d.Handle(ctx, msg("!g 1, 1")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(g.guesses) != 0 {
		t.Fatalf("expected filtered guesses, got %v", g.guesses)
	}

	st.DeleteBannedUser(ctx, "viewer")
	g.open = false
	if _, err := d.Handle(ctx, msg("!g 1, 1")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(g.guesses) != 0 {
		t.Errorf("expected no guesses while closed, got %v", g.guesses)
	}
}

func TestRandomPlonk(t *testing.T) {
	d, g, _ := setup(t)
	g.bounds = &chatguessr.Bounds{
		Min: chatguessr.LatLng{Lat: -50, Lng: -10},
		Max: chatguessr.LatLng{Lat: 50, Lng: 10},
	}

	for range 10 {
		if _, err := d.Handle(context.Background(), msg("!randomplonk")); err != nil {
			t.Fatalf("Handle: %v", err)
		}
	}
	if len(g.guesses) != 10 {
		t.Fatalf("expected 10 guesses, got %d", len(g.guesses))
	}
	for _, p := range g.guesses {
		if p.Lat < 0 || p.Lat > 50 || p.Lng < -10 || p.Lng > 10 {
			t.Errorf("expected a land point inside bounds, got %+v", p)
		}
	}
}

func TestRandomPlonkGivesUp(t *testing.T) {
	d, g, _ := setup(t)
	gc := &landGeocoder{}
	d.geocoder = gc
	g.bounds = &chatguessr.Bounds{
		Min: chatguessr.LatLng{Lat: -50, Lng: -10},
		Max: chatguessr.LatLng{Lat: -40, Lng: 10},
	}

	if _, err := d.Handle(context.Background(), msg("!randomplonk")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if gc.calls != maxPlonkAttempts {
		t.Errorf("expected %d attempts, got %d", maxPlonkAttempts, gc.calls)
	}
	if len(g.guesses) != 1 {
		t.Errorf("expected the last point to be guessed anyway, got %d guesses", len(g.guesses))
	}
}

func TestFlagAndStats(t *testing.T) {
	d, _, st := setup(t)
	ctx := context.Background()

	res, err := d.Handle(ctx, msg("!flag pe"))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.Action != ActionFlag || res.Flag == nil || *res.Flag != "PE" {
		t.Fatalf("unexpected flag result %+v", res)
	}
	u, err := st.UserByChannelID(ctx, "7")
	if err != nil {
		t.Fatalf("UserByChannelID: %v", err)
	}
	if u.Flag == nil || *u.Flag != "PE" {
		t.Errorf("expected stored flag PE, got %v", u.Flag)
	}

	res, err = d.Handle(ctx, msg("!flag none"))
	if err != nil || res.Flag != nil {
		t.Fatalf("expected cleared flag, got %+v, %v", res, err)
	}

	res, err = d.Handle(ctx, msg("!me"))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.Action != ActionStats || res.Stats == nil || res.Stats.Player.UserID != "7" {
		t.Errorf("unexpected stats result %+v", res)
	}

	res, err = d.Handle(ctx, Message{User: chatguessr.UserInfo{ChannelUserID: "99", Username: "new"}, Text: "!me"})
	if err != nil || res.Stats != nil {
		t.Errorf("expected no stats for unknown user, got %+v, %v", res, err)
	}

	res, err = d.Handle(ctx, msg("!clear"))
	if err != nil || res.Action != ActionClearStats {
		t.Errorf("unexpected clear result %+v, %v", res, err)
	}
}

func TestBroadcasterIdentity(t *testing.T) {
	d, _, st := setup(t)
	ctx := context.Background()

	m := Message{User: chatguessr.UserInfo{ChannelUserID: "1", Username: "streamer"}, Text: "!flag fr", Broadcaster: true}
	if _, err := d.Handle(ctx, m); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if _, err := st.UserByChannelID(ctx, chatguessr.BroadcasterID); err != nil {
		t.Errorf("expected broadcaster user, got %v", err)
	}
}

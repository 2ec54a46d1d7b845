// Package engine reconciles a live game session against its external seed
// and applies the guess and streak rules to incoming guesses.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/playperu/chatguessr/internal/chatguessr"
	"github.com/playperu/chatguessr/internal/geo"
	"github.com/playperu/chatguessr/internal/geocode"
	"github.com/playperu/chatguessr/internal/seed"
)

const (
	// multiGuessConcurrency bounds geocoder calls when a multi-guess round
	// closes.
	multiGuessConcurrency = 10

	resolveTimeout   = 30 * time.Second
	broadcasterColor = "#FFF"
)

type Options struct {
	// ChannelName is the streamer's display name on their own guesses.
	ChannelName       string
	BroadcasterAvatar string
}

// roundState is the engine's cached view of the round being played. country
// is written once by the resolver goroutine before ready is closed.
type roundState struct {
	id       string
	index    int
	location chatguessr.Location
	ready    chan struct{}
	country  *string
}

func newRoundState(id string, index int, loc chatguessr.Location) *roundState {
	return &roundState{id: id, index: index, location: loc, ready: make(chan struct{})}
}

// resolvedRoundState wraps a round whose country the store already knows.
func resolvedRoundState(r chatguessr.Round) *roundState {
	rs := newRoundState(r.ID, r.Index, r.Location)
	rs.country = r.Country
	close(rs.ready)
	return rs
}

// Engine owns one game session. State changes are serialized by mu; guess
// country lookups run outside it.
type Engine struct {
	store    Store
	seeds    seed.Source
	geocoder geocode.Geocoder
	notify   Notifier
	logger   *slog.Logger
	opts     Options

	mu           sync.Mutex
	url          string
	seed         *chatguessr.Seed
	scale        float64
	round        *roundState
	lastLocation *chatguessr.LatLng
	inGame       bool
	guessesOpen  bool
	multi        bool

	bg     context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds an engine and restores the last closed round's location from
// the store so skip detection survives a restart.
func New(ctx context.Context, store Store, seeds seed.Source, geocoder geocode.Geocoder, notify Notifier, logger *slog.Logger, opts Options) (*Engine, error) {
	last, err := store.LastRoundLocation(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading last round location: %w", err)
	}
	if notify == nil {
		notify = nopNotifier{}
	}
	bg, cancel := context.WithCancel(context.Background())
	return &Engine{
		store:        store,
		seeds:        seeds,
		geocoder:     geocoder,
		notify:       notify,
		logger:       logger,
		opts:         opts,
		lastLocation: last,
		bg:           bg,
		cancel:       cancel,
	}, nil
}

// Close stops pending country lookups and waits for them to return.
func (e *Engine) Close() {
	e.cancel()
	e.wg.Wait()
}

// resolveRound looks up the round's country in the background and records
// it on the round row.
func (e *Engine) resolveRound(rs *roundState) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer close(rs.ready)

		ctx, cancel := context.WithTimeout(e.bg, resolveTimeout)
		defer cancel()

		country, err := e.geocoder.CountryCode(ctx, rs.location.LatLng())
		if err != nil {
			e.logger.Warn("resolving round country", "round_id", rs.id, "error", err)
			return
		}
		rs.country = country
		if err := e.store.SetRoundCountry(ctx, rs.id, country); err != nil {
			e.logger.Error("saving round country", "round_id", rs.id, "error", err)
		}
	}()
}

func roundCountry(ctx context.Context, rs *roundState) (*string, error) {
	select {
	case <-rs.ready:
		return rs.country, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// countryCode resolves a guess location. Lookup failures yield a nil
// country, which never matches.
func (e *Engine) countryCode(ctx context.Context, p chatguessr.LatLng) *string {
	country, err := e.geocoder.CountryCode(ctx, p)
	if err != nil {
		e.logger.Warn("resolving guess country", "lat", p.Lat, "lng", p.Lng, "error", err)
		return nil
	}
	return country
}

func (e *Engine) fetchSeed(ctx context.Context, url string) (*chatguessr.Seed, error) {
	s, err := e.seeds.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chatguessr.ErrSeedUnavailable, err)
	}
	if s == nil {
		return nil, chatguessr.ErrSeedUnavailable
	}
	return s, nil
}

// Start begins tracking the game at url. Starting the game already being
// tracked refreshes it instead.
func (e *Engine) Start(ctx context.Context, url string, multi bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.seed != nil && e.url == url {
		if _, err := e.refresh(ctx); err != nil {
			return err
		}
		e.inGame = true
		e.multi = multi
		return nil
	}

	next, err := e.fetchSeed(ctx, url)
	if err != nil {
		return err
	}

	var rs *roundState
	if !next.Finished() {
		rs, err = e.openGame(ctx, next)
		if err != nil {
			return err
		}
	} else if err := e.store.CreateGame(ctx, next); err != nil && !errors.Is(err, chatguessr.ErrGameExists) {
		return fmt.Errorf("creating game: %w", err)
	}

	e.url = url
	e.seed = next
	e.scale = geo.MapScale(next.Bounds)
	e.round = rs
	e.inGame = true
	e.guessesOpen = false
	e.multi = multi

	ev := chatguessr.Event{Type: chatguessr.EventGameStarted, Multi: multi}
	if rs != nil {
		ev.Round = rs.index
		select {
		case <-rs.ready:
		default:
			e.resolveRound(rs)
		}
	}
	e.logger.Info("game started", "game_id", next.Token, "map", next.MapName, "multi_guess", multi)
	e.notify.Publish(ev)
	return nil
}

// openGame creates the game and its current round. A game that already
// exists is being resumed: its live round is recovered instead.
func (e *Engine) openGame(ctx context.Context, next *chatguessr.Seed) (*roundState, error) {
	loc, ok := next.LastRound()
	if !ok {
		return nil, fmt.Errorf("%w: seed has no rounds", chatguessr.ErrSeedUnavailable)
	}
	index := len(next.Rounds)

	err := e.store.CreateGame(ctx, next)
	if errors.Is(err, chatguessr.ErrGameExists) {
		r, err := e.store.CurrentRound(ctx, next.Token)
		if err == nil {
			e.logger.Info("resuming game", "game_id", next.Token, "round", r.Index)
			if r.Country != nil {
				return resolvedRoundState(r), nil
			}
			return newRoundState(r.ID, r.Index, r.Location), nil
		}
		if !errors.Is(err, chatguessr.ErrNotFound) {
			return nil, fmt.Errorf("recovering current round: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}

	id, err := e.store.CreateRound(ctx, next.Token, index, loc)
	if err != nil {
		return nil, err
	}
	return newRoundState(id, index, loc), nil
}

// Leave stops accepting guesses while the streamer is off the game page.
func (e *Engine) Leave() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inGame = false
	e.guessesOpen = false
	e.notify.Publish(chatguessr.Event{Type: chatguessr.EventGameLeft})
}

func (e *Engine) OpenGuesses() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.round == nil {
		return chatguessr.ErrNoActiveRound
	}
	e.guessesOpen = true
	e.notify.Publish(chatguessr.Event{Type: chatguessr.EventGuessesOpen, Round: e.round.index})
	return nil
}

func (e *Engine) CloseGuesses() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.guessesOpen = false
	e.notify.Publish(chatguessr.Event{Type: chatguessr.EventGuessesClosed})
}

// FinishGame marks the current game finished. It is idempotent.
func (e *Engine) FinishGame(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seed == nil {
		return chatguessr.ErrNoActiveRound
	}
	return e.finish(ctx)
}

func (e *Engine) finish(ctx context.Context) error {
	if err := e.store.FinishGame(ctx, e.seed.Token); err != nil {
		return fmt.Errorf("finishing game: %w", err)
	}
	e.notify.Publish(chatguessr.Event{Type: chatguessr.EventGameFinished})
	return nil
}

// RefreshResult describes what a refresh did. Location and Results are set
// when a round closed.
type RefreshResult struct {
	Kind     RefreshKind
	Round    int
	Location *chatguessr.Location
	Results  []chatguessr.RoundResult
	Finished bool
}

// Refresh re-fetches the seed and reconciles local state with it. On error
// nothing in memory changes.
func (e *Engine) Refresh(ctx context.Context) (RefreshResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refresh(ctx)
}

func (e *Engine) refresh(ctx context.Context) (RefreshResult, error) {
	if e.seed == nil {
		return RefreshResult{}, chatguessr.ErrNoActiveRound
	}
	if e.round == nil {
		return RefreshResult{Kind: Unchanged, Finished: e.seed.Finished()}, nil
	}

	next, err := e.fetchSeed(ctx, e.url)
	if err != nil {
		return RefreshResult{}, err
	}

	kind := Classify(e.seed, next, e.round.location)
	switch kind {
	case GuessCommitted:
		return e.closeRound(ctx, next)
	case LocationChanged:
		return e.replaceRound(ctx, next)
	default:
		return RefreshResult{Kind: Unchanged}, nil
	}
}

// closeRound settles the round the streamer just guessed on and opens the
// next one. Guesses close first. Every store write runs in one transaction,
// so a failed attempt leaves nothing behind and the next refresh settles the
// round from scratch.
func (e *Engine) closeRound(ctx context.Context, next *chatguessr.Seed) (RefreshResult, error) {
	rs := e.round
	e.guessesOpen = false
	e.notify.Publish(chatguessr.Event{Type: chatguessr.EventGuessesClosed})

	country, err := roundCountry(ctx, rs)
	if err != nil {
		return RefreshResult{}, err
	}

	var (
		guesses []chatguessr.Guess
		found   map[string]*string
	)
	if e.multi {
		guesses, err = e.store.RoundGuesses(ctx, rs.id)
		if err != nil {
			return RefreshResult{}, fmt.Errorf("reading round guesses: %w", err)
		}
		found, err = e.lookupMissingCountries(ctx, guesses)
		if err != nil {
			return RefreshResult{}, fmt.Errorf("resolving guess countries: %w", err)
		}
	}
	committed := e.lookupCommittedGuess(ctx, next)

	finished := next.Finished()
	var nextLoc chatguessr.Location
	if !finished {
		loc, ok := next.LastRound()
		if !ok {
			return RefreshResult{}, fmt.Errorf("%w: seed has no rounds", chatguessr.ErrSeedUnavailable)
		}
		nextLoc = loc
	}

	var (
		results   []chatguessr.RoundResult
		nextRound *roundState
	)
	err = e.store.InTx(ctx, func(ctx context.Context) error {
		if err := e.settleMultiGuesses(ctx, rs, guesses, found, country); err != nil {
			return err
		}
		if err := e.settleStreamerGuess(ctx, committed, rs, country); err != nil {
			return err
		}

		var err error
		results, err = e.store.RoundResults(ctx, rs.id)
		if err != nil {
			return fmt.Errorf("reading round results: %w", err)
		}

		if finished {
			if err := e.store.FinishGame(ctx, next.Token); err != nil {
				return fmt.Errorf("finishing game: %w", err)
			}
			return nil
		}
		index := len(next.Rounds)
		id, err := e.store.CreateRound(ctx, next.Token, index, nextLoc)
		if err != nil {
			return err
		}
		nextRound = newRoundState(id, index, nextLoc)
		return nil
	})
	if err != nil {
		return RefreshResult{}, err
	}

	closed := rs.location
	last := closed.LatLng()
	e.seed = next
	e.round = nextRound
	e.lastLocation = &last

	e.logger.Info("round closed", "game_id", next.Token, "round", rs.index, "guesses", len(results))
	e.notify.Publish(chatguessr.Event{
		Type:     chatguessr.EventRoundResults,
		Round:    rs.index,
		Location: &closed,
		Results:  results,
	})

	res := RefreshResult{
		Kind:     GuessCommitted,
		Round:    rs.index,
		Location: &closed,
		Results:  results,
		Finished: finished,
	}
	if nextRound == nil {
		e.notify.Publish(chatguessr.Event{Type: chatguessr.EventGameFinished})
		return res, nil
	}
	e.resolveRound(nextRound)
	e.notify.Publish(chatguessr.Event{Type: chatguessr.EventRoundStarted, Round: nextRound.index})
	return res, nil
}

// replaceRound swaps in the seed's new location at the same ordinal. The
// old round's guesses stay where they are.
func (e *Engine) replaceRound(ctx context.Context, next *chatguessr.Seed) (RefreshResult, error) {
	loc, ok := next.LastRound()
	if !ok {
		return RefreshResult{}, fmt.Errorf("%w: seed has no rounds", chatguessr.ErrSeedUnavailable)
	}
	index := e.round.index
	id, err := e.store.ReplaceRound(ctx, next.Token, index, loc)
	if err != nil {
		return RefreshResult{}, err
	}

	rs := newRoundState(id, index, loc)
	e.seed = next
	e.round = rs
	e.resolveRound(rs)

	e.logger.Info("round replaced", "game_id", next.Token, "round", index)
	e.notify.Publish(chatguessr.Event{Type: chatguessr.EventRoundReplaced, Round: index})
	return RefreshResult{Kind: LocationChanged, Round: index}, nil
}

// lookupMissingCountries geocodes the multi-guess round's guesses whose
// country failed to resolve at guess time. Hits are keyed by guess id.
func (e *Engine) lookupMissingCountries(ctx context.Context, guesses []chatguessr.Guess) (map[string]*string, error) {
	var mu sync.Mutex
	found := make(map[string]*string)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(multiGuessConcurrency)
	for _, guess := range guesses {
		if guess.Country != nil {
			continue
		}
		g.Go(func() error {
			country := e.countryCode(gctx, guess.Location)
			if country == nil {
				return gctx.Err()
			}
			mu.Lock()
			found[guess.ID] = country
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}

// settleMultiGuesses applies the deferred streak rules to every guess of a
// multi-guess round. The new streak is derived from the streak stored on the
// guess when it was made.
func (e *Engine) settleMultiGuesses(ctx context.Context, rs *roundState, guesses []chatguessr.Guess, found map[string]*string, country *string) error {
	for _, guess := range guesses {
		guessed := guess.Country
		if c, ok := found[guess.ID]; ok {
			guessed = c
			if err := e.store.SetGuessCountry(ctx, guess.ID, c); err != nil {
				return fmt.Errorf("saving guess country: %w", err)
			}
		}

		correct := sameCountry(guessed, country)
		streak := 0
		var lastStreak *int
		if correct {
			streak = guess.Streak + 1
		} else if guess.Streak > 0 {
			broken := guess.Streak
			lastStreak = &broken
		}
		if err := e.store.SetGuessStreak(ctx, guess.ID, streak, lastStreak); err != nil {
			return fmt.Errorf("saving guess streak: %w", err)
		}
		if _, err := applyStreak(ctx, e.store, guess.UserID, rs.id, correct); err != nil {
			return err
		}
	}
	return nil
}

// committedGuess is the streamer's guess from the seed with its country
// already looked up.
type committedGuess struct {
	location chatguessr.LatLng
	country  *string
	timedOut bool
}

func (e *Engine) lookupCommittedGuess(ctx context.Context, next *chatguessr.Seed) *committedGuess {
	sg, ok := next.LastPlayerGuess()
	if !ok {
		return nil
	}
	location := chatguessr.LatLng{Lat: sg.Lat, Lng: sg.Lng}
	return &committedGuess{
		location: location,
		country:  e.countryCode(ctx, location),
		timedOut: sg.TimedOut,
	}
}

// settleStreamerGuess records the streamer's committed guess for the round.
// A round already carrying it is left alone.
func (e *Engine) settleStreamerGuess(ctx context.Context, cg *committedGuess, rs *roundState, country *string) error {
	if cg == nil {
		return nil
	}

	user, err := e.store.GetOrCreateUser(ctx, chatguessr.UserInfo{
		ChannelUserID: chatguessr.BroadcasterID,
		Username:      e.opts.ChannelName,
		Color:         broadcasterColor,
		Avatar:        e.opts.BroadcasterAvatar,
	})
	if err != nil {
		return fmt.Errorf("loading broadcaster: %w", err)
	}

	_, err = e.store.UserGuess(ctx, rs.id, user.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, chatguessr.ErrNotFound) {
		return fmt.Errorf("reading broadcaster guess: %w", err)
	}

	lastStreak, err := applyStreak(ctx, e.store, user.ID, rs.id, sameCountry(cg.country, country))
	if err != nil {
		return err
	}
	streak, err := currentStreak(ctx, e.store, user.ID)
	if err != nil {
		return err
	}

	distance := geo.Distance(cg.location, rs.location.LatLng())
	score := 0
	if !cg.timedOut {
		score = geo.Score(distance, e.scale)
	}

	_, err = e.store.CreateGuess(ctx, rs.id, user.ID, chatguessr.GuessInput{
		Location:   cg.location,
		Country:    cg.country,
		Streak:     streak,
		LastStreak: lastStreak,
		Distance:   distance,
		Score:      score,
	})
	return err
}

// HandleUserGuess runs an audience guess through the guess policy and the
// streak rules and records it. Policy rejections come back as outcomes with
// a nil error. Countries are looked up before the session lock is taken, and
// the user's streak and guess rows are written in one transaction.
func (e *Engine) HandleUserGuess(ctx context.Context, info chatguessr.UserInfo, location chatguessr.LatLng) (GuessResult, error) {
	// The broadcaster only guesses through the seed.
	if info.ChannelUserID == chatguessr.BroadcasterID {
		return GuessResult{Outcome: OutcomeIgnored}, nil
	}

	e.mu.Lock()
	rs := e.round
	open := e.guessesOpen
	e.mu.Unlock()
	if !open || rs == nil {
		return GuessResult{Outcome: OutcomeIgnored}, nil
	}

	actual, err := roundCountry(ctx, rs)
	if err != nil {
		return GuessResult{}, err
	}
	country := e.countryCode(ctx, location)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.round != rs || !e.guessesOpen {
		return GuessResult{Outcome: OutcomeIgnored}, nil
	}

	distance := geo.Distance(location, rs.location.LatLng())
	in := chatguessr.GuessInput{
		Location: location,
		Country:  country,
		Distance: distance,
		Score:    geo.Score(distance, e.scale),
	}

	var (
		user    chatguessr.User
		outcome Outcome
		id      string
	)
	err = e.store.InTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = e.store.GetOrCreateUser(ctx, info)
		if err != nil {
			return fmt.Errorf("loading user: %w", err)
		}

		existing, err := e.store.UserGuess(ctx, rs.id, user.ID)
		guessed := err == nil
		if err != nil && !errors.Is(err, chatguessr.ErrNotFound) {
			return fmt.Errorf("reading guess: %w", err)
		}

		outcome = decide(true, guessed, e.multi, user.PreviousGuess, location)
		if !outcome.Recorded() {
			return nil
		}

		if err := applySkipReset(ctx, e.store, user.ID, e.lastLocation); err != nil {
			return err
		}
		if !e.multi {
			in.LastStreak, err = applyStreak(ctx, e.store, user.ID, rs.id, sameCountry(country, actual))
			if err != nil {
				return err
			}
		}
		in.Streak, err = currentStreak(ctx, e.store, user.ID)
		if err != nil {
			return err
		}

		id = existing.ID
		if outcome == OutcomeModified {
			err = e.store.UpdateGuess(ctx, id, in)
		} else {
			id, err = e.store.CreateGuess(ctx, rs.id, user.ID, in)
		}
		if err != nil {
			return err
		}
		if err := e.store.SetUserPreviousGuess(ctx, user.ID, location); err != nil {
			return fmt.Errorf("saving previous guess: %w", err)
		}
		return nil
	})
	if err != nil {
		return GuessResult{}, err
	}
	if !outcome.Recorded() {
		return GuessResult{Outcome: outcome}, nil
	}

	player := chatguessr.Player{
		UserID:   user.ChannelUserID,
		Username: user.Username,
		Color:    user.Color,
		Avatar:   user.Avatar,
		Flag:     user.Flag,
	}
	e.notify.Publish(chatguessr.Event{
		Type:     chatguessr.EventGuess,
		Round:    rs.index,
		Player:   &player,
		Modified: outcome == OutcomeModified,
	})

	return GuessResult{
		Outcome: outcome,
		Guess: &chatguessr.RoundResult{
			GuessID:    id,
			Player:     player,
			Position:   location,
			Country:    country,
			Streak:     in.Streak,
			LastStreak: in.LastStreak,
			Distance:   in.Distance,
			Score:      in.Score,
			Time:       time.Now().UTC(),
		},
	}, nil
}

// Read accessors

// Snapshot is a point-in-time view of the session for observers.
type Snapshot struct {
	InGame      bool            `json:"inGame"`
	GuessesOpen bool            `json:"guessesOpen"`
	MultiGuess  bool            `json:"multiGuess"`
	GameID      string          `json:"gameId,omitempty"`
	MapName     string          `json:"mapName,omitempty"`
	Mode        chatguessr.Mode `json:"mode"`
	Round       int             `json:"round,omitempty"`
	RoundCount  int             `json:"roundCount,omitempty"`
	Finished    bool            `json:"finished"`
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Snapshot{InGame: e.inGame, GuessesOpen: e.guessesOpen, MultiGuess: e.multi}
	if e.seed != nil {
		s.GameID = e.seed.Token
		s.MapName = e.seed.MapName
		s.Mode = e.seed.GameMode()
		s.RoundCount = e.seed.RoundCount
		s.Finished = e.seed.Finished()
	}
	if e.round != nil {
		s.Round = e.round.index
	}
	return s
}

func (e *Engine) GuessesOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guessesOpen
}

// Bounds returns the map bounds of the current game, or nil.
func (e *Engine) Bounds() *chatguessr.Bounds {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seed == nil {
		return nil
	}
	b := e.seed.Bounds
	return &b
}

// Location returns the true location of the round being played.
func (e *Engine) Location() (chatguessr.Location, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.round == nil {
		return chatguessr.Location{}, false
	}
	return e.round.location, true
}

// Locations lists every round location of the game so far, with heading
// and pitch rounded for display.
func (e *Engine) Locations() []chatguessr.Location {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.seed == nil {
		return nil
	}
	locs := make([]chatguessr.Location, len(e.seed.Rounds))
	for i, r := range e.seed.Rounds {
		r.Heading = math.Round(r.Heading)
		r.Pitch = math.Round(r.Pitch)
		locs[i] = r
	}
	return locs
}

func (e *Engine) currentRoundID() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.round == nil {
		return "", chatguessr.ErrNoActiveRound
	}
	return e.round.id, nil
}

// RoundParticipants lists who has guessed in the current round, first
// guess first.
func (e *Engine) RoundParticipants(ctx context.Context) ([]chatguessr.Player, error) {
	id, err := e.currentRoundID()
	if err != nil {
		return nil, err
	}
	return e.store.RoundParticipants(ctx, id)
}

// RoundResults returns the current round's guesses, closest first.
func (e *Engine) RoundResults(ctx context.Context) ([]chatguessr.RoundResult, error) {
	id, err := e.currentRoundID()
	if err != nil {
		return nil, err
	}
	return e.store.RoundResults(ctx, id)
}

// GameResults returns the game's standings, highest total first.
func (e *Engine) GameResults(ctx context.Context) ([]chatguessr.GameResult, error) {
	e.mu.Lock()
	s := e.seed
	e.mu.Unlock()
	if s == nil {
		return nil, chatguessr.ErrNoActiveRound
	}
	return e.store.GameResults(ctx, s.Token)
}

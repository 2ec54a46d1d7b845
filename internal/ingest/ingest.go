// Package ingest turns chat messages into engine operations.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/playperu/chatguessr/internal/chatguessr"
	"github.com/playperu/chatguessr/internal/engine"
	"github.com/playperu/chatguessr/internal/geo"
	"github.com/playperu/chatguessr/internal/geocode"
)

// maxPlonkAttempts caps how many random points are tried before settling
// for one that may be at sea.
const maxPlonkAttempts = 20

// Guesser is the part of the engine chat can drive.
type Guesser interface {
	GuessesOpen() bool
	Bounds() *chatguessr.Bounds
	HandleUserGuess(ctx context.Context, info chatguessr.UserInfo, location chatguessr.LatLng) (engine.GuessResult, error)
}

// Users is the part of the store chat commands read and write.
type Users interface {
	IsBanned(ctx context.Context, username string) (bool, error)
	GetOrCreateUser(ctx context.Context, info chatguessr.UserInfo) (chatguessr.User, error)
	UserByChannelID(ctx context.Context, channelUserID string) (chatguessr.User, error)
	SetUserFlag(ctx context.Context, userID string, flag *string) error
	UserStats(ctx context.Context, channelUserID string) (chatguessr.UserStats, error)
	ResetUserStats(ctx context.Context, userID string) error
}

// Message is one chat line with its sender.
type Message struct {
	User chatguessr.UserInfo `json:"user"`
	Text string              `json:"message"`
	// Broadcaster is set when the sender owns the channel.
	Broadcaster bool `json:"broadcaster,omitempty"`
}

type Commands struct {
	Guess       string
	RandomPlonk string
	Flag        string
	Stats       string
	ClearStats  string
}

// DefaultCommands returns the stock chat commands.
func DefaultCommands() Commands {
	return Commands{
		Guess:       "!g",
		RandomPlonk: "!randomplonk",
		Flag:        "!flag",
		Stats:       "!me",
		ClearStats:  "!clear",
	}
}

type Action int

const (
	ActionNone Action = iota
	ActionGuess
	ActionFlag
	ActionStats
	ActionClearStats
)

// Result reports what a message did. Only the field matching Action is set.
type Result struct {
	Action Action
	Guess  *engine.GuessResult
	Stats  *chatguessr.UserStats
	Flag   *string
}

type Dispatcher struct {
	guesser     Guesser
	users       Users
	geocoder    geocode.Geocoder
	logger      *slog.Logger
	channelName string
	cmds        Commands

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewDispatcher wires chat commands to the engine. rnd may be nil.
func NewDispatcher(g Guesser, users Users, geocoder geocode.Geocoder, logger *slog.Logger, channelName string, cmds Commands, rnd *rand.Rand) *Dispatcher {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	for _, c := range []*string{&cmds.Guess, &cmds.RandomPlonk, &cmds.Flag, &cmds.Stats, &cmds.ClearStats} {
		*c = strings.ToLower(*c)
	}
	return &Dispatcher{
		guesser:     g,
		users:       users,
		geocoder:    geocoder,
		logger:      logger,
		channelName: channelName,
		cmds:        cmds,
		rnd:         rnd,
	}
}

// Handle dispatches one chat message. Messages that are not commands, or
// that the sender may not run, yield ActionNone and a nil error.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) (Result, error) {
	text := strings.ToLower(strings.TrimSpace(msg.Text))
	if !strings.HasPrefix(text, "!") {
		return Result{}, nil
	}
	cmd, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)

	info := msg.User
	if msg.Broadcaster {
		info.ChannelUserID = chatguessr.BroadcasterID
	}

	switch cmd {
	case d.cmds.Guess:
		p, ok := geo.ParseCoordinates(arg)
		if !ok {
			return Result{}, nil
		}
		return d.guess(ctx, msg.User, p)
	case d.cmds.RandomPlonk:
		return d.randomPlonk(ctx, msg.User)
	case d.cmds.Flag:
		return d.setFlag(ctx, info, arg)
	case d.cmds.Stats:
		return d.stats(ctx, info)
	case d.cmds.ClearStats:
		return d.clearStats(ctx, info)
	}
	return Result{}, nil
}

func (d *Dispatcher) guess(ctx context.Context, user chatguessr.UserInfo, p chatguessr.LatLng) (Result, error) {
	if !d.guesser.GuessesOpen() {
		return Result{}, nil
	}
	// The streamer's own guesses arrive through the seed.
	if strings.EqualFold(user.Username, d.channelName) {
		return Result{}, nil
	}
	banned, err := d.users.IsBanned(ctx, user.Username)
	if err != nil {
		return Result{}, fmt.Errorf("checking ban list: %w", err)
	}
	if banned {
		d.logger.Debug("ignoring banned user", "username", user.Username)
		return Result{}, nil
	}

	res, err := d.guesser.HandleUserGuess(ctx, user, p)
	if err != nil {
		return Result{}, err
	}
	d.logger.Debug("guess handled", "user_id", user.ChannelUserID, "outcome", res.Outcome.String())
	return Result{Action: ActionGuess, Guess: &res}, nil
}

// randomPlonk guesses a random point in the map bounds on the user's
// behalf, preferring points on land.
func (d *Dispatcher) randomPlonk(ctx context.Context, user chatguessr.UserInfo) (Result, error) {
	if !d.guesser.GuessesOpen() {
		return Result{}, nil
	}
	bounds := d.guesser.Bounds()

	var p chatguessr.LatLng
	for range maxPlonkAttempts {
		d.mu.Lock()
		p = geo.RandomInBounds(d.rnd, bounds)
		d.mu.Unlock()

		country, err := d.geocoder.CountryCode(ctx, p)
		if err == nil && country != nil {
			break
		}
	}
	return d.guess(ctx, user, p)
}

// setFlag sets the user's display flag to a country code, or clears it
// with "none".
func (d *Dispatcher) setFlag(ctx context.Context, info chatguessr.UserInfo, arg string) (Result, error) {
	if arg == "" {
		return Result{}, nil
	}
	var flag *string
	if arg != "none" {
		flag = geocode.Fold(arg)
	}

	u, err := d.users.GetOrCreateUser(ctx, info)
	if err != nil {
		return Result{}, fmt.Errorf("loading user: %w", err)
	}
	if err := d.users.SetUserFlag(ctx, u.ID, flag); err != nil {
		return Result{}, fmt.Errorf("setting flag: %w", err)
	}
	return Result{Action: ActionFlag, Flag: flag}, nil
}

func (d *Dispatcher) stats(ctx context.Context, info chatguessr.UserInfo) (Result, error) {
	st, err := d.users.UserStats(ctx, info.ChannelUserID)
	if errors.Is(err, chatguessr.ErrNotFound) {
		return Result{Action: ActionStats}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("reading stats: %w", err)
	}
	return Result{Action: ActionStats, Stats: &st}, nil
}

func (d *Dispatcher) clearStats(ctx context.Context, info chatguessr.UserInfo) (Result, error) {
	u, err := d.users.UserByChannelID(ctx, info.ChannelUserID)
	if errors.Is(err, chatguessr.ErrNotFound) {
		return Result{Action: ActionClearStats}, nil
	}
	if err != nil {
		return Result{}, err
	}
	if err := d.users.ResetUserStats(ctx, u.ID); err != nil {
		return Result{}, fmt.Errorf("clearing stats: %w", err)
	}
	return Result{Action: ActionClearStats}, nil
}

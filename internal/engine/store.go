package engine

import (
	"context"

	"github.com/playperu/chatguessr/internal/chatguessr"
)

// Store is the persistence contract the engine drives. It is the system of
// record for games, rounds, users, guesses and streaks.
type Store interface {
	// InTx runs fn in one transaction joined by every call made with the
	// ctx passed to fn.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateGame(ctx context.Context, seed *chatguessr.Seed) error
	FinishGame(ctx context.Context, gameID string) error

	CreateRound(ctx context.Context, gameID string, index int, loc chatguessr.Location) (string, error)
	ReplaceRound(ctx context.Context, gameID string, index int, loc chatguessr.Location) (string, error)
	CurrentRound(ctx context.Context, gameID string) (chatguessr.Round, error)
	SetRoundCountry(ctx context.Context, roundID string, country *string) error
	LastRoundLocation(ctx context.Context) (*chatguessr.LatLng, error)

	GetOrCreateUser(ctx context.Context, info chatguessr.UserInfo) (chatguessr.User, error)
	SetUserPreviousGuess(ctx context.Context, userID string, p chatguessr.LatLng) error

	UserStreak(ctx context.Context, userID string) (chatguessr.Streak, error)
	AddUserStreak(ctx context.Context, userID, roundID string) error
	ResetUserStreak(ctx context.Context, userID string) (*int, error)

	UserGuess(ctx context.Context, roundID, userID string) (chatguessr.Guess, error)
	CreateGuess(ctx context.Context, roundID, userID string, in chatguessr.GuessInput) (string, error)
	UpdateGuess(ctx context.Context, guessID string, in chatguessr.GuessInput) error
	SetGuessCountry(ctx context.Context, guessID string, country *string) error
	SetGuessStreak(ctx context.Context, guessID string, streak int, lastStreak *int) error
	RoundGuesses(ctx context.Context, roundID string) ([]chatguessr.Guess, error)

	RoundParticipants(ctx context.Context, roundID string) ([]chatguessr.Player, error)
	RoundResults(ctx context.Context, roundID string) ([]chatguessr.RoundResult, error)
	GameResults(ctx context.Context, gameID string) ([]chatguessr.GameResult, error)
}

// Notifier receives session events for observers.
type Notifier interface {
	Publish(event chatguessr.Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(chatguessr.Event) {}

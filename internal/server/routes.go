package server

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/chatguessr/internal/chatguessr"
	"github.com/playperu/chatguessr/internal/engine"
	"github.com/playperu/chatguessr/internal/ingest"
)

// Game is the engine surface exposed over HTTP.
type Game interface {
	Start(ctx context.Context, url string, multi bool) error
	Refresh(ctx context.Context) (engine.RefreshResult, error)
	OpenGuesses() error
	CloseGuesses()
	FinishGame(ctx context.Context) error
	Leave()

	Snapshot() engine.Snapshot
	Locations() []chatguessr.Location
	RoundParticipants(ctx context.Context) ([]chatguessr.Player, error)
	RoundResults(ctx context.Context) ([]chatguessr.RoundResult, error)
	GameResults(ctx context.Context) ([]chatguessr.GameResult, error)

	HandleUserGuess(ctx context.Context, info chatguessr.UserInfo, location chatguessr.LatLng) (engine.GuessResult, error)
}

// Users is the store surface behind the moderation and stats endpoints.
type Users interface {
	BannedUsers(ctx context.Context) ([]string, error)
	AddBannedUser(ctx context.Context, username string) error
	DeleteBannedUser(ctx context.Context, username string) error
	UserByChannelID(ctx context.Context, channelUserID string) (chatguessr.User, error)
	UserStats(ctx context.Context, channelUserID string) (chatguessr.UserStats, error)
	ResetUserStats(ctx context.Context, userID string) error
}

type Chat interface {
	Handle(ctx context.Context, msg ingest.Message) (ingest.Result, error)
}

type Deps struct {
	Logger *slog.Logger
	Game   Game
	Users  Users
	Chat   Chat
	Broker *Broker

	// MultiGuess is the mode used when a start request does not set one.
	MultiGuess bool
	// ControlTokenHash guards every mutating endpoint. See controlAuthMiddleware.
	ControlTokenHash string
}

// AddRoutes registers the API, event streams and docs on r.
func AddRoutes(r chi.Router, d Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("ChatGuessr API", "/openapi.json", "/docs"))

	r.Get("/api/events", handleEvents(d.Broker, d.Game))
	r.Get("/ws/events", handleWSEvents(d.Logger, d.Broker, d.Game))

	// Overlay reads.
	r.Route("/api/game", func(r chi.Router) {
		r.Get("/", handleSnapshot(d.Game))
		r.Get("/locations", handleLocations(d.Game))
		r.Get("/round/participants", handleRoundParticipants(d.Logger, d.Game))
		r.Get("/round/results", handleRoundResults(d.Logger, d.Game))
		r.Get("/results", handleGameResults(d.Logger, d.Game))
	})
	r.Get("/api/users/{userID}/stats", handleUserStats(d.Logger, d.Users))
	r.Get("/api/banned", handleListBanned(d.Logger, d.Users))

	// Control and ingestion.
	r.Group(func(r chi.Router) {
		r.Use(controlAuthMiddleware(d.ControlTokenHash))

		r.Post("/api/game/start", handleStart(d.Logger, d.Game, d.MultiGuess))
		r.Post("/api/game/refresh", handleRefresh(d.Logger, d.Game))
		r.Post("/api/game/guesses/open", handleOpenGuesses(d.Logger, d.Game))
		r.Post("/api/game/guesses/close", handleCloseGuesses(d.Game))
		r.Post("/api/game/finish", handleFinish(d.Logger, d.Game))
		r.Post("/api/game/leave", handleLeave(d.Game))

		r.Post("/api/guesses", handleGuess(d.Logger, d.Game))
		r.Post("/api/chat", handleChat(d.Logger, d.Chat))

		r.Post("/api/banned", handleAddBanned(d.Logger, d.Users))
		r.Delete("/api/banned/{username}", handleDeleteBanned(d.Logger, d.Users))
		r.Delete("/api/users/{userID}/stats", handleClearUserStats(d.Logger, d.Users))
	})
}

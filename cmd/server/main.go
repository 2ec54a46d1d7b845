package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/chatguessr/internal/config"
	"github.com/playperu/chatguessr/internal/database"
	"github.com/playperu/chatguessr/internal/engine"
	"github.com/playperu/chatguessr/internal/geocode"
	"github.com/playperu/chatguessr/internal/handler/health"
	"github.com/playperu/chatguessr/internal/ingest"
	"github.com/playperu/chatguessr/internal/migrations"
	"github.com/playperu/chatguessr/internal/poller"
	"github.com/playperu/chatguessr/internal/relay"
	"github.com/playperu/chatguessr/internal/seed"
	"github.com/playperu/chatguessr/internal/server"
	"github.com/playperu/chatguessr/internal/store"
)

const seedTimeout = 10 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating db dir: %w", err)
		}
	}
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	st := store.New(db)

	// --- Engine ---
	broker := server.NewBroker()
	geocoder := geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderTimeout)

	eng, err := engine.New(ctx, st,
		seed.NewClient(cfg.SeedAPIURL, cfg.SeedSessionCookie, seedTimeout),
		geocoder, broker, logger,
		engine.Options{ChannelName: cfg.ChannelName, BroadcasterAvatar: cfg.BroadcasterAvatar},
	)
	if err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}
	defer eng.Close()

	cmds := ingest.DefaultCommands()
	cmds.RandomPlonk = cfg.RandomPlonkCmd
	chat := ingest.NewDispatcher(eng, st, geocoder, logger, cfg.ChannelName, cmds, nil)

	refresher, err := poller.New(eng, cfg.RefreshSchedule, logger)
	if err != nil {
		return err
	}

	checks := health.NewHandler(logger, map[string]health.Checker{
		"sqlite": dbChecker{db},
	})

	// --- Redis relay (optional) ---
	var rl *relay.Relay
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis", "channel", cfg.RelayChannel)

		rl = relay.New(rdb, cfg.RelayChannel, chat, broker, logger)
		checks.Optional("redis", redisChecker{rdb})
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, func(r chi.Router) {
		r.Mount("/healthz", checks.Routes())
		server.AddRoutes(r, server.Deps{
			Logger:           logger,
			Game:             eng,
			Users:            st,
			Chat:             chat,
			Broker:           broker,
			MultiGuess:       cfg.MultiGuess,
			ControlTokenHash: cfg.ControlTokenHash,
		})
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("starting seed poller", "schedule", cfg.RefreshSchedule)
		return refresher.Run(gctx)
	})

	if rl != nil {
		g.Go(func() error {
			return rl.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }

// redisChecker adapts *redis.Client to health.Checker.
type redisChecker struct{ client *redis.Client }

func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

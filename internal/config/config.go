package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/chatguessr.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	ChannelName       string `env:"CHANNEL_NAME,required"`
	BroadcasterAvatar string `env:"BROADCASTER_AVATAR"`
	MultiGuess        bool   `env:"MULTI_GUESS" envDefault:"false"`
	RandomPlonkCmd    string `env:"RANDOM_PLONK_CMD" envDefault:"!randomplonk"`

	SeedAPIURL        string `env:"SEED_API_URL" envDefault:"https://www.geoguessr.com"`
	SeedSessionCookie string `env:"SEED_SESSION_COOKIE"`
	RefreshSchedule   string `env:"REFRESH_SCHEDULE" envDefault:"@every 5s"`

	GeocoderURL     string        `env:"GEOCODER_URL" envDefault:"https://api.bigdatacloud.net/data/reverse-geocode-client"`
	GeocoderTimeout time.Duration `env:"GEOCODER_TIMEOUT" envDefault:"5s"`

	// RedisURL enables the chat relay when set.
	RedisURL     string `env:"REDIS_URL"`
	RelayChannel string `env:"RELAY_CHANNEL" envDefault:"chatguessr:chat"`

	// ControlTokenHash is a bcrypt hash of the bearer token required by
	// control endpoints. Empty disables the check.
	ControlTokenHash string `env:"CONTROL_TOKEN_HASH"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}

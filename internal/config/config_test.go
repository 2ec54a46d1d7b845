package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHANNEL_NAME", "streamer")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected INFO, got %v", cfg.LogLevel)
	}
	if cfg.GeocoderTimeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.GeocoderTimeout)
	}
	if cfg.RefreshSchedule != "@every 5s" || cfg.RandomPlonkCmd != "!randomplonk" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.RedisURL != "" || cfg.MultiGuess {
		t.Errorf("expected relay and multi-guess off by default, got %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHANNEL_NAME", "streamer")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("MULTI_GUESS", "true")
	t.Setenv("GEOCODER_TIMEOUT", "250ms")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != slog.LevelDebug || !cfg.MultiGuess || cfg.GeocoderTimeout != 250*time.Millisecond {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("unexpected redis url %q", cfg.RedisURL)
	}
}

func TestLoadRequiresChannel(t *testing.T) {
	t.Setenv("CHANNEL_NAME", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without CHANNEL_NAME")
	}
}

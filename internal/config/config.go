// Package config loads server and spectator settings from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr             string        `env:"TANKBOTS_ADDR" envDefault:":8080"`
	TickRate         int           `env:"TANKBOTS_TICK_RATE" envDefault:"10"`
	HandshakeTimeout time.Duration `env:"TANKBOTS_HANDSHAKE_TIMEOUT" envDefault:"5s"`
	MapsDir          string        `env:"TANKBOTS_MAPS_DIR" envDefault:"assets/maps"`
	OutboxSize       int           `env:"TANKBOTS_OUTBOX_SIZE" envDefault:"64"`

	// Simulation selects the gameplay step: "log" or "dummy".
	Simulation string `env:"TANKBOTS_SIMULATION" envDefault:"log"`

	// Spectator-side settings.
	ServerURL string `env:"TANKBOTS_SERVER_URL" envDefault:"ws://localhost:8080/ws"`
	Lobby     string `env:"TANKBOTS_LOBBY" envDefault:"spectated"`
	MapName   string `env:"TANKBOTS_MAP" envDefault:"forest"`
	BotName   string `env:"TANKBOTS_NAME" envDefault:"spectator"`
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.TickRate < 0 {
		return Config{}, fmt.Errorf("tick rate must not be negative, got %d", cfg.TickRate)
	}
	return cfg, nil
}

// TickInterval converts the tick rate to a loop interval. Zero means no
// ticker, which tests use to drive ticks by hand.
func (c Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.TickRate)
}

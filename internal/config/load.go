package config

import (
	"fmt"
	"io"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
)

// Config holds runtime settings read from the environment.
type Config struct {
	SSHHost        string `env:"SSH_HOST" envDefault:"::"`
	SSHPort        string `env:"SSH_PORT" envDefault:"2222"`
	SSHHostKey     string `env:"SSH_HOST_KEY" envDefault:"/app/keys/host_key"`
	SSHDisplayHost string `env:"SSH_DISPLAY_HOST" envDefault:"your-server.com"`
	WebHost        string `env:"WEB_HOST" envDefault:"0.0.0.0"`
	WebPort        string `env:"WEB_PORT" envDefault:"8080"`

	FPS      int    `env:"GAME_FPS" envDefault:"60"`
	Audio    bool   `env:"GAME_AUDIO" envDefault:"false"`
	Seed     int64  `env:"GAME_SEED" envDefault:"0"` // 0 picks a time-based seed
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that env parsing alone cannot.
func (c Config) Validate() error {
	if c.FPS <= 0 || c.FPS > 240 {
		return fmt.Errorf("GAME_FPS must be in 1..240, got %d", c.FPS)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// FrameTime returns the target duration of one rendered frame.
func (c Config) FrameTime() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// RandSeed returns the configured random seed, or one derived from now.
func (c Config) RandSeed(now time.Time) int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return now.UnixNano()
}

// Logger returns a logger writing to w at the configured level.
func (c Config) Logger(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           c.Level(),
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
}

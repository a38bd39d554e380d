package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Config holds server configuration loaded from environment variables.
type Config struct {
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=5000"`
	Debug           bool          `env:"DEBUG,default=false"`
	LogLevel        string        `env:"LOG_LEVEL"`
	AllowedOrigins  string        `env:"ALLOWED_ORIGINS,default=http://localhost:5173"`
	DBPath          string        `env:"DB_PATH,default=:memory:"`
	StrictRooms     bool          `env:"STRICT_ROOMS,default=false"`
	SendBuffer      int           `env:"SEND_BUFFER,default=256"`
	MaxMessageSize  int64         `env:"MAX_MESSAGE_SIZE,default=4096"`
	WriteWait       time.Duration `env:"WRITE_WAIT,default=10s"`
	PongWait        time.Duration `env:"PONG_WAIT,default=60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// Load reads an optional .env file, then configuration from environment
// variables with defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.PongWait <= 0 || c.WriteWait <= 0 {
		return fmt.Errorf("PONG_WAIT and WRITE_WAIT must be positive")
	}
	if c.SendBuffer < 1 {
		return fmt.Errorf("SEND_BUFFER must be positive, got %d", c.SendBuffer)
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	parts := lo.Map(strings.Split(c.AllowedOrigins, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Compact(parts)
}

// Level returns LOG_LEVEL when set, otherwise debug or info depending on DEBUG.
func (c Config) Level() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}
	if c.Debug {
		return "debug"
	}
	return "info"
}

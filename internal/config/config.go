// Package config parses process settings from the environment and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/xtding233/plinko-backend/internal/plinko"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config holds server command configuration.
type Config struct {
	Env             string        `env:"PLINKO_ENV" envDefault:"local"`
	HTTPAddr        string        `env:"PLINKO_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr        string        `env:"PLINKO_GRPC_ADDR" envDefault:":9090"`
	ConfigDir       string        `env:"PLINKO_CONFIG_DIR" envDefault:"configs"`
	Profile         string        `env:"PLINKO_PROFILE" envDefault:"default"`
	Tick            time.Duration `env:"PLINKO_TICK" envDefault:"16ms"`
	WatchInterval   time.Duration `env:"PLINKO_WATCH_INTERVAL" envDefault:"2s"`
	StartingBalance string        `env:"PLINKO_STARTING_BALANCE" envDefault:"1000"`
	HTTPTimeout     time.Duration `env:"PLINKO_HTTP_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"PLINKO_HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	if fs == nil {
		return Config{}, errors.New("flag parser is required")
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Env, "env", cfg.Env, "Logging environment: local, dev or prod")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC listen address")
	fs.StringVar(&cfg.ConfigDir, "config-dir", cfg.ConfigDir, "Directory holding profiles/*.yaml")
	fs.StringVar(&cfg.Profile, "profile", cfg.Profile, "Profile overlay merged over default.yaml")
	fs.DurationVar(&cfg.Tick, "tick", cfg.Tick, "Simulation tick interval")
	fs.DurationVar(&cfg.WatchInterval, "watch-interval", cfg.WatchInterval, "Config poll interval, 0 disables hot reload")
	fs.StringVar(&cfg.StartingBalance, "balance", cfg.StartingBalance, "Starting wallet balance")
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	if c.Tick <= 0 {
		return errors.New("tick must be > 0")
	}
	if c.WatchInterval < 0 {
		return errors.New("watch interval must be >= 0")
	}
	if _, err := c.Balance(); err != nil {
		return err
	}
	return nil
}

// Balance parses StartingBalance.
func (c Config) Balance() (plinko.Amount, error) {
	a, err := plinko.ParseAmount(c.StartingBalance)
	if err != nil {
		return 0, fmt.Errorf("starting balance: %w", err)
	}
	if a < 0 {
		return 0, fmt.Errorf("starting balance: %w: negative", plinko.ErrInvalidAmount)
	}
	return a, nil
}

package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/urfave/cli/v2"
)

// config holds environment defaults; flags override them.
type config struct {
	Root     string        `env:"ASSETLOADER_ROOT"      envDefault:"."`
	LogLevel string        `env:"ASSETLOADER_LOG_LEVEL" envDefault:"info"`
	LogJSON  bool          `env:"ASSETLOADER_LOG_JSON"`
	Workers  int           `env:"ASSETLOADER_WORKERS"   envDefault:"4"`
	Watch    bool          `env:"ASSETLOADER_WATCH"`
	Timeout  time.Duration `env:"ASSETLOADER_TIMEOUT"   envDefault:"30s"`
}

func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func globalFlags(cfg config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "root",
			Usage: "asset root directory",
			Value: cfg.Root,
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
			Value: cfg.LogLevel,
		},
		&cli.BoolFlag{
			Name:  "log-json",
			Usage: "log as JSON",
			Value: cfg.LogJSON,
		},
	}
}

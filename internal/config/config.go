package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DBPath      string `env:"MINIFEED_DB_PATH"      envDefault:"minifeed.sqlite"`
	ShareURL    string `env:"MINIFEED_SHARE_URL"`
	RefreshSpec string `env:"MINIFEED_REFRESH_SPEC" envDefault:"@every 1m"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

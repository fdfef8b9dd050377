// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

type Configuration struct {
	Addr               string `env:"DINESYNC_ADDR" envDefault:":8080"`
	DBPath             string `env:"DINESYNC_DB" envDefault:"dinesync.db"`
	YelpAPIKey         string `env:"YELP_API_KEY"`
	YelpTimeoutSeconds int    `env:"YELP_TIMEOUT_SECONDS" envDefault:"30"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
	Commit             string `env:"DINESYNC_COMMIT"`
	BuildTime          string `env:"DINESYNC_BUILD_TIME"`
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win.
func Load() (*Configuration, error) {
	_ = godotenv.Load()

	cfg := &Configuration{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

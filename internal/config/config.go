// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the auth service.
type Config struct {
	Addr         string        `envconfig:"BOOKNET_ADDR" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"BOOKNET_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"BOOKNET_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `envconfig:"BOOKNET_IDLE_TIMEOUT" default:"60s"`

	PGDSN string `envconfig:"BOOKNET_PG_DSN"`

	AuthSecret string        `envconfig:"BOOKNET_AUTH_SECRET" required:"true"`
	AuthIssuer string        `envconfig:"BOOKNET_AUTH_ISSUER" default:"booknet-auth"`
	TokenTTL   time.Duration `envconfig:"BOOKNET_TOKEN_TTL" default:"30m"`

	RateBurst     int   `envconfig:"BOOKNET_RATE_BURST" default:"20"`
	RatePerSecond int   `envconfig:"BOOKNET_RATE_PER_SECOND" default:"10"`
	MaxBodyBytes  int64 `envconfig:"BOOKNET_MAX_BODY_BYTES" default:"65536"`

	// Cap on roles a single registration may request; validated at the
	// HTTP boundary, not in the core.
	MaxRolesPerRegistration int `envconfig:"BOOKNET_MAX_ROLES_PER_REGISTRATION" default:"2"`
}

// Load reads configuration from environment variables. A missing or blank
// signing secret is fatal: the service must not start without one.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.AuthSecret == "" {
		return nil, errors.New("auth secret must be provided")
	}
	return &cfg, nil
}

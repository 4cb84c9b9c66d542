package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr             string        `envconfig:"LISTEN_ADDR" default:"127.0.0.1"`
	Port                   int           `envconfig:"PORT" default:"8080"`
	LogLevel               string        `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL            string        `envconfig:"DATABASE_URL" required:"true"`
	Version                string        `envconfig:"VERSION" default:"dev"`
	BcryptCost             int           `envconfig:"BCRYPT_COST" default:"12"`
	ProfileLookupTimeout   time.Duration `envconfig:"PROFILE_LOOKUP_TIMEOUT" default:"15s"`
	NavigationManifestPath string        `envconfig:"NAVIGATION_MANIFEST_PATH" default:""`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Addr is the host:port the HTTP server binds to. The server holds a
// single client session, so the default host is loopback.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.ListenAddr, strconv.Itoa(c.Port))
}

func (c *Config) validate() error {
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.ProfileLookupTimeout <= 0 {
		return fmt.Errorf("PROFILE_LOOKUP_TIMEOUT must be positive, got %s", c.ProfileLookupTimeout)
	}
	return nil
}

// Package config loads runtime configuration: database credentials from the
// environment, serve options from an optional TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// Database holds Turso database configuration.
type Database struct {
	URL       string `envconfig:"TURSO_DATABASE_URL" required:"true"`
	AuthToken string `envconfig:"TURSO_AUTH_TOKEN"`
}

// LoadDatabase loads database configuration from environment variables.
func LoadDatabase() (*Database, error) {
	var cfg Database
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Server holds the HTTP listener options.
type Server struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	RequestTimeout string `toml:"request_timeout"`
}

// Metrics toggles the Prometheus /metrics endpoint.
type Metrics struct {
	Enabled bool `toml:"enabled"`
}

// Serve is the full serve-command configuration.
type Serve struct {
	Server  Server  `toml:"server"`
	Metrics Metrics `toml:"metrics"`
}

// DefaultServe returns the configuration used when no file is present.
func DefaultServe() *Serve {
	return &Serve{
		Server: Server{
			Host:           "127.0.0.1",
			Port:           8080,
			RequestTimeout: "30s",
		},
		Metrics: Metrics{Enabled: true},
	}
}

// LoadServe reads the TOML config at path, falling back to
// ~/.learnlog/config.toml and then to defaults when no file exists.
func LoadServe(path string) (*Serve, error) {
	cfg := DefaultServe()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".learnlog", "config.toml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Addr is the listen address in host:port form.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Timeout parses RequestTimeout, falling back to 30 seconds on bad input.
func (s Server) Timeout() time.Duration {
	d, err := time.ParseDuration(s.RequestTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

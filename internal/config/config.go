// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port         string
	FrontendURL  string
	DBPath       string
	WorkspaceDir string
	Council      CouncilConfig
	Registry     RegistryConfig
}

// CouncilConfig controls the consultation flow.
type CouncilConfig struct {
	InteractiveEnabled       bool
	DebateCycleLimit         int
	ExtendedDebateCycleLimit int
}

// RegistryConfig controls Docker registration and health probing.
type RegistryConfig struct {
	RegistrationEnabled bool
	ProbeInterval       time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("HTTP_PORT", "8080"),
		FrontendURL:  getEnv("FRONTEND_URL", ""),
		DBPath:       getEnv("DB_PATH", "./data/council.db"),
		WorkspaceDir: getEnv("WORKSPACE_DIR", "./data/workspace"),
		Council: CouncilConfig{
			InteractiveEnabled:       getEnvBool("COUNCIL_INTERACTIVE_ENABLED", true),
			DebateCycleLimit:         getEnvInt("COUNCIL_DEBATE_CYCLE_LIMIT", 10),
			ExtendedDebateCycleLimit: getEnvInt("COUNCIL_EXTENDED_DEBATE_CYCLE_LIMIT", 20),
		},
		Registry: RegistryConfig{
			RegistrationEnabled: getEnvBool("DOCKER_REGISTRATION_ENABLED", false),
			ProbeInterval:       getEnvDuration("HEALTH_PROBE_INTERVAL", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.WorkspaceDir == "" {
		return fmt.Errorf("WORKSPACE_DIR cannot be empty")
	}
	if c.Council.DebateCycleLimit <= 0 {
		return fmt.Errorf("COUNCIL_DEBATE_CYCLE_LIMIT must be > 0")
	}
	if c.Council.ExtendedDebateCycleLimit < c.Council.DebateCycleLimit {
		return fmt.Errorf("COUNCIL_EXTENDED_DEBATE_CYCLE_LIMIT must be >= COUNCIL_DEBATE_CYCLE_LIMIT")
	}
	if c.Registry.ProbeInterval <= 0 {
		return fmt.Errorf("HEALTH_PROBE_INTERVAL must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

// IsContainer returns true if running inside a Docker container.
func IsContainer() bool {
	if os.Getenv("CONTAINER") == "true" {
		return true
	}
	// Check for .dockerenv file
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

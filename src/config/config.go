package config

import (
	"fmt"
	"os"
	"time"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig loads configuration from a YAML file, then applies environment
// overrides (a .env file is honored when present, e.g. IB_HOST / IB_PORT).
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	// 3. Environment overrides. Missing .env is not an error.
	_ = godotenv.Load()
	if err := envconfig.Process("", &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Gateway configuration
	if c.Gateway.Host == "" {
		return fmt.Errorf("gateway host cannot be empty")
	}
	if c.Gateway.Port <= 0 || c.Gateway.Port > 65535 {
		return fmt.Errorf("invalid gateway port number: %d", c.Gateway.Port)
	}

	// Market configuration
	if c.Market.FutureSymbol == "" || c.Market.IndexSymbol == "" {
		return fmt.Errorf("future and index symbols must be configured")
	}
	if c.Market.TradingClass == "" {
		return fmt.Errorf("option trading class cannot be empty")
	}
	if len(c.Market.OptionExchanges) == 0 {
		return fmt.Errorf("at least one option exchange must be configured")
	}

	// Engine configuration
	if c.Engine.UpdateIntervalSeconds <= 0 {
		return fmt.Errorf("update interval must be greater than 0")
	}
	if c.Engine.ReconnectBackoffSec <= 0 {
		return fmt.Errorf("reconnect backoff must be greater than 0")
	}
	if c.Engine.ReselectPoints <= 0 {
		return fmt.Errorf("reselect points must be greater than 0")
	}
	if c.Engine.RingCapacity <= 0 {
		return fmt.Errorf("ring capacity must be greater than 0")
	}

	// Schedule configuration
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid schedule timezone '%s': %w", c.Schedule.Timezone, err)
	}
	for _, t := range []string{c.Schedule.MorningSnap, c.Schedule.AfternoonSnap, c.Schedule.LateSnap} {
		if _, _, err := ParseClock(t); err != nil {
			return err
		}
	}

	// Storage configuration
	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.TickCSVPath == "" || c.Storage.SnapshotCSVPath == "" {
		return fmt.Errorf("csv sink paths cannot be empty")
	}

	// Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	return nil
}

// -----------------------------------------------------------------------------

// ParseClock parses a "HH:MM" schedule entry.
func ParseClock(s string) (hour, minute int, err error) {
	if _, err := time.Parse("15:04", s); err != nil {
		return 0, 0, fmt.Errorf("invalid schedule time '%s': %w", s, err)
	}
	fmt.Sscanf(s, "%d:%d", &hour, &minute)
	return hour, minute, nil
}

// -----------------------------------------------------------------------------

// Location resolves the configured schedule timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

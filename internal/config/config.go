package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ServerConfig configures the fluxd binary.
type ServerConfig struct {
	Name        string `toml:"name"`
	Addr        string `toml:"addr"`
	MaxNetworks int    `toml:"max_networks"`
	QueueDepth  int    `toml:"queue_depth"`
	LogLevel    string `toml:"log_level"`

	// SuperAdmins lists player ids allowed to activate the global
	// super-admin override. Granted out-of-band, never via the protocol.
	SuperAdmins []string `toml:"super_admins"`
}

// LoadServerConfig reads and validates a TOML config, applying defaults for
// absent fields. A missing path yields the defaults.
func LoadServerConfig(path string) (ServerConfig, error) {
	var cfg ServerConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return ServerConfig{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}
	if cfg.Name == "" {
		cfg.Name = "fluxd"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9870"
	}
	if cfg.MaxNetworks == 0 {
		cfg.MaxNetworks = 1024
	}
	if cfg.QueueDepth == 0 {
		cfg.QueueDepth = 1024
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if err := ValidateServerConfig(cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// ValidateServerConfig rejects configs that cannot serve.
func ValidateServerConfig(cfg ServerConfig) error {
	if cfg.MaxNetworks < 0 {
		return fmt.Errorf("config: max_networks must not be negative")
	}
	if cfg.QueueDepth < 0 {
		return fmt.Errorf("config: queue_depth must not be negative")
	}
	switch cfg.LogLevel {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("config: unknown log_level %q", cfg.LogLevel)
	}
	return nil
}

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Host      HostConfig      `mapstructure:"host"`
	Execution ExecutionConfig `mapstructure:"execution"`
}

// ServerConfig holds transport configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
	TCPPort   int    `mapstructure:"tcp_port"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// HostConfig holds embedded editor host configuration
type HostConfig struct {
	TickIntervalMS int    `mapstructure:"tick_interval_ms"`
	SceneManifest  string `mapstructure:"scene_manifest"`
}

// ExecutionConfig holds script execution configuration
type ExecutionConfig struct {
	SettleTicks int `mapstructure:"settle_ticks"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	viper.SetDefault("server.transport", "stdio")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.tcp_port", 9080)
	viper.SetDefault("logging.mode", "production")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("host.tick_interval_ms", 16)
	viper.SetDefault("host.scene_manifest", "")
	viper.SetDefault("execution.settle_ticks", 2)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	switch c.Server.Transport {
	case "stdio", "http", "tcp":
	default:
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio', 'http' or 'tcp'", c.Server.Transport)
	}

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be in (0, 65535], got: %d", c.Server.HTTPPort)
	}

	// Port zero is allowed on the TCP channel so an ephemeral port can be bound.
	if c.Server.TCPPort < 0 || c.Server.TCPPort > 65535 {
		return fmt.Errorf("server.tcp_port must be in [0, 65535], got: %d", c.Server.TCPPort)
	}

	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	if c.Host.TickIntervalMS <= 0 {
		return fmt.Errorf("host.tick_interval_ms must be positive, got: %d", c.Host.TickIntervalMS)
	}

	if c.Execution.SettleTicks <= 0 {
		return fmt.Errorf("execution.settle_ticks must be positive, got: %d", c.Execution.SettleTicks)
	}

	return nil
}

// TickInterval returns the host frame interval as a duration
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Host.TickIntervalMS) * time.Millisecond
}

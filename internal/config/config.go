package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds the logging-related configuration.
type LoggingConfig struct {
	Level string `mapstructure:"log_level"`
}

// Config is the top-level configuration struct. Keys are flat so the
// environment names line up with the documented contract: TLD,
// DOCKER_SOCKET, DEBOUNCE_MS, LOG_LEVEL.
type Config struct {
	TLD          string        `mapstructure:"tld"`
	DockerSocket string        `mapstructure:"docker_socket"`
	DebounceMs   int           `mapstructure:"debounce_ms"`
	Logging      LoggingConfig `mapstructure:",squash"`
}

// Debounce is the quiet period the scheduler waits for before flushing.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.DockerSocket == "" {
		return fmt.Errorf("docker_socket must not be empty")
	}
	if c.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must not be negative: %d", c.DebounceMs)
	}
	if c.TLD != "" && !strings.HasPrefix(c.TLD, ".") {
		return fmt.Errorf("tld must include its leading separator, got %q", c.TLD)
	}
	return nil
}

// InitConfig performs the initial configuration: setting defaults, specifying the config file, and reading it.
func InitConfig() error {
	viper.SetDefault("tld", ".docker")
	viper.SetDefault("docker_socket", "unix:///var/run/docker.sock")
	viper.SetDefault("debounce_ms", 100)
	viper.SetDefault("log_level", "INFO")

	// Specify the config file details.
	viper.SetConfigName("config") // Looks for config.yaml
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".") // current directory

	// Read the config file if available.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// If the file is not found, just continue with defaults and env vars.
	}

	// Enable automatic environment variable binding.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return nil
}

// Load unmarshals the configuration into the Config struct.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

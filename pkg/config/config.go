// Package config loads cryptobox's process-level configuration: logging,
// the default DataUsagePreferences applied to freshly created containers,
// and argon2 KDF cost parameters (loaded but not used by the payload
// store). Dynamic, per-container
// state (which elements exist, their content) lives in the container
// itself, not here — this package only governs the CLI/daemon process.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/cryptobox/cryptobox/internal/logger"
)

// Config is cryptobox's process configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (CRYPTOBOX_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// DataUsage controls the DataUsagePreferences new containers are
	// created with (spec.md §4.6): the write mode and cluster-size level.
	DataUsage DataUsageConfig `mapstructure:"data_usage" yaml:"data_usage"`

	// KDF holds argon2 cost parameters. They are loaded and validated but
	// not passed to the payload store, which derives keys with its own
	// fixed parameters (equal to the defaults below).
	KDF KDFConfig `mapstructure:"kdf" yaml:"kdf"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output: DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level" yaml:"level"`
	// Format is the log output format: text or json.
	Format string `mapstructure:"format" yaml:"format"`
}

// DataUsageConfig mirrors namespace.Preferences in a config-file-friendly
// shape (a string level name rather than the numeric enum).
type DataUsageConfig struct {
	// TransactionalWrite selects the default write mode for new containers.
	TransactionalWrite bool `mapstructure:"transactional_write" yaml:"transactional_write"`
	// ClusterSize names a rung of the cluster-size ladder: min, 64k, 256k, 1m, max.
	ClusterSize string `mapstructure:"cluster_size" yaml:"cluster_size"`
}

// KDFConfig controls the argon2id cost parameters used to derive the
// payload encryption key from the container password.
type KDFConfig struct {
	TimeCost    uint32 `mapstructure:"time_cost" yaml:"time_cost"`
	MemoryCostKiB uint32 `mapstructure:"memory_cost_kib" yaml:"memory_cost_kib"`
	Threads     uint8  `mapstructure:"threads" yaml:"threads"`
}

// ApplyDefaults fills any zero-valued fields with cryptobox's defaults,
// the same split-from-Load two-phase pattern the rest of the corpus uses.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	if cfg.DataUsage.ClusterSize == "" {
		cfg.DataUsage.ClusterSize = "min"
	}
	// TransactionalWrite defaults to false (zero value): the non-transactional
	// path is the cheaper default and matches the original's conservative choice.

	if cfg.KDF.TimeCost == 0 {
		cfg.KDF.TimeCost = 1
	}
	if cfg.KDF.MemoryCostKiB == 0 {
		cfg.KDF.MemoryCostKiB = 64 * 1024
	}
	if cfg.KDF.Threads == 0 {
		cfg.KDF.Threads = 4
	}
}

// Validate checks cfg for internally-inconsistent or out-of-range values
// after defaults have been applied.
func Validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("logging.level must be one of DEBUG, INFO, WARN, ERROR, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}
	if _, err := ClusterLevelFromName(cfg.DataUsage.ClusterSize); err != nil {
		return fmt.Errorf("data_usage.cluster_size: %w", err)
	}
	if cfg.KDF.TimeCost == 0 {
		return fmt.Errorf("kdf.time_cost must be positive")
	}
	if cfg.KDF.Threads == 0 {
		return fmt.Errorf("kdf.threads must be positive")
	}
	return nil
}

// Load reads configuration from configPath (or the default location if
// empty), environment variables, and defaults, in that order of
// decreasing precedence, and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if found {
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("CRYPTOBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cryptobox")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "cryptobox")
}

// InitLogging wires a loaded Config's Logging section into the package
// logger, matching the teacher's logger.Init(cfg) call from its CLI root
// command.
func InitLogging(cfg *Config) {
	logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
}

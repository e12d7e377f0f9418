// Package config loads runtime configuration with layered precedence:
// baked-in defaults, then the optional config file, then LOSSGUARD_*
// environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lossguard/lossguard/internal/analyzer"
	"github.com/lossguard/lossguard/internal/protect"
	"github.com/lossguard/lossguard/internal/size"
)

const (
	// DirName is the per-user state directory under the home directory.
	DirName = ".lossguard"

	// ConfigFileName is the optional config file inside the state directory.
	ConfigFileName = "config.yaml"

	// GuardFileName is the protected-path document inside the state directory.
	GuardFileName = "protected.yaml"

	// EnvPrefix namespaces environment overrides, e.g. LOSSGUARD_LOG_LEVEL.
	EnvPrefix = "LOSSGUARD"
)

// Config is the effective runtime configuration after all layers merge.
type Config struct {
	// SizeThresholdBytes is the size at which recursive deletions and
	// truncations of unprotected paths become threats.
	SizeThresholdBytes int64 `mapstructure:"size_threshold_bytes"`

	// SizeProbeTimeout bounds a single directory measurement.
	SizeProbeTimeout time.Duration `mapstructure:"size_probe_timeout"`

	// HomeSubdirs are the home subdirectories registered as protected in
	// addition to the home directory itself.
	HomeSubdirs []string `mapstructure:"home_subdirs"`

	// ProtectedPaths are extra paths registered as protected.
	ProtectedPaths []string `mapstructure:"protected_paths"`

	LogLevel string `mapstructure:"log_level"`
	NoColor  bool   `mapstructure:"no_color"`
}

// LoadOptions selects the config file and carries flag-level overrides,
// keyed by config name (e.g. "log_level").
type LoadOptions struct {
	ConfigFile    string
	FlagOverrides map[string]any
}

// DefaultConfig returns the configuration used when no file, environment,
// or flag says otherwise.
func DefaultConfig() Config {
	return Config{
		SizeThresholdBytes: analyzer.DefaultSizeThreshold,
		SizeProbeTimeout:   size.DefaultTimeout,
		HomeSubdirs:        append([]string(nil), protect.DefaultHomeSubdirs...),
		ProtectedPaths:     []string{},
		LogLevel:           "info",
	}
}

// Validate reports every problem with cfg at once.
func Validate(cfg Config) error {
	var problems []string
	if cfg.SizeThresholdBytes <= 0 {
		problems = append(problems, "size_threshold_bytes must be positive")
	}
	if cfg.SizeProbeTimeout <= 0 {
		problems = append(problems, "size_probe_timeout must be positive")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", cfg.LogLevel))
	}
	for _, p := range cfg.ProtectedPaths {
		if strings.TrimSpace(p) == "" {
			problems = append(problems, "protected_paths entries must be non-empty")
			break
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load merges all configuration layers and validates the result. A missing
// config file at the default location is not an error; an explicitly named
// file must exist.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, val := range defaults() {
		v.SetDefault(key, val)
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else if dir, err := Dir(); err == nil {
		v.SetConfigName(strings.TrimSuffix(ConfigFileName, ".yaml"))
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range opts.FlagOverrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Dir returns the per-user state directory, creating it on first use. It
// stays private to the user like the rest of the dotfile conventions here.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	dir := filepath.Join(home, DirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create state directory: %w", err)
	}
	return dir, nil
}

// GuardFilePath returns the default protected-path document location.
func GuardFilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, GuardFileName), nil
}

func defaults() map[string]any {
	return map[string]any{
		"size_threshold_bytes": int64(analyzer.DefaultSizeThreshold),
		"size_probe_timeout":   size.DefaultTimeout,
		"home_subdirs":         protect.DefaultHomeSubdirs,
		"protected_paths":      []string{},
		"log_level":            "info",
		"no_color":             false,
	}
}

// Package config provides configuration types and defaults for rigkit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/skeleton"
	"github.com/ncomes/MechanicalArt-sub001/internal/flags"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
)

// Config holds all configuration options for rigkit.
type Config struct {
	Paths      PathsConfig      `mapstructure:"paths"`
	Validation ValidationConfig `mapstructure:"validation"`
	Build      BuildConfig      `mapstructure:"build"`
	History    HistoryConfig    `mapstructure:"history"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Watch      WatchConfig      `mapstructure:"watch"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Flags      map[string]bool  `mapstructure:"flags"`
}

// PathsConfig holds the default inputs when flags do not name them.
type PathsConfig struct {
	Skeleton string `mapstructure:"skeleton"` // .skl file
	Rig      string `mapstructure:"rig"`      // .rig file
}

// ValidationConfig tunes skeleton validation.
type ValidationConfig struct {
	// TypoDenyList holds substrings that flag a joint name as a typo.
	TypoDenyList []string `mapstructure:"typo_deny_list"`

	// MirrorTolerance is the largest distance between a joint and the
	// mirror of its counterpart before it is reported.
	MirrorTolerance float64 `mapstructure:"mirror_tolerance"`

	// MirrorPrecision is the number of decimals positions are rounded to
	// before comparing.
	MirrorPrecision int `mapstructure:"mirror_precision"`
}

// SkeletonOptions converts the validation settings into parse options.
func (v ValidationConfig) SkeletonOptions(check bool) skeleton.Options {
	opts := skeleton.DefaultOptions()
	opts.CheckForErrors = check
	if v.TypoDenyList != nil {
		opts.TypoDenyList = slices.Clone(v.TypoDenyList)
	}
	if v.MirrorTolerance > 0 {
		opts.MirrorTolerance = v.MirrorTolerance
	}
	if v.MirrorPrecision > 0 {
		opts.MirrorPrecision = v.MirrorPrecision
	}
	return opts
}

// BuildConfig holds rig build settings.
type BuildConfig struct {
	Name       string `mapstructure:"name"`        // rig name, default "rig"
	Namespace  string `mapstructure:"namespace"`   // namespace the skeleton is imported under
	AutoDerive bool   `mapstructure:"auto_derive"` // build twist components after the document
	FinishRig  bool   `mapstructure:"finish_rig"`  // color handles and fill layers after a build
}

// HistoryConfig controls the build history database.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// DBPath overrides the database location.
	// Default: .rigkit/history.db
	DBPath string `mapstructure:"db_path"`

	// Keep is the number of records kept per rig when pruning.
	Keep int `mapstructure:"keep"`
}

// CacheConfig controls the parsed skeleton cache.
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// WatchConfig controls rig:watch.
type WatchConfig struct {
	// Debounce is how long to wait after the last change before rebuilding.
	Debounce time.Duration `mapstructure:"debounce"`
}

// TracingConfig holds tracing configuration for builds.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: .rigkit/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Validate checks every section and returns the first error.
func (c Config) Validate() error {
	if err := ValidateValidation(c.Validation); err != nil {
		return err
	}
	if err := ValidateHistory(c.History); err != nil {
		return err
	}
	if err := ValidateCache(c.Cache); err != nil {
		return err
	}
	if err := ValidateWatch(c.Watch); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateValidation checks the skeleton validation settings.
func ValidateValidation(v ValidationConfig) error {
	if v.MirrorTolerance < 0 {
		return fmt.Errorf("validation.mirror_tolerance must not be negative, got %v", v.MirrorTolerance)
	}
	if v.MirrorPrecision < 0 || v.MirrorPrecision > 10 {
		return fmt.Errorf("validation.mirror_precision must be between 0 and 10, got %d", v.MirrorPrecision)
	}
	for i, s := range v.TypoDenyList {
		if s == "" {
			return fmt.Errorf("validation.typo_deny_list[%d] must not be empty", i)
		}
	}
	return nil
}

// ValidateHistory checks history configuration.
func ValidateHistory(h HistoryConfig) error {
	if h.Keep < 0 {
		return fmt.Errorf("history.keep must not be negative, got %d", h.Keep)
	}
	return nil
}

// ValidateCache checks cache configuration.
func ValidateCache(c CacheConfig) error {
	if c.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.TTL)
	}
	if c.CleanupInterval < 0 {
		return fmt.Errorf("cache.cleanup_interval must not be negative, got %s", c.CleanupInterval)
	}
	return nil
}

// ValidateWatch checks watch configuration.
func ValidateWatch(w WatchConfig) error {
	if w.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", w.Debounce)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Path requirements only matter when tracing is on.
	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	opts := skeleton.DefaultOptions()
	return Config{
		Validation: ValidationConfig{
			TypoDenyList:    opts.TypoDenyList,
			MirrorTolerance: opts.MirrorTolerance,
			MirrorPrecision: opts.MirrorPrecision,
		},
		Build: BuildConfig{
			Name:       "rig",
			AutoDerive: true,
			FinishRig:  true,
		},
		History: HistoryConfig{
			Enabled: true,
			Keep:    50,
		},
		Cache: CacheConfig{
			TTL:             10 * time.Minute,
			CleanupInterval: 30 * time.Minute,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from the project dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Flags: flags.Defaults(),
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# rigkit configuration

# Default inputs when --skeleton / --rig are not given
# paths:
#   skeleton: characters/hero.skl
#   rig: characters/hero.rig

# Skeleton validation (rigkit skeleton:validate, and every build)
validation:
  # Joint names containing any of these are reported as typos
  # typo_deny_list: ["pasted__", "__", "copy", "Copy", " ", "|"]
  mirror_tolerance: 2     # Largest left/right position mismatch
  mirror_precision: 3     # Decimals positions are rounded to before comparing

build:
  name: rig               # Rig group name
  # namespace: hero       # Namespace the skeleton is imported under
  auto_derive: true       # Build twist components for every twist set
  finish_rig: true        # Color handles and fill display layers

# Build history (rigkit rig:history)
history:
  enabled: true
  # db_path: .rigkit/history.db
  keep: 50                # Records kept per rig when history-prune is on

# Parsed skeleton cache
cache:
  ttl: 10m
  cleanup_interval: 30m

# rigkit rig:watch
watch:
  debounce: 200ms

# Build tracing
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: .rigkit/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Feature flags
flags:
  skeleton-cache: true
  strict-build: false
  history-prune: true
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

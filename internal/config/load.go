package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// SetDefaults registers Defaults with v so environment variables can
// override keys missing from the config file.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("validation.typo_deny_list", d.Validation.TypoDenyList)
	v.SetDefault("validation.mirror_tolerance", d.Validation.MirrorTolerance)
	v.SetDefault("validation.mirror_precision", d.Validation.MirrorPrecision)
	v.SetDefault("build.name", d.Build.Name)
	v.SetDefault("build.auto_derive", d.Build.AutoDerive)
	v.SetDefault("build.finish_rig", d.Build.FinishRig)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.keep", d.History.Keep)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
}

// Load decodes v over Defaults and validates the result.
func Load(v *viper.Viper) (Config, error) {
	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a single config file.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Defaults(), fmt.Errorf("reading config: %w", err)
	}
	return Load(v)
}

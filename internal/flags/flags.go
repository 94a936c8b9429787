// Package flags holds the rigkit feature flags read from the config file.
// Flags are read-only after initialization and unknown flags are disabled.
package flags

import (
	"maps"

	"github.com/ncomes/MechanicalArt-sub001/internal/log"
)

// Flag name constants for type-safe flag access.
const (
	// FlagSkeletonCache keeps parsed skeleton files in memory between builds.
	// When disabled every build rereads the file.
	FlagSkeletonCache = "skeleton-cache"

	// FlagStrictBuild makes a build with failed fragments exit non-zero.
	FlagStrictBuild = "strict-build"

	// FlagHistoryPrune trims build history to history.keep records per rig
	// after every recorded build.
	FlagHistoryPrune = "history-prune"
)

// Defaults returns the flag values used when the config sets none.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagSkeletonCache: true,
		FlagStrictBuild:   false,
		FlagHistoryPrune:  true,
	}
}

// Registry holds feature flag state loaded from configuration.
// Flags are read-only after initialization.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from Defaults overlaid with the configured values.
func New(configured map[string]bool) *Registry {
	flags := Defaults()
	maps.Copy(flags, configured)
	r := &Registry{flags: flags}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(flags), "flags", r.All())
	return r
}

// Enabled returns true if the named flag is enabled.
// Returns false for unknown flags (safe default).
// Returns false when called on nil registry (nil-safe).
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// All returns a copy of all flags (for debugging/logging).
// Returns an empty map if the registry is nil.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}

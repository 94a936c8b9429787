package rig

import (
	"fmt"
	"sort"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/skeleton"
)

// BuildFunc constructs a component's scene objects. It runs after the
// component is registered on the rig; returning an error removes it again.
type BuildFunc func(b *Builder, args Args) error

// DeriveFunc creates auto-derived components from a finished rig.
type DeriveFunc func(r *Rig, h *skeleton.Hierarchy) error

// Definition describes one component type.
type Definition struct {
	Type    string
	Version int
	// SingleInstance types exist at most once per rig regardless of side and region.
	SingleInstance bool
	// Nested types are serialized under the handle they switch, not top level.
	Nested bool
	// AutoDerived types are rebuilt by Derive after every build and never serialized.
	AutoDerived bool
	Description string
	Build       BuildFunc
	Derive      DeriveFunc
}

// Catalog is read-only access to component definitions.
type Catalog interface {
	Lookup(typ string) (Definition, bool)
	Types() []string
}

// Compile-time check that Registry implements Catalog.
var _ Catalog = (*Registry)(nil)

// Registry maps type tags to definitions.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition. Type tags are unique.
func (r *Registry) Register(def Definition) error {
	if def.Type == "" || def.Build == nil || (def.AutoDerived && def.Derive == nil) {
		return fmt.Errorf("%w: %q", ErrInvalidDefinition, def.Type)
	}
	if _, exists := r.defs[def.Type]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, def.Type)
	}
	if def.Version == 0 {
		def.Version = 1
	}
	r.defs[def.Type] = def
	return nil
}

// Lookup returns the definition for typ.
func (r *Registry) Lookup(typ string) (Definition, bool) {
	def, ok := r.defs[typ]
	return def, ok
}

// Types returns every registered type tag, sorted.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.defs))
	for t := range r.defs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Definitions returns every definition sorted by type.
func (r *Registry) Definitions() []Definition {
	types := r.Types()
	out := make([]Definition, len(types))
	for i, t := range types {
		out[i] = r.defs[t]
	}
	return out
}

// Derived returns the auto-derived definitions sorted by type.
func (r *Registry) Derived() []Definition {
	var out []Definition
	for _, def := range r.Definitions() {
		if def.AutoDerived {
			out = append(out, def)
		}
	}
	return out
}

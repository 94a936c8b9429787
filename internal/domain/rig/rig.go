package rig

import (
	"context"
	"slices"
	"strings"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/skeleton"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
)

// DefaultVersion is the version of a rig that has never been saved.
const DefaultVersion = 1.0

// Baker samples animation over a frame range and keys it on nodes.
type Baker interface {
	BakeObjects(ctx context.Context, sc *scene.Scene, nodes []scene.NodeID, frames scene.FrameRange, customAttrs bool) error
}

// Source re-imports a skeleton into a scene for full reloads.
type Source interface {
	ImportSkeleton(ctx context.Context, sc *scene.Scene) (scene.NodeID, error)
}

// Option configures a Rig.
type Option func(*Rig)

// WithName sets the rig name used for its group node.
func WithName(name string) Option {
	return func(r *Rig) { r.name = name }
}

// WithObserver receives build events.
func WithObserver(o Observer) Option {
	return func(r *Rig) { r.observer = o }
}

// WithBaker sets the baking collaborator used by reload, mirror and detach.
func WithBaker(b Baker) Option {
	return func(r *Rig) { r.baker = b }
}

// WithSource sets the skeleton source used by full reloads.
func WithSource(s Source) Option {
	return func(r *Rig) { r.source = s }
}

// WithParseOptions sets the options used whenever the skeleton is parsed.
func WithParseOptions(opts skeleton.Options) Option {
	return func(r *Rig) { r.parseOpts = opts }
}

// WithAutoDerive toggles rebuilding auto-derived components after a build.
func WithAutoDerive(enabled bool) Option {
	return func(r *Rig) { r.autoDerive = enabled }
}

// Rig is the aggregate that owns every component built on one skeleton.
type Rig struct {
	name       string
	sc         *scene.Scene
	skelRoot   scene.NodeID
	group      scene.NodeID
	registry   *Registry
	components []*Component
	nextID     ComponentID
	version    float64
	file       string
	document   *Document
	layers     map[string][]scene.NodeID
	drivenBy   *Rig
	driveCons  []scene.ConstraintID

	observer   Observer
	baker      Baker
	source     Source
	parseOpts  skeleton.Options
	autoDerive bool
}

// New creates an empty rig over the skeleton rooted at skelRoot.
func New(sc *scene.Scene, skelRoot scene.NodeID, reg *Registry, opts ...Option) (*Rig, error) {
	if sc == nil || reg == nil || !sc.Exists(skelRoot) {
		return nil, ErrNotARig
	}
	r := &Rig{
		name:       "rig",
		sc:         sc,
		skelRoot:   skelRoot,
		registry:   reg,
		version:    DefaultVersion,
		parseOpts:  skeleton.DefaultOptions(),
		autoDerive: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	group, err := sc.CreateNode(scene.Namespaced(r.Namespace(), r.name), scene.KindGroup, scene.NoNode)
	if err != nil {
		return nil, err
	}
	r.group = group
	return r, nil
}

func (r *Rig) Name() string               { return r.name }
func (r *Rig) Scene() *scene.Scene        { return r.sc }
func (r *Rig) Group() scene.NodeID        { return r.group }
func (r *Rig) SkeletonRoot() scene.NodeID { return r.skelRoot }
func (r *Rig) Registry() *Registry        { return r.registry }
func (r *Rig) Version() float64           { return r.version }
func (r *Rig) SetVersion(v float64)       { r.version = v }
func (r *Rig) File() string               { return r.file }
func (r *Rig) SetFile(f string)           { r.file = f }
func (r *Rig) Document() *Document        { return r.document }
func (r *Rig) SetDocument(doc *Document)  { r.document = doc }
func (r *Rig) SetObserver(o Observer)     { r.observer = o }
func (r *Rig) SetBaker(b Baker)           { r.baker = b }
func (r *Rig) SetSource(s Source)         { r.source = s }
func (r *Rig) DrivenBy() *Rig             { return r.drivenBy }

// SetRegistry swaps the definitions the rig checks against, as after a
// tool update. Built components keep the version they were stamped with.
func (r *Rig) SetRegistry(reg *Registry) {
	if reg != nil {
		r.registry = reg
	}
}

// Namespace is the namespace of the skeleton root, or "".
func (r *Rig) Namespace() string {
	name := r.sc.Name(r.skelRoot)
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[:i]
	}
	return ""
}

// Valid reports whether the rig still has its group and skeleton.
func (r *Rig) Valid() bool {
	return r != nil && r.sc != nil && r.sc.Exists(r.group) && r.sc.Exists(r.skelRoot)
}

// Hierarchy parses the skeleton with the rig's parse options.
func (r *Rig) Hierarchy() (*skeleton.Hierarchy, error) {
	return skeleton.Parse(r.sc, r.skelRoot, r.parseOpts)
}

func (r *Rig) hierarchyOrPartial() *skeleton.Hierarchy {
	h, err := r.Hierarchy()
	if err != nil {
		log.Warn(log.CatRig, "skeleton parsed with errors", "rig", r.name, "error", err)
	}
	return h
}

// Components returns the components in registration order.
func (r *Rig) Components() []*Component {
	return slices.Clone(r.components)
}

// Component returns the component with id, or nil.
func (r *Rig) Component(id ComponentID) *Component {
	for _, c := range r.components {
		if c.id == id {
			return c
		}
	}
	return nil
}

// Find returns the component registered under (typ, side, region), or nil.
func (r *Rig) Find(typ string, side scene.Side, region string) *Component {
	for _, c := range r.components {
		if c.typ == typ && c.side == side && c.region == region {
			return c
		}
	}
	return nil
}

// FindType returns every component of typ.
func (r *Rig) FindType(typ string) []*Component {
	var out []*Component
	for _, c := range r.components {
		if c.typ == typ {
			out = append(out, c)
		}
	}
	return out
}

// ComponentOf returns the component owning handle and the handle's index.
func (r *Rig) ComponentOf(handle scene.NodeID) (*Component, int) {
	for _, c := range r.components {
		for i, h := range c.handles {
			if h.Node == handle {
				return c, i
			}
		}
	}
	return nil, -1
}

// Flags returns the handles of top-level components in registration order.
func (r *Rig) Flags() []scene.NodeID {
	var out []scene.NodeID
	for _, c := range r.components {
		if def, ok := r.registry.Lookup(c.typ); ok && def.Nested {
			continue
		}
		out = append(out, c.Flags()...)
	}
	return out
}

// AllFlags returns every handle, nested switches included.
func (r *Rig) AllFlags() []scene.NodeID {
	var out []scene.NodeID
	for _, c := range r.components {
		out = append(out, c.Flags()...)
	}
	return out
}

// Layers returns the display layers assigned by FinishRig.
func (r *Rig) Layers() map[string][]scene.NodeID {
	out := make(map[string][]scene.NodeID, len(r.layers))
	for k, v := range r.layers {
		out[k] = slices.Clone(v)
	}
	return out
}

// CreateComponent builds a component of typ at (side, region). The offset
// group is placed on alignment when one is given. Single-instance types
// return the existing instance unchanged.
func (r *Rig) CreateComponent(typ string, side scene.Side, region string, alignment scene.NodeID, args Args) (*Component, error) {
	if !r.Valid() {
		return nil, ErrNotARig
	}
	def, ok := r.registry.Lookup(typ)
	if !ok {
		return nil, ErrUnknownType
	}
	if def.SingleInstance {
		if existing := r.FindType(typ); len(existing) > 0 {
			return existing[0], nil
		}
	}
	if r.Find(typ, side, region) != nil {
		return nil, ErrDuplicateComponent
	}
	if alignment != scene.NoNode && !r.sc.Exists(alignment) {
		return nil, ErrNotPositionable
	}

	offset, err := r.sc.CreateNode(scene.Namespaced(r.Namespace(), joinName(typ, string(side), region, "offset")), scene.KindGroup, r.group)
	if err != nil {
		return nil, err
	}
	if alignment != scene.NoNode {
		if err := r.sc.Snap(offset, alignment); err != nil {
			return nil, err
		}
	}

	r.nextID++
	c := &Component{
		id:          r.nextID,
		rig:         r,
		typ:         typ,
		side:        side,
		region:      region,
		version:     def.Version,
		offsetGroup: offset,
		args:        args.Clone(),
	}
	r.components = append(r.components, c)

	if err := def.Build(&Builder{rig: r, comp: c}, args); err != nil {
		if rmErr := c.Remove(); rmErr != nil {
			log.ErrorErr(log.CatRig, "cleanup after failed build", rmErr, "component", c.Key())
		}
		return nil, err
	}
	log.Debug(log.CatRig, "created component", "component", c.Key(), "handles", len(c.handles))
	return c, nil
}

// RemoveComponent removes c and any switch nested under its handles.
func (r *Rig) RemoveComponent(c *Component) error {
	flags := c.Flags()
	for _, other := range r.Components() {
		if other != c && other.nestedUnder != scene.NoNode && slices.Contains(flags, other.nestedUnder) {
			if err := r.RemoveComponent(other); err != nil {
				return err
			}
		}
	}
	if r.Component(c.id) == nil {
		return nil
	}
	return c.Remove()
}

// RemoveAll removes every component, newest first.
func (r *Rig) RemoveAll() error {
	for len(r.components) > 0 {
		if err := r.RemoveComponent(r.components[len(r.components)-1]); err != nil {
			return err
		}
	}
	return nil
}

// derived reports whether c was created by an auto-derive pass.
func (r *Rig) derived(c *Component) bool {
	def, ok := r.registry.Lookup(c.typ)
	return ok && def.AutoDerived
}

func (r *Rig) unregister(c *Component) {
	r.components = slices.DeleteFunc(r.components, func(o *Component) bool { return o == c })
}

func joinName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "_")
}

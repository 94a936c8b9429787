package rig

import (
	"fmt"
	"slices"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/skeleton"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
)

// ComponentID addresses a component within its rig.
type ComponentID int

// ComponentKey is the (type, side, region) identity of a component.
type ComponentKey struct {
	Type   string
	Side   scene.Side
	Region string
}

func (k ComponentKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Type, k.Side, k.Region)
}

// Channel is an attachment channel.
type Channel string

const (
	ChannelPoint  Channel = "point"
	ChannelOrient Channel = "orient"
)

// Role tags a handle for display.
type Role string

const (
	RoleNone    Role = ""
	RoleDetail  Role = "detail"
	RoleSub     Role = "sub"
	RoleContact Role = "contact"
	RoleUtility Role = "utility"
)

// Handle is a control a component exposes to animators.
type Handle struct {
	Node scene.NodeID
	Role Role
	// Drives is the joint the handle poses, used when baking onto handles.
	Drives scene.NodeID
	Color  int
}

// Component is one built rig component.
type Component struct {
	id      ComponentID
	rig     *Rig
	typ     string
	side    scene.Side
	region  string
	version int

	offsetGroup scene.NodeID
	flagsGroup  scene.NodeID
	handles     []Handle
	helpers     []scene.NodeID
	args        Args
	attachments map[Channel][]scene.NodeID
	nestedUnder scene.NodeID
}

func (c *Component) ID() ComponentID           { return c.id }
func (c *Component) Type() string              { return c.typ }
func (c *Component) Side() scene.Side          { return c.side }
func (c *Component) Region() string            { return c.region }
func (c *Component) Version() int              { return c.version }
func (c *Component) OffsetGroup() scene.NodeID { return c.offsetGroup }
func (c *Component) FlagsGroup() scene.NodeID  { return c.flagsGroup }
func (c *Component) NestedUnder() scene.NodeID { return c.nestedUnder }
func (c *Component) Rig() *Rig                 { return c.rig }
func (c *Component) Key() ComponentKey {
	return ComponentKey{Type: c.typ, Side: c.side, Region: c.region}
}
func (c *Component) Handles() []Handle       { return slices.Clone(c.handles) }
func (c *Component) Helpers() []scene.NodeID { return slices.Clone(c.helpers) }
func (c *Component) Args() Args              { return c.args.Clone() }
func (c *Component) HasHandles() bool        { return len(c.handles) > 0 }

// Attachments returns the parents recorded for ch.
func (c *Component) Attachments(ch Channel) []scene.NodeID {
	return slices.Clone(c.attachments[ch])
}

// Flags returns the handle nodes in order.
func (c *Component) Flags() []scene.NodeID {
	out := make([]scene.NodeID, len(c.handles))
	for i, h := range c.handles {
		out[i] = h.Node
	}
	return out
}

// BuildKwargs returns the construction arguments without hidden entries.
func (c *Component) BuildKwargs() Args {
	return c.args.Visible()
}

// Attach constrains the offset group to parents on the requested channels,
// replacing earlier attachments on those channels. The current offset is kept.
func (c *Component) Attach(parents []scene.NodeID, point, orient bool) error {
	if len(parents) == 0 || (!point && !orient) {
		return nil
	}
	sc := c.rig.sc
	for _, p := range parents {
		if !sc.Exists(p) {
			return fmt.Errorf("attach %s: %w: %d", c.Key(), scene.ErrNodeNotFound, p)
		}
	}
	for _, step := range []struct {
		on   bool
		ch   Channel
		kind scene.ConstraintKind
	}{{point, ChannelPoint, scene.ConstraintPoint}, {orient, ChannelOrient, scene.ConstraintOrient}} {
		if !step.on {
			continue
		}
		for _, cid := range sc.ConstraintsOn(c.offsetGroup, step.kind) {
			sc.RemoveConstraint(cid)
		}
		if _, err := sc.Constrain(step.kind, c.offsetGroup, parents, true); err != nil {
			return fmt.Errorf("attach %s: %w", c.Key(), err)
		}
		if c.attachments == nil {
			c.attachments = make(map[Channel][]scene.NodeID)
		}
		c.attachments[step.ch] = slices.Clone(parents)
	}
	log.Debug(log.CatBuild, "attached component", "component", c.Key(), "parents", len(parents), "point", point, "orient", orient)
	return nil
}

// Detach drops every attachment constraint.
func (c *Component) Detach() {
	sc := c.rig.sc
	for _, cid := range sc.AllConstraintsOn(c.offsetGroup) {
		sc.RemoveConstraint(cid)
	}
	c.attachments = nil
}

// owned returns every scene node this component created.
func (c *Component) owned() []scene.NodeID {
	out := []scene.NodeID{c.offsetGroup}
	if c.flagsGroup != scene.NoNode {
		out = append(out, c.flagsGroup)
	}
	out = append(out, c.Flags()...)
	return append(out, c.helpers...)
}

// below reports whether id sits under one of the nodes in owned.
func (c *Component) below(id scene.NodeID, owned map[scene.NodeID]bool) bool {
	for _, a := range c.rig.sc.Ancestors(id) {
		if owned[a] {
			return true
		}
	}
	return false
}

// Remove deletes the objects this component owns and unregisters it. Nodes
// owned by other components that were parented below it move up to their
// nearest ancestor that survives (else the rig group), keeping their world
// position.
func (c *Component) Remove() error {
	r := c.rig
	sc := r.sc
	foreign := make(map[scene.NodeID]bool)
	for _, other := range r.components {
		if other == c {
			continue
		}
		for _, n := range other.owned() {
			foreign[n] = true
		}
	}
	mine := make(map[scene.NodeID]bool)
	for _, n := range c.owned() {
		mine[n] = true
	}

	for _, root := range c.owned() {
		if !sc.Exists(root) {
			continue
		}
		for _, n := range sc.Descendants(root) {
			if !foreign[n] || foreign[sc.Node(n).Parent()] {
				continue
			}
			parent := r.group
			for _, a := range sc.Ancestors(n) {
				if !mine[a] && !c.below(a, mine) {
					parent = a
					break
				}
			}
			pos := sc.WorldPosition(n)
			if err := sc.SetParent(n, parent); err != nil {
				return err
			}
			if err := sc.SetWorldPosition(n, pos); err != nil {
				return err
			}
		}
	}
	for _, n := range c.owned() {
		if sc.Exists(n) {
			if err := sc.Delete(n); err != nil {
				return err
			}
		}
	}
	r.unregister(c)
	log.Debug(log.CatRig, "removed component", "component", c.Key())
	return nil
}

// Builder is handed to a BuildFunc to create the component's scene objects.
type Builder struct {
	rig  *Rig
	comp *Component
}

func (b *Builder) Rig() *Rig             { return b.rig }
func (b *Builder) Scene() *scene.Scene   { return b.rig.sc }
func (b *Builder) Component() *Component { return b.comp }
func (b *Builder) Side() scene.Side      { return b.comp.side }
func (b *Builder) Region() string        { return b.comp.region }

// Hierarchy parses the rig's skeleton. A partial hierarchy is returned with
// parse errors logged.
func (b *Builder) Hierarchy() *skeleton.Hierarchy {
	return b.rig.hierarchyOrPartial()
}

// Name builds a node name in the rig namespace.
func (b *Builder) Name(parts ...string) string {
	return scene.Namespaced(b.rig.Namespace(), joinName(parts...))
}

// AddHandle creates a handle under the flags group, placed on at (or at the
// offset group when at is NoNode). Handles keep their creation order.
func (b *Builder) AddHandle(name string, at scene.NodeID, role Role) (scene.NodeID, error) {
	sc := b.rig.sc
	if b.comp.flagsGroup == scene.NoNode {
		g, err := sc.CreateNode(b.Name(b.comp.typ, string(b.comp.side), b.comp.region, "flags"), scene.KindGroup, b.comp.offsetGroup)
		if err != nil {
			return scene.NoNode, err
		}
		b.comp.flagsGroup = g
	}
	id, err := sc.CreateNode(b.Name(name), scene.KindHandle, b.comp.flagsGroup)
	if err != nil {
		return scene.NoNode, err
	}
	if at != scene.NoNode {
		if err := sc.Snap(id, at); err != nil {
			return scene.NoNode, err
		}
	} else if err := sc.SetWorldPosition(id, sc.WorldPosition(b.comp.offsetGroup)); err != nil {
		return scene.NoNode, err
	}
	b.comp.handles = append(b.comp.handles, Handle{Node: id, Role: role})
	return id, nil
}

// Drive records that handle poses joint and constrains the joint to it.
func (b *Builder) Drive(handle, joint scene.NodeID, point, orient bool) error {
	sc := b.rig.sc
	for i := range b.comp.handles {
		if b.comp.handles[i].Node == handle {
			b.comp.handles[i].Drives = joint
		}
	}
	if point {
		if _, err := sc.Constrain(scene.ConstraintPoint, joint, []scene.NodeID{handle}, true); err != nil {
			return err
		}
	}
	if orient {
		if _, err := sc.Constrain(scene.ConstraintOrient, joint, []scene.NodeID{handle}, true); err != nil {
			return err
		}
	}
	return nil
}

// AddHelper creates a group owned by the component, under parent or under
// the offset group when parent is NoNode.
func (b *Builder) AddHelper(name string, parent scene.NodeID) (scene.NodeID, error) {
	if parent == scene.NoNode {
		parent = b.comp.offsetGroup
	}
	id, err := b.rig.sc.CreateNode(b.Name(name), scene.KindGroup, parent)
	if err != nil {
		return scene.NoNode, err
	}
	b.comp.helpers = append(b.comp.helpers, id)
	return id, nil
}

// StoreArg records a construction argument, for example a default the
// factory resolved itself, so it is serialized with the component.
func (b *Builder) StoreArg(name string, value any) {
	b.comp.args.Set(name, value)
}

// NestUnder marks the component as a switch living under handle.
func (b *Builder) NestUnder(handle scene.NodeID) {
	b.comp.nestedUnder = handle
}

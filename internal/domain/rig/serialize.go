package rig

import (
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/skeleton"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
)

// nestedTargetsArg is the argument a nested switch keeps its targets in. A
// switch with a single target switches nothing and is not written out.
const nestedTargetsArg = "targets"

// SerializeRig captures the rig as a Document. With incrementVersion the rig
// version is bumped to the next whole number first. Auto-derived and nested
// types are not written at top level. The result is also kept as the rig's
// document for Reload.
func (r *Rig) SerializeRig(incrementVersion bool) (*Document, error) {
	if !r.Valid() {
		return nil, ErrNotARig
	}
	if incrementVersion {
		r.version = float64(int(r.version) + 1)
	}
	doc := &Document{Version: r.version}
	h := r.hierarchyOrPartial()
	for _, c := range r.components {
		def, ok := r.registry.Lookup(c.typ)
		if ok && (def.AutoDerived || def.Nested) {
			continue
		}
		var frag Fragment
		frag, h = c.Serialize(h)
		doc.Components = append(doc.Components, frag)
	}
	r.document = doc.Clone()
	log.Info(log.CatBuild, "serialized rig", "rig", r.name, "version", doc.Version, "components", len(doc.Components))
	return doc, nil
}

// Serialize writes the component as a Fragment. Node-valued arguments and
// attachments become identifiers. The hierarchy is parsed when h is nil and
// returned so callers can reuse it across components.
func (c *Component) Serialize(h *skeleton.Hierarchy) (Fragment, *skeleton.Hierarchy) {
	r := c.rig
	if h == nil {
		h = r.hierarchyOrPartial()
	}
	frag := Fragment{Type: c.typ, Side: c.side, Region: c.region}

	for _, arg := range c.args.Visible().Items() {
		switch v := arg.Value.(type) {
		case scene.NodeID:
			if !r.sc.Exists(v) {
				log.Warn(log.CatBuild, "dropping argument with deleted node", "component", c.Key(), "arg", arg.Name)
				continue
			}
			frag.Kwargs.Set(arg.Name, r.ToIdentifier(v, h))
		case []scene.NodeID:
			frag.Kwargs.Set(arg.Name, r.ToIdentifiers(r.existing(v), h))
		default:
			frag.Kwargs.Set(arg.Name, v)
		}
	}

	frag.Attachments = Attachments{
		Point:  r.ToIdentifiers(r.existing(c.attachments[ChannelPoint]), h),
		Orient: r.ToIdentifiers(r.existing(c.attachments[ChannelOrient]), h),
	}
	if len(frag.Attachments.Point) == 0 {
		frag.Attachments.Point = nil
	}
	if len(frag.Attachments.Orient) == 0 {
		frag.Attachments.Orient = nil
	}

	for i, hnd := range c.handles {
		hd := HandleData{
			Index:       i,
			LockedAttrs: r.sc.LockedChannels(hnd.Node),
			RotateOrder: r.sc.Node(hnd.Node).RotateOrder(),
		}
		if nested := r.nestedUnder(hnd.Node); nested != nil && len(nested.args.Nodes(nestedTargetsArg)) > 1 {
			var nf Fragment
			nf, h = nested.Serialize(h)
			hd.Nested = &nf
		}
		frag.Handles = append(frag.Handles, hd)
	}
	return frag, h
}

func (r *Rig) nestedUnder(handle scene.NodeID) *Component {
	for _, c := range r.components {
		if c.nestedUnder == handle {
			return c
		}
	}
	return nil
}

func (r *Rig) existing(nodes []scene.NodeID) []scene.NodeID {
	out := make([]scene.NodeID, 0, len(nodes))
	for _, n := range nodes {
		if r.sc.Exists(n) {
			out = append(out, n)
		}
	}
	return out
}

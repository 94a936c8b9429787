package rig

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/skeleton"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
)

// BuildResult summarizes one BuildSerializedRig call.
type BuildResult struct {
	Built   []ComponentKey
	Skipped []ComponentKey
	Failed  []BuildError
	// Derived is the number of auto-derived components after the build.
	Derived int
}

// OK reports whether every fragment was built or skipped.
func (res BuildResult) OK() bool { return len(res.Failed) == 0 }

// pendingFragment is a fragment waiting for a phase.
type pendingFragment struct {
	index int
	frag  Fragment
	// align is the handle a nested fragment is built on.
	align scene.NodeID
	comp  *Component
}

// BuildSerializedRig builds every fragment of doc that the rig does not have
// yet. Fragments are constructed in order, then attachments are resolved once
// everything exists, then nested switches are built the same way. Finally
// auto-derived components are rebuilt from scratch.
//
// Fragment failures are collected in the result. The returned error is set
// only when the rig is invalid, an alignment is not positionable or ctx is done.
func (r *Rig) BuildSerializedRig(ctx context.Context, doc *Document) (BuildResult, error) {
	var res BuildResult
	if !r.Valid() {
		return res, ErrNotARig
	}
	if doc == nil {
		return res, ErrNoDocument
	}
	if len(r.components) == 0 && doc.Version > 0 {
		r.version = doc.Version
	}
	h := r.hierarchyOrPartial()

	pending := make([]pendingFragment, len(doc.Components))
	for i, f := range doc.Components {
		pending[i] = pendingFragment{index: i, frag: f}
	}

	r.emit(ctx, Event{Kind: EventPhaseStarted, Phase: PhaseConstruct, Index: -1})
	toAttach, nested, err := r.construct(ctx, PhaseConstruct, pending, h, &res)
	if err != nil {
		return res, err
	}
	r.emit(ctx, Event{Kind: EventPhaseFinished, Phase: PhaseConstruct, Index: -1})

	r.emit(ctx, Event{Kind: EventPhaseStarted, Phase: PhaseAttach, Index: -1})
	r.attach(ctx, PhaseAttach, toAttach, h, &res)
	r.emit(ctx, Event{Kind: EventPhaseFinished, Phase: PhaseAttach, Index: -1})

	if len(nested) > 0 {
		r.emit(ctx, Event{Kind: EventPhaseStarted, Phase: PhaseNested, Index: -1})
		for len(nested) > 0 {
			toAttach, nested, err = r.construct(ctx, PhaseNested, nested, h, &res)
			if err != nil {
				return res, err
			}
			r.attach(ctx, PhaseNested, toAttach, h, &res)
		}
		r.emit(ctx, Event{Kind: EventPhaseFinished, Phase: PhaseNested, Index: -1})
	}

	if r.autoDerive {
		r.emit(ctx, Event{Kind: EventPhaseStarted, Phase: PhaseDerive, Index: -1})
		if err := r.derive(ctx, h, &res); err != nil {
			return res, err
		}
		r.emit(ctx, Event{Kind: EventPhaseFinished, Phase: PhaseDerive, Index: -1})
	}

	log.Info(log.CatBuild, "built rig",
		"rig", r.name, "built", len(res.Built), "skipped", len(res.Skipped),
		"failed", len(res.Failed), "derived", res.Derived)
	return res, nil
}

// construct creates the components of pending. It returns the fragments that
// still need attaching and the nested fragments found on their handles.
func (r *Rig) construct(ctx context.Context, phase Phase, pending []pendingFragment, h *skeleton.Hierarchy, res *BuildResult) ([]pendingFragment, []pendingFragment, error) {
	var toAttach, nested []pendingFragment
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		f := p.frag
		key := f.Key()

		def, ok := r.registry.Lookup(f.Type)
		if !ok {
			r.fail(ctx, phase, res, p.index, key, fmt.Errorf("%w: %s", ErrUnknownType, f.Type))
			continue
		}
		if r.Find(f.Type, f.Side, f.Region) != nil || (def.SingleInstance && len(r.FindType(f.Type)) > 0) {
			res.Skipped = append(res.Skipped, key)
			r.emit(ctx, Event{Kind: EventSkipped, Phase: phase, Key: key, Index: p.index})
			log.Debug(log.CatBuild, "fragment already built", "component", key)
			continue
		}

		args := r.resolveArgs(f.Kwargs, h, key)
		c, err := r.CreateComponent(f.Type, f.Side, f.Region, p.align, args)
		if err != nil {
			if errors.Is(err, ErrNotARig) || errors.Is(err, ErrNotPositionable) {
				return nil, nil, err
			}
			r.fail(ctx, phase, res, p.index, key, err)
			continue
		}
		r.applyHandleData(c, f)

		res.Built = append(res.Built, key)
		r.emit(ctx, Event{Kind: EventBuilt, Phase: phase, Key: key, Index: p.index})

		if !f.Attachments.IsZero() {
			toAttach = append(toAttach, pendingFragment{index: p.index, frag: f, comp: c})
		}
		flags := c.Flags()
		for _, hd := range f.Handles {
			if hd.Nested == nil {
				continue
			}
			if handle, ok := pick(flags, hd.Index); ok {
				nested = append(nested, pendingFragment{index: p.index, frag: *hd.Nested, align: handle})
			}
		}
	}
	return toAttach, nested, nil
}

// resolveArgs turns identifier-valued arguments into nodes. Arguments that
// resolve to nothing are dropped so the factory falls back to its defaults.
func (r *Rig) resolveArgs(kwargs Args, h *skeleton.Hierarchy, key ComponentKey) Args {
	var out Args
	for _, arg := range kwargs.Items() {
		switch v := arg.Value.(type) {
		case Identifier:
			n, ok := r.FromIdentifier(v, h)
			if !ok {
				log.Warn(log.CatBuild, "unresolved argument", "component", key, "arg", arg.Name, "identifier", v)
				continue
			}
			out.Set(arg.Name, n)
		case []Identifier:
			nodes := r.FromIdentifiers(v, h)
			if len(nodes) < len(v) {
				log.Warn(log.CatBuild, "unresolved identifiers in argument",
					"component", key, "arg", arg.Name, "resolved", len(nodes), "total", len(v))
			}
			if len(nodes) == 0 && len(v) > 0 {
				continue
			}
			out.Set(arg.Name, nodes)
		default:
			out.Set(arg.Name, v)
		}
	}
	return out
}

// applyHandleData restores locks and rotate order. A handle without its own
// entry takes the entry for handle 0.
func (r *Rig) applyHandleData(c *Component, f Fragment) {
	for i, hnd := range c.handles {
		hd, ok := f.HandleFor(i)
		if !ok {
			continue
		}
		if len(hd.LockedAttrs) > 0 {
			if err := r.sc.LockChannels(hnd.Node, hd.LockedAttrs...); err != nil {
				log.Warn(log.CatBuild, "locking handle channels", "component", c.Key(), "handle", i, "error", err)
			}
		}
		if err := r.sc.SetRotateOrder(hnd.Node, hd.RotateOrder); err != nil {
			log.Warn(log.CatBuild, "setting rotate order", "component", c.Key(), "handle", i, "error", err)
		}
	}
}

// attach resolves stashed attachments. When both channels name the same
// parents a single combined attach is made.
func (r *Rig) attach(ctx context.Context, phase Phase, pending []pendingFragment, h *skeleton.Hierarchy, res *BuildResult) {
	for _, p := range pending {
		key := p.comp.Key()
		point := r.FromIdentifiers(p.frag.Attachments.Point, h)
		orient := r.FromIdentifiers(p.frag.Attachments.Orient, h)
		if len(point) < len(p.frag.Attachments.Point) || len(orient) < len(p.frag.Attachments.Orient) {
			log.Warn(log.CatBuild, "unresolved attachment", "component", key)
		}

		var err error
		if sameParents(point, orient) {
			err = p.comp.Attach(point, true, true)
		} else {
			err = errors.Join(p.comp.Attach(point, true, false), p.comp.Attach(orient, false, true))
		}
		if err != nil {
			r.fail(ctx, phase, res, p.index, key, err)
		}
	}
}

// derive removes auto-derived components and rebuilds them from the rig.
func (r *Rig) derive(ctx context.Context, h *skeleton.Hierarchy, res *BuildResult) error {
	for _, def := range r.registry.Derived() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, c := range r.FindType(def.Type) {
			if err := r.RemoveComponent(c); err != nil {
				return err
			}
		}
		if err := def.Derive(r, h); err != nil {
			if errors.Is(err, ErrNotARig) {
				return err
			}
			r.fail(ctx, PhaseDerive, res, -1, ComponentKey{Type: def.Type}, err)
			continue
		}
		for _, c := range r.FindType(def.Type) {
			r.emit(ctx, Event{Kind: EventBuilt, Phase: PhaseDerive, Key: c.Key(), Index: -1})
		}
		res.Derived += len(r.FindType(def.Type))
	}
	return nil
}

func (r *Rig) fail(ctx context.Context, phase Phase, res *BuildResult, index int, key ComponentKey, err error) {
	res.Failed = append(res.Failed, BuildError{Index: index, Key: key, Err: err})
	r.emit(ctx, Event{Kind: EventFailed, Phase: phase, Key: key, Index: index, Err: err})
	log.ErrorErr(log.CatBuild, "fragment failed", err, "phase", phase, "index", index, "component", key)
}

// sameParents reports whether a and b hold the same nodes, ignoring order.
func sameParents(a, b []scene.NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := slices.Clone(a), slices.Clone(b)
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}

package rig

import (
	"context"
	"fmt"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
)

const reloadNamespace = "reload_tmp"

// StaleComponent is a component built by an older (or unknown) factory version.
type StaleComponent struct {
	Key     ComponentKey
	Built   int
	Current int
}

func (s StaleComponent) String() string {
	if s.Current == 0 {
		return fmt.Sprintf("%s: built v%d, type no longer registered", s.Key, s.Built)
	}
	return fmt.Sprintf("%s: built v%d, current v%d", s.Key, s.Built, s.Current)
}

// ValidateRig compares the version stamped on each component with the
// version currently registered for its type.
func (r *Rig) ValidateRig() []StaleComponent {
	var stale []StaleComponent
	for _, c := range r.components {
		def, ok := r.registry.Lookup(c.typ)
		switch {
		case !ok:
			stale = append(stale, StaleComponent{Key: c.Key(), Built: c.version})
		case def.Version != c.version:
			stale = append(stale, StaleComponent{Key: c.Key(), Built: c.version, Current: def.Version})
		}
	}
	return stale
}

// Reload rebuilds the rig from its last saved document when a component is
// stale or force is set. Animation on the handles is carried across through
// a temporary copy of the skeleton. With full the skeleton itself is deleted
// and re-imported from the rig's Source first.
func (r *Rig) Reload(ctx context.Context, force, full bool) (BuildResult, error) {
	if !r.Valid() {
		return BuildResult{}, ErrNotARig
	}
	stale := r.ValidateRig()
	if len(stale) == 0 && !force {
		log.Debug(log.CatRig, "rig is current, nothing to reload", "rig", r.name)
		return BuildResult{}, nil
	}
	if r.document == nil {
		return BuildResult{}, ErrNoDocument
	}
	if full && r.source == nil {
		return BuildResult{}, ErrNoSource
	}
	log.Info(log.CatRig, "reloading rig", "rig", r.name, "stale", len(stale), "force", force, "full", full)

	frames, animated := r.sc.KeyRange(r.AllFlags()...)
	var tmp *tempSkeleton
	if animated {
		if r.baker == nil {
			return BuildResult{}, ErrNoBaker
		}
		var err error
		if tmp, err = r.captureAnimation(ctx, reloadNamespace, frames); err != nil {
			return BuildResult{}, fmt.Errorf("capturing animation: %w", err)
		}
		defer tmp.remove()
	}

	doc := r.document.Clone()
	if err := r.RemoveAll(); err != nil {
		return BuildResult{}, err
	}
	if full {
		if err := r.sc.Delete(r.skelRoot); err != nil {
			return BuildResult{}, err
		}
		root, err := r.source.ImportSkeleton(ctx, r.sc)
		if err != nil {
			return BuildResult{}, fmt.Errorf("re-importing skeleton: %w", err)
		}
		r.skelRoot = root
	}

	res, err := r.BuildSerializedRig(ctx, doc)
	if err != nil {
		return res, err
	}
	if tmp != nil {
		if err := r.bakeOntoHandles(ctx, tmp.byName, frames); err != nil {
			return res, fmt.Errorf("restoring animation: %w", err)
		}
	}
	return res, nil
}

// tempSkeleton is a baked copy of the skeleton.
type tempSkeleton struct {
	sc     *scene.Scene
	root   scene.NodeID
	byName map[string]scene.NodeID
	// mapping goes from original joint to copy.
	mapping map[scene.NodeID]scene.NodeID
}

func (t *tempSkeleton) remove() {
	if t.sc.Exists(t.root) {
		if err := t.sc.Delete(t.root); err != nil {
			log.ErrorErr(log.CatRig, "deleting temporary skeleton", err)
		}
	}
}

// captureAnimation duplicates the skeleton, constrains the copy to the live
// joints and bakes it over frames.
func (r *Rig) captureAnimation(ctx context.Context, namespace string, frames scene.FrameRange) (*tempSkeleton, error) {
	root, mapping, err := r.sc.Duplicate(r.skelRoot, namespace, scene.NoNode)
	if err != nil {
		return nil, err
	}
	tmp := &tempSkeleton{sc: r.sc, root: root, mapping: mapping, byName: make(map[string]scene.NodeID, len(mapping))}

	var cons []scene.ConstraintID
	var copies []scene.NodeID
	for orig, cp := range mapping {
		tmp.byName[scene.BaseName(r.sc.Name(orig))] = cp
		copies = append(copies, cp)
		for _, kind := range []scene.ConstraintKind{scene.ConstraintPoint, scene.ConstraintOrient} {
			cid, err := r.sc.Constrain(kind, cp, []scene.NodeID{orig}, false)
			if err != nil {
				tmp.remove()
				return nil, err
			}
			cons = append(cons, cid)
		}
	}
	err = r.baker.BakeObjects(ctx, r.sc, copies, frames, false)
	for _, cid := range cons {
		r.sc.RemoveConstraint(cid)
	}
	if err != nil {
		tmp.remove()
		return nil, err
	}
	return tmp, nil
}

// bakeOntoHandles poses every handle that drives a joint on the matching
// source joint, found by the driven joint's base name, and bakes the handles.
func (r *Rig) bakeOntoHandles(ctx context.Context, sources map[string]scene.NodeID, frames scene.FrameRange) error {
	match := make(map[scene.NodeID]scene.NodeID)
	for _, c := range r.components {
		if r.derived(c) {
			continue
		}
		for _, hnd := range c.handles {
			if hnd.Drives == scene.NoNode || !r.sc.Exists(hnd.Drives) {
				continue
			}
			if src, ok := sources[scene.BaseName(r.sc.Name(hnd.Drives))]; ok {
				match[hnd.Node] = src
			}
		}
	}
	return r.bakeMatched(ctx, match, frames)
}

// bakeMatched constrains each handle to its source, bakes and drops the constraints.
func (r *Rig) bakeMatched(ctx context.Context, match map[scene.NodeID]scene.NodeID, frames scene.FrameRange) error {
	if len(match) == 0 {
		return nil
	}
	var cons []scene.ConstraintID
	defer func() {
		for _, cid := range cons {
			r.sc.RemoveConstraint(cid)
		}
	}()
	handles := make([]scene.NodeID, 0, len(match))
	for _, hnd := range r.AllFlags() {
		src, ok := match[hnd]
		if !ok {
			continue
		}
		handles = append(handles, hnd)
		for _, kind := range []scene.ConstraintKind{scene.ConstraintPoint, scene.ConstraintOrient} {
			if r.sc.IsLocked(hnd, kindChannels(kind)[0]) {
				continue
			}
			cid, err := r.sc.Constrain(kind, hnd, []scene.NodeID{src}, false)
			if err != nil {
				return err
			}
			cons = append(cons, cid)
		}
	}
	return r.baker.BakeObjects(ctx, r.sc, handles, frames, false)
}

func kindChannels(kind scene.ConstraintKind) []string {
	if kind == scene.ConstraintPoint {
		return scene.TranslateChannels
	}
	return scene.RotateChannels
}

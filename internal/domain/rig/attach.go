package rig

import (
	"context"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
)

// AttachRigs makes driver's handles drive attached's handles. Components are
// matched by (type, side, region), then by (side, region) alone; handles are
// matched by index. Any earlier attachment of attached is released first.
func AttachRigs(driver, attached *Rig) error {
	if !driver.Valid() || !attached.Valid() {
		return ErrNotARig
	}
	if driver.sc != attached.sc {
		return ErrDifferentScene
	}
	releaseDrive(attached)

	sc := attached.sc
	matched := 0
	for _, c := range attached.components {
		src := driver.Find(c.typ, c.side, c.region)
		if src == nil {
			src = driver.findSideRegion(c.side, c.region)
		}
		if src == nil || len(src.handles) == 0 {
			continue
		}
		srcFlags := src.Flags()
		for i, hnd := range c.handles {
			from, ok := pick(srcFlags, i)
			if !ok {
				continue
			}
			for _, kind := range []scene.ConstraintKind{scene.ConstraintPoint, scene.ConstraintOrient} {
				cid, err := sc.Constrain(kind, hnd.Node, []scene.NodeID{from}, true)
				if err != nil {
					releaseDrive(attached)
					return err
				}
				attached.driveCons = append(attached.driveCons, cid)
			}
		}
		matched++
	}
	attached.drivenBy = driver
	log.Info(log.CatRig, "attached rigs", "driver", driver.name, "attached", attached.name, "components", matched)
	return nil
}

// DetachRig releases attached from its driver. With bake the driven motion is
// first baked onto attached's handles over frames.
func DetachRig(ctx context.Context, attached *Rig, bake bool, frames scene.FrameRange) error {
	if !attached.Valid() {
		return ErrNotARig
	}
	if attached.drivenBy == nil {
		return nil
	}
	if bake {
		if attached.baker == nil {
			return ErrNoBaker
		}
		if frames.Len() == 0 {
			kr, ok := attached.sc.KeyRange(attached.drivenBy.AllFlags()...)
			if !ok {
				kr = scene.FrameRange{}
			}
			frames = kr
		}
		if err := attached.baker.BakeObjects(ctx, attached.sc, attached.AllFlags(), frames, false); err != nil {
			return err
		}
	}
	log.Info(log.CatRig, "detached rig", "driver", attached.drivenBy.name, "attached", attached.name, "baked", bake)
	releaseDrive(attached)
	return nil
}

func releaseDrive(r *Rig) {
	for _, cid := range r.driveCons {
		r.sc.RemoveConstraint(cid)
	}
	r.driveCons = nil
	r.drivenBy = nil
}

func (r *Rig) findSideRegion(side scene.Side, region string) *Component {
	for _, c := range r.components {
		if c.side == side && c.region == region {
			return c
		}
	}
	return nil
}

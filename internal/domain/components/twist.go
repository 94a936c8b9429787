package components

import (
	"errors"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/skeleton"
)

// buildTwist gives every twist joint a utility handle that follows the
// joint's parent and drives the twist joint.
func buildTwist(b *rig.Builder, args rig.Args) error {
	joints := args.Nodes(ArgJoints)
	if len(joints) == 0 {
		return ErrMissingJoint
	}
	sc := b.Scene()
	for _, joint := range joints {
		handle, err := b.AddHandle(base(sc, joint)+"_flag", joint, rig.RoleUtility)
		if err != nil {
			return err
		}
		if err := lockScale(b, handle); err != nil {
			return err
		}
		if parent := sc.Node(joint).Parent(); parent != scene.NoNode {
			for _, kind := range []scene.ConstraintKind{scene.ConstraintPoint, scene.ConstraintOrient} {
				if _, err := sc.Constrain(kind, handle, []scene.NodeID{parent}, true); err != nil {
					return err
				}
			}
		}
		if err := b.Drive(handle, joint, true, true); err != nil {
			return err
		}
	}
	return nil
}

// deriveTwist builds one twist component per twist set.
func deriveTwist(r *rig.Rig, h *skeleton.Hierarchy) error {
	if h == nil {
		return nil
	}
	var errs []error
	for _, key := range h.TwistKeys() {
		set := h.TwistSet(key.Side, key.Region)
		if _, err := r.CreateComponent(TypeTwist, key.Side, key.Region, scene.NoNode, rig.NewArgs(ArgJoints, set)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

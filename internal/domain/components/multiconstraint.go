package components

import (
	"fmt"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
)

// SideMultiConstraint is the side every space switch is registered under.
const SideMultiConstraint scene.Side = "multiconstraint"

// AddMultiConstraint builds a space switch on source, a handle of another
// component, with one space per target. The switch starts in the space whose
// target is named defaultName, or the first one.
func AddMultiConstraint(r *rig.Rig, source scene.NodeID, targets []scene.NodeID, defaultName string) (*rig.Component, error) {
	args := rig.NewArgs(ArgSource, source, ArgTargets, targets, ArgDefaultName, defaultName)
	return r.CreateComponent(TypeMultiConstraint, SideMultiConstraint, base(r.Scene(), source), source, args)
}

func buildMultiConstraint(b *rig.Builder, args rig.Args) error {
	src, ok := args.Node(ArgSource)
	if !ok {
		return ErrNoSourceHandle
	}
	if owner, _ := b.Rig().ComponentOf(src); owner == nil {
		return fmt.Errorf("%w: %s is not a handle", ErrNoSourceHandle, b.Scene().Name(src))
	}
	targets := args.Nodes(ArgTargets)
	if len(targets) == 0 {
		return ErrNoTargets
	}
	sc := b.Scene()
	defaultName := args.String(ArgDefaultName, "")
	b.NestUnder(src)

	follow := 0
	spaces := make([]scene.NodeID, len(targets))
	for i, target := range targets {
		space, err := b.AddHelper(b.Region()+"_"+base(sc, target)+"_space", scene.NoNode)
		if err != nil {
			return err
		}
		if err := sc.Snap(space, src); err != nil {
			return err
		}
		for _, kind := range []scene.ConstraintKind{scene.ConstraintPoint, scene.ConstraintOrient} {
			if _, err := sc.Constrain(kind, space, []scene.NodeID{target}, true); err != nil {
				return err
			}
		}
		if defaultName != "" && base(sc, target) == defaultName {
			follow = i
		}
		spaces[i] = space
	}
	if err := sc.AddAttr(src, rig.FollowAttr, float64(follow), float64(follow)); err != nil {
		return err
	}

	// The switch group sits between the handle and its old parent and
	// follows the space picked by the follow attribute.
	sw, err := b.AddHelper(b.Region()+"_switch", sc.Node(src).Parent())
	if err != nil {
		return err
	}
	if err := sc.Snap(sw, src); err != nil {
		return err
	}
	if err := reparentKeep(sc, src, sw); err != nil {
		return err
	}
	sel := scene.Selector{Node: src, Attr: rig.FollowAttr}
	for _, kind := range []scene.ConstraintKind{scene.ConstraintPoint, scene.ConstraintOrient} {
		if _, err := sc.ConstrainSwitch(kind, sw, spaces, sel, true); err != nil {
			return err
		}
	}
	return nil
}

package components

import (
	"fmt"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
)

// chainJoints returns the joints from start_joint to end_joint. Missing
// arguments default to the start and end of the component's own chain; the
// resolved joints are stored back so they serialize with the component.
func chainJoints(b *rig.Builder, args rig.Args) ([]scene.NodeID, error) {
	h := b.Hierarchy()
	if h == nil {
		return nil, ErrMissingJoint
	}
	start, ok := args.Node(ArgStartJoint)
	if !ok {
		start = h.ChainStart(b.Side(), b.Region())
	}
	end, ok := args.Node(ArgEndJoint)
	if !ok {
		end = h.ChainEnd(b.Side(), b.Region())
	}
	if start == scene.NoNode || end == scene.NoNode {
		return nil, fmt.Errorf("%w: %s/%s", ErrMissingJoint, b.Side(), b.Region())
	}

	key, from, ok := h.ChainOf(start)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not in a chain", ErrMissingJoint, b.Scene().Name(start))
	}
	chain := h.FullChain(key.Side, key.Region)
	to := -1
	for i := from; i < len(chain); i++ {
		if chain[i] == end {
			to = i
			break
		}
	}
	if to < 0 {
		return nil, fmt.Errorf("%w: %s does not follow %s", ErrMissingJoint, b.Scene().Name(end), b.Scene().Name(start))
	}
	b.StoreArg(ArgStartJoint, start)
	b.StoreArg(ArgEndJoint, end)
	return chain[from : to+1], nil
}

// lockScale locks the scale channels of handle.
func lockScale(b *rig.Builder, handle scene.NodeID) error {
	return b.Scene().LockChannels(handle, scene.ScaleChannels...)
}

// reparentKeep moves child under parent without moving it in world space.
func reparentKeep(sc *scene.Scene, child, parent scene.NodeID) error {
	pos := sc.WorldPosition(child)
	if err := sc.SetParent(child, parent); err != nil {
		return err
	}
	return sc.SetWorldPosition(child, pos)
}

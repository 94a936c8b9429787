package components

import (
	"fmt"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
)

func buildWorld(b *rig.Builder, args rig.Args) error {
	root := b.Rig().SkeletonRoot()
	handle, err := b.AddHandle("world_flag", root, rig.RoleNone)
	if err != nil {
		return err
	}
	if err := lockScale(b, handle); err != nil {
		return err
	}
	return b.Drive(handle, root, true, true)
}

// buildCog places the cog on the joint argument, else the pelvis, else the root.
func buildCog(b *rig.Builder, args rig.Args) error {
	joint, ok := args.Node(ArgJoint)
	if !ok {
		joint = pelvisJoint(b)
	}
	b.StoreArg(ArgJoint, joint)
	handle, err := b.AddHandle("cog_flag", joint, rig.RoleNone)
	if err != nil {
		return err
	}
	return lockScale(b, handle)
}

func buildPelvis(b *rig.Builder, args rig.Args) error {
	joint, ok := args.Node(ArgJoint)
	if !ok {
		h := b.Hierarchy()
		if h == nil {
			return ErrMissingJoint
		}
		if joint = h.ChainStart(scene.SideCenter, "pelvis"); joint == scene.NoNode {
			return fmt.Errorf("%w: no center/pelvis chain", ErrMissingJoint)
		}
	}
	b.StoreArg(ArgJoint, joint)
	handle, err := b.AddHandle("pelvis_flag", joint, rig.RoleNone)
	if err != nil {
		return err
	}
	if err := lockScale(b, handle); err != nil {
		return err
	}
	return b.Drive(handle, joint, true, true)
}

func pelvisJoint(b *rig.Builder) scene.NodeID {
	if h := b.Hierarchy(); h != nil {
		if j := h.ChainStart(scene.SideCenter, "pelvis"); j != scene.NoNode {
			return j
		}
	}
	return b.Rig().SkeletonRoot()
}

package components

import (
	"fmt"
	"slices"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
)

// poleDistance is how far in front of the middle joint the pole handle sits.
const poleDistance = 10.0

// buildIK creates an end handle driving the last chain joint and a pole
// handle in front of the middle joint.
func buildIK(b *rig.Builder, args rig.Args) error {
	joints, err := chainJoints(b, args)
	if err != nil {
		return err
	}
	if len(joints) < 2 {
		return fmt.Errorf("%w: ik needs at least two joints", ErrChainTooShort)
	}
	sc := b.Scene()
	end := joints[len(joints)-1]
	mid := joints[len(joints)/2]
	if len(joints) == 2 {
		mid = joints[0]
	}

	endHandle, err := b.AddHandle(base(sc, end)+"_ik_flag", end, rig.RoleNone)
	if err != nil {
		return err
	}
	if err := lockScale(b, endHandle); err != nil {
		return err
	}
	if err := b.Drive(endHandle, end, true, true); err != nil {
		return err
	}

	pole, err := b.AddHandle(base(sc, mid)+"_pole_flag", mid, rig.RoleDetail)
	if err != nil {
		return err
	}
	if err := sc.SetWorldPosition(pole, sc.WorldPosition(mid).Add(scene.Vec3{0, 0, poleDistance})); err != nil {
		return err
	}
	return sc.LockChannels(pole, slices.Concat(scene.RotateChannels, scene.ScaleChannels)...)
}

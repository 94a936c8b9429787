package components

import (
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
)

// buildFK creates one handle per chain joint, each parented under the
// previous one. Every joint follows its handle's rotation; the first joint
// also follows its position.
func buildFK(b *rig.Builder, args rig.Args) error {
	joints, err := chainJoints(b, args)
	if err != nil {
		return err
	}
	sc := b.Scene()
	var prev scene.NodeID
	for i, joint := range joints {
		handle, err := b.AddHandle(base(sc, joint)+"_fk_flag", joint, rig.RoleNone)
		if err != nil {
			return err
		}
		if i > 0 {
			if err := reparentKeep(sc, handle, prev); err != nil {
				return err
			}
		}
		if err := lockScale(b, handle); err != nil {
			return err
		}
		if err := b.Drive(handle, joint, i == 0, true); err != nil {
			return err
		}
		prev = handle
	}
	return nil
}

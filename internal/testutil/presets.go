package testutil

import (
	"testing"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
)

// WithBiped adds a small mirrored biped:
//
//	root (center/root)
//	  pelvis (center/pelvis)
//	    spine_01..spine_03 (center/spine)
//	      neck_01, head (center/neck)
//	      clavicle_l|r (side/clavicle)
//	        upperarm, lowerarm, hand (side/arm) + upperarm_twist_01 (twist arm)
//	    thigh, calf, foot (side/leg)
//
// Left joints sit at +x, right joints mirror them at -x.
func (b *SkeletonBuilder) WithBiped() *SkeletonBuilder {
	b.Joint("root", "", Side(scene.SideCenter), Start("root"), End("root"), Animated()).
		Joint("pelvis", "root", At(0, 100, 0), Side(scene.SideCenter), Start("pelvis"), End("pelvis"), Animated()).
		Joint("spine_01", "pelvis", At(0, 10, 0), Side(scene.SideCenter), Start("spine"), Animated()).
		Joint("spine_02", "spine_01", At(0, 10, 0), Side(scene.SideCenter), Region("spine"), Animated()).
		Joint("spine_03", "spine_02", At(0, 10, 0), Side(scene.SideCenter), End("spine"), Animated()).
		Joint("neck_01", "spine_03", At(0, 15, 0), Side(scene.SideCenter), Start("neck"), Animated()).
		Joint("head", "neck_01", At(0, 8, 0), Side(scene.SideCenter), End("neck"), Animated())

	for _, s := range []struct {
		side   scene.Side
		suffix string
		x      float64
	}{{scene.SideLeft, "_l", 1}, {scene.SideRight, "_r", -1}} {
		b.Joint("clavicle"+s.suffix, "spine_03", At(5*s.x, 12, 0), Side(s.side), Start("clavicle"), End("clavicle"), Animated()).
			Joint("upperarm"+s.suffix, "clavicle"+s.suffix, At(10*s.x, 0, 0), Side(s.side), Start("arm"), Animated()).
			Joint("upperarm_twist_01"+s.suffix, "upperarm"+s.suffix, At(12*s.x, 0, 0), Side(s.side), Twist("arm")).
			Joint("lowerarm"+s.suffix, "upperarm"+s.suffix, At(25*s.x, 0, 0), Side(s.side), Region("arm"), Animated()).
			Joint("hand"+s.suffix, "lowerarm"+s.suffix, At(25*s.x, 0, 0), Side(s.side), End("arm"), Animated()).
			Joint("thigh"+s.suffix, "pelvis", At(10*s.x, -5, 0), Side(s.side), Start("leg"), Animated()).
			Joint("calf"+s.suffix, "thigh"+s.suffix, At(0, -45, 0), Side(s.side), Region("leg"), Animated()).
			Joint("foot"+s.suffix, "calf"+s.suffix, At(0, -45, 5), Side(s.side), End("leg"), Animated())
	}
	return b
}

// Biped builds the WithBiped skeleton in a fresh scene.
func Biped(t *testing.T) (*scene.Scene, scene.NodeID, *SkeletonBuilder) {
	t.Helper()
	b := NewSkeleton(t).WithBiped()
	sc, root := b.Build()
	return sc, root, b
}

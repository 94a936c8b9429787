package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
)

func TestSkeletonBuilder_Joint(t *testing.T) {
	b := NewSkeleton(t).
		Joint("root", "").
		Joint("spine_01", "root", At(0, 10, 0), Side(scene.SideCenter), Start("spine"), Animated())
	sc, root := b.Build()

	require.Equal(t, "root", sc.Name(root))
	spine := b.ID("spine_01")
	require.Equal(t, root, sc.Node(spine).Parent())
	require.Equal(t, scene.Vec3{0, 10, 0}, sc.Node(spine).Translate())
	require.Equal(t, "spine", sc.Node(spine).Markup().Start)
	require.True(t, sc.Node(spine).Markup().Animated)
	require.True(t, sc.Node(spine).IsJoint())
}

func TestSkeletonBuilder_Options(t *testing.T) {
	b := NewSkeleton(t).
		Joint("grp", "", Group()).
		Joint("twist", "grp", Twist("arm"), Scaled(2, 2, 2)).
		Joint("null", "grp", Null())
	sc, _ := b.Build()

	require.Equal(t, scene.KindGroup, sc.Node(b.ID("grp")).Kind())
	tw := sc.Node(b.ID("twist"))
	require.True(t, tw.Markup().Twist)
	require.Equal(t, "arm", tw.Markup().Region)
	require.Equal(t, scene.Vec3{2, 2, 2}, tw.Scale())
	require.True(t, sc.Node(b.ID("null")).Markup().Null)
}

func TestBiped_IsMirrored(t *testing.T) {
	sc, root, b := Biped(t)

	require.Equal(t, "root", sc.Name(root))
	left := sc.WorldPosition(b.ID("hand_l"))
	right := sc.WorldPosition(b.ID("hand_r"))
	require.Equal(t, left[0], -right[0])
	require.Equal(t, left[1], right[1])
	require.Len(t, sc.Descendants(root), 1+1+3+2+2*8)
}

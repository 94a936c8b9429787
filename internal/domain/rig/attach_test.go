package rig_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/components"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/testutil"
)

// twoRigs builds a driver and a puppet biped in one scene.
func twoRigs(t *testing.T) (*rig.Rig, *rig.Rig) {
	t.Helper()
	sc, root, _ := testutil.Biped(t)
	_, root2 := testutil.NewSkeletonIn(t, sc).WithBiped().Build()
	return newRig(t, sc, root, rig.WithName("driver")), newRig(t, sc, root2, rig.WithName("puppet"))
}

func TestAttachRigs_DrivesMatchingHandles(t *testing.T) {
	driver, puppet := twoRigs(t)
	sc := driver.Scene()
	src := create(t, driver, components.TypeFK, scene.SideLeft, "arm", rig.Args{}).Flags()[0]
	dst := create(t, puppet, components.TypeFK, scene.SideLeft, "arm", rig.Args{}).Flags()[0]

	require.NoError(t, rig.AttachRigs(driver, puppet))
	require.Same(t, driver, puppet.DrivenBy())

	require.NoError(t, sc.SetRotate(src, scene.Vec3{45, 0, 0}))
	sc.SolveConstraints()
	require.Equal(t, scene.Vec3{45, 0, 0}, sc.Node(dst).Rotate())

	require.NoError(t, rig.DetachRig(context.Background(), puppet, false, scene.FrameRange{}))
	require.Nil(t, puppet.DrivenBy())
	require.Empty(t, sc.AllConstraintsOn(dst))

	require.NoError(t, sc.SetRotate(src, scene.Vec3{90, 0, 0}))
	sc.SolveConstraints()
	require.Equal(t, scene.Vec3{45, 0, 0}, sc.Node(dst).Rotate())
}

func TestAttachRigs_FallsBackToSideAndRegion(t *testing.T) {
	driver, puppet := twoRigs(t)
	create(t, driver, components.TypeIK, scene.SideLeft, "leg", rig.Args{})
	leg := create(t, puppet, components.TypeFK, scene.SideLeft, "leg", rig.Args{})

	require.NoError(t, rig.AttachRigs(driver, puppet))
	for _, h := range leg.Flags() {
		require.Len(t, puppet.Scene().AllConstraintsOn(h), 2)
	}
}

func TestAttachRigs_Reattach(t *testing.T) {
	driver, puppet := twoRigs(t)
	create(t, driver, components.TypeFK, scene.SideLeft, "arm", rig.Args{})
	dst := create(t, puppet, components.TypeFK, scene.SideLeft, "arm", rig.Args{}).Flags()[0]

	require.NoError(t, rig.AttachRigs(driver, puppet))
	require.NoError(t, rig.AttachRigs(driver, puppet))
	require.Len(t, puppet.Scene().AllConstraintsOn(dst), 2)
}

func TestAttachRigs_DifferentScene(t *testing.T) {
	a, _ := bipedRig(t)
	b, _ := bipedRig(t)
	require.ErrorIs(t, rig.AttachRigs(a, b), rig.ErrDifferentScene)
}

func TestDetachRig_Bakes(t *testing.T) {
	driver, puppet := twoRigs(t)
	sc := driver.Scene()
	src := create(t, driver, components.TypeFK, scene.SideLeft, "arm", rig.Args{}).Flags()[0]
	dst := create(t, puppet, components.TypeFK, scene.SideLeft, "arm", rig.Args{}).Flags()[0]
	require.NoError(t, sc.SetKey(src, scene.ChanRX, 0, 0))
	require.NoError(t, sc.SetKey(src, scene.ChanRX, 5, 50))

	require.NoError(t, rig.AttachRigs(driver, puppet))
	require.NoError(t, rig.DetachRig(context.Background(), puppet, true, scene.FrameRange{Start: 0, End: 5}))

	require.InDelta(t, 50, sample(t, sc, dst, scene.ChanRX, 5), 1e-6)
	require.InDelta(t, 20, sample(t, sc, dst, scene.ChanRX, 2), 1e-6)
	require.Empty(t, sc.AllConstraintsOn(dst))
}

func TestDetachRig_NotAttached(t *testing.T) {
	r, _ := bipedRig(t)
	require.NoError(t, rig.DetachRig(context.Background(), r, true, scene.FrameRange{}))
}

package rig_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/components"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/testutil"
)

func TestMirrorName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"hand_l", "hand_r", true},
		{"hand_r", "hand_l", true},
		{"hand_lt", "hand_rt", true},
		{"hand_rt", "hand_lt", true},
		{"arm_l_01", "arm_r_01", true},
		{"upperarm_twist_01_l", "upperarm_twist_01_r", true},
		{"spine_01", "spine_01", false},
	}
	for _, tt := range tests {
		got, ok := rig.MirrorName(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func sample(t *testing.T, sc *scene.Scene, id scene.NodeID, ch string, frame int) float64 {
	t.Helper()
	v, err := sc.Sample(id, ch, frame)
	require.NoError(t, err)
	return v
}

func TestMirrorRig_SwapsSides(t *testing.T) {
	r, _ := bipedRig(t)
	sc := r.Scene()
	left := create(t, r, components.TypeFK, scene.SideLeft, "arm", rig.Args{}).Flags()[0]
	right := create(t, r, components.TypeFK, scene.SideRight, "arm", rig.Args{}).Flags()[0]

	require.NoError(t, sc.SetKey(left, scene.ChanRY, 0, 0))
	require.NoError(t, sc.SetKey(left, scene.ChanRY, 10, 20))
	require.NoError(t, sc.SetKey(left, scene.ChanRX, 0, 0))
	require.NoError(t, sc.SetKey(left, scene.ChanRX, 10, 10))
	nodes := sc.Len()

	require.NoError(t, r.MirrorRig(context.Background(), scene.FrameRange{Start: 0, End: 10}))

	assert.InDelta(t, -20, sample(t, sc, right, scene.ChanRY, 10), 1e-6)
	assert.InDelta(t, 10, sample(t, sc, right, scene.ChanRX, 10), 1e-6)
	assert.InDelta(t, 0, sample(t, sc, left, scene.ChanRY, 10), 1e-6)
	assert.InDelta(t, 0, sample(t, sc, left, scene.ChanRX, 10), 1e-6)
	assert.Equal(t, nodes, sc.Len())
}

func TestMirrorRig_CenterFollowsItself(t *testing.T) {
	r, _ := bipedRig(t)
	sc := r.Scene()
	spine := create(t, r, components.TypeFK, scene.SideCenter, "spine", rig.Args{}).Flags()[1]

	require.NoError(t, sc.SetKey(spine, scene.ChanRZ, 0, 0))
	require.NoError(t, sc.SetKey(spine, scene.ChanRZ, 4, 12))
	require.NoError(t, sc.SetKey(spine, scene.ChanRX, 4, 7))

	require.NoError(t, r.MirrorRig(context.Background(), scene.FrameRange{Start: 0, End: 4}))

	assert.InDelta(t, -12, sample(t, sc, spine, scene.ChanRZ, 4), 1e-6)
	assert.InDelta(t, 7, sample(t, sc, spine, scene.ChanRX, 4), 1e-6)
}

func TestMirrorRig_NeedsBaker(t *testing.T) {
	sc, root, _ := testutil.Biped(t)
	r, err := rig.New(sc, root, components.NewRegistry())
	require.NoError(t, err)

	require.ErrorIs(t, r.MirrorRig(context.Background(), scene.FrameRange{}), rig.ErrNoBaker)
}

func TestMirrorRig_NothingAnimated(t *testing.T) {
	r, _ := bipedRig(t)
	create(t, r, components.TypeFK, scene.SideLeft, "arm", rig.Args{})
	before := r.Scene().Len()

	require.NoError(t, r.MirrorRig(context.Background(), scene.FrameRange{Start: 1, End: 0}))
	require.Equal(t, before, r.Scene().Len())
}

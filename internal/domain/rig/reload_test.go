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

// registryWith returns the built-in registry with typ bumped to version, or
// without typ at all when version is 0.
func registryWith(t *testing.T, typ string, version int) *rig.Registry {
	t.Helper()
	reg := rig.NewRegistry()
	for _, def := range components.Definitions() {
		if def.Type == typ {
			if version == 0 {
				continue
			}
			def.Version = version
		}
		require.NoError(t, reg.Register(def))
	}
	return reg
}

func TestValidateRig(t *testing.T) {
	r, _ := bipedRig(t)
	create(t, r, components.TypeWorld, scene.SideCenter, "world", rig.Args{})
	create(t, r, components.TypeFK, scene.SideLeft, "arm", rig.Args{})
	require.Empty(t, r.ValidateRig())

	r.SetRegistry(registryWith(t, components.TypeFK, 3))
	stale := r.ValidateRig()
	require.Equal(t, []rig.StaleComponent{{
		Key:     rig.ComponentKey{Type: components.TypeFK, Side: scene.SideLeft, Region: "arm"},
		Built:   2,
		Current: 3,
	}}, stale)

	r.SetRegistry(registryWith(t, components.TypeWorld, 0))
	stale = r.ValidateRig()
	require.Len(t, stale, 1)
	require.Equal(t, components.TypeWorld, stale[0].Key.Type)
	require.Zero(t, stale[0].Current)
	require.Contains(t, stale[0].String(), "no longer registered")
}

func TestReload_CurrentRigIsLeftAlone(t *testing.T) {
	r, _ := bipedRig(t)
	arm := create(t, r, components.TypeFK, scene.SideLeft, "arm", rig.Args{})
	_, err := r.SerializeRig(false)
	require.NoError(t, err)

	res, err := r.Reload(context.Background(), false, false)
	require.NoError(t, err)
	require.Empty(t, res.Built)
	require.Same(t, arm, r.Find(components.TypeFK, scene.SideLeft, "arm"))
}

func TestReload_Errors(t *testing.T) {
	r, _ := bipedRig(t)
	create(t, r, components.TypeFK, scene.SideLeft, "arm", rig.Args{})

	_, err := r.Reload(context.Background(), true, false)
	require.ErrorIs(t, err, rig.ErrNoDocument)

	_, err = r.SerializeRig(false)
	require.NoError(t, err)
	_, err = r.Reload(context.Background(), true, true)
	require.ErrorIs(t, err, rig.ErrNoSource)
}

func TestReload_RebuildsStaleComponents(t *testing.T) {
	r, _ := bipedRig(t)
	old := create(t, r, components.TypeFK, scene.SideLeft, "arm", rig.Args{})
	_, err := r.SerializeRig(false)
	require.NoError(t, err)

	r.SetRegistry(registryWith(t, components.TypeFK, 3))
	res, err := r.Reload(context.Background(), false, false)
	require.NoError(t, err)
	require.Len(t, res.Built, 1)

	rebuilt := r.Find(components.TypeFK, scene.SideLeft, "arm")
	require.NotSame(t, old, rebuilt)
	require.Equal(t, 3, rebuilt.Version())
	require.Empty(t, r.ValidateRig())
	require.False(t, r.Scene().Exists(old.OffsetGroup()))
}

func TestReload_CarriesAnimation(t *testing.T) {
	r, _ := bipedRig(t, rig.WithAutoDerive(false))
	sc := r.Scene()
	arm := create(t, r, components.TypeFK, scene.SideLeft, "arm", rig.Args{})
	shoulder := arm.Flags()[0]
	require.NoError(t, sc.SetKey(shoulder, scene.ChanRX, 0, 0))
	require.NoError(t, sc.SetKey(shoulder, scene.ChanRX, 10, 30))
	_, err := r.SerializeRig(false)
	require.NoError(t, err)
	nodes := sc.Len()

	_, err = r.Reload(context.Background(), true, false)
	require.NoError(t, err)

	rebuilt := r.Find(components.TypeFK, scene.SideLeft, "arm").Flags()[0]
	require.NotEqual(t, shoulder, rebuilt)
	v, err := sc.Sample(rebuilt, scene.ChanRX, 10)
	require.NoError(t, err)
	require.InDelta(t, 30, v, 1e-6)
	v, err = sc.Sample(rebuilt, scene.ChanRX, 5)
	require.NoError(t, err)
	require.InDelta(t, 15, v, 1e-6)

	for _, id := range sc.IDs() {
		require.NotContains(t, sc.Name(id), "reload_tmp:")
	}
	require.Equal(t, nodes, sc.Len())
}

type bipedSource struct{ t *testing.T }

func (s bipedSource) ImportSkeleton(_ context.Context, sc *scene.Scene) (scene.NodeID, error) {
	_, root := testutil.NewSkeletonIn(s.t, sc).WithBiped().Build()
	return root, nil
}

func TestReload_Full(t *testing.T) {
	r, _ := bipedRig(t, rig.WithSource(bipedSource{t: t}))
	create(t, r, components.TypeFK, scene.SideLeft, "arm", rig.Args{})
	oldRoot := r.SkeletonRoot()
	_, err := r.SerializeRig(false)
	require.NoError(t, err)

	res, err := r.Reload(context.Background(), true, true)
	require.NoError(t, err)
	require.True(t, res.OK())

	require.NotEqual(t, oldRoot, r.SkeletonRoot())
	require.False(t, r.Scene().Exists(oldRoot))
	arm := r.Find(components.TypeFK, scene.SideLeft, "arm")
	h, err := r.Hierarchy()
	require.NoError(t, err)
	require.Equal(t, h.ChainStart(scene.SideLeft, "arm"), arm.Handles()[0].Drives)
}

package rig_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/components"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/skeleton"
)

func noopBuild(*rig.Builder, rig.Args) error { return nil }

func TestRegistry_Register(t *testing.T) {
	reg := rig.NewRegistry()

	require.NoError(t, reg.Register(rig.Definition{Type: "b", Build: noopBuild}))
	require.NoError(t, reg.Register(rig.Definition{Type: "a", Version: 3, Build: noopBuild}))

	def, ok := reg.Lookup("b")
	require.True(t, ok)
	require.Equal(t, 1, def.Version)
	require.Equal(t, []string{"a", "b"}, reg.Types())
	require.Len(t, reg.Definitions(), 2)
	require.Equal(t, "a", reg.Definitions()[0].Type)

	_, ok = reg.Lookup("c")
	require.False(t, ok)
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	reg := rig.NewRegistry()

	require.ErrorIs(t, reg.Register(rig.Definition{Build: noopBuild}), rig.ErrInvalidDefinition)
	require.ErrorIs(t, reg.Register(rig.Definition{Type: "x"}), rig.ErrInvalidDefinition)
	require.ErrorIs(t, reg.Register(rig.Definition{Type: "x", Build: noopBuild, AutoDerived: true}), rig.ErrInvalidDefinition)

	require.NoError(t, reg.Register(rig.Definition{Type: "x", Build: noopBuild}))
	require.ErrorIs(t, reg.Register(rig.Definition{Type: "x", Build: noopBuild}), rig.ErrDuplicateType)
}

func TestRegistry_Derived(t *testing.T) {
	reg := rig.NewRegistry()
	derive := func(*rig.Rig, *skeleton.Hierarchy) error { return nil }
	require.NoError(t, reg.Register(rig.Definition{Type: "plain", Build: noopBuild}))
	require.NoError(t, reg.Register(rig.Definition{Type: "auto", Build: noopBuild, AutoDerived: true, Derive: derive}))

	derived := reg.Derived()
	require.Len(t, derived, 1)
	require.Equal(t, "auto", derived[0].Type)
}

func TestBuiltinRegistry(t *testing.T) {
	reg := components.NewRegistry()

	require.Equal(t, []string{"cog", "fk", "ik", "multiconstraint", "pelvis", "twist", "world"}, reg.Types())
	fk, _ := reg.Lookup(components.TypeFK)
	require.Equal(t, 2, fk.Version)
	mc, _ := reg.Lookup(components.TypeMultiConstraint)
	require.True(t, mc.Nested)

	require.ErrorIs(t, components.Register(reg), rig.ErrDuplicateType)
}

package rig_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
)

func TestArgs_KeepInsertionOrder(t *testing.T) {
	a := rig.NewArgs("b", 1, "a", 2, "c", 3)
	a.Set("a", 20)
	a.Set("d", 4)

	require.Equal(t, []string{"b", "a", "c", "d"}, a.Names())
	v, ok := a.Get("a")
	require.True(t, ok)
	require.Equal(t, 20, v)

	a.Delete("c")
	require.Equal(t, []string{"b", "a", "d"}, a.Names())
	require.False(t, a.Has("c"))
}

func TestArgs_NewArgsIgnoresMalformedPairs(t *testing.T) {
	a := rig.NewArgs("a", 1, 7, "x", "dangling")
	require.Equal(t, []string{"a"}, a.Names())
}

func TestArgs_WithDoesNotMutate(t *testing.T) {
	a := rig.NewArgs("a", 1)
	b := a.With("b", 2)

	require.Equal(t, 1, a.Len())
	require.Equal(t, 2, b.Len())
}

func TestArgs_Visible(t *testing.T) {
	a := rig.NewArgs("keep", true, "internal_hidden", 1, "also", "x")
	require.Equal(t, []string{"keep", "also"}, a.Visible().Names())
}

func TestArgs_TypedGetters(t *testing.T) {
	a := rig.NewArgs(
		"node", scene.NodeID(4),
		"none", scene.NoNode,
		"nodes", []scene.NodeID{1, 2},
		"name", "cog",
		"flag", true,
		"count", 3,
		"ratio", 0.5,
		"list", []any{"a", 1, "b"},
	)

	n, ok := a.Node("node")
	assert.True(t, ok)
	assert.Equal(t, scene.NodeID(4), n)
	_, ok = a.Node("none")
	assert.False(t, ok)
	_, ok = a.Node("name")
	assert.False(t, ok)

	assert.Equal(t, []scene.NodeID{1, 2}, a.Nodes("nodes"))
	assert.Equal(t, []scene.NodeID{4}, a.Nodes("node"))
	assert.Nil(t, a.Nodes("none"))

	assert.Equal(t, "cog", a.String("name", "x"))
	assert.Equal(t, "x", a.String("count", "x"))
	assert.True(t, a.Bool("flag", false))
	assert.True(t, a.Bool("missing", true))
	assert.Equal(t, 3.0, a.Float("count", 0))
	assert.Equal(t, 0.5, a.Float("ratio", 0))
	assert.Equal(t, 9.0, a.Float("name", 9))
	assert.Equal(t, []string{"a", "b"}, a.Strings("list"))
}

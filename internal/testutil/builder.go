// Package testutil provides fixtures shared by package tests: a fluent
// skeleton builder, a biped preset and an in-memory history database.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
)

// SkeletonBuilder accumulates joints and creates them in declaration order.
type SkeletonBuilder struct {
	t      *testing.T
	sc     *scene.Scene
	joints []jointData
	ids    map[string]scene.NodeID
}

// NewSkeleton creates a builder writing into a fresh scene.
func NewSkeleton(t *testing.T) *SkeletonBuilder {
	t.Helper()
	return NewSkeletonIn(t, scene.New())
}

// NewSkeletonIn creates a builder writing into an existing scene.
func NewSkeletonIn(t *testing.T, sc *scene.Scene) *SkeletonBuilder {
	t.Helper()
	return &SkeletonBuilder{t: t, sc: sc, ids: make(map[string]scene.NodeID)}
}

// Joint adds a joint under parent ("" for a top-level joint).
func (b *SkeletonBuilder) Joint(name, parent string, opts ...JointOption) *SkeletonBuilder {
	j := defaultJoint(name, parent)
	for _, opt := range opts {
		opt(&j)
	}
	b.joints = append(b.joints, j)
	return b
}

// Build creates every joint and returns the scene and the first joint's id.
func (b *SkeletonBuilder) Build() (*scene.Scene, scene.NodeID) {
	b.t.Helper()
	require.NotEmpty(b.t, b.joints, "skeleton has no joints")
	for _, j := range b.joints {
		parent := scene.NoNode
		if j.parent != "" {
			p, ok := b.ids[j.parent]
			require.True(b.t, ok, "parent %q of %q not declared before it", j.parent, j.name)
			parent = p
		}
		id, err := b.sc.CreateNode(j.name, j.kind, parent,
			scene.WithTranslate(j.pos), scene.WithScale(j.scale), scene.WithMarkup(j.markup))
		require.NoError(b.t, err)
		b.ids[j.name] = id
	}
	return b.sc, b.ids[b.joints[0].name]
}

// ID returns the id of a built joint.
func (b *SkeletonBuilder) ID(name string) scene.NodeID {
	b.t.Helper()
	id, ok := b.ids[name]
	require.True(b.t, ok, "joint %q not built", name)
	return id
}

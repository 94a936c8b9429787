package skeletonfile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/skeleton"
	"github.com/ncomes/MechanicalArt-sub001/internal/infrastructure/skeletonfile"
	"github.com/ncomes/MechanicalArt-sub001/internal/testutil"
)

func TestExport_Biped(t *testing.T) {
	sc, root, b := testutil.Biped(t)
	require.NoError(t, sc.AddAttr(b.ID("hand_l"), "fingers", 5, 5))

	f, err := skeletonfile.Export(sc, root)
	require.NoError(t, err)
	require.Equal(t, skeletonfile.FormatVersion, f.Version)

	rootJoint, err := f.Root()
	require.NoError(t, err)
	require.Equal(t, "root", rootJoint.Name)

	hand, ok := f.Lookup("hand_l")
	require.True(t, ok)
	require.Equal(t, "lowerarm_l", hand.Parent)
	require.Equal(t, sc.WorldPosition(b.ID("hand_l")), hand.WorldPosition)
	require.Equal(t, []skeletonfile.Attribute{{Name: "fingers", Value: 5, Default: 5}}, hand.Attributes)

	upper, _ := f.Lookup("upperarm_l")
	require.NotNil(t, upper.Markup)
	require.Equal(t, "left", upper.Markup.Side)
	require.Equal(t, "arm", upper.Markup.Start)

	seen := map[string]bool{}
	for _, j := range f.Joints {
		if j.Parent != "" {
			assert.True(t, seen[j.Parent], "parent %s must precede %s", j.Parent, j.Name)
		}
		seen[j.Name] = true
	}
}

func TestExport_SkipsNonJoints(t *testing.T) {
	sc, root, _ := testutil.Biped(t)
	_, err := sc.CreateNode("prop", scene.KindTransform, root)
	require.NoError(t, err)

	f, err := skeletonfile.Export(sc, root)
	require.NoError(t, err)
	_, ok := f.Lookup("prop")
	require.False(t, ok)
}

func TestExport_RootMustBeJoint(t *testing.T) {
	sc := scene.New()
	grp, err := sc.CreateNode("grp", scene.KindGroup, scene.NoNode)
	require.NoError(t, err)

	_, err = skeletonfile.Export(sc, grp)
	require.ErrorIs(t, err, skeletonfile.ErrNotJoint)
}

func TestImport_RoundTrip(t *testing.T) {
	sc, root, b := testutil.Biped(t)
	f, err := skeletonfile.Export(sc, root)
	require.NoError(t, err)

	dst := scene.New()
	newRoot, err := skeletonfile.Import(dst, f, "char")
	require.NoError(t, err)
	require.Equal(t, "char:root", dst.Name(newRoot))
	require.Equal(t, len(f.Joints), len(dst.Descendants(newRoot)))

	hand, ok := dst.FindByName("char:hand_l")
	require.True(t, ok)
	require.True(t, dst.WorldPosition(hand).ApproxEqual(sc.WorldPosition(b.ID("hand_l")), 1e-9))

	again, err := skeletonfile.Export(dst, newRoot)
	require.NoError(t, err)
	require.Equal(t, f, again)

	h, err := skeleton.Parse(dst, newRoot, skeleton.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, h.FullChain(scene.SideLeft, "arm"), 3)
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name string
		file *skeletonfile.File
		want error
	}{
		{"no root", &skeletonfile.File{Joints: []skeletonfile.Joint{{Name: "a", Parent: "b"}}}, skeletonfile.ErrNoRoot},
		{"two roots", &skeletonfile.File{Joints: []skeletonfile.Joint{{Name: "a"}, {Name: "b"}}}, skeletonfile.ErrMultipleRoot},
		{"unknown parent", &skeletonfile.File{Joints: []skeletonfile.Joint{{Name: "a"}, {Name: "c", Parent: "x"}}}, skeletonfile.ErrUnknownParent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := scene.New()
			_, err := skeletonfile.Import(sc, tt.file, "")
			require.ErrorIs(t, err, tt.want)
			require.Zero(t, sc.Len(), "failed import leaves nothing behind")
		})
	}
}

func TestMerge_AddsMissingJoints(t *testing.T) {
	sc, root, b := testutil.Biped(t)
	f, err := skeletonfile.Export(sc, root)
	require.NoError(t, err)
	f.Joints = append(f.Joints,
		skeletonfile.Joint{Name: "prop_l", Parent: "hand_l", WorldPosition: scene.Vec3{30, 0, 0}},
		skeletonfile.Joint{Name: "loose", Parent: "nowhere"},
	)

	added, err := skeletonfile.Merge(sc, root, f)
	require.NoError(t, err)
	require.Len(t, added, 2)

	prop, ok := sc.FindByName("prop_l")
	require.True(t, ok)
	require.Equal(t, b.ID("hand_l"), sc.Node(prop).Parent())
	require.Equal(t, scene.Vec3{30, 0, 0}, sc.WorldPosition(prop))

	loose, ok := sc.FindByName("loose")
	require.True(t, ok)
	require.Equal(t, root, sc.Node(loose).Parent())

	added, err = skeletonfile.Merge(sc, root, f)
	require.NoError(t, err)
	require.Empty(t, added, "second merge finds everything present")
}

func TestRestoreBindPose(t *testing.T) {
	sc, root, b := testutil.Biped(t)
	f, err := skeletonfile.Export(sc, root)
	require.NoError(t, err)

	hand := b.ID("hand_l")
	want := sc.WorldPosition(hand)
	require.NoError(t, sc.SetWorldPosition(hand, scene.Vec3{99, 99, 99}))
	require.NoError(t, sc.SetRotate(hand, scene.Vec3{10, 20, 30}))

	require.NoError(t, skeletonfile.RestoreBindPose(sc, root, f))
	require.Equal(t, want, sc.WorldPosition(hand))
	require.Equal(t, scene.Vec3{}, sc.Node(hand).Rotate())
}

func TestRestoreMarkup(t *testing.T) {
	sc, root, b := testutil.Biped(t)
	f, err := skeletonfile.Export(sc, root)
	require.NoError(t, err)

	upper := b.ID("upperarm_l")
	require.NoError(t, sc.SetMarkup(upper, scene.Markup{}))
	require.NoError(t, sc.AddAttr(upper, "garbage", 1, 0))

	require.NoError(t, skeletonfile.RestoreMarkup(sc, root, f))
	m := sc.Node(upper).Markup()
	require.Equal(t, scene.SideLeft, m.Side)
	require.Equal(t, "arm", m.Start)
	require.Empty(t, sc.AttrNames(upper))
}

func TestWriteRead(t *testing.T) {
	sc, root, _ := testutil.Biped(t)
	f, err := skeletonfile.Export(sc, root)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "skel", "biped.skl")
	require.NoError(t, skeletonfile.Write(path, f))

	back, err := skeletonfile.Read(path)
	require.NoError(t, err)
	require.Equal(t, f, back)
}

func TestWriteRead_Errors(t *testing.T) {
	dir := t.TempDir()

	err := skeletonfile.Write(filepath.Join(dir, "biped.json"), &skeletonfile.File{})
	require.ErrorIs(t, err, skeletonfile.ErrExtension)

	_, err = skeletonfile.Read(filepath.Join(dir, "missing.skl"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.skl")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = skeletonfile.Read(bad)
	require.Error(t, err)
}

func TestSource_ImportSkeleton(t *testing.T) {
	sc, root, _ := testutil.Biped(t)
	f, err := skeletonfile.Export(sc, root)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "biped.skl")
	require.NoError(t, skeletonfile.Write(path, f))

	dst := scene.New()
	src := skeletonfile.NewSource(path, "hero")
	id, err := src.ImportSkeleton(context.Background(), dst)
	require.NoError(t, err)
	require.Equal(t, "hero:root", dst.Name(id))
}

func TestSource_WithReader(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	src := skeletonfile.NewSource("any.skl", "", skeletonfile.WithReader(func(context.Context, string) (*skeletonfile.File, error) {
		calls++
		return nil, boom
	}))

	_, err := src.ImportSkeleton(context.Background(), scene.New())
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.ImportSkeleton(ctx, scene.New())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

package skeleton_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/skeleton"
	"github.com/ncomes/MechanicalArt-sub001/internal/testutil"
)

// mirroredArms builds left/right arm chains with joint i at (x,y,z) and (-x,y,z).
func mirroredArms(t *testing.T) *testutil.SkeletonBuilder {
	t.Helper()
	b := testutil.NewSkeleton(t).Joint("root", "")
	for _, s := range []struct {
		side   scene.Side
		suffix string
		x      float64
	}{{scene.SideLeft, "_l", 1}, {scene.SideRight, "_r", -1}} {
		b.Joint("upperarm"+s.suffix, "root", testutil.At(10*s.x, 140, 0), testutil.Side(s.side), testutil.Start("arm")).
			Joint("lowerarm"+s.suffix, "upperarm"+s.suffix, testutil.At(25*s.x, 0, -2), testutil.Side(s.side), testutil.Region("arm")).
			Joint("hand"+s.suffix, "lowerarm"+s.suffix, testutil.At(25*s.x, 0, 1), testutil.Side(s.side), testutil.End("arm"))
	}
	return b
}

func TestValidate_MirrorClean(t *testing.T) {
	sc, root := mirroredArms(t).Build()

	h, err := skeleton.Parse(sc, root, checked())
	require.NoError(t, err)
	require.Empty(t, h.Report().ByCategory(skeleton.CategoryMirror))
}

func TestValidate_MirrorPerturbed(t *testing.T) {
	b := mirroredArms(t)
	sc, root := b.Build()

	require.NoError(t, sc.SetTranslate(b.ID("hand_r"), scene.Vec3{-25, 2.5, 1}))

	h, err := skeleton.Parse(sc, root, checked())
	require.NoError(t, err)

	mirror := h.Report().ByCategory(skeleton.CategoryMirror)
	require.Len(t, mirror, 1)
	require.Equal(t, []string{"hand_l", "hand_r"}, mirror[0].Nodes)
}

func TestValidate_MirrorWithinTolerance(t *testing.T) {
	b := mirroredArms(t)
	sc, root := b.Build()

	require.NoError(t, sc.SetTranslate(b.ID("hand_r"), scene.Vec3{-25, 1.5, 1}))

	h, err := skeleton.Parse(sc, root, checked())
	require.NoError(t, err)
	require.Empty(t, h.Report().ByCategory(skeleton.CategoryMirror))
}

func TestValidate_MirrorLengthMismatch(t *testing.T) {
	b := mirroredArms(t)
	b.Joint("finger_r", "hand_r", testutil.Side(scene.SideRight), testutil.Region("arm"))
	sc, root := b.Build()
	// Move the end marker so the right chain grows by one.
	require.NoError(t, sc.SetMarkup(b.ID("hand_r"), scene.Markup{Side: scene.SideRight, Region: "arm"}))
	require.NoError(t, sc.SetMarkup(b.ID("finger_r"), scene.Markup{Side: scene.SideRight, End: "arm"}))

	h, err := skeleton.Parse(sc, root, checked())
	require.NoError(t, err)
	require.Len(t, h.FullChain(scene.SideRight, "arm"), 4)
	require.Len(t, h.Report().ByCategory(skeleton.CategoryMirror), 1)
}

func TestValidate_Typo(t *testing.T) {
	sc, root := testutil.NewSkeleton(t).
		Joint("root", "").
		Joint("pasted__spine", "root").
		Joint("spine copy", "root").
		Joint("spine_01", "root").
		Build()

	h, err := skeleton.Parse(sc, root, checked())
	require.NoError(t, err)

	typos := h.Report().ByCategory(skeleton.CategoryTypo)
	require.Len(t, typos, 2, "one violation per node even with several matches")
	require.Equal(t, []string{"pasted__spine"}, typos[0].Nodes)
	require.Equal(t, []string{"spine copy"}, typos[1].Nodes)
}

func TestValidate_TypoDenyListIsConfigurable(t *testing.T) {
	sc, root := testutil.NewSkeleton(t).
		Joint("root", "").
		Joint("spine_tmp", "root").
		Build()

	opts := checked()
	opts.TypoDenyList = []string{"tmp"}
	h, err := skeleton.Parse(sc, root, opts)
	require.NoError(t, err)
	require.Len(t, h.Report().ByCategory(skeleton.CategoryTypo), 1)
}

func TestValidate_Scale(t *testing.T) {
	sc, root := testutil.NewSkeleton(t).
		Joint("root", "").
		Joint("big", "root", testutil.Scaled(1, 2, 1)).
		Build()

	h, err := skeleton.Parse(sc, root, checked())
	require.NoError(t, err)
	scale := h.Report().ByCategory(skeleton.CategoryScale)
	require.Len(t, scale, 1)
	require.Equal(t, []string{"big"}, scale[0].Nodes)
}

func TestValidate_Animated(t *testing.T) {
	sc, root := testutil.NewSkeleton(t).
		Joint("root", "").
		Joint("pelvis", "root", testutil.Animated()).
		Joint("spine", "pelvis", testutil.Animated()).
		Joint("twist", "spine", testutil.Twist("spine"), testutil.Animated()).
		Build()

	h, err := skeleton.Parse(sc, root, checked())
	require.NoError(t, err)

	animated := h.Report().ByCategory(skeleton.CategoryAnimated)
	require.Len(t, animated, 2)
	require.Equal(t, []string{"pelvis"}, animated[0].Nodes, "root is not animated")
	require.Equal(t, []string{"twist"}, animated[1].Nodes)
}

func TestValidate_DuplicateMarkers(t *testing.T) {
	sc, root := testutil.NewSkeleton(t).
		Joint("root", "").
		Joint("a", "root", testutil.Start("tail")).
		Joint("b", "a", testutil.End("tail")).
		Joint("c", "b", testutil.End("tail")).
		Joint("d", "root", testutil.Start("tail")).
		Build()

	h, err := skeleton.Parse(sc, root, checked())
	require.NoError(t, err)
	dups := h.Report().ByCategory(skeleton.CategoryDuplicate)
	require.Len(t, dups, 2)
	require.Equal(t, []string{"b", "c"}, dups[0].Nodes)
	require.Equal(t, []string{"a", "d"}, dups[1].Nodes)
}

func TestValidate_MissingEnd(t *testing.T) {
	sc, root := testutil.NewSkeleton(t).
		Joint("root", "").
		Joint("tail_01", "root", testutil.Start("tail")).
		Joint("tail_02", "tail_01", testutil.Region("tail")).
		Build()

	h, err := skeleton.Parse(sc, root, checked())
	require.NoError(t, err)
	bookend := h.Report().ByCategory(skeleton.CategoryBookend)
	require.Len(t, bookend, 1)
	require.Equal(t, []string{"tail_01"}, bookend[0].Nodes)
}

func TestValidate_Parent(t *testing.T) {
	t.Run("siblings are fine", func(t *testing.T) {
		sc, root := testutil.NewSkeleton(t).
			Joint("root", "").
			Joint("a", "root", testutil.Start("fan")).
			Joint("b", "root", testutil.Region("fan")).
			Joint("c", "root", testutil.End("fan")).
			Build()
		h, err := skeleton.Parse(sc, root, checked())
		require.NoError(t, err)
		require.False(t, h.Report().Has(skeleton.CategoryParent))
	})

	t.Run("mixed topology is flagged", func(t *testing.T) {
		sc, root := testutil.NewSkeleton(t).
			Joint("root", "").
			Joint("a", "root", testutil.Start("fan")).
			Joint("b", "a", testutil.Region("fan")).
			Joint("c", "root", testutil.End("fan")).
			Build()
		h, err := skeleton.Parse(sc, root, checked())
		require.NoError(t, err)
		parent := h.Report().ByCategory(skeleton.CategoryParent)
		require.Len(t, parent, 1)
		require.Equal(t, []string{"a", "c"}, parent[0].Nodes)
	})
}

func TestReport_NilIsEmpty(t *testing.T) {
	var r *skeleton.Report
	require.Zero(t, r.Len())
	require.Nil(t, r.All())
	require.False(t, r.Has(skeleton.CategoryName))
	require.Empty(t, r.Counts())
}

func TestReport_Counts(t *testing.T) {
	r := &skeleton.Report{}
	r.Add(skeleton.CategoryTypo, "x", "a")
	r.Add(skeleton.CategoryTypo, "y", "b")
	r.Add(skeleton.CategoryMirror, "z", "c", "d")

	require.Equal(t, map[skeleton.Category]int{skeleton.CategoryTypo: 2, skeleton.CategoryMirror: 1}, r.Counts())
	require.Equal(t, 3, r.Len())
}

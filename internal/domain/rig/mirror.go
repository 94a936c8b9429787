package rig

import (
	"context"
	"strings"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
)

const (
	mirrorNamespace = "mirror_tmp"
	// mirrorMatchDistance is how far a partner joint may sit from the mirrored
	// position of its counterpart and still be used.
	mirrorMatchDistance = 2.0
)

var sideTokens = [][2]string{{"_lt", "_rt"}, {"_l", "_r"}}

// MirrorName swaps the side token of a joint name. The second result is false
// when the name carries no side token.
func MirrorName(name string) (string, bool) {
	for _, pair := range sideTokens {
		for i, tok := range pair {
			other := pair[1-i]
			if strings.HasSuffix(name, tok) {
				return strings.TrimSuffix(name, tok) + other, true
			}
			if idx := strings.Index(name, tok+"_"); idx >= 0 {
				return name[:idx] + other + name[idx+len(tok):], true
			}
		}
	}
	return name, false
}

// MirrorRig mirrors the animation on the handles across the YZ plane. The
// skeleton is baked to a temporary copy which is then flipped; each handle
// follows the copy of its driven joint's partner on the other side, or of the
// driven joint itself when no partner lies within reach.
func (r *Rig) MirrorRig(ctx context.Context, frames scene.FrameRange) error {
	if !r.Valid() {
		return ErrNotARig
	}
	if r.baker == nil {
		return ErrNoBaker
	}
	if frames.Len() == 0 {
		kr, ok := r.sc.KeyRange(r.AllFlags()...)
		if !ok {
			log.Debug(log.CatRig, "no animation to mirror", "rig", r.name)
			return nil
		}
		frames = kr
	}

	tmp, err := r.captureAnimation(ctx, mirrorNamespace, frames)
	if err != nil {
		return err
	}
	defer tmp.remove()
	if err := r.flipX(tmp); err != nil {
		return err
	}

	match := make(map[scene.NodeID]scene.NodeID)
	for _, c := range r.components {
		if r.derived(c) {
			continue
		}
		for _, hnd := range c.handles {
			if hnd.Drives == scene.NoNode || !r.sc.Exists(hnd.Drives) {
				continue
			}
			if src, ok := r.mirrorSource(tmp, hnd.Drives); ok {
				match[hnd.Node] = src
			}
		}
	}
	log.Info(log.CatRig, "mirroring rig", "rig", r.name, "handles", len(match), "start", frames.Start, "end", frames.End)
	return r.bakeMatched(ctx, match, frames)
}

// mirrorSource picks the copy a handle driving joint should follow.
func (r *Rig) mirrorSource(tmp *tempSkeleton, joint scene.NodeID) (scene.NodeID, bool) {
	base := scene.BaseName(r.sc.Name(joint))
	if partnerName, ok := MirrorName(base); ok {
		if partner, ok := r.sc.FindByName(scene.Namespaced(r.Namespace(), partnerName)); ok {
			want := r.sc.WorldPosition(joint)
			want[0] = -want[0]
			if r.sc.WorldPosition(partner).Sub(want).Length() <= mirrorMatchDistance {
				if src, ok := tmp.byName[partnerName]; ok {
					return src, true
				}
			}
		}
	}
	src, ok := tmp.byName[base]
	return src, ok
}

// flipX negates tx, ry and rz on every node of tmp, keys included.
func (r *Rig) flipX(tmp *tempSkeleton) error {
	for _, id := range r.sc.Descendants(tmp.root) {
		for _, ch := range []string{scene.ChanTX, scene.ChanRY, scene.ChanRZ} {
			v, err := r.sc.ChannelValue(id, ch)
			if err != nil {
				return err
			}
			if err := r.sc.SetChannelValue(id, ch, -v); err != nil {
				return err
			}
			for _, k := range r.sc.Keys(id, ch) {
				if err := r.sc.SetKey(id, ch, k.Frame, -k.Value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

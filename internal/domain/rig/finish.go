package rig

import (
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
	"github.com/ncomes/MechanicalArt-sub001/internal/log"
)

// FollowAttr is the space-switch attribute. ZeroFlags leaves it alone.
const FollowAttr = "follow"

// Display layers filled by FinishRig.
const (
	LayerContact = "contact"
	LayerDetail  = "detail"
)

// Handle color indices.
var (
	roleColors = map[Role]int{
		RoleDetail:  9,
		RoleContact: 14,
		RoleUtility: 19,
		RoleSub:     18,
	}
	sideColors = map[scene.Side]int{
		scene.SideLeft:   6,
		scene.SideRight:  13,
		scene.SideCenter: 17,
		scene.SideFront:  20,
		scene.SideBack:   19,
	}
)

// HandleColor returns the display color for a handle: by role first, then by
// the side of its component. Unknown sides use the center color.
func HandleColor(role Role, side scene.Side) int {
	if c, ok := roleColors[role]; ok {
		return c
	}
	if c, ok := sideColors[side]; ok {
		return c
	}
	return sideColors[scene.SideCenter]
}

// ZeroFlags returns every handle to its rest pose: translate and rotate to 0,
// scale to 1 on unlocked channels, and user attributes to their defaults.
func (r *Rig) ZeroFlags() error {
	if !r.Valid() {
		return ErrNotARig
	}
	for _, hnd := range r.AllFlags() {
		for _, group := range []struct {
			channels []string
			value    float64
		}{
			{scene.TranslateChannels, 0},
			{scene.RotateChannels, 0},
			{scene.ScaleChannels, 1},
		} {
			for _, ch := range group.channels {
				if r.sc.IsLocked(hnd, ch) {
					continue
				}
				if err := r.sc.SetChannelValue(hnd, ch, group.value); err != nil {
					return err
				}
			}
		}
		for _, name := range r.sc.AttrNames(hnd) {
			if name == FollowAttr || r.sc.IsLocked(hnd, name) {
				continue
			}
			a, _ := r.sc.Attr(hnd, name)
			if err := r.sc.SetChannelValue(hnd, name, a.Default); err != nil {
				return err
			}
		}
	}
	return nil
}

// FinishRig colors every handle and sorts contact and detail handles into
// display layers.
func (r *Rig) FinishRig() error {
	if !r.Valid() {
		return ErrNotARig
	}
	r.layers = make(map[string][]scene.NodeID)
	for _, c := range r.components {
		for i := range c.handles {
			hnd := &c.handles[i]
			hnd.Color = HandleColor(hnd.Role, c.side)
			switch hnd.Role {
			case RoleContact:
				r.layers[LayerContact] = append(r.layers[LayerContact], hnd.Node)
			case RoleDetail:
				r.layers[LayerDetail] = append(r.layers[LayerDetail], hnd.Node)
			}
		}
	}
	log.Debug(log.CatRig, "finished rig", "rig", r.name,
		"contact", len(r.layers[LayerContact]), "detail", len(r.layers[LayerDetail]))
	return nil
}

package rig

import (
	"slices"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
)

// Document is the serialized form of a rig. Component order is build order.
type Document struct {
	Version    float64
	Components []Fragment
}

// Fragment is one serialized component.
type Fragment struct {
	Type        string
	Side        scene.Side
	Region      string
	Kwargs      Args
	Attachments Attachments
	Handles     []HandleData
}

// Key returns the component identity the fragment builds.
func (f Fragment) Key() ComponentKey {
	return ComponentKey{Type: f.Type, Side: f.Side, Region: f.Region}
}

// Attachments lists the parents a component is constrained to, per channel.
type Attachments struct {
	Point  []Identifier
	Orient []Identifier
}

// IsZero reports whether there is nothing to attach.
func (a Attachments) IsZero() bool {
	return len(a.Point) == 0 && len(a.Orient) == 0
}

// HandleData is the per-handle state stored with a fragment.
type HandleData struct {
	Index       int
	LockedAttrs []string
	RotateOrder int
	Nested      *Fragment
}

// HandleFor returns the entry for index, falling back to the entry for
// index 0. Nested switches never fall back.
func (f Fragment) HandleFor(index int) (HandleData, bool) {
	var fallback *HandleData
	for i := range f.Handles {
		if f.Handles[i].Index == index {
			return f.Handles[i], true
		}
		if f.Handles[i].Index == 0 && fallback == nil {
			fallback = &f.Handles[i]
		}
	}
	if fallback == nil {
		return HandleData{}, false
	}
	hd := *fallback
	hd.Index = index
	hd.Nested = nil
	return hd, true
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{Version: d.Version, Components: make([]Fragment, len(d.Components))}
	for i, f := range d.Components {
		out.Components[i] = f.clone()
	}
	return out
}

func (f Fragment) clone() Fragment {
	out := f
	out.Kwargs = f.Kwargs.Clone()
	out.Attachments = Attachments{Point: slices.Clone(f.Attachments.Point), Orient: slices.Clone(f.Attachments.Orient)}
	out.Handles = make([]HandleData, len(f.Handles))
	for i, hd := range f.Handles {
		hd.LockedAttrs = slices.Clone(hd.LockedAttrs)
		if hd.Nested != nil {
			n := hd.Nested.clone()
			hd.Nested = &n
		}
		out.Handles[i] = hd
	}
	if len(f.Handles) == 0 {
		out.Handles = nil
	}
	return out
}

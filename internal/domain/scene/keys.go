package scene

import (
	"slices"
	"sort"
)

// Keyframe is one animation key on a channel.
type Keyframe struct {
	Frame int
	Value float64
}

// FrameRange is an inclusive frame interval.
type FrameRange struct {
	Start int
	End   int
}

// Len returns the number of frames in the range.
func (r FrameRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// SetKey keys ch at frame, replacing any key already on that frame.
func (s *Scene) SetKey(id NodeID, ch string, frame int, value float64) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	if _, _, ok := transformSlot(n, ch); !ok {
		if _, ok := n.attrs[ch]; !ok {
			return ErrUnknownChannel
		}
	}
	if n.keys == nil {
		n.keys = make(map[string][]Keyframe)
	}
	keys := n.keys[ch]
	i, found := slices.BinarySearchFunc(keys, frame, func(k Keyframe, f int) int { return k.Frame - f })
	if found {
		keys[i].Value = value
	} else {
		keys = slices.Insert(keys, i, Keyframe{Frame: frame, Value: value})
	}
	n.keys[ch] = keys
	return nil
}

// Keys returns a copy of the keys on ch in frame order.
func (s *Scene) Keys(id NodeID, ch string) []Keyframe {
	n := s.nodes[id]
	if n == nil {
		return nil
	}
	return slices.Clone(n.keys[ch])
}

// KeyedChannels lists channels that carry at least one key, alphabetically.
func (s *Scene) KeyedChannels(id NodeID) []string {
	n := s.nodes[id]
	if n == nil {
		return nil
	}
	var out []string
	for ch, keys := range n.keys {
		if len(keys) > 0 {
			out = append(out, ch)
		}
	}
	sort.Strings(out)
	return out
}

// HasKeys reports whether any channel of id is animated.
func (s *Scene) HasKeys(id NodeID) bool {
	return len(s.KeyedChannels(id)) > 0
}

// ClearKeys removes keys from the given channels, or from every channel when none are given.
func (s *Scene) ClearKeys(id NodeID, channels ...string) {
	n := s.nodes[id]
	if n == nil {
		return
	}
	if len(channels) == 0 {
		n.keys = nil
		return
	}
	for _, ch := range channels {
		delete(n.keys, ch)
	}
}

// KeyRange returns the frame range covered by keys on any of ids.
func (s *Scene) KeyRange(ids ...NodeID) (FrameRange, bool) {
	var r FrameRange
	found := false
	for _, id := range ids {
		n := s.nodes[id]
		if n == nil {
			continue
		}
		for _, keys := range n.keys {
			if len(keys) == 0 {
				continue
			}
			first, last := keys[0].Frame, keys[len(keys)-1].Frame
			if !found {
				r = FrameRange{Start: first, End: last}
				found = true
				continue
			}
			r.Start = min(r.Start, first)
			r.End = max(r.End, last)
		}
	}
	return r, found
}

// Sample evaluates ch at frame. Keys are interpolated linearly and held past
// the ends; an unkeyed channel returns its static value.
func (s *Scene) Sample(id NodeID, ch string, frame int) (float64, error) {
	n, err := s.get(id)
	if err != nil {
		return 0, err
	}
	keys := n.keys[ch]
	if len(keys) == 0 {
		return s.ChannelValue(id, ch)
	}
	if frame <= keys[0].Frame {
		return keys[0].Value, nil
	}
	last := keys[len(keys)-1]
	if frame >= last.Frame {
		return last.Value, nil
	}
	i, found := slices.BinarySearchFunc(keys, frame, func(k Keyframe, f int) int { return k.Frame - f })
	if found {
		return keys[i].Value, nil
	}
	a, b := keys[i-1], keys[i]
	t := float64(frame-a.Frame) / float64(b.Frame-a.Frame)
	return a.Value + (b.Value-a.Value)*t, nil
}

// Evaluate poses the scene at frame: every keyed channel takes its sampled
// value, then constraints are solved until the pose settles.
func (s *Scene) Evaluate(frame int) {
	for _, id := range s.IDs() {
		n := s.nodes[id]
		for ch := range n.keys {
			v, err := s.Sample(id, ch, frame)
			if err != nil {
				continue
			}
			_ = s.SetChannelValue(id, ch, v)
		}
	}
	s.SolveConstraints()
}

// SolveConstraints applies every constraint, repeating passes so chained
// constraints see their targets' solved values.
func (s *Scene) SolveConstraints() {
	ids := make([]ConstraintID, 0, len(s.constraints))
	for cid := range s.constraints {
		ids = append(ids, cid)
	}
	slices.Sort(ids)

	for pass := 0; pass <= len(ids); pass++ {
		changed := false
		for _, cid := range ids {
			if s.solve(s.constraints[cid]) {
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

const solveEpsilon = 1e-9

func (s *Scene) solve(c *Constraint) bool {
	d := s.nodes[c.driven]
	if d == nil || len(c.targets) == 0 {
		return false
	}
	if c.kind == ConstraintPoint {
		goal := s.targetValue(c, func(t NodeID, ch int) float64 { return s.WorldPosition(t)[ch] }).Add(c.offset)
		if s.WorldPosition(c.driven).ApproxEqual(goal, solveEpsilon) {
			return false
		}
		_ = s.SetWorldPosition(c.driven, goal)
		return true
	}
	goal := s.targetValue(c, func(t NodeID, ch int) float64 { return s.nodes[t].rotate[ch] }).Add(c.offset)
	if d.rotate.ApproxEqual(goal, solveEpsilon) {
		return false
	}
	d.rotate = goal
	return true
}

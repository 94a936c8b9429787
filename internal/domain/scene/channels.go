package scene

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// ErrUnknownChannel is returned for a channel that is neither a transform channel nor a user attribute.
var ErrUnknownChannel = errors.New("unknown channel")

// LockChannels locks the given channels.
func (s *Scene) LockChannels(id NodeID, channels ...string) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	if n.locked == nil {
		n.locked = make(map[string]bool)
	}
	for _, ch := range channels {
		n.locked[ch] = true
	}
	return nil
}

// UnlockChannels unlocks the given channels.
func (s *Scene) UnlockChannels(id NodeID, channels ...string) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	for _, ch := range channels {
		delete(n.locked, ch)
	}
	return nil
}

// UnlockAll clears every lock on the node.
func (s *Scene) UnlockAll(id NodeID) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	n.locked = nil
	return nil
}

// IsLocked reports whether ch is locked on id.
func (s *Scene) IsLocked(id NodeID, ch string) bool {
	n := s.nodes[id]
	return n != nil && n.locked[ch]
}

// LockedChannels returns the locked transform channels in TransformChannels
// order, or nil when none are locked.
func (s *Scene) LockedChannels(id NodeID) []string {
	n := s.nodes[id]
	if n == nil {
		return nil
	}
	var out []string
	for _, ch := range TransformChannels {
		if n.locked[ch] {
			out = append(out, ch)
		}
	}
	return out
}

// ChannelValue reads a transform channel or user attribute.
func (s *Scene) ChannelValue(id NodeID, ch string) (float64, error) {
	n, err := s.get(id)
	if err != nil {
		return 0, err
	}
	if v, idx, ok := transformSlot(n, ch); ok {
		return v[idx], nil
	}
	if a, ok := n.attrs[ch]; ok {
		return a.Value, nil
	}
	return 0, fmt.Errorf("%w: %s on %s", ErrUnknownChannel, ch, n.name)
}

// SetChannelValue writes a transform channel or user attribute.
func (s *Scene) SetChannelValue(id NodeID, ch string, value float64) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	if v, idx, ok := transformSlot(n, ch); ok {
		v[idx] = value
		return nil
	}
	if a, ok := n.attrs[ch]; ok {
		a.Value = value
		n.attrs[ch] = a
		return nil
	}
	return fmt.Errorf("%w: %s on %s", ErrUnknownChannel, ch, n.name)
}

func transformSlot(n *Node, ch string) (*Vec3, int, bool) {
	switch ch {
	case ChanTX, ChanTY, ChanTZ:
		return &n.translate, slices.Index(TranslateChannels, ch), true
	case ChanRX, ChanRY, ChanRZ:
		return &n.rotate, slices.Index(RotateChannels, ch), true
	case ChanSX, ChanSY, ChanSZ:
		return &n.scale, slices.Index(ScaleChannels, ch), true
	}
	return nil, 0, false
}

// AddAttr adds (or resets) a user attribute with a default value.
func (s *Scene) AddAttr(id NodeID, name string, value, def float64) error {
	n, err := s.get(id)
	if err != nil {
		return err
	}
	if n.attrs == nil {
		n.attrs = make(map[string]Attr)
	}
	n.attrs[name] = Attr{Value: value, Default: def}
	return nil
}

// Attr returns a user attribute.
func (s *Scene) Attr(id NodeID, name string) (Attr, bool) {
	n := s.nodes[id]
	if n == nil {
		return Attr{}, false
	}
	a, ok := n.attrs[name]
	return a, ok
}

// DeleteAttr removes a user attribute and its keys.
func (s *Scene) DeleteAttr(id NodeID, name string) {
	if n := s.nodes[id]; n != nil {
		delete(n.attrs, name)
		delete(n.keys, name)
	}
}

// AttrNames lists user attributes alphabetically.
func (s *Scene) AttrNames(id NodeID) []string {
	n := s.nodes[id]
	if n == nil {
		return nil
	}
	names := make([]string, 0, len(n.attrs))
	for name := range n.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

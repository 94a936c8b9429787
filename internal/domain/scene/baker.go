package scene

import (
	"context"
	"fmt"
)

// KeyCopyBaker bakes by posing the scene frame by frame and keying the
// resulting channel values. Locked channels are skipped.
type KeyCopyBaker struct{}

// BakeObjects keys nodes over frames. With customAttrs user attributes are
// baked alongside the transform channels.
func (KeyCopyBaker) BakeObjects(ctx context.Context, s *Scene, nodes []NodeID, frames FrameRange, customAttrs bool) error {
	if frames.Len() == 0 {
		return fmt.Errorf("empty frame range %d..%d", frames.Start, frames.End)
	}
	for _, id := range nodes {
		if !s.Exists(id) {
			return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
		}
	}

	type sample struct {
		id    NodeID
		ch    string
		frame int
		value float64
	}
	var samples []sample
	for frame := frames.Start; frame <= frames.End; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Evaluate(frame)
		for _, id := range nodes {
			for _, ch := range s.bakeChannels(id, customAttrs) {
				v, err := s.ChannelValue(id, ch)
				if err != nil {
					return err
				}
				samples = append(samples, sample{id: id, ch: ch, frame: frame, value: v})
			}
		}
	}

	for _, smp := range samples {
		if err := s.SetKey(smp.id, smp.ch, smp.frame, smp.value); err != nil {
			return err
		}
	}
	s.Evaluate(frames.Start)
	return nil
}

func (s *Scene) bakeChannels(id NodeID, customAttrs bool) []string {
	var out []string
	for _, ch := range TransformChannels {
		if !s.IsLocked(id, ch) {
			out = append(out, ch)
		}
	}
	if customAttrs {
		for _, name := range s.AttrNames(id) {
			if !s.IsLocked(id, name) {
				out = append(out, name)
			}
		}
	}
	return out
}

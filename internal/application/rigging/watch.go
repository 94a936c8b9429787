package rigging

import (
	"context"
	"fmt"

	"github.com/ncomes/MechanicalArt-sub001/internal/log"
	"github.com/ncomes/MechanicalArt-sub001/internal/watcher"
)

// Watch builds req, then rebuilds it every time the skeleton or rig file
// changes until ctx is done. Each result is handed to fn.
func (s *RigService) Watch(ctx context.Context, req BuildRequest, fn func(*Session, error)) error {
	cfg := watcher.DefaultConfig(req.Skeleton, req.Rig)
	if s.cfg.Watch.Debounce > 0 {
		cfg.DebounceDur = s.cfg.Watch.Debounce
	}
	w, err := watcher.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return fmt.Errorf("watching rig files: %w", err)
	}

	fn(s.Build(ctx, req))
	for {
		select {
		case <-ctx.Done():
			return nil
		case change := <-changes:
			log.Info(log.CatWatcher, "rebuilding", "changed", change.Paths)
			s.Invalidate(ctx, change.Paths...)
			fn(s.Build(ctx, req))
		}
	}
}

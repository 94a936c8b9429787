package skeletonfile

import (
	"context"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
)

// ReadFunc loads a skeleton file. Read is the default.
type ReadFunc func(ctx context.Context, path string) (*File, error)

// Source imports a skeleton file into a scene for full rig reloads.
type Source struct {
	path      string
	namespace string
	read      ReadFunc
}

var _ rig.Source = (*Source)(nil)

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithReader replaces how the file is read, e.g. with a cached reader.
func WithReader(fn ReadFunc) SourceOption {
	return func(s *Source) { s.read = fn }
}

// NewSource returns a Source importing path under namespace.
func NewSource(path, namespace string, opts ...SourceOption) *Source {
	s := &Source{
		path:      path,
		namespace: namespace,
		read:      func(_ context.Context, path string) (*File, error) { return Read(path) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Path() string { return s.path }

// ImportSkeleton reads the file and creates its joints in sc.
func (s *Source) ImportSkeleton(ctx context.Context, sc *scene.Scene) (scene.NodeID, error) {
	if err := ctx.Err(); err != nil {
		return scene.NoNode, err
	}
	f, err := s.read(ctx, s.path)
	if err != nil {
		return scene.NoNode, err
	}
	return Import(sc, f, s.namespace)
}

package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type loader struct {
	calls int
	err   error
}

func (l *loader) load(_ context.Context, p path) ([]joint, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return []joint{{Name: string(p)}}, nil
}

func TestReadThroughCache_Get(t *testing.T) {
	ctx := context.Background()
	l := &loader{}
	rtc := NewReadThroughCache[path, []joint, path](newCache[[]joint](), l.load, false)

	first, err := rtc.Get(ctx, "hero.skl", "hero.skl", time.Minute)
	require.NoError(t, err)
	second, err := rtc.Get(ctx, "hero.skl", "hero.skl", time.Minute)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, l.calls)
}

func TestReadThroughCache_SkipCache(t *testing.T) {
	ctx := context.Background()
	l := &loader{}
	cache := newCache[[]joint]()
	rtc := NewReadThroughCache[path, []joint, path](cache, l.load, true)

	for range 3 {
		got, err := rtc.GetWithRefresh(ctx, "hero.skl", "hero.skl", time.Minute)
		require.NoError(t, err)
		require.Equal(t, []joint{{Name: "hero.skl"}}, got)
	}
	require.Equal(t, 3, l.calls)
	require.Zero(t, cache.Len())
}

func TestReadThroughCache_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	l := &loader{err: errors.New("unreadable")}
	rtc := NewReadThroughCache[path, []joint, path](newCache[[]joint](), l.load, false)

	_, err := rtc.Get(ctx, "hero.skl", "hero.skl", time.Minute)
	require.ErrorIs(t, err, l.err)

	l.err = nil
	got, err := rtc.Get(ctx, "hero.skl", "hero.skl", time.Minute)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 2, l.calls)
}

func TestReadThroughCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	l := &loader{}
	rtc := NewReadThroughCache[path, []joint, path](newCache[[]joint](), l.load, false)

	_, err := rtc.GetWithRefresh(ctx, "hero.skl", "hero.skl", time.Minute)
	require.NoError(t, err)
	require.NoError(t, rtc.Invalidate(ctx, "hero.skl"))
	_, err = rtc.GetWithRefresh(ctx, "hero.skl", "hero.skl", time.Minute)
	require.NoError(t, err)

	require.Equal(t, 2, l.calls)
}

package store

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func presenceBackends(t *testing.T, clock quartz.Clock) map[string]Presence {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return map[string]Presence{
		"memory": NewMemoryPresence(clock, 0),
		"redis":  NewRedisPresence(rdb, clock, 0),
	}
}

func TestPresenceObserve(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	for name, p := range presenceBackends(t, clock) {
		t.Run(name, func(t *testing.T) {
			snap, err := p.Observe(ctx, "g-"+name, "alice")
			require.NoError(t, err)
			assert.Equal(t, Snapshot{Active: 1}, snap)

			snap, err = p.Observe(ctx, "g-"+name, "bob")
			require.NoError(t, err)
			assert.Equal(t, Snapshot{Active: 2, OtherPresent: true}, snap)

			snap, err = p.Observe(ctx, "g-"+name, "")
			require.NoError(t, err)
			assert.Equal(t, Snapshot{Active: 2, OtherPresent: true}, snap)

			snap, err = p.Observe(ctx, "other-"+name, "")
			require.NoError(t, err)
			assert.Equal(t, Snapshot{}, snap)
		})
	}
}

func TestPresenceStaleClientsDrop(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	backends := presenceBackends(t, clock)
	for name, p := range backends {
		_, err := p.Observe(ctx, "g", "alice")
		require.NoError(t, err, name)
	}

	clock.Advance(4 * time.Second).MustWait(ctx)
	for name, p := range backends {
		snap, err := p.Observe(ctx, "g", "bob")
		require.NoError(t, err, name)
		assert.True(t, snap.OtherPresent, name)
	}

	clock.Advance(3 * time.Second).MustWait(ctx)
	for name, p := range backends {
		snap, err := p.Observe(ctx, "g", "bob")
		require.NoError(t, err, name)
		assert.Equal(t, Snapshot{Active: 1}, snap, name)
	}
}

func TestPresenceForget(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	for name, p := range presenceBackends(t, clock) {
		_, err := p.Observe(ctx, "g", "alice")
		require.NoError(t, err, name)
		require.NoError(t, p.Forget(ctx, "g"), name)
		snap, err := p.Observe(ctx, "g", "")
		require.NoError(t, err, name)
		assert.Zero(t, snap.Active, name)
	}
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := DialRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer rdb.Close()

	_, err = DialRedis(context.Background(), "not a url")
	assert.Error(t, err)
}

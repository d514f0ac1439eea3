package store

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/geobluff/internal/dataset"
	"github.com/park285/geobluff/internal/geobluff"
)

func newSession(t *testing.T, id string) *geobluff.Session {
	t.Helper()
	deck, err := dataset.Default()
	require.NoError(t, err)
	s, err := geobluff.NewSession(id, deck, geobluff.Options{HandSize: 3, Rand: rand.New(rand.NewPCG(1, 1))})
	require.NoError(t, err)
	return s
}

func TestSessionsWithUnknown(t *testing.T) {
	m := NewSessions(quartz.NewMock(t), 0)
	err := m.With("nope", func(*geobluff.Session) error { return nil })
	assert.ErrorIs(t, err, geobluff.ErrUnknownSession)
	assert.EqualError(t, err, "No game in progress")
}

func TestSessionsPutReplaceDelete(t *testing.T) {
	m := NewSessions(quartz.NewMock(t), 0)
	first := newSession(t, "g1")
	m.Put(first)
	assert.Equal(t, 1, m.Len())

	second := newSession(t, "g1")
	m.Put(second)
	assert.Equal(t, 1, m.Len())
	require.NoError(t, m.With("g1", func(s *geobluff.Session) error {
		assert.Same(t, second, s)
		return nil
	}))

	assert.True(t, m.Delete("g1"))
	assert.False(t, m.Delete("g1"))
	assert.Equal(t, 0, m.Len())
}

func TestSessionsPropagatesError(t *testing.T) {
	m := NewSessions(quartz.NewMock(t), 0)
	m.Put(newSession(t, "g1"))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.With("g1", func(*geobluff.Session) error { return boom }), boom)
}

func TestSessionsExpireOnAccess(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	m := NewSessions(clock, time.Minute)
	m.Put(newSession(t, "g1"))

	clock.Advance(50 * time.Second).MustWait(ctx)
	require.NoError(t, m.With("g1", func(*geobluff.Session) error { return nil }))

	clock.Advance(50 * time.Second).MustWait(ctx)
	require.NoError(t, m.With("g1", func(*geobluff.Session) error { return nil }))

	clock.Advance(61 * time.Second).MustWait(ctx)
	err := m.With("g1", func(*geobluff.Session) error { return nil })
	assert.ErrorIs(t, err, geobluff.ErrUnknownSession)
	assert.Equal(t, 0, m.Len())
}

func TestSessionsNoExpiryWithZeroTTL(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	m := NewSessions(clock, 0)
	m.Put(newSession(t, "g1"))
	clock.Advance(24 * time.Hour).MustWait(ctx)
	assert.Empty(t, m.Sweep())
	assert.NoError(t, m.With("g1", func(*geobluff.Session) error { return nil }))
}

func TestSessionsJanitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := quartz.NewMock(t)
	m := NewSessions(clock, time.Minute)
	m.Put(newSession(t, "old"))

	trap := clock.Trap().TickerFunc("janitor")
	defer trap.Close()

	expired := make(chan []string, 1)
	done := make(chan error, 1)
	go func() {
		done <- m.RunJanitor(ctx, time.Minute, func(ids []string) { expired <- ids })
	}()
	call := trap.MustWait(ctx)
	call.MustRelease(ctx)

	clock.Advance(time.Minute).MustWait(ctx)
	m.Put(newSession(t, "fresh"))
	clock.Advance(time.Minute).MustWait(ctx)

	assert.Equal(t, []string{"old"}, <-expired)
	assert.Equal(t, 1, m.Len())

	cancel()
	assert.NoError(t, <-done)
}

func TestSessionsSerializesAccess(t *testing.T) {
	m := NewSessions(quartz.NewMock(t), 0)
	m.Put(newSession(t, "g1"))

	var wg sync.WaitGroup
	counter := 0
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.With("g1", func(*geobluff.Session) error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

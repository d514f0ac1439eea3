package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/redis/go-redis/v9"
)

// RedisPresence keeps one sorted set per session, scored by last-seen unix
// milliseconds, so several server processes share liveness.
type RedisPresence struct {
	rdb    *redis.Client
	clock  quartz.Clock
	window time.Duration
}

func NewRedisPresence(rdb *redis.Client, clock quartz.Clock, window time.Duration) *RedisPresence {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if window <= 0 {
		window = DefaultPresenceWindow
	}
	return &RedisPresence{rdb: rdb, clock: clock, window: window}
}

// DialRedis parses a redis:// URL and checks the server answers.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (p *RedisPresence) key(sessionID string) string {
	return "geobluff:presence:" + strings.TrimSpace(sessionID)
}

func (p *RedisPresence) Observe(ctx context.Context, sessionID, clientID string) (Snapshot, error) {
	now := p.clock.Now().UnixMilli()
	cutoff := now - p.window.Milliseconds()
	key := p.key(sessionID)

	var members *redis.StringSliceCmd
	_, err := p.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(cutoff, 10))
		if clientID != "" {
			pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: clientID})
			pipe.Expire(ctx, key, 10*p.window)
		}
		members = pipe.ZRange(ctx, key, 0, -1)
		return nil
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("presence %s: %w", sessionID, err)
	}
	return summarize(members.Val(), clientID), nil
}

func (p *RedisPresence) Forget(ctx context.Context, sessionID string) error {
	return p.rdb.Del(ctx, p.key(sessionID)).Err()
}

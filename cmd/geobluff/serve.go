package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/park285/geobluff/internal/config"
	"github.com/park285/geobluff/internal/dataset"
	"github.com/park285/geobluff/internal/httpapi"
	"github.com/park285/geobluff/internal/msgcat"
	"github.com/park285/geobluff/internal/obslog"
	"github.com/park285/geobluff/internal/service/game"
	"github.com/park285/geobluff/internal/store"
)

const shutdownTimeout = 5 * time.Second

// ServeCmd flags override the matching environment variables.
type ServeCmd struct {
	Addr            string        `help:"Listen address (GEOBLUFF_ADDR)"`
	Countries       string        `type:"path" help:"Countries JSON file (GEOBLUFF_COUNTRIES_FILE)"`
	Categories      string        `type:"path" help:"Category config YAML file (GEOBLUFF_CATEGORIES_FILE)"`
	Messages        string        `type:"path" help:"Directory of messages.<lang>.yaml overrides (GEOBLUFF_MESSAGES_DIR)"`
	Language        string        `help:"Default language (GEOBLUFF_LANGUAGE)"`
	HandSize        int           `help:"Default hand size (GEOBLUFF_DEFAULT_HAND_SIZE)"`
	SessionTTL      time.Duration `name:"session-ttl" help:"Idle session lifetime, 0 keeps sessions forever (GEOBLUFF_SESSION_TTL)"`
	PresenceTimeout time.Duration `help:"Client liveness window (GEOBLUFF_PRESENCE_TIMEOUT)"`
	RedisURL        string        `name:"redis-url" help:"Share presence through Redis (REDIS_URL)"`
	Debug           bool          `help:"Enable debug logging"`
}

func (c *ServeCmd) apply(cfg *config.AppConfig) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Addr, c.Addr)
	set(&cfg.CountriesFile, c.Countries)
	set(&cfg.CategoriesFile, c.Categories)
	set(&cfg.MessagesDir, c.Messages)
	set(&cfg.Language, c.Language)
	set(&cfg.RedisURL, c.RedisURL)
	if c.HandSize > 0 {
		cfg.DefaultHandSize = c.HandSize
	}
	if c.SessionTTL > 0 {
		cfg.SessionTTL = c.SessionTTL
	}
	if c.PresenceTimeout > 0 {
		cfg.PresenceTimeout = c.PresenceTimeout
	}
	if c.Debug {
		cfg.Log.Level = "debug"
	}
	cfg.Normalize()
}

func (c *ServeCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := obslog.Init(obslog.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Console: cfg.Log.Console,
		File:    cfg.Log.File,
		Caller:  cfg.Log.Caller,
	}); err != nil {
		return err
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deck, err := dataset.Load(cfg.CountriesFile, cfg.CategoriesFile)
	if err != nil {
		return err
	}
	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return err
	}

	clock := quartz.NewReal()
	var presence store.Presence = store.NewMemoryPresence(clock, cfg.PresenceTimeout)
	if cfg.RedisURL != "" {
		rdb, err := store.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		presence = store.NewRedisPresence(rdb, clock, cfg.PresenceTimeout)
	}
	sessions := store.NewSessions(clock, cfg.SessionTTL)

	svc, err := game.NewService(deck, catalog, sessions, presence, game.Config{
		DefaultLanguage: cfg.Language,
		DefaultHandSize: cfg.DefaultHandSize,
	}, logger)
	if err != nil {
		return err
	}
	srv := httpapi.New(svc, logger)

	logger.Info("server_start",
		zap.String("addr", cfg.Addr),
		zap.Int("countries", deck.Len()),
		zap.Int("skipped_countries", deck.Skipped()),
		zap.Strings("categories", deck.CategoryIDs()),
		zap.String("language", cfg.Language),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Bool("redis_presence", cfg.RedisURL != ""),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(cfg.Addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("server_stop")
		return srv.Shutdown(sctx)
	})
	g.Go(func() error {
		every := max(cfg.SessionTTL/4, time.Second)
		return sessions.RunJanitor(gctx, every, func(ids []string) { svc.Expire(gctx, ids) })
	})
	return g.Wait()
}

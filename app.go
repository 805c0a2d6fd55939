package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/trip-dining/agent/agents/selector"
	statex "github.com/tanpawarit/trip-dining/agent/state"
	configx "github.com/tanpawarit/trip-dining/pkg/config"
	googlemapsx "github.com/tanpawarit/trip-dining/pkg/googlemaps"
	logx "github.com/tanpawarit/trip-dining/pkg/logger"
	postgresx "github.com/tanpawarit/trip-dining/pkg/postgres"
)

const (
	backendMemory   = "memory"
	backendUpstash  = "upstash"
	backendPostgres = "postgres"
)

type SessionConfig struct {
	Backend   string        `split_words:"true" default:"memory"`
	TTL       time.Duration `envconfig:"TTL" default:"24h"`
	KeyPrefix string        `split_words:"true"`
}

func (c SessionConfig) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case backendMemory, backendUpstash, backendPostgres:
		return nil
	default:
		return fmt.Errorf("unsupported session backend %q", c.Backend)
	}
}

type app struct {
	backend  string
	places   *googlemapsx.Client
	registry *statex.Registry
	selector *selector.Service
	closers  []func() error
}

func initLogger(stdio bool) error {
	conf, err := configx.New[logx.Config]("LOG")
	if err != nil {
		return fmt.Errorf("load log config: %w", err)
	}
	if stdio {
		logx.UseStderr(*conf)
		return nil
	}
	logx.Init(*conf)
	return nil
}

// newApp wires the places client, the session store and the selector.
// mutate may adjust the selector config before the service is built.
func newApp(ctx context.Context, mutate func(*selector.Config)) (*app, error) {
	a := &app{}

	mapsCfg, err := configx.New[googlemapsx.Config]("GOOGLE_MAPS")
	if err != nil {
		return nil, fmt.Errorf("load google maps config: %w", err)
	}
	a.places, err = googlemapsx.NewClient(*mapsCfg)
	if err != nil {
		return nil, err
	}

	if err := a.openRegistry(ctx); err != nil {
		return nil, err
	}

	selCfg, err := configx.New[selector.Config]("SELECTOR")
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load selector config: %w", err)
	}
	if mutate != nil {
		mutate(selCfg)
	}
	a.selector, err = selector.New(a.places, a.registry, *selCfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	log.Debug().Str("run_id", a.selector.DefaultRunID()).Msg("selector ready")
	return a, nil
}

func (a *app) openRegistry(ctx context.Context) error {
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	a.registry = statex.NewRegistry(store)
	return nil
}

func (a *app) openStore(ctx context.Context) (statex.Store, error) {
	sessCfg, err := configx.New[SessionConfig]("SESSION")
	if err != nil {
		return nil, fmt.Errorf("load session config: %w", err)
	}

	backend := strings.ToLower(strings.TrimSpace(sessCfg.Backend))
	a.backend = backend
	log.Debug().Str("backend", backend).Msg("opening session store")

	switch backend {
	case backendUpstash:
		redisCfg, err := configx.New[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		if err != nil {
			return nil, fmt.Errorf("load upstash config: %w", err)
		}
		return statex.NewUpstashRedisStore(*redisCfg,
			statex.WithKeyPrefix(sessCfg.KeyPrefix),
			statex.WithTTL(sessCfg.TTL),
		)
	case backendPostgres:
		pgCfg, err := configx.New[postgresx.Config]("POSTGRES")
		if err != nil {
			return nil, fmt.Errorf("load postgres config: %w", err)
		}
		db, err := postgresx.Open(ctx, *pgCfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		store := statex.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure postgres schema: %w", err)
		}
		return store, nil
	default:
		return statex.NewMemoryStore(), nil
	}
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			log.Warn().Err(err).Msg("close resource failed")
		}
	}
	a.closers = nil
}

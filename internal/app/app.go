// Package app wires configuration into the running pipeline: store, cache,
// provider client, synchronizer, advice generator and scheduler.
package app

import (
	"context"
	"fmt"
	"strconv"

	"courtside/ingestion/internal/advice"
	"courtside/ingestion/internal/cache"
	"courtside/ingestion/internal/client"
	"courtside/ingestion/internal/config"
	"courtside/ingestion/internal/llm"
	"courtside/ingestion/internal/repository"
	"courtside/ingestion/internal/scheduler"
	"courtside/ingestion/internal/synchronizer"

	"github.com/rs/zerolog/log"
)

// App holds the wired pipeline
type App struct {
	Config    *config.Config
	DB        *repository.Database
	Store     *repository.Store
	Cache     *cache.RedisCache
	Client    *client.Client
	Syncer    *synchronizer.Synchronizer
	Fanout    *scheduler.Fanout
	Advisor   *advice.Generator
	Scheduler *scheduler.Scheduler
}

// DatabaseConfig converts the application config into repository settings
func DatabaseConfig(cfg *config.Config) repository.Config {
	return repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	}
}

// New connects to Postgres, applies migrations and builds every component.
// Redis is optional: when it is unreachable the logo lookup runs uncached.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	dbConfig := DatabaseConfig(cfg)

	if err := repository.Migrate(dbConfig); err != nil {
		return nil, err
	}

	db, err := repository.NewDatabase(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &App{
		Config: cfg,
		DB:     db,
		Store:  db.Store(),
	}

	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		a.Cache = redisCache
		log.Info().Msg("Redis cache connected")
	}

	gate := client.NewGate(cfg.ProviderMinInterval)
	a.Client = client.NewClient(client.Config{
		BaseURL:    cfg.SportradarBaseURL,
		APIKey:     cfg.SportradarAPIKey,
		Timeout:    cfg.SportradarTimeout,
		MaxRetries: cfg.ProviderMaxRetries,
	}, gate)
	log.Info().
		Dur("min_interval", gate.Interval()).
		Msg("Sportradar client initialized")

	opts := []synchronizer.Option{synchronizer.WithCompetitions(cfg.CompetitionIDs)}
	if cfg.LogoLookupEnabled {
		var logoCache client.Cache
		if a.Cache != nil {
			logoCache = a.Cache
		}
		opts = append(opts, synchronizer.WithLogoLookup(
			client.NewLogoResolver(cfg.LogoLookupURL, logoCache, cfg.LogoCacheTTL()),
		))
	}
	a.Syncer = synchronizer.New(a.Client, a.Store, opts...)

	a.Fanout = scheduler.NewFanout(a.Syncer, a.Store, cfg.StatsStaggerInterval, cfg.Location())

	var advisor scheduler.AdviceRunner
	if cfg.AdviceEnabled() {
		a.Advisor = advice.NewGenerator(a.Store, llm.NewClient(llm.Config{
			BaseURL:     cfg.LLMBaseURL,
			APIKey:      cfg.LLMAPIKey,
			Model:       cfg.LLMModel,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
			Timeout:     cfg.LLMTimeout,
		}), cfg.Location())
		advisor = a.Advisor
	} else {
		log.Warn().Msg("LLM_API_KEY not set - advice generation disabled")
	}

	a.Scheduler = scheduler.NewScheduler(cfg, db, a.Store, a.Syncer, a.Fanout, advisor)

	return a, nil
}

// Close releases the cache and the connection pool
func (a *App) Close() {
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
	a.DB.Close()
}

package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"courtside/ingestion/internal/advice"
	"courtside/ingestion/internal/config"
	"courtside/ingestion/internal/metrics"
	"courtside/ingestion/internal/models"
	"courtside/ingestion/internal/repository"
	"courtside/ingestion/internal/synchronizer"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HealthChecker reports whether the store is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Syncer is the synchronizer surface used by the daily sweep
type Syncer interface {
	StatisticsSyncer
	SyncSeasons(ctx context.Context) (synchronizer.Result, error)
	SyncSeason(ctx context.Context, seasonID string) (*models.Season, error)
	SyncCompetitors(ctx context.Context, seasonID string) (synchronizer.Result, error)
	SyncLogos(ctx context.Context, seasonID string) (synchronizer.Result, error)
	SyncPlayers(ctx context.Context, seasonID string) (synchronizer.Result, error)
	SyncUpcomingMatches(ctx context.Context, seasonID string) (synchronizer.Result, error)
}

// AdviceRunner generates the daily advice
type AdviceRunner interface {
	Run(ctx context.Context) (advice.Report, error)
}

// Scheduler runs the daily sweep: seasons, competitors, logos, players,
// upcoming matches, the staggered statistics refresh, then advice.
type Scheduler struct {
	cfg     *config.Config
	health  HealthChecker
	store   *repository.Store
	syncer  Syncer
	fanout  *Fanout
	advisor AdviceRunner
	cron    *cron.Cron
	running atomic.Bool
	now     func() time.Time
}

// NewScheduler creates a new scheduler instance. advisor may be nil.
func NewScheduler(cfg *config.Config, health HealthChecker, store *repository.Store, syncer Syncer, fanout *Fanout, advisor AdviceRunner) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		health:  health,
		store:   store,
		syncer:  syncer,
		fanout:  fanout,
		advisor: advisor,
		cron:    cron.New(cron.WithLocation(cfg.Location())),
		now:     time.Now,
	}
}

// Start schedules the daily sweep
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.DailySyncCron, func() {
		if err := s.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("Daily sync failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule daily sync: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.DailySyncCron).
		Str("timezone", s.cfg.Location().String()).
		Msg("Daily sync scheduled")

	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	log.Info().Msg("Scheduler stopped")
}

// RunOnce performs one full sweep. Only an unreachable store is returned as
// an error; every other failure is logged and the sweep carries on.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		log.Warn().Msg("Sync already running, skipping")
		return nil
	}
	defer s.running.Store(false)

	runID := uuid.NewString()
	start := time.Now()
	logger := log.With().Str("run_id", runID).Logger()

	if err := s.health.Health(ctx); err != nil {
		metrics.RecordError("scheduler", "health")
		return fmt.Errorf("store unavailable: %w", err)
	}

	logger.Info().Msg("Running daily sync...")

	seasons := s.targetSeasons(ctx, logger)

	total := synchronizer.Result{Kind: "sweep"}
	for _, season := range seasons {
		s.syncSeason(ctx, logger, season, &total)
	}

	if s.advisor != nil {
		report, err := s.advisor.Run(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Advice generation failed")
		} else {
			logger.Info().
				Int("generated", report.Generated).
				Int("failed", report.Failed).
				Msg("Advice generated")
		}
	}

	duration := time.Since(start)
	metrics.RecordWorkerRun(duration.Seconds())

	logger.Info().
		Int("seasons", len(seasons)).
		Str("summary", total.Summary()).
		Dur("duration", duration).
		Msg("Daily sync complete")

	return nil
}

// RunSeason syncs a single season and everything below it, skipping advice
func (s *Scheduler) RunSeason(ctx context.Context, seasonID string) (synchronizer.Result, error) {
	logger := log.With().Str("run_id", uuid.NewString()).Logger()
	total := synchronizer.Result{Kind: "season"}

	season, err := s.syncer.SyncSeason(ctx, seasonID)
	if err != nil {
		return total, err
	}

	s.syncSeason(ctx, logger, season, &total)
	logger.Info().
		Str("season_id", season.SpecialID).
		Str("summary", total.Summary()).
		Msg("Season sync complete")

	return total, nil
}

// targetSeasons returns the configured seasons, or every stored season that
// has not ended yet
func (s *Scheduler) targetSeasons(ctx context.Context, logger zerolog.Logger) []*models.Season {
	if len(s.cfg.SeasonIDs) > 0 {
		var seasons []*models.Season
		for _, id := range s.cfg.SeasonIDs {
			season, err := s.syncer.SyncSeason(ctx, id)
			if err != nil {
				logger.Error().Err(err).Str("season_id", id).Msg("Failed to sync season")
				continue
			}
			seasons = append(seasons, season)
		}
		return seasons
	}

	if _, err := s.syncer.SyncSeasons(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to discover seasons")
	}

	today := models.StartOfDay(s.now(), s.cfg.Location())
	seasons, err := s.store.Seasons.ListEndingOnOrAfter(ctx, today)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list active seasons")
		return nil
	}
	return seasons
}

func (s *Scheduler) syncSeason(ctx context.Context, logger zerolog.Logger, season *models.Season, total *synchronizer.Result) {
	steps := []struct {
		name string
		run  func(context.Context, string) (synchronizer.Result, error)
	}{
		{"competitors", s.syncer.SyncCompetitors},
		{"logos", s.syncer.SyncLogos},
		{"players", s.syncer.SyncPlayers},
		{"upcoming_matches", s.syncer.SyncUpcomingMatches},
	}

	for _, step := range steps {
		res, err := step.run(ctx, season.SpecialID)
		total.Add(res)
		if err != nil {
			total.AddErrorf("%s: %v", step.name, err)
			logger.Error().
				Err(err).
				Str("season_id", season.SpecialID).
				Str("step", step.name).
				Msg("Sync step failed")
			metrics.RecordError("scheduler", step.name)
		}
	}

	results, err := s.fanout.RefreshSeasonStatistics(ctx, season)
	if err != nil {
		logger.Error().Err(err).Str("season_id", season.SpecialID).Msg("Statistics refresh failed")
		return
	}
	for _, r := range results {
		if r.Err != nil {
			total.AddErrorf("statistics %s: %v", r.CompetitorID, r.Err)
			continue
		}
		total.Upserted += r.Stats
	}
}

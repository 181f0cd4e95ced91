package scheduler

import (
	"context"
	"fmt"
	"time"

	"courtside/ingestion/internal/models"
	"courtside/ingestion/internal/repository"
	"courtside/ingestion/internal/synchronizer"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// StatisticsSyncer refreshes one competitor's statistics
type StatisticsSyncer interface {
	SyncStatistics(ctx context.Context, seasonID, competitorID string) (synchronizer.Result, error)
}

// CompetitorResult is the outcome of one competitor's refresh. Fresh is set
// when the competitor was already refreshed today and no fetch was issued.
type CompetitorResult struct {
	CompetitorID string
	Stats        int
	Fresh        bool
	Err          error
}

// Fanout refreshes the statistics of every competitor in a season. Unit i
// starts i*stagger after the batch start; all units run concurrently once
// started and a failing unit never cancels its siblings.
type Fanout struct {
	syncer   StatisticsSyncer
	store    *repository.Store
	stagger  time.Duration
	location *time.Location
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewFanout creates a fan-out scheduler. loc defines the calendar day used by
// the freshness guard.
func NewFanout(syncer StatisticsSyncer, store *repository.Store, stagger time.Duration, loc *time.Location) *Fanout {
	return &Fanout{
		syncer:   syncer,
		store:    store,
		stagger:  stagger,
		location: loc,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// RefreshSeasonStatistics runs the staggered refresh for a season and waits
// for every unit to finish. The returned error is reserved for failures that
// prevent the batch from starting.
func (f *Fanout) RefreshSeasonStatistics(ctx context.Context, season *models.Season) ([]CompetitorResult, error) {
	competitors, err := f.store.Competitors.ListBySeason(ctx, season.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitors: %w", err)
	}

	startOfDay := models.StartOfDay(f.now(), f.location)

	results := make([]CompetitorResult, len(competitors))
	var pending []int
	for i, competitor := range competitors {
		results[i].CompetitorID = competitor.SpecialID

		fresh, err := f.store.Statistics.UpdatedSince(ctx, competitor.ID, startOfDay)
		if err != nil {
			results[i].Err = fmt.Errorf("freshness check failed: %w", err)
			continue
		}
		if fresh {
			results[i].Fresh = true
			continue
		}
		pending = append(pending, i)
	}

	log.Info().
		Str("season_id", season.SpecialID).
		Int("competitors", len(competitors)).
		Int("pending", len(pending)).
		Dur("stagger", f.stagger).
		Msg("Starting statistics refresh")

	start := time.Now()

	// The group has no derived context: a unit's provider failure is kept in
	// its result and returns nil, and only an interrupted stagger wait reaches
	// Wait. Siblings keep running either way.
	var g errgroup.Group
	for slot, idx := range pending {
		slot, idx := slot, idx
		g.Go(func() error {
			result := &results[idx]

			if err := f.sleep(ctx, time.Duration(slot)*f.stagger); err != nil {
				result.Err = err
				return err
			}

			res, err := f.syncer.SyncStatistics(ctx, season.SpecialID, result.CompetitorID)
			if err != nil {
				log.Error().
					Err(err).
					Str("competitor_id", result.CompetitorID).
					Msg("Statistics refresh failed")
				result.Err = err
				return nil
			}
			result.Stats = res.Upserted
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn().
			Err(err).
			Str("season_id", season.SpecialID).
			Msg("Statistics refresh interrupted before every competitor started")
	}

	refreshed, fresh, failed := 0, 0, 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Fresh:
			fresh++
		default:
			refreshed++
		}
	}

	log.Info().
		Str("season_id", season.SpecialID).
		Int("refreshed", refreshed).
		Int("fresh", fresh).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Statistics refresh complete")

	return results, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

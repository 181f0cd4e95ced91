package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"courtside/ingestion/internal/models"
	"courtside/ingestion/internal/repository"
	"courtside/ingestion/internal/repository/memstore"
	"courtside/ingestion/internal/synchronizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSyncer struct {
	mu     sync.Mutex
	issued map[string]time.Time
	fail   map[string]error
	delay  map[string]time.Duration
}

func newRecordingSyncer() *recordingSyncer {
	return &recordingSyncer{
		issued: map[string]time.Time{},
		fail:   map[string]error{},
		delay:  map[string]time.Duration{},
	}
}

func (r *recordingSyncer) SyncStatistics(ctx context.Context, seasonID, competitorID string) (synchronizer.Result, error) {
	r.mu.Lock()
	r.issued[competitorID] = time.Now()
	err := r.fail[competitorID]
	delay := r.delay[competitorID]
	r.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return synchronizer.Result{Kind: "statistics"}, err
	}
	return synchronizer.Result{Kind: "statistics", Upserted: 3}, nil
}

func seedCompetitors(t *testing.T, store *repository.Store, ids ...string) *models.Season {
	ctx := context.Background()
	season := &models.Season{SpecialID: "118689", Name: "PL", EndDate: time.Now().AddDate(0, 6, 0)}
	require.NoError(t, store.Seasons.Upsert(ctx, season))

	for _, id := range ids {
		require.NoError(t, store.Competitors.Upsert(ctx, &models.Competitor{SpecialID: id, Name: "Team " + id, SeasonID: season.ID}))
	}
	return season
}

func TestRefreshSeasonStatistics_StaggerAndGuard(t *testing.T) {
	db := memstore.New()
	store := db.Store()
	season := seedCompetitors(t, store, "1", "2", "3", "4")
	ctx := context.Background()

	// Competitor 2 was refreshed earlier today
	fresh, err := store.Competitors.FindBySpecialID(ctx, "2")
	require.NoError(t, err)
	require.NoError(t, store.Statistics.Create(ctx, &models.Statistic{CompetitorID: fresh.ID, Type: "goals_scored", Value: 1}))

	syncer := newRecordingSyncer()
	syncer.fail["3"] = errors.New("external API competitor_statistics returned status 404")

	f := NewFanout(syncer, store, 1200*time.Millisecond, time.UTC)
	var mu sync.Mutex
	var delays []time.Duration
	f.sleep = func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
		return nil
	}

	results, err := f.RefreshSeasonStatistics(ctx, season)
	require.NoError(t, err)
	require.Len(t, results, 4)

	sort.Slice(delays, func(i, j int) bool { return delays[i] < delays[j] })
	assert.Equal(t, []time.Duration{0, 1200 * time.Millisecond, 2400 * time.Millisecond}, delays)

	byID := map[string]CompetitorResult{}
	for _, r := range results {
		byID[r.CompetitorID] = r
	}
	assert.Equal(t, 3, byID["1"].Stats)
	assert.True(t, byID["2"].Fresh)
	assert.Error(t, byID["3"].Err)
	assert.NoError(t, byID["4"].Err)
	assert.Equal(t, 3, byID["4"].Stats)

	_, called := syncer.issued["2"]
	assert.False(t, called, "fresh competitor must not be fetched")
}

func TestRefreshSeasonStatistics_RealTimeStagger(t *testing.T) {
	db := memstore.New()
	store := db.Store()
	season := seedCompetitors(t, store, "1", "2", "3", "4")

	const stagger = 30 * time.Millisecond
	syncer := newRecordingSyncer()
	syncer.delay["1"] = 150 * time.Millisecond

	f := NewFanout(syncer, store, stagger, time.UTC)

	start := time.Now()
	results, err := f.RefreshSeasonStatistics(context.Background(), season)
	elapsed := time.Since(start)
	require.NoError(t, err)
	require.Len(t, results, 4)

	var last time.Time
	for _, issued := range syncer.issued {
		if issued.After(last) {
			last = issued
		}
	}
	assert.GreaterOrEqual(t, last.Sub(start), 3*stagger, "last fetch must wait for its slot")

	// Completion waits for the slowest unit, which started first
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
}

func TestRefreshSeasonStatistics_Cancelled(t *testing.T) {
	db := memstore.New()
	store := db.Store()
	season := seedCompetitors(t, store, "1", "2")

	syncer := newRecordingSyncer()
	f := NewFanout(syncer, store, time.Hour, time.UTC)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	results, err := f.RefreshSeasonStatistics(ctx, season)
	require.NoError(t, err)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, context.DeadlineExceeded)

	// The started unit completes; the interrupted one is never fetched
	assert.Contains(t, syncer.issued, "1")
	assert.NotContains(t, syncer.issued, "2")
}

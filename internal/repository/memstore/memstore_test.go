package memstore

import (
	"context"
	"testing"
	"time"

	"courtside/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertIsIdempotent(t *testing.T) {
	db := New()
	store := db.Store()
	ctx := context.Background()

	season := &models.Season{SpecialID: "118689", Name: "PL", EndDate: time.Now().Add(24 * time.Hour)}
	require.NoError(t, store.Seasons.Upsert(ctx, season))
	firstID := season.ID

	again := &models.Season{SpecialID: "118689", Name: "Premier League", EndDate: season.EndDate}
	require.NoError(t, store.Seasons.Upsert(ctx, again))
	assert.Equal(t, firstID, again.ID)
	assert.Equal(t, 1, db.Counts()["seasons"])

	found, err := store.Seasons.FindBySpecialID(ctx, "118689")
	require.NoError(t, err)
	assert.Equal(t, "Premier League", found.Name)

	missing, err := store.Seasons.FindBySpecialID(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpsertUnchangedKeepsUpdatedAt(t *testing.T) {
	db := New()
	now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	db.Now = func() time.Time { return now }
	store := db.Store()
	ctx := context.Background()

	season := &models.Season{SpecialID: "118689", Name: "PL", EndDate: now.AddDate(0, 6, 0)}
	require.NoError(t, store.Seasons.Upsert(ctx, season))
	competitor := &models.Competitor{SpecialID: "42", Name: "Arsenal FC", SeasonID: season.ID}
	require.NoError(t, store.Competitors.Upsert(ctx, competitor))
	player := &models.Player{SpecialID: "10", Name: "Saka", CompetitorID: competitor.ID}
	require.NoError(t, store.Players.Upsert(ctx, player))
	rival := &models.Competitor{SpecialID: "17", Name: "Manchester City", SeasonID: season.ID}
	require.NoError(t, store.Competitors.Upsert(ctx, rival))
	match := &models.UpcomingMatch{SpecialID: "2", HomeCompetitorID: competitor.ID, AwayCompetitorID: rival.ID, StartTime: now.Add(48 * time.Hour), SeasonID: season.ID}
	require.NoError(t, store.Matches.Upsert(ctx, match))

	created := now
	now = now.Add(time.Hour)

	sameSeason := &models.Season{SpecialID: "118689", Name: "PL", EndDate: season.EndDate}
	require.NoError(t, store.Seasons.Upsert(ctx, sameSeason))
	assert.Equal(t, created, sameSeason.UpdatedAt)

	sameCompetitor := &models.Competitor{SpecialID: "42", Name: "Arsenal FC", SeasonID: season.ID}
	require.NoError(t, store.Competitors.Upsert(ctx, sameCompetitor))
	assert.Equal(t, created, sameCompetitor.UpdatedAt)

	samePlayer := &models.Player{SpecialID: "10", Name: "Saka", CompetitorID: competitor.ID}
	require.NoError(t, store.Players.Upsert(ctx, samePlayer))
	assert.Equal(t, created, samePlayer.UpdatedAt)

	sameMatch := &models.UpcomingMatch{SpecialID: "2", HomeCompetitorID: competitor.ID, AwayCompetitorID: rival.ID, StartTime: match.StartTime, SeasonID: season.ID}
	require.NoError(t, store.Matches.Upsert(ctx, sameMatch))
	assert.Equal(t, created, sameMatch.UpdatedAt)

	// A real change still moves updated_at
	renamed := &models.Player{SpecialID: "10", Name: "Bukayo Saka", CompetitorID: competitor.ID}
	require.NoError(t, store.Players.Upsert(ctx, renamed))
	assert.Equal(t, now, renamed.UpdatedAt)
	assert.Equal(t, created, renamed.CreatedAt)
}

func TestCompetitorUpsertKeepsLogo(t *testing.T) {
	db := New()
	store := db.Store()
	ctx := context.Background()

	season := &models.Season{SpecialID: "1"}
	require.NoError(t, store.Seasons.Upsert(ctx, season))

	c := &models.Competitor{SpecialID: "17", Name: "Arsenal", SeasonID: season.ID}
	require.NoError(t, store.Competitors.Upsert(ctx, c))

	missing, err := store.Competitors.ListMissingLogo(ctx, season.ID)
	require.NoError(t, err)
	assert.Len(t, missing, 1)

	require.NoError(t, store.Competitors.UpdateLogo(ctx, c.ID, "https://img/ars.png"))
	require.NoError(t, store.Competitors.Upsert(ctx, &models.Competitor{SpecialID: "17", Name: "Arsenal FC", SeasonID: season.ID}))

	found, err := store.Competitors.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arsenal FC", found.Name)
	assert.Equal(t, "https://img/ars.png", found.Logo.String)

	missing, err = store.Competitors.ListMissingLogo(ctx, season.ID)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestStatisticCreateRejectsDuplicate(t *testing.T) {
	db := New()
	store := db.Store()
	ctx := context.Background()

	require.NoError(t, store.Statistics.Create(ctx, &models.Statistic{CompetitorID: 1, Type: "goals_scored", Value: 10}))
	assert.Error(t, store.Statistics.Create(ctx, &models.Statistic{CompetitorID: 1, Type: "goals_scored", Value: 12}))
}

func TestUpdatedSinceUsesClock(t *testing.T) {
	db := New()
	now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	db.Now = func() time.Time { return now }
	store := db.Store()
	ctx := context.Background()

	stat := &models.Statistic{CompetitorID: 1, Type: "goals_scored", Value: 10}
	require.NoError(t, store.Statistics.Create(ctx, stat))

	nextDay := time.Date(2024, 10, 2, 0, 0, 0, 0, time.UTC)
	fresh, err := store.Statistics.UpdatedSince(ctx, 1, nextDay)
	require.NoError(t, err)
	assert.False(t, fresh)

	now = nextDay.Add(time.Hour)
	require.NoError(t, store.Statistics.UpdateValue(ctx, stat.ID, 11))

	fresh, err = store.Statistics.UpdatedSince(ctx, 1, nextDay)
	require.NoError(t, err)
	assert.True(t, fresh)
}

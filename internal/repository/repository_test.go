//go:build integration

package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"courtside/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSeasonAndCompetitor(t *testing.T, ctx context.Context, db *Database, specialID string) (*models.Season, *models.Competitor) {
	season := &models.Season{
		SpecialID: "118689",
		Name:      "Premier League 24/25",
		StartDate: time.Date(2024, 8, 16, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2099, 5, 25, 0, 0, 0, 0, time.UTC),
		Year:      "24/25",
	}
	require.NoError(t, db.Seasons.Upsert(ctx, season))

	competitor := &models.Competitor{
		SpecialID: specialID,
		Name:      "Competitor " + specialID,
		SeasonID:  season.ID,
	}
	require.NoError(t, db.Competitors.Upsert(ctx, competitor))

	return season, competitor
}

func TestSeasonRepository_UpsertIdempotent(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	season, _ := seedSeasonAndCompetitor(t, ctx, db, "17")
	firstID := season.ID

	season.Name = "Premier League 2024/25"
	require.NoError(t, db.Seasons.Upsert(ctx, season), "Second upsert should not error")
	assert.Equal(t, firstID, season.ID, "Upsert should keep the same row")

	var count int
	require.NoError(t, db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM seasons`).Scan(&count))
	assert.Equal(t, 1, count)

	found, err := db.Seasons.FindBySpecialID(ctx, "118689")
	require.NoError(t, err)
	assert.Equal(t, "Premier League 2024/25", found.Name)

	active, err := db.Seasons.ListEndingOnOrAfter(ctx, time.Now())
	require.NoError(t, err)
	assert.Len(t, active, 1)

	missing, err := db.Seasons.FindBySpecialID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpsert_UnchangedKeepsUpdatedAt(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	season, competitor := seedSeasonAndCompetitor(t, ctx, db, "42")
	player := &models.Player{SpecialID: "10", Name: "Saka", CompetitorID: competitor.ID}
	require.NoError(t, db.Players.Upsert(ctx, player))
	_, rival := seedSeasonAndCompetitor(t, ctx, db, "17")
	match := &models.UpcomingMatch{
		SpecialID:        "50850053",
		HomeCompetitorID: competitor.ID,
		AwayCompetitorID: rival.ID,
		StartTime:        time.Now().Add(48 * time.Hour).Truncate(time.Second),
		Status:           models.MatchStatusNotStarted,
		SeasonID:         season.ID,
	}
	require.NoError(t, db.Matches.Upsert(ctx, match))

	seasonUpdated, competitorUpdated := season.UpdatedAt, competitor.UpdatedAt
	playerUpdated, matchUpdated := player.UpdatedAt, match.UpdatedAt
	time.Sleep(10 * time.Millisecond)

	seasonID, competitorID, playerID, matchID := season.ID, competitor.ID, player.ID, match.ID
	require.NoError(t, db.Seasons.Upsert(ctx, season))
	require.NoError(t, db.Competitors.Upsert(ctx, competitor))
	require.NoError(t, db.Players.Upsert(ctx, player))
	require.NoError(t, db.Matches.Upsert(ctx, match))

	assert.Equal(t, seasonID, season.ID)
	assert.Equal(t, competitorID, competitor.ID)
	assert.Equal(t, playerID, player.ID)
	assert.Equal(t, matchID, match.ID)
	assert.True(t, seasonUpdated.Equal(season.UpdatedAt), "Unchanged season should keep updated_at")
	assert.True(t, competitorUpdated.Equal(competitor.UpdatedAt), "Unchanged competitor should keep updated_at")
	assert.True(t, playerUpdated.Equal(player.UpdatedAt), "Unchanged player should keep updated_at")
	assert.True(t, matchUpdated.Equal(match.UpdatedAt), "Unchanged match should keep updated_at")

	player.Name = "Bukayo Saka"
	require.NoError(t, db.Players.Upsert(ctx, player))
	assert.True(t, player.UpdatedAt.After(playerUpdated), "A changed player should bump updated_at")
}

func TestCompetitorRepository_UpsertKeepsLogo(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, competitor := seedSeasonAndCompetitor(t, ctx, db, "17")
	require.NoError(t, db.Competitors.UpdateLogo(ctx, competitor.ID, "https://img/17.png"))

	competitor.ShortName = sql.NullString{String: "C17", Valid: true}
	competitor.Logo = sql.NullString{}
	require.NoError(t, db.Competitors.Upsert(ctx, competitor))
	assert.Equal(t, "https://img/17.png", competitor.Logo.String)

	found, err := db.Competitors.FindBySpecialID(ctx, "17")
	require.NoError(t, err)
	assert.Equal(t, "C17", found.ShortName.String)
	assert.Equal(t, "https://img/17.png", found.Logo.String)

	missingLogo, err := db.Competitors.ListMissingLogo(ctx, competitor.SeasonID)
	require.NoError(t, err)
	assert.Empty(t, missingLogo)
}

func TestStatisticRepository_FindThenWrite(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, competitor := seedSeasonAndCompetitor(t, ctx, db, "17")
	before := time.Now().Add(-time.Minute)

	stat, err := db.Statistics.FindFirst(ctx, competitor.ID, "goals_scored")
	require.NoError(t, err)
	assert.Nil(t, stat)

	require.NoError(t, db.Statistics.Create(ctx, &models.Statistic{CompetitorID: competitor.ID, Type: "goals_scored", Value: 10}))

	stat, err = db.Statistics.FindFirst(ctx, competitor.ID, "goals_scored")
	require.NoError(t, err)
	require.NotNil(t, stat)
	require.NoError(t, db.Statistics.UpdateValue(ctx, stat.ID, 12))

	stats, err := db.Statistics.ListByCompetitor(ctx, competitor.ID)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 12.0, stats[0].Value)

	fresh, err := db.Statistics.UpdatedSince(ctx, competitor.ID, before)
	require.NoError(t, err)
	assert.True(t, fresh)

	withStats, err := db.Competitors.ListWithStatistics(ctx)
	require.NoError(t, err)
	assert.Len(t, withStats, 1)
}

func TestMatchRepository_NextForCompetitor(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	season, home := seedSeasonAndCompetitor(t, ctx, db, "17")
	away := &models.Competitor{SpecialID: "42", Name: "Away", SeasonID: season.ID}
	require.NoError(t, db.Competitors.Upsert(ctx, away))

	now := time.Now().UTC()
	later := &models.UpcomingMatch{SpecialID: "2", HomeCompetitorID: away.ID, AwayCompetitorID: home.ID, StartTime: now.Add(48 * time.Hour), Status: models.MatchStatusNotStarted, SeasonID: season.ID}
	sooner := &models.UpcomingMatch{SpecialID: "1", HomeCompetitorID: home.ID, AwayCompetitorID: away.ID, StartTime: now.Add(24 * time.Hour), Status: models.MatchStatusNotStarted, SeasonID: season.ID}
	require.NoError(t, db.Matches.Upsert(ctx, later))
	require.NoError(t, db.Matches.Upsert(ctx, sooner))
	require.NoError(t, db.Matches.Upsert(ctx, sooner))

	next, err := db.Matches.NextForCompetitor(ctx, home.ID, now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "1", next.SpecialID)
	assert.Equal(t, away.ID, next.OpponentOf(home.ID))
}

func TestAdviceRepository_FindSince(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	_, competitor := seedSeasonAndCompetitor(t, ctx, db, "17")
	startOfDay := time.Now().Add(-time.Hour)

	found, err := db.Advice.FindSince(ctx, competitor.ID, startOfDay)
	require.NoError(t, err)
	assert.Nil(t, found)

	require.NoError(t, db.Advice.Create(ctx, &models.CompetitorAdvice{CompetitorID: competitor.ID, Advice: "Strong form", Order: "buy"}))

	found, err = db.Advice.FindSince(ctx, competitor.ID, startOfDay)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "buy", found.Order)
}

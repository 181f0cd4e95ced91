package repository

import (
	"context"
	"time"

	"courtside/ingestion/internal/models"
)

// Finders return (nil, nil) when no row matches.
//
// Upsert methods are keyed on the entity's special_id and are safe to call
// concurrently for the same key: the Postgres implementation relies on
// INSERT ... ON CONFLICT, the in-memory one on a mutex. Calling Upsert twice
// with the same input leaves a single row and does not bump updated_at.

// SeasonStore persists seasons
type SeasonStore interface {
	FindBySpecialID(ctx context.Context, specialID string) (*models.Season, error)
	Upsert(ctx context.Context, season *models.Season) error
	ListEndingOnOrAfter(ctx context.Context, day time.Time) ([]*models.Season, error)
}

// CompetitorStore persists competitors
type CompetitorStore interface {
	FindBySpecialID(ctx context.Context, specialID string) (*models.Competitor, error)
	FindByID(ctx context.Context, id int) (*models.Competitor, error)
	// Upsert never touches the logo column.
	Upsert(ctx context.Context, competitor *models.Competitor) error
	UpdateLogo(ctx context.Context, id int, logo string) error
	ListBySeason(ctx context.Context, seasonID int) ([]*models.Competitor, error)
	ListMissingLogo(ctx context.Context, seasonID int) ([]*models.Competitor, error)
	ListWithStatistics(ctx context.Context) ([]*models.Competitor, error)
}

// PlayerStore persists players
type PlayerStore interface {
	FindBySpecialID(ctx context.Context, specialID string) (*models.Player, error)
	Upsert(ctx context.Context, player *models.Player) error
}

// StatisticStore persists competitor statistics. Uniqueness of
// (competitor_id, type) is maintained by callers via FindFirst followed by
// Create or UpdateValue.
type StatisticStore interface {
	FindFirst(ctx context.Context, competitorID int, statType string) (*models.Statistic, error)
	Create(ctx context.Context, stat *models.Statistic) error
	UpdateValue(ctx context.Context, id int, value float64) error
	ListByCompetitor(ctx context.Context, competitorID int) ([]*models.Statistic, error)
	UpdatedSince(ctx context.Context, competitorID int, since time.Time) (bool, error)
}

// PlayerStatisticStore persists player statistics, keyed by (player_id, type)
type PlayerStatisticStore interface {
	FindFirst(ctx context.Context, playerID int, statType string) (*models.PlayerStatistic, error)
	Create(ctx context.Context, stat *models.PlayerStatistic) error
	UpdateValue(ctx context.Context, id int, value float64) error
}

// MatchStore persists upcoming matches
type MatchStore interface {
	FindBySpecialID(ctx context.Context, specialID string) (*models.UpcomingMatch, error)
	Upsert(ctx context.Context, match *models.UpcomingMatch) error
	NextForCompetitor(ctx context.Context, competitorID int, after time.Time) (*models.UpcomingMatch, error)
}

// AdviceStore persists competitor advice. There is no update path.
type AdviceStore interface {
	FindSince(ctx context.Context, competitorID int, since time.Time) (*models.CompetitorAdvice, error)
	Create(ctx context.Context, advice *models.CompetitorAdvice) error
}

// Store bundles one store per entity kind. It is constructed once and passed
// to every component that reads or writes.
type Store struct {
	Seasons          SeasonStore
	Competitors      CompetitorStore
	Players          PlayerStore
	Statistics       StatisticStore
	PlayerStatistics PlayerStatisticStore
	Matches          MatchStore
	Advice           AdviceStore
}

var (
	_ SeasonStore          = (*SeasonRepository)(nil)
	_ CompetitorStore      = (*CompetitorRepository)(nil)
	_ PlayerStore          = (*PlayerRepository)(nil)
	_ StatisticStore       = (*StatisticRepository)(nil)
	_ PlayerStatisticStore = (*PlayerStatisticRepository)(nil)
	_ MatchStore           = (*MatchRepository)(nil)
	_ AdviceStore          = (*AdviceRepository)(nil)
)

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtside/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// MatchRepository handles upcoming match database operations
type MatchRepository struct {
	db *Database
}

const matchColumns = `id, special_id, home_competitor_id, away_competitor_id, start_time,
	venue, status, season_id, created_at, updated_at`

func scanMatch(row pgx.Row) (*models.UpcomingMatch, error) {
	var m models.UpcomingMatch
	err := row.Scan(
		&m.ID, &m.SpecialID, &m.HomeCompetitorID, &m.AwayCompetitorID,
		&m.StartTime, &m.Venue, &m.Status, &m.SeasonID,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Upsert inserts or updates a match keyed on special_id. An unchanged row
// keeps its updated_at.
func (r *MatchRepository) Upsert(ctx context.Context, match *models.UpcomingMatch) error {
	query := `
		WITH upserted AS (
			INSERT INTO upcoming_matches (
				special_id, home_competitor_id, away_competitor_id, start_time,
				venue, status, season_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (special_id) DO UPDATE SET
				home_competitor_id = EXCLUDED.home_competitor_id,
				away_competitor_id = EXCLUDED.away_competitor_id,
				start_time = EXCLUDED.start_time,
				venue = EXCLUDED.venue,
				status = EXCLUDED.status,
				season_id = EXCLUDED.season_id,
				updated_at = NOW()
			WHERE (upcoming_matches.home_competitor_id, upcoming_matches.away_competitor_id, upcoming_matches.start_time, upcoming_matches.venue, upcoming_matches.status, upcoming_matches.season_id)
				IS DISTINCT FROM (EXCLUDED.home_competitor_id, EXCLUDED.away_competitor_id, EXCLUDED.start_time, EXCLUDED.venue, EXCLUDED.status, EXCLUDED.season_id)
			RETURNING id, created_at, updated_at
		)
		SELECT id, created_at, updated_at FROM upserted
		UNION ALL
		SELECT id, created_at, updated_at FROM upcoming_matches
		WHERE special_id = $1 AND NOT EXISTS (SELECT 1 FROM upserted)
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		match.SpecialID, match.HomeCompetitorID, match.AwayCompetitorID,
		match.StartTime, match.Venue, match.Status, match.SeasonID,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert upcoming match: %w", err)
	}

	log.Debug().
		Int("id", match.ID).
		Str("special_id", match.SpecialID).
		Time("start_time", match.StartTime).
		Msg("Upcoming match upserted")

	return nil
}

// FindBySpecialID retrieves a match by its provider identifier
func (r *MatchRepository) FindBySpecialID(ctx context.Context, specialID string) (*models.UpcomingMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM upcoming_matches WHERE special_id = $1`

	match, err := scanMatch(r.db.Pool.QueryRow(ctx, query, specialID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming match: %w", err)
	}

	return match, nil
}

// NextForCompetitor retrieves the earliest match involving the competitor
// that starts after the given time
func (r *MatchRepository) NextForCompetitor(ctx context.Context, competitorID int, after time.Time) (*models.UpcomingMatch, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM upcoming_matches
		WHERE (home_competitor_id = $1 OR away_competitor_id = $1)
		  AND start_time > $2
		ORDER BY start_time ASC
		LIMIT 1
	`

	match, err := scanMatch(r.db.Pool.QueryRow(ctx, query, competitorID, after))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next match: %w", err)
	}

	return match, nil
}

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

// SeasonRepository handles season database operations
type SeasonRepository struct {
	db *Database
}

const seasonColumns = `id, special_id, name, start_date, end_date, year, competition_id, created_at, updated_at`

func scanSeason(row pgx.Row) (*models.Season, error) {
	var season models.Season
	err := row.Scan(
		&season.ID, &season.SpecialID, &season.Name, &season.StartDate,
		&season.EndDate, &season.Year, &season.CompetitionID,
		&season.CreatedAt, &season.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &season, nil
}

// Upsert inserts or updates a season keyed on special_id. An unchanged row
// keeps its updated_at.
func (r *SeasonRepository) Upsert(ctx context.Context, season *models.Season) error {
	query := `
		WITH upserted AS (
			INSERT INTO seasons (special_id, name, start_date, end_date, year, competition_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (special_id) DO UPDATE SET
				name = EXCLUDED.name,
				start_date = EXCLUDED.start_date,
				end_date = EXCLUDED.end_date,
				year = EXCLUDED.year,
				competition_id = EXCLUDED.competition_id,
				updated_at = NOW()
			WHERE (seasons.name, seasons.start_date, seasons.end_date, seasons.year, seasons.competition_id)
				IS DISTINCT FROM (EXCLUDED.name, EXCLUDED.start_date, EXCLUDED.end_date, EXCLUDED.year, EXCLUDED.competition_id)
			RETURNING id, created_at, updated_at
		)
		SELECT id, created_at, updated_at FROM upserted
		UNION ALL
		SELECT id, created_at, updated_at FROM seasons
		WHERE special_id = $1 AND NOT EXISTS (SELECT 1 FROM upserted)
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		season.SpecialID, season.Name, season.StartDate, season.EndDate,
		season.Year, season.CompetitionID,
	).Scan(&season.ID, &season.CreatedAt, &season.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert season: %w", err)
	}

	log.Debug().
		Int("id", season.ID).
		Str("special_id", season.SpecialID).
		Str("name", season.Name).
		Msg("Season upserted")

	return nil
}

// FindBySpecialID retrieves a season by its provider identifier
func (r *SeasonRepository) FindBySpecialID(ctx context.Context, specialID string) (*models.Season, error) {
	query := `SELECT ` + seasonColumns + ` FROM seasons WHERE special_id = $1`

	season, err := scanSeason(r.db.Pool.QueryRow(ctx, query, specialID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season: %w", err)
	}

	return season, nil
}

// ListEndingOnOrAfter retrieves seasons that have not ended before day
func (r *SeasonRepository) ListEndingOnOrAfter(ctx context.Context, day time.Time) ([]*models.Season, error) {
	query := `SELECT ` + seasonColumns + ` FROM seasons WHERE end_date >= $1 ORDER BY start_date`

	y, m, d := day.Date()
	rows, err := r.db.Pool.Query(ctx, query, time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	var seasons []*models.Season
	for rows.Next() {
		season, err := scanSeason(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, season)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating seasons: %w", err)
	}

	return seasons, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"courtside/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// CompetitorRepository handles competitor database operations
type CompetitorRepository struct {
	db *Database
}

const competitorColumns = `c.id, c.special_id, c.name, c.short_name, c.abbreviation, c.gender,
	c.country, c.country_code, c.logo, c.season_id, c.created_at, c.updated_at`

func scanCompetitor(row pgx.Row) (*models.Competitor, error) {
	var c models.Competitor
	err := row.Scan(
		&c.ID, &c.SpecialID, &c.Name, &c.ShortName, &c.Abbreviation, &c.Gender,
		&c.Country, &c.CountryCode, &c.Logo, &c.SeasonID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert inserts or updates a competitor keyed on special_id. The logo is
// owned by the logo lookup and is left untouched here. An unchanged row keeps
// its updated_at.
func (r *CompetitorRepository) Upsert(ctx context.Context, competitor *models.Competitor) error {
	query := `
		WITH upserted AS (
			INSERT INTO competitors (
				special_id, name, short_name, abbreviation, gender,
				country, country_code, season_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (special_id) DO UPDATE SET
				name = EXCLUDED.name,
				short_name = EXCLUDED.short_name,
				abbreviation = EXCLUDED.abbreviation,
				gender = EXCLUDED.gender,
				country = EXCLUDED.country,
				country_code = EXCLUDED.country_code,
				season_id = EXCLUDED.season_id,
				updated_at = NOW()
			WHERE (competitors.name, competitors.short_name, competitors.abbreviation, competitors.gender, competitors.country, competitors.country_code, competitors.season_id)
				IS DISTINCT FROM (EXCLUDED.name, EXCLUDED.short_name, EXCLUDED.abbreviation, EXCLUDED.gender, EXCLUDED.country, EXCLUDED.country_code, EXCLUDED.season_id)
			RETURNING id, logo, created_at, updated_at
		)
		SELECT id, logo, created_at, updated_at FROM upserted
		UNION ALL
		SELECT id, logo, created_at, updated_at FROM competitors
		WHERE special_id = $1 AND NOT EXISTS (SELECT 1 FROM upserted)
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		competitor.SpecialID, competitor.Name, competitor.ShortName,
		competitor.Abbreviation, competitor.Gender, competitor.Country,
		competitor.CountryCode, competitor.SeasonID,
	).Scan(&competitor.ID, &competitor.Logo, &competitor.CreatedAt, &competitor.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert competitor: %w", err)
	}

	log.Debug().
		Int("id", competitor.ID).
		Str("special_id", competitor.SpecialID).
		Str("name", competitor.Name).
		Msg("Competitor upserted")

	return nil
}

// UpdateLogo sets the competitor logo
func (r *CompetitorRepository) UpdateLogo(ctx context.Context, id int, logo string) error {
	query := `UPDATE competitors SET logo = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query, id, logo)
	if err != nil {
		return fmt.Errorf("failed to update competitor logo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("competitor not found: id=%d", id)
	}

	return nil
}

// FindBySpecialID retrieves a competitor by its provider identifier
func (r *CompetitorRepository) FindBySpecialID(ctx context.Context, specialID string) (*models.Competitor, error) {
	query := `SELECT ` + competitorColumns + ` FROM competitors c WHERE c.special_id = $1`

	competitor, err := scanCompetitor(r.db.Pool.QueryRow(ctx, query, specialID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competitor: %w", err)
	}

	return competitor, nil
}

// FindByID retrieves a competitor by its database ID
func (r *CompetitorRepository) FindByID(ctx context.Context, id int) (*models.Competitor, error) {
	query := `SELECT ` + competitorColumns + ` FROM competitors c WHERE c.id = $1`

	competitor, err := scanCompetitor(r.db.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competitor: %w", err)
	}

	return competitor, nil
}

// ListBySeason retrieves the competitors of a season in insertion order
func (r *CompetitorRepository) ListBySeason(ctx context.Context, seasonID int) ([]*models.Competitor, error) {
	query := `SELECT ` + competitorColumns + ` FROM competitors c WHERE c.season_id = $1 ORDER BY c.id`
	return r.list(ctx, query, seasonID)
}

// ListMissingLogo retrieves the competitors of a season without a logo
func (r *CompetitorRepository) ListMissingLogo(ctx context.Context, seasonID int) ([]*models.Competitor, error) {
	query := `SELECT ` + competitorColumns + ` FROM competitors c WHERE c.season_id = $1 AND c.logo IS NULL ORDER BY c.id`
	return r.list(ctx, query, seasonID)
}

// ListWithStatistics retrieves every competitor with at least one statistic
func (r *CompetitorRepository) ListWithStatistics(ctx context.Context) ([]*models.Competitor, error) {
	query := `
		SELECT ` + competitorColumns + `
		FROM competitors c
		WHERE EXISTS (SELECT 1 FROM statistics s WHERE s.competitor_id = c.id)
		ORDER BY c.id
	`
	return r.list(ctx, query)
}

func (r *CompetitorRepository) list(ctx context.Context, query string, args ...any) ([]*models.Competitor, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitors: %w", err)
	}
	defer rows.Close()

	var competitors []*models.Competitor
	for rows.Next() {
		competitor, err := scanCompetitor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan competitor: %w", err)
		}
		competitors = append(competitors, competitor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating competitors: %w", err)
	}

	return competitors, nil
}

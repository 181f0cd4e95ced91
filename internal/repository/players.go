package repository

import (
	"context"
	"errors"
	"fmt"

	"courtside/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// PlayerRepository handles player database operations
type PlayerRepository struct {
	db *Database
}

// Upsert inserts or updates a player keyed on special_id. An unchanged row
// keeps its updated_at.
func (r *PlayerRepository) Upsert(ctx context.Context, player *models.Player) error {
	query := `
		WITH upserted AS (
			INSERT INTO players (special_id, name, competitor_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (special_id) DO UPDATE SET
				name = EXCLUDED.name,
				competitor_id = EXCLUDED.competitor_id,
				updated_at = NOW()
			WHERE (players.name, players.competitor_id)
				IS DISTINCT FROM (EXCLUDED.name, EXCLUDED.competitor_id)
			RETURNING id, created_at, updated_at
		)
		SELECT id, created_at, updated_at FROM upserted
		UNION ALL
		SELECT id, created_at, updated_at FROM players
		WHERE special_id = $1 AND NOT EXISTS (SELECT 1 FROM upserted)
	`

	err := r.db.Pool.QueryRow(ctx, query, player.SpecialID, player.Name, player.CompetitorID).
		Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	return nil
}

// FindBySpecialID retrieves a player by its provider identifier
func (r *PlayerRepository) FindBySpecialID(ctx context.Context, specialID string) (*models.Player, error) {
	query := `
		SELECT id, special_id, name, competitor_id, created_at, updated_at
		FROM players
		WHERE special_id = $1
	`

	var player models.Player
	err := r.db.Pool.QueryRow(ctx, query, specialID).Scan(
		&player.ID, &player.SpecialID, &player.Name, &player.CompetitorID,
		&player.CreatedAt, &player.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return &player, nil
}

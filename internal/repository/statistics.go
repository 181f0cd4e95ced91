package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtside/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// StatisticRepository handles competitor statistic database operations
type StatisticRepository struct {
	db *Database
}

// FindFirst retrieves the statistic row for (competitorID, statType)
func (r *StatisticRepository) FindFirst(ctx context.Context, competitorID int, statType string) (*models.Statistic, error) {
	query := `
		SELECT id, competitor_id, type, value, created_at, updated_at
		FROM statistics
		WHERE competitor_id = $1 AND type = $2
		ORDER BY id
		LIMIT 1
	`

	var stat models.Statistic
	err := r.db.Pool.QueryRow(ctx, query, competitorID, statType).Scan(
		&stat.ID, &stat.CompetitorID, &stat.Type, &stat.Value,
		&stat.CreatedAt, &stat.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statistic: %w", err)
	}

	return &stat, nil
}

// Create inserts a new statistic
func (r *StatisticRepository) Create(ctx context.Context, stat *models.Statistic) error {
	query := `
		INSERT INTO statistics (competitor_id, type, value)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query, stat.CompetitorID, stat.Type, stat.Value).
		Scan(&stat.ID, &stat.CreatedAt, &stat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create statistic: %w", err)
	}

	return nil
}

// UpdateValue sets the value of an existing statistic and refreshes updated_at
func (r *StatisticRepository) UpdateValue(ctx context.Context, id int, value float64) error {
	query := `UPDATE statistics SET value = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, id, value); err != nil {
		return fmt.Errorf("failed to update statistic: %w", err)
	}

	return nil
}

// ListByCompetitor retrieves every statistic of a competitor ordered by type
func (r *StatisticRepository) ListByCompetitor(ctx context.Context, competitorID int) ([]*models.Statistic, error) {
	query := `
		SELECT id, competitor_id, type, value, created_at, updated_at
		FROM statistics
		WHERE competitor_id = $1
		ORDER BY type
	`

	rows, err := r.db.Pool.Query(ctx, query, competitorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statistics: %w", err)
	}
	defer rows.Close()

	var stats []*models.Statistic
	for rows.Next() {
		var stat models.Statistic
		err := rows.Scan(
			&stat.ID, &stat.CompetitorID, &stat.Type, &stat.Value,
			&stat.CreatedAt, &stat.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statistic: %w", err)
		}
		stats = append(stats, &stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statistics: %w", err)
	}

	return stats, nil
}

// UpdatedSince reports whether any statistic of the competitor was written at
// or after since
func (r *StatisticRepository) UpdatedSince(ctx context.Context, competitorID int, since time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM statistics WHERE competitor_id = $1 AND updated_at >= $2)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, competitorID, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check statistic freshness: %w", err)
	}

	return exists, nil
}

// PlayerStatisticRepository handles player statistic database operations
type PlayerStatisticRepository struct {
	db *Database
}

// FindFirst retrieves the statistic row for (playerID, statType)
func (r *PlayerStatisticRepository) FindFirst(ctx context.Context, playerID int, statType string) (*models.PlayerStatistic, error) {
	query := `
		SELECT id, player_id, type, value, created_at, updated_at
		FROM player_statistics
		WHERE player_id = $1 AND type = $2
		ORDER BY id
		LIMIT 1
	`

	var stat models.PlayerStatistic
	err := r.db.Pool.QueryRow(ctx, query, playerID, statType).Scan(
		&stat.ID, &stat.PlayerID, &stat.Type, &stat.Value,
		&stat.CreatedAt, &stat.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player statistic: %w", err)
	}

	return &stat, nil
}

// Create inserts a new player statistic
func (r *PlayerStatisticRepository) Create(ctx context.Context, stat *models.PlayerStatistic) error {
	query := `
		INSERT INTO player_statistics (player_id, type, value)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query, stat.PlayerID, stat.Type, stat.Value).
		Scan(&stat.ID, &stat.CreatedAt, &stat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create player statistic: %w", err)
	}

	return nil
}

// UpdateValue sets the value of an existing player statistic
func (r *PlayerStatisticRepository) UpdateValue(ctx context.Context, id int, value float64) error {
	query := `UPDATE player_statistics SET value = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, id, value); err != nil {
		return fmt.Errorf("failed to update player statistic: %w", err)
	}

	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtside/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
)

// AdviceRepository handles competitor advice database operations
type AdviceRepository struct {
	db *Database
}

// Create inserts a new advice row
func (r *AdviceRepository) Create(ctx context.Context, advice *models.CompetitorAdvice) error {
	query := `
		INSERT INTO competitor_advice (competitor_id, advice, "order")
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query, advice.CompetitorID, advice.Advice, advice.Order).
		Scan(&advice.ID, &advice.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create competitor advice: %w", err)
	}

	return nil
}

// FindSince retrieves the latest advice created at or after since
func (r *AdviceRepository) FindSince(ctx context.Context, competitorID int, since time.Time) (*models.CompetitorAdvice, error) {
	query := `
		SELECT id, competitor_id, advice, "order", created_at
		FROM competitor_advice
		WHERE competitor_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var advice models.CompetitorAdvice
	err := r.db.Pool.QueryRow(ctx, query, competitorID, since).Scan(
		&advice.ID, &advice.CompetitorID, &advice.Advice, &advice.Order, &advice.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competitor advice: %w", err)
	}

	return &advice, nil
}

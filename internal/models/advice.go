package models

import "time"

// CompetitorAdvice is a generated trading signal for a competitor. At most one
// row is written per competitor per calendar day.
type CompetitorAdvice struct {
	ID           int       `db:"id"`
	CompetitorID int       `db:"competitor_id"`
	Advice       string    `db:"advice"`
	Order        string    `db:"order"`
	CreatedAt    time.Time `db:"created_at"`
}

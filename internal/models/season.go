package models

import (
	"fmt"
	"time"

	"courtside/ingestion/internal/identifier"
)

// Season represents a competition season (e.g. Premier League 24/25)
type Season struct {
	ID            int       `db:"id"`
	SpecialID     string    `db:"special_id"`
	Name          string    `db:"name"`
	StartDate     time.Time `db:"start_date"`
	EndDate       time.Time `db:"end_date"`
	Year          string    `db:"year"`
	CompetitionID string    `db:"competition_id"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// SeasonInput is a season as returned by the provider
type SeasonInput struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Year          string `json:"year"`
	CompetitionID string `json:"competition_id"`
}

// SeasonsResponse is the body of /seasons.json
type SeasonsResponse struct {
	Seasons []SeasonInput `json:"seasons"`
}

// SeasonInfoResponse is the body of /seasons/{id}/info.json
type SeasonInfoResponse struct {
	Season SeasonInput `json:"season"`
}

const providerDateLayout = "2006-01-02"

// ToSeason converts SeasonInput (from API) to Season model
func (si *SeasonInput) ToSeason() (*Season, error) {
	start, err := time.Parse(providerDateLayout, si.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date %q: %w", si.StartDate, err)
	}
	end, err := time.Parse(providerDateLayout, si.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end_date %q: %w", si.EndDate, err)
	}

	return &Season{
		SpecialID:     identifier.Strip(si.ID, identifier.Season),
		Name:          si.Name,
		StartDate:     start,
		EndDate:       end,
		Year:          si.Year,
		CompetitionID: identifier.Strip(si.CompetitionID, identifier.Competition),
	}, nil
}

// IsActiveOn reports whether the season has not ended before day
func (s *Season) IsActiveOn(day time.Time) bool {
	y, m, d := day.Date()
	return !s.EndDate.Before(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

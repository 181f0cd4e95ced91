package models

import (
	"database/sql"
	"time"

	"courtside/ingestion/internal/identifier"
)

// Competitor represents a team taking part in a season
type Competitor struct {
	ID           int            `db:"id"`
	SpecialID    string         `db:"special_id"`
	Name         string         `db:"name"`
	ShortName    sql.NullString `db:"short_name"`
	Abbreviation sql.NullString `db:"abbreviation"`
	Gender       sql.NullString `db:"gender"`
	Country      sql.NullString `db:"country"`
	CountryCode  sql.NullString `db:"country_code"`
	Logo         sql.NullString `db:"logo"`
	SeasonID     int            `db:"season_id"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// CompetitorInput is a competitor as returned by the provider
type CompetitorInput struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ShortName    string `json:"short_name"`
	Abbreviation string `json:"abbreviation"`
	Gender       string `json:"gender"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
}

// SeasonCompetitorsResponse is the body of /seasons/{id}/competitors.json
type SeasonCompetitorsResponse struct {
	SeasonCompetitors []CompetitorInput `json:"season_competitors"`
}

// SpecialID returns the local lookup key
func (ci *CompetitorInput) SpecialID() string {
	return identifier.Strip(ci.ID, identifier.Competitor)
}

// ToCompetitor converts CompetitorInput (from API) to Competitor model
func (ci *CompetitorInput) ToCompetitor(seasonID int) *Competitor {
	return &Competitor{
		SpecialID:    ci.SpecialID(),
		Name:         ci.Name,
		ShortName:    nullString(ci.ShortName),
		Abbreviation: nullString(ci.Abbreviation),
		Gender:       nullString(ci.Gender),
		Country:      nullString(ci.Country),
		CountryCode:  nullString(ci.CountryCode),
		SeasonID:     seasonID,
	}
}

// DisplayName prefers the short name when the provider sent one
func (c *Competitor) DisplayName() string {
	if c.ShortName.Valid && c.ShortName.String != "" {
		return c.ShortName.String
	}
	return c.Name
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

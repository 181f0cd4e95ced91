package models

import (
	"time"

	"courtside/ingestion/internal/identifier"
)

// Player represents a squad member of a competitor
type Player struct {
	ID           int       `db:"id"`
	SpecialID    string    `db:"special_id"`
	Name         string    `db:"name"`
	CompetitorID int       `db:"competitor_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// PlayerInput is a player as returned by the provider
type PlayerInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CompetitorPlayersInput groups a competitor's squad
type CompetitorPlayersInput struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Players []PlayerInput `json:"players"`
}

// CompetitorPlayersResponse is the body of /seasons/{id}/competitor_players.json
type CompetitorPlayersResponse struct {
	SeasonCompetitorPlayers []CompetitorPlayersInput `json:"season_competitor_players"`
}

// SpecialID returns the local lookup key
func (pi *PlayerInput) SpecialID() string {
	return identifier.Strip(pi.ID, identifier.Player)
}

// ToPlayer converts PlayerInput (from API) to Player model
func (pi *PlayerInput) ToPlayer(competitorID int) *Player {
	return &Player{
		SpecialID:    pi.SpecialID(),
		Name:         pi.Name,
		CompetitorID: competitorID,
	}
}

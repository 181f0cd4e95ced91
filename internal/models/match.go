package models

import (
	"database/sql"
	"strings"
	"time"

	"courtside/ingestion/internal/identifier"
)

// Sport event statuses used by the provider
const (
	MatchStatusNotStarted = "not_started"
)

// UpcomingMatch is a scheduled fixture that had not started when it was fetched
type UpcomingMatch struct {
	ID               int            `db:"id"`
	SpecialID        string         `db:"special_id"`
	HomeCompetitorID int            `db:"home_competitor_id"`
	AwayCompetitorID int            `db:"away_competitor_id"`
	StartTime        time.Time      `db:"start_time"`
	Venue            sql.NullString `db:"venue"`
	Status           string         `db:"status"`
	SeasonID         int            `db:"season_id"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// OpponentOf returns the other side of the fixture
func (m *UpcomingMatch) OpponentOf(competitorID int) int {
	if m.HomeCompetitorID == competitorID {
		return m.AwayCompetitorID
	}
	return m.HomeCompetitorID
}

// EventCompetitorInput is one side of a sport event
type EventCompetitorInput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Qualifier string `json:"qualifier"`
}

// VenueInput is the venue block of a sport event
type VenueInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SportEventInput is a fixture as returned by the provider
type SportEventInput struct {
	ID          string                 `json:"id"`
	StartTime   time.Time              `json:"start_time"`
	Competitors []EventCompetitorInput `json:"competitors"`
	Venue       *VenueInput            `json:"venue,omitempty"`
}

// SportEventStatusInput carries the fixture status
type SportEventStatusInput struct {
	Status string `json:"status"`
}

// ScheduleInput is one entry of /seasons/{id}/schedules.json
type ScheduleInput struct {
	SportEvent       SportEventInput       `json:"sport_event"`
	SportEventStatus SportEventStatusInput `json:"sport_event_status"`
}

// SchedulesResponse is the body of /seasons/{id}/schedules.json
type SchedulesResponse struct {
	Schedules []ScheduleInput `json:"schedules"`
}

// SpecialID returns the local lookup key
func (si *ScheduleInput) SpecialID() string {
	return identifier.Strip(si.SportEvent.ID, identifier.SportEvent)
}

// Sides returns the home and away competitors. An explicit qualifier claims
// its own side only; a side left unclaimed takes the next remaining
// competitor in listed order. ok is false when two distinct competitors
// cannot be found.
func (si *ScheduleInput) Sides() (home, away EventCompetitorInput, ok bool) {
	competitors := si.SportEvent.Competitors
	if len(competitors) < 2 {
		return home, away, false
	}

	homeIdx, awayIdx := -1, -1
	for i, c := range competitors {
		switch strings.ToLower(c.Qualifier) {
		case "home":
			if homeIdx < 0 {
				homeIdx = i
			}
		case "away":
			if awayIdx < 0 && i != homeIdx {
				awayIdx = i
			}
		}
	}

	for i := range competitors {
		if i == homeIdx || i == awayIdx {
			continue
		}
		if homeIdx < 0 {
			homeIdx = i
		} else if awayIdx < 0 {
			awayIdx = i
		}
	}
	if homeIdx < 0 || awayIdx < 0 {
		return home, away, false
	}

	home, away = competitors[homeIdx], competitors[awayIdx]
	if identifier.Strip(home.ID, identifier.Competitor) == identifier.Strip(away.ID, identifier.Competitor) {
		return home, away, false
	}
	return home, away, true
}

// ToUpcomingMatch converts ScheduleInput (from API) to UpcomingMatch model
func (si *ScheduleInput) ToUpcomingMatch(seasonID, homeID, awayID int) *UpcomingMatch {
	match := &UpcomingMatch{
		SpecialID:        si.SpecialID(),
		HomeCompetitorID: homeID,
		AwayCompetitorID: awayID,
		StartTime:        si.SportEvent.StartTime,
		Status:           si.SportEventStatus.Status,
		SeasonID:         seasonID,
	}

	if match.Status == "" {
		match.Status = MatchStatusNotStarted
	}
	if si.SportEvent.Venue != nil {
		match.Venue = nullString(si.SportEvent.Venue.Name)
	}

	return match
}

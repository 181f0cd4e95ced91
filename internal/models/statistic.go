package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Statistic is one competitor-scoped statistic row. At most one row exists
// per (CompetitorID, Type).
type Statistic struct {
	ID           int       `db:"id"`
	CompetitorID int       `db:"competitor_id"`
	Type         string    `db:"type"`
	Value        float64   `db:"value"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// PlayerStatistic is one player-scoped statistic row. At most one row exists
// per (PlayerID, Type).
type PlayerStatistic struct {
	ID        int       `db:"id"`
	PlayerID  int       `db:"player_id"`
	Type      string    `db:"type"`
	Value     float64   `db:"value"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// StatValue is a numeric statistic extracted from a provider payload
type StatValue struct {
	Type  string
	Value float64
}

// PlayerStatisticsInput is a player block inside the competitor statistics payload
type PlayerStatisticsInput struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Statistics map[string]any `json:"statistics"`
}

// CompetitorStatisticsInput is the competitor block of the statistics payload
type CompetitorStatisticsInput struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	Statistics map[string]any          `json:"statistics"`
	Players    []PlayerStatisticsInput `json:"players"`
}

// CompetitorStatisticsResponse is the body of
// /seasons/{id}/competitors/{competitorId}/statistics.json
type CompetitorStatisticsResponse struct {
	Competitor CompetitorStatisticsInput `json:"competitor"`
}

// NumericValues keeps the numeric entries of a raw statistics map, sorted by
// type. Nulls, strings, booleans and nested objects are dropped.
func NumericValues(raw map[string]any) []StatValue {
	values := make([]StatValue, 0, len(raw))
	for key, v := range raw {
		switch n := v.(type) {
		case float64:
			values = append(values, StatValue{Type: key, Value: n})
		case int:
			values = append(values, StatValue{Type: key, Value: float64(n)})
		case int64:
			values = append(values, StatValue{Type: key, Value: float64(n)})
		}
	}

	sort.Slice(values, func(i, j int) bool { return values[i].Type < values[j].Type })
	return values
}

// FormatStatistics renders statistics as "type: value" pairs joined by ", "
func FormatStatistics(stats []*Statistic) string {
	parts := make([]string, 0, len(stats))
	for _, s := range stats {
		parts = append(parts, fmt.Sprintf("%s: %s", s.Type, formatValue(s.Value)))
	}
	return strings.Join(parts, ", ")
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

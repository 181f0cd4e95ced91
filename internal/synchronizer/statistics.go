package synchronizer

import (
	"context"
	"fmt"
	"time"

	"courtside/ingestion/internal/identifier"
	"courtside/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// SyncStatistics refreshes the season statistics of one competitor and its
// players. Only numeric values are stored; one row per (parent, type).
func (s *Synchronizer) SyncStatistics(ctx context.Context, seasonID, competitorID string) (res Result, err error) {
	start := time.Now()
	res = Result{Kind: "statistics"}
	defer func() { s.record(&res, start, err) }()

	competitorID = identifier.Strip(competitorID, identifier.Competitor)
	competitor, err := s.store.Competitors.FindBySpecialID(ctx, competitorID)
	if err != nil {
		return res, err
	}
	if competitor == nil {
		return res, &NotFoundLocallyError{Kind: "competitor", SpecialID: competitorID}
	}

	input, err := s.provider.FetchCompetitorStatistics(ctx, identifier.Strip(seasonID, identifier.Season), competitorID)
	if err != nil {
		return res, err
	}

	for _, sv := range models.NumericValues(input.Statistics) {
		res.Fetched++
		if err := s.upsertStatistic(ctx, competitor.ID, sv); err != nil {
			log.Error().Err(err).Int("competitor_id", competitor.ID).Str("type", sv.Type).Msg("Failed to store statistic")
			res.AddErrorf("statistic %s: %v", sv.Type, err)
			continue
		}
		res.Upserted++
	}

	for _, block := range input.Players {
		values := models.NumericValues(block.Statistics)
		res.Fetched += len(values)

		playerID := identifier.Strip(block.ID, identifier.Player)
		player, err := s.store.Players.FindBySpecialID(ctx, playerID)
		if err != nil {
			log.Error().Err(err).Str("player_id", playerID).Msg("Failed to resolve player")
			res.AddErrorf("player %s: %v", playerID, err)
			continue
		}
		if player == nil {
			log.Warn().Str("player_id", playerID).Msg("Player not found locally, skipping statistics")
			res.Skipped += len(values)
			continue
		}

		for _, sv := range values {
			if err := s.upsertPlayerStatistic(ctx, player.ID, sv); err != nil {
				log.Error().Err(err).Int("player_id", player.ID).Str("type", sv.Type).Msg("Failed to store player statistic")
				res.AddErrorf("player statistic %s/%s: %v", playerID, sv.Type, err)
				continue
			}
			res.Upserted++
		}
	}

	return res, nil
}

// upsertStatistic looks up (competitorID, type) and updates or creates the
// row. The key is held for the whole find-then-write sequence.
func (s *Synchronizer) upsertStatistic(ctx context.Context, competitorID int, sv models.StatValue) error {
	unlock := s.locks.Lock(fmt.Sprintf("statistic:%d:%s", competitorID, sv.Type))
	defer unlock()

	existing, err := s.store.Statistics.FindFirst(ctx, competitorID, sv.Type)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.store.Statistics.UpdateValue(ctx, existing.ID, sv.Value)
	}

	return s.store.Statistics.Create(ctx, &models.Statistic{
		CompetitorID: competitorID,
		Type:         sv.Type,
		Value:        sv.Value,
	})
}

func (s *Synchronizer) upsertPlayerStatistic(ctx context.Context, playerID int, sv models.StatValue) error {
	unlock := s.locks.Lock(fmt.Sprintf("player_statistic:%d:%s", playerID, sv.Type))
	defer unlock()

	existing, err := s.store.PlayerStatistics.FindFirst(ctx, playerID, sv.Type)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.store.PlayerStatistics.UpdateValue(ctx, existing.ID, sv.Value)
	}

	return s.store.PlayerStatistics.Create(ctx, &models.PlayerStatistic{
		PlayerID: playerID,
		Type:     sv.Type,
		Value:    sv.Value,
	})
}
